package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-ai/inkwell/pkg/types"
)

func TestLoadVaultConfig(t *testing.T) {
	vault := t.TempDir()
	stateDir := filepath.Join(vault, types.DefaultStateFolder)
	require.NoError(t, os.MkdirAll(stateDir, 0755))

	content := `{
		// tool batches keep going on failure
		"stopOnToolError": false,
		"loopThreshold": 5,
		"defaultModel": "claude-sonnet"
	}`
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "inkwell.jsonc"), []byte(content), 0644))

	cfg, err := Load(vault)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.LoopThreshold)
	assert.Equal(t, "claude-sonnet", cfg.DefaultModel)
	assert.False(t, cfg.EffectiveStopOnToolError())
	assert.Equal(t, vault, cfg.VaultPath)
	assert.Equal(t, types.DefaultStateFolder, cfg.StateFolder)
}

func TestLoadDefaultsWhenNoFiles(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, types.DefaultLoopThreshold, cfg.EffectiveLoopThreshold())
	assert.Equal(t, types.DefaultLoopWindow, cfg.LoopWindow())
	assert.True(t, cfg.EffectiveStopOnToolError())
}

func TestEnvInterpolation(t *testing.T) {
	vault := t.TempDir()
	stateDir := filepath.Join(vault, types.DefaultStateFolder)
	require.NoError(t, os.MkdirAll(stateDir, 0755))
	t.Setenv("TEST_INKWELL_MODEL", "gpt-test")

	content := `{"defaultModel": "{env:TEST_INKWELL_MODEL}"}`
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "inkwell.json"), []byte(content), 0644))

	cfg, err := Load(vault)
	require.NoError(t, err)
	assert.Equal(t, "gpt-test", cfg.DefaultModel)
}

func TestEnvOverridesWin(t *testing.T) {
	vault := t.TempDir()
	stateDir := filepath.Join(vault, types.DefaultStateFolder)
	require.NoError(t, os.MkdirAll(stateDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "inkwell.json"),
		[]byte(`{"defaultModel": "from-file"}`), 0644))

	t.Setenv("INKWELL_MODEL", "from-env")

	cfg, err := Load(vault)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.DefaultModel)
}
