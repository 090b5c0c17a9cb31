// Package config provides configuration loading and path management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/inkwell-ai/inkwell/pkg/types"
)

// Load loads configuration from multiple sources (priority order):
// 1. Global config (~/.config/inkwell/)
// 2. Vault config (<vault>/.inkwell/)
// 3. INKWELL_CONFIG file
// 4. Environment variables
func Load(vaultDir string) (*types.Config, error) {
	config := &types.Config{}

	loaded := make(map[string]bool)
	loadOnce := func(path, baseDir string) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if loaded[absPath] {
			return
		}
		if loadConfigFile(path, config, baseDir) == nil {
			loaded[absPath] = true
		}
	}

	globalDir := GetPaths().Config
	loadOnce(filepath.Join(globalDir, "inkwell.json"), globalDir)
	loadOnce(filepath.Join(globalDir, "inkwell.jsonc"), globalDir)

	if vaultDir != "" {
		stateDir := filepath.Join(vaultDir, types.DefaultStateFolder)
		loadOnce(filepath.Join(stateDir, "inkwell.json"), stateDir)
		loadOnce(filepath.Join(stateDir, "inkwell.jsonc"), stateDir)
	}

	if configPath := os.Getenv("INKWELL_CONFIG"); configPath != "" {
		loadOnce(configPath, filepath.Dir(configPath))
	}

	applyEnvOverrides(config)

	if config.VaultPath == "" {
		config.VaultPath = vaultDir
	}
	if config.StateFolder == "" {
		config.StateFolder = types.DefaultStateFolder
	}

	return config, nil
}

// loadConfigFile loads a single config file with interpolation support.
func loadConfigFile(path string, config *types.Config, baseDir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err // File doesn't exist, skip
	}

	// Strip JSONC comments using tidwall/jsonc
	data = jsonc.ToJSON(data)
	data = interpolate(data, baseDir)

	var fileConfig types.Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return err
	}

	mergeConfig(config, &fileConfig)
	return nil
}

var (
	envPattern  = regexp.MustCompile(`\{env:([^}]+)\}`)
	filePattern = regexp.MustCompile(`\{file:([^}]+)\}`)
)

// interpolate processes {env:VAR} and {file:path} placeholders.
func interpolate(data []byte, baseDir string) []byte {
	str := string(data)

	str = envPattern.ReplaceAllStringFunc(str, func(match string) string {
		varName := envPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})

	str = filePattern.ReplaceAllStringFunc(str, func(match string) string {
		rel := filePattern.FindStringSubmatch(match)[1]
		path := rel
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(content))
	})

	return []byte(str)
}

// mergeConfig overlays src onto dst, later sources winning per field.
func mergeConfig(dst, src *types.Config) {
	if src.VaultPath != "" {
		dst.VaultPath = src.VaultPath
	}
	if src.StateFolder != "" {
		dst.StateFolder = src.StateFolder
	}
	if src.LoopThreshold > 0 {
		dst.LoopThreshold = src.LoopThreshold
	}
	if src.LoopWindowSeconds > 0 {
		dst.LoopWindowSeconds = src.LoopWindowSeconds
	}
	if src.StopOnToolError != nil {
		dst.StopOnToolError = src.StopOnToolError
	}
	if src.MaxContextChars > 0 {
		dst.MaxContextChars = src.MaxContextChars
	}
	if src.MaxCharsPerFile > 0 {
		dst.MaxCharsPerFile = src.MaxCharsPerFile
	}
	if src.DefaultModel != "" {
		dst.DefaultModel = src.DefaultModel
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
}

// applyEnvOverrides applies environment variables (highest priority).
func applyEnvOverrides(config *types.Config) {
	if v := os.Getenv("INKWELL_VAULT"); v != "" {
		config.VaultPath = v
	}
	if v := os.Getenv("INKWELL_MODEL"); v != "" {
		config.DefaultModel = v
	}
	if v := os.Getenv("INKWELL_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
}
