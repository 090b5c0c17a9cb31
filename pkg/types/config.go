package types

import "time"

// Config is the merged plugin configuration.
type Config struct {
	// VaultPath is the root of the note vault the core operates on.
	VaultPath string `json:"vaultPath,omitempty"`
	// StateFolder is the vault-relative folder holding session state.
	StateFolder string `json:"stateFolder,omitempty"`

	// LoopThreshold is how many identical tool calls trip loop detection.
	LoopThreshold int `json:"loopThreshold,omitempty"`
	// LoopWindowSeconds bounds how far back identical calls are counted.
	LoopWindowSeconds int `json:"loopWindowSeconds,omitempty"`
	// StopOnToolError aborts a batch at the first failed call.
	StopOnToolError *bool `json:"stopOnToolError,omitempty"`

	// MaxContextChars / MaxCharsPerFile seed new session contexts.
	MaxContextChars int `json:"maxContextChars,omitempty"`
	MaxCharsPerFile int `json:"maxCharsPerFile,omitempty"`

	// DefaultModel names the model used when a session has no override.
	DefaultModel string `json:"defaultModel,omitempty"`

	LogLevel string `json:"logLevel,omitempty"`
}

// Defaults for fields Config leaves unset.
const (
	DefaultStateFolder     = ".inkwell"
	DefaultLoopThreshold   = 3
	DefaultLoopWindow      = 45 * time.Second
	DefaultMaxContextChars = 60000
	DefaultMaxCharsPerFile = 12000
	DefaultStopOnToolError = true
)

// LoopWindow returns the configured loop-detection window.
func (c *Config) LoopWindow() time.Duration {
	if c.LoopWindowSeconds <= 0 {
		return DefaultLoopWindow
	}
	return time.Duration(c.LoopWindowSeconds) * time.Second
}

// EffectiveLoopThreshold returns the configured repeat threshold.
func (c *Config) EffectiveLoopThreshold() int {
	if c.LoopThreshold <= 0 {
		return DefaultLoopThreshold
	}
	return c.LoopThreshold
}

// EffectiveStopOnToolError returns the batch abort policy.
func (c *Config) EffectiveStopOnToolError() bool {
	if c.StopOnToolError == nil {
		return DefaultStopOnToolError
	}
	return *c.StopOnToolError
}
