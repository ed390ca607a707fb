// Package config provides the configuration schema, loader, and provider
// registry for the rxscribe dictation server.
package config

// LogLevel controls log verbosity for the rxscribe server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for rxscribe.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
}

// ServerConfig holds network and logging settings for the rxscribe server.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// ShutdownGraceSeconds bounds the drain window on SIGINT/SIGTERM.
	// Zero means the default of 15 seconds.
	ShutdownGraceSeconds int `yaml:"shutdown_grace_seconds"`
}

// ProvidersConfig declares which vendor adapter backs each pipeline stage.
// Each field selects a named provider registered in the [Registry].
type ProvidersConfig struct {
	// STT backs the transcription gateway.
	STT ProviderEntry `yaml:"stt"`

	// Extraction backs the prescription extraction gateway.
	Extraction ProviderEntry `yaml:"extraction"`

	// Refinement backs the optional transcript refinement gateway. When its
	// Name is empty, the extraction provider is reused.
	Refinement ProviderEntry `yaml:"refinement"`
}

// ProviderEntry is the common configuration block shared by all provider
// types. The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation
	// (e.g., "deepgram", "openai", "gemini").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API. When empty it
	// is filled from the provider's conventional environment variable
	// (DEEPGRAM_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY); an environment
	// value always wins over the file.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider
	// (e.g., "gpt-4o-mini", "gemini-1.5-pro", "nova-2").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by
	// the standard fields above (e.g. "language" for Deepgram).
	Options map[string]any `yaml:"options"`
}

// OptString extracts a string value from the Options map. Returns "" if the
// map is nil, the key is absent, or the value is not a string.
func (e ProviderEntry) OptString(key string) string {
	if e.Options == nil {
		return ""
	}
	v, ok := e.Options[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
