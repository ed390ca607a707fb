package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to reject unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"stt":        {"deepgram"},
	"extraction": {"openai", "gemini"},
	"refinement": {"openai", "gemini"},
}

// envKeyByProvider maps provider names to the conventional environment
// variable carrying their API key.
var envKeyByProvider = map[string]string{
	"deepgram": "DEEPGRAM_API_KEY",
	"openai":   "OPENAI_API_KEY",
	"gemini":   "GEMINI_API_KEY",
}

// Load reads the YAML configuration file at path and returns a validated
// [Config] with environment API keys applied. It is a convenience wrapper
// around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies environment API-key
// overrides, and validates the result. Useful in tests where configs are
// constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}

	applyEnv(&cfg.Providers.STT)
	applyEnv(&cfg.Providers.Extraction)
	applyEnv(&cfg.Providers.Refinement)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv fills the entry's APIKey from the provider's conventional
// environment variable. A set environment value wins over the file so that
// keys never need to be committed alongside the config.
func applyEnv(entry *ProviderEntry) {
	envKey, ok := envKeyByProvider[entry.Name]
	if !ok {
		return
	}
	if v := os.Getenv(envKey); v != "" {
		entry.APIKey = v
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listen_addr is required"))
	}
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.ShutdownGraceSeconds < 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_grace_seconds %d must not be negative", cfg.Server.ShutdownGraceSeconds))
	}

	errs = append(errs, validateEntry("stt", cfg.Providers.STT, true)...)
	errs = append(errs, validateEntry("extraction", cfg.Providers.Extraction, true)...)
	errs = append(errs, validateEntry("refinement", cfg.Providers.Refinement, false)...)

	return errors.Join(errs...)
}

// validateEntry checks a single provider block. Required entries must name a
// provider; optional ones are validated only when a name is present. A
// missing credential is a configuration error caught here so the server
// fails fast instead of partially executing a request later.
func validateEntry(kind string, entry ProviderEntry, required bool) []error {
	if entry.Name == "" {
		if required {
			return []error{fmt.Errorf("providers.%s.name is required", kind)}
		}
		return nil
	}

	var errs []error
	known := false
	for _, name := range ValidProviderNames[kind] {
		if entry.Name == name {
			known = true
			break
		}
	}
	if !known {
		errs = append(errs, fmt.Errorf("providers.%s.name %q is not a known provider; valid values: %v",
			kind, entry.Name, ValidProviderNames[kind]))
		return errs
	}
	if entry.APIKey == "" {
		errs = append(errs, fmt.Errorf("providers.%s.api_key is required (set it in the file or via %s)",
			kind, envKeyByProvider[entry.Name]))
	}
	return errs
}
