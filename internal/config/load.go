package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// Load resolves, reads, parses, and validates the runtime configuration.
// A missing file is not an error: defaults apply with a warning.
func Load(explicitPath string) (Loaded, error) {
	resolvedPath, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	content, err := os.ReadFile(resolvedPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Loaded{
				Path:   resolvedPath,
				Config: Default(),
				Warnings: []Warning{{
					Message: fmt.Sprintf("config file %q not found; using defaults", resolvedPath),
				}},
				Exists: false,
			}, nil
		}
		return Loaded{}, fmt.Errorf("read config %q: %w", resolvedPath, err)
	}

	cfg, warnings, err := Parse(string(content))
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", resolvedPath, err)
	}

	return Loaded{
		Path:     resolvedPath,
		Config:   cfg,
		Warnings: warnings,
		Exists:   true,
	}, nil
}

// Parse decodes TOML content over the defaults and validates the result.
// Unrecognized keys surface as warnings, not errors.
func Parse(content string) (Config, []Warning, error) {
	cfg := Default()

	meta, err := toml.Decode(content, &cfg)
	if err != nil {
		return Config{}, nil, err
	}

	warnings := make([]Warning, 0)
	for _, key := range meta.Undecoded() {
		if isAppOrCommandKey(key.String()) {
			continue
		}
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("unknown config key %q ignored", key.String()),
		})
	}

	validationWarnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, append(warnings, validationWarnings...), nil
}

// isAppOrCommandKey filters table entries that decode into maps; the TOML
// metadata reports them as undecoded subkeys on some layouts.
func isAppOrCommandKey(key string) bool {
	return strings.HasPrefix(key, "apps.") || strings.HasPrefix(key, "media.commands.")
}
