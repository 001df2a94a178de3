package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment conventions.
const (
	EnvPrefix     = "SKILLNAV_"
	EnvConfigFile = EnvPrefix + "CONFIG"
	envNesting    = "__"
)

// legacyEnv maps deployment variables used by earlier releases to config
// keys. They apply only when the namespaced variable is absent.
var legacyEnv = []struct {
	name string
	key  string
	to   func(string) string
}{
	{name: "PORT", key: "ADDR", to: func(v string) string { return ":" + strings.TrimPrefix(v, ":") }},
	{name: "DESCOPE_PROJECT_ID", key: "AUTH__DESCOPE_PROJECT_ID"},
	{name: "GEMINI_API_KEY", key: "AI__API_KEY"},
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if SKILLNAV_CONFIG is set
//  3. legacy env (PORT, DESCOPE_PROJECT_ID, GEMINI_API_KEY)
//  4. env (prefix SKILLNAV_, "__" separates sections)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", legacyKeyValue), nil); err != nil {
		return nil, fmt.Errorf("%w: legacy env: %w", ErrLoadConfig, err)
	}

	// SKILLNAV_GITHUB__MAX_REPOS -> github.max_repos
	envProvider := env.Provider(EnvPrefix, ".", envKey)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ToLower(strings.ReplaceAll(s, envNesting, "."))
}

// legacyKeyValue maps a legacy variable to its config key, or "" to skip it.
func legacyKeyValue(name, value string) (string, interface{}) {
	for _, l := range legacyEnv {
		if name != l.name || value == "" {
			continue
		}
		if _, set := os.LookupEnv(EnvPrefix + l.key); set {
			return "", nil
		}
		if l.to != nil {
			value = l.to(value)
		}
		return envKey(l.key), value
	}
	return "", nil
}
