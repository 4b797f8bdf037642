package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file on top of the defaults and applies
// environment overrides for secrets. An empty path yields defaults plus
// environment only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overlays secrets from the environment. Names match the
// conventional Groq and Supabase variables so existing .env files keep
// working.
func applyEnv(cfg *Config) {
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("SUPABASE_URL"); v != "" {
		cfg.Database.BaseURL = v
	}
	if v := os.Getenv("SUPABASE_KEY"); v != "" {
		cfg.Database.APIKey = v
	}
}
