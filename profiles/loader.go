package profiles

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// rootKey is the configuration subtree holding client profiles.
const rootKey = "clients"

var validate = validator.New()

// LoaderConfig holds optional loader overrides.
type LoaderConfig struct {
	EnvFile string // .env file loaded before reading config (optional)
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load reads the profile source from a config file. A missing or empty path
// yields (nil, nil): composition then applies code-declared configuration
// only. Environment variables override file values.
func Load(path string, opts ...LoaderOption) (*Properties, error) {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}

	if lc.EnvFile != "" {
		if err := godotenv.Load(lc.EnvFile); err != nil {
			fmt.Fprintf(os.Stderr, "[profiles] warning: failed to load .env file %s: %v\n", lc.EnvFile, err)
		}
	}

	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("profiles: read %s: %w", path, err)
	}

	sub := v.Sub(rootKey)
	if sub == nil {
		return nil, nil
	}

	var props Properties
	if err := sub.Unmarshal(&props); err != nil {
		return nil, fmt.Errorf("profiles: unmarshal %s: %w", path, err)
	}
	props.ApplyDefaults()

	if err := props.Validate(); err != nil {
		return nil, err
	}
	return &props, nil
}

// Validate checks every profile against its declared constraints.
func (p *Properties) Validate() error {
	for name, cfg := range p.Config {
		if cfg == nil {
			continue
		}
		if err := validate.Struct(cfg); err != nil {
			return fmt.Errorf("profiles: profile %q: %w", name, err)
		}
	}
	return nil
}
