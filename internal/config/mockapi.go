package config

import (
	"fmt"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// MockAPIConfig holds configuration for the in-memory backend.
type MockAPIConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort        int    `env:"MOCKAPI_HTTP_PORT" envDefault:"5186"`
	BasePath        string `env:"MOCKAPI_BASE_PATH" envDefault:"/api/v1"`
	SeedProducts    int    `env:"MOCKAPI_SEED_PRODUCTS" envDefault:"48"`
	AuthTokenSecret string `env:"AUTH_TOKEN_SECRET" envDefault:"dev-secret-change-me"`
	RequireAuth     bool   `env:"MOCKAPI_REQUIRE_AUTH" envDefault:"true"`
}

// LoadMockAPI reads the mock backend configuration from environment variables.
func LoadMockAPI() (*MockAPIConfig, error) {
	cfg := &MockAPIConfig{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load mockapi config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadMockAPIFrom is LoadMockAPI over an explicit variable set.
func LoadMockAPIFrom(vars map[string]string) (*MockAPIConfig, error) {
	cfg := &MockAPIConfig{}
	if err := pkgconfig.LoadFrom(cfg, vars); err != nil {
		return nil, fmt.Errorf("load mockapi config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *MockAPIConfig) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.SeedProducts < 0 {
		return fmt.Errorf("invalid seed product count: %d", c.SeedProducts)
	}
	if c.RequireAuth && c.AuthTokenSecret == "" {
		return fmt.Errorf("AUTH_TOKEN_SECRET is required when auth is enabled")
	}
	return nil
}
