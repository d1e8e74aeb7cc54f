package llm

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

// Config lists the configured model providers.
type Config struct {
	Providers []*ProviderConfig `json:"providers" yaml:"providers" validate:"min=1,dive"`
}

// ProviderConfig describes one OpenAI-compatible endpoint.
type ProviderConfig struct {
	Name         string `json:"name" yaml:"name" validate:"required"`
	Token        string `json:"token,omitempty" yaml:"token,omitempty"`
	DefaultModel string `json:"default_model" yaml:"default_model" validate:"required"`
	// BaseURL overrides the provider endpoint, e.g. for a local server or
	// proxy.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(file string) (*Config, error) {
	bs, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}

	cfg := new(Config)
	if err := yaml.Unmarshal(bs, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// Provider returns the named provider, or the first one when name is empty.
func (c *Config) Provider(name string) (*ProviderConfig, error) {
	if name == "" {
		if len(c.Providers) == 0 {
			return nil, errors.New("no providers configured")
		}
		return c.Providers[0], nil
	}
	for _, p := range c.Providers {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, errors.Newf("provider %q is not configured", name)
}
