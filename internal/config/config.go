package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"lifecurve/internal/weibull"
)

// Config models lifecurve.yml.
type Config struct {
	Defaults struct {
		CurveType    string `yaml:"curve_type"`
		PlotPoints   int    `yaml:"plot_points"`
		ExportPoints int    `yaml:"export_points"`
	} `yaml:"defaults"`
	Auth struct {
		TokenTTLMinutes int `yaml:"token_ttl_minutes"`
	} `yaml:"auth"`
	// Profiles are named guided-selection presets: a starting shape per
	// failure behaviour, selectable by name from the CLI and API.
	Profiles map[string]Profile `yaml:"profiles"`
}

type Profile struct {
	Description string  `yaml:"description"`
	Shape       float64 `yaml:"shape"`
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Defaults.PlotPoints < 2 {
		return fmt.Errorf("config.defaults.plot_points must be at least 2")
	}
	if c.Defaults.ExportPoints < 2 {
		return fmt.Errorf("config.defaults.export_points must be at least 2")
	}
	if _, err := weibull.ParseCurveType(c.Defaults.CurveType); err != nil {
		return fmt.Errorf("config.defaults.curve_type: %w", err)
	}
	if c.Auth.TokenTTLMinutes <= 0 {
		return fmt.Errorf("config.auth.token_ttl_minutes must be positive")
	}
	for name, p := range c.Profiles {
		if name == "" {
			return fmt.Errorf("config.profiles contains empty profile name")
		}
		if p.Shape <= 0 {
			return fmt.Errorf("profile %s has non-positive shape", name)
		}
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "lifecurve.yml")
}

// Load reads and validates config from the workspace, falling back to
// defaults when the file does not exist.
func Load(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	_ = yaml.Unmarshal([]byte(defaultTemplate), &cfg)
	return &cfg
}

// GenerateDefault returns the default config YAML, for `lc config init`.
func GenerateDefault() string {
	return defaultTemplate
}

const defaultTemplate = `defaults:
  curve_type: cdf
  plot_points: 100
  export_points: 1000

auth:
  token_ttl_minutes: 1440

profiles:
  wearout.predictable:
    description: "Aging dominant, failures cluster near end of life"
    shape: 4.0
  wearout.mixed:
    description: "Aging dominant with scattered earlier failures"
    shape: 2.5
  earlylife.defects:
    description: "Manufacturing defects or bugs dominate"
    shape: 0.5
  earlylife.random:
    description: "Random failures, age-independent"
    shape: 1.0
  latelife.steep:
    description: "Failure probability stays low until late life"
    shape: 6.0
  aging.mild:
    description: "Mild aging without a strong wear-out knee"
    shape: 1.5
`
