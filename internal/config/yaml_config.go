package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// UIConfig represents the optional ui.yaml file. It customises the predictor
// form without touching environment variables.
type UIConfig struct {
	Fields []FieldConfig `yaml:"fields"`
	Nav    []NavItem     `yaml:"nav"`
}

// FieldConfig overrides the label and placeholder of one form field.
type FieldConfig struct {
	Key         string `yaml:"key"` // cases_per_100k, median_age or aged_65_above
	Label       string `yaml:"label"`
	Placeholder string `yaml:"placeholder"`
}

// NavItem is one link in the navigation bar.
type NavItem struct {
	Href  string `yaml:"href"`
	Label string `yaml:"label"`
}

// DefaultUIConfig returns the built-in form and navigation layout.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Fields: []FieldConfig{
			{Key: "cases_per_100k", Label: "Cases per 100k", Placeholder: "e.g. 450"},
			{Key: "median_age", Label: "Median Age", Placeholder: "e.g. 38"},
			{Key: "aged_65_above", Label: "% Aged 65+", Placeholder: "e.g. 16.5"},
		},
		Nav: []NavItem{
			{Href: "/", Label: "Predictor"},
			{Href: "/dashboard", Label: "Dashboard"},
		},
	}
}

// LoadUIConfig loads the UI configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "ui.yaml".
// Returns the defaults without error if the file doesn't exist.
func LoadUIConfig() (*UIConfig, error) {
	return LoadUIConfigFile(getEnv("CONFIG_FILE", "ui.yaml"))
}

// LoadUIConfigFile loads a UI configuration file and merges it over the defaults.
func LoadUIConfigFile(path string) (*UIConfig, error) {
	cfg := DefaultUIConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return cfg, nil
		}
		return nil, err
	}

	var file UIConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	for _, f := range file.Fields {
		if field := cfg.GetField(f.Key); field != nil {
			if f.Label != "" {
				field.Label = f.Label
			}
			if f.Placeholder != "" {
				field.Placeholder = f.Placeholder
			}
		}
	}
	if len(file.Nav) > 0 {
		cfg.Nav = file.Nav
	}

	return cfg, nil
}

// GetField finds a field by its key.
func (c *UIConfig) GetField(key string) *FieldConfig {
	if c == nil {
		return nil
	}
	for i := range c.Fields {
		if c.Fields[i].Key == key {
			return &c.Fields[i]
		}
	}
	return nil
}
