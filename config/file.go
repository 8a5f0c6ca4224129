package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load. A .env file in the working directory
// is loaded by the CLI before Load runs.
const (
	EnvBrowserStackUser = "BROWSERSTACK_USERNAME"
	EnvBrowserStackKey  = "BROWSERSTACK_ACCESS_KEY"
	EnvRapidAPIKey      = "RAPID_API_KEY"
	EnvRapidAPIHost     = "RAPID_API_HOST"
)

// Load reads the config file at path. The file may be YAML or JSON (JSON is
// parsed as YAML). Credentials from the environment override the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes config file contents without consulting the environment.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Driver == "" {
		cfg.Driver = DriverBrowserStack
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if user := os.Getenv(EnvBrowserStackUser); user != "" {
		c.BrowserStack.User = user
	}
	if key := os.Getenv(EnvBrowserStackKey); key != "" {
		c.BrowserStack.Key = key
	}

	c.RapidAPI = RapidAPI{
		Key:  os.Getenv(EnvRapidAPIKey),
		Host: os.Getenv(EnvRapidAPIHost),
	}
}
