package config

import (
	"errors"
	"fmt"
	"strings"
)

// Drivers accepted in the config file.
const (
	DriverBrowserStack = "browserstack"
	DriverLocal        = "local"
	DriverHTTP         = "http"
)

// DefaultSessionName is used for capability sets without a session name.
const DefaultSessionName = "Unknown Session"

// Custom errors for config validation
var (
	ErrNoCapabilities  = errors.New("parallel_capabilities must list at least one capability set")
	ErrUnknownDriver   = errors.New("driver must be browserstack, local, or http")
	ErrMissingUsername = errors.New("browserstack_config.user is required for the browserstack driver")
	ErrMissingKey      = errors.New("browserstack_config.key is required for the browserstack driver")
)

// Config is loaded once at startup and handed to every worker.
type Config struct {
	Driver               string         `yaml:"driver"`
	BrowserStack         Credentials    `yaml:"browserstack_config"`
	ParallelCapabilities []Capabilities `yaml:"parallel_capabilities"`
	RapidAPI             RapidAPI       `yaml:"-"`
}

// Credentials authenticate against BrowserStack.
type Credentials struct {
	User string `yaml:"user"`
	Key  string `yaml:"key"`
}

// RapidAPI holds the translation endpoint credentials. It is only ever read
// from the environment.
type RapidAPI struct {
	Key  string
	Host string
}

// Configured reports whether both the key and host are set.
func (r RapidAPI) Configured() bool {
	return r.Key != "" && r.Host != ""
}

// Capabilities is one browser configuration, in the W3C WebDriver shape with
// vendor options under "bstack:options".
type Capabilities map[string]any

// BrowserName returns the browserName capability.
func (c Capabilities) BrowserName() string {
	return c.stringValue("browserName")
}

// BrowserVersion returns the browserVersion capability.
func (c Capabilities) BrowserVersion() string {
	return c.stringValue("browserVersion")
}

// VendorOptions returns the "bstack:options" map, or nil.
func (c Capabilities) VendorOptions() map[string]any {
	options, _ := c["bstack:options"].(map[string]any)
	return options
}

// SessionName returns bstack:options.sessionName or DefaultSessionName.
func (c Capabilities) SessionName() string {
	if name, ok := c.VendorOptions()["sessionName"].(string); ok && name != "" {
		return name
	}
	return DefaultSessionName
}

func (c Capabilities) stringValue(key string) string {
	if value, ok := c[key].(string); ok {
		return value
	}
	return ""
}

// Validate checks that the config can start at least one session.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverBrowserStack:
		if strings.TrimSpace(c.BrowserStack.User) == "" {
			return ErrMissingUsername
		}
		if strings.TrimSpace(c.BrowserStack.Key) == "" {
			return ErrMissingKey
		}
	case DriverLocal, DriverHTTP:
	default:
		return fmt.Errorf("%w (got %q)", ErrUnknownDriver, c.Driver)
	}

	if len(c.ParallelCapabilities) == 0 {
		return ErrNoCapabilities
	}

	return nil
}
