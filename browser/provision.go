package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pevans/opinionscraper/config"
)

// BrowserStackCDPEndpoint accepts DevTools connections for Chromium-based
// BrowserStack sessions. Capabilities travel in the caps query parameter.
const BrowserStackCDPEndpoint = "wss://cdp.browserstack.com/puppeteer"

// Provisioner opens a browser for one capability set.
type Provisioner interface {
	Open(ctx context.Context, caps config.Capabilities) (Browser, error)
}

// DriverProvisioner opens browsers with the driver named in the config.
type DriverProvisioner struct {
	Driver          string
	Credentials     config.Credentials
	PageLoadTimeout time.Duration
}

// NewProvisioner returns a provisioner for cfg.
func NewProvisioner(cfg *config.Config, pageLoadTimeout time.Duration) *DriverProvisioner {
	return &DriverProvisioner{
		Driver:          cfg.Driver,
		Credentials:     cfg.BrowserStack,
		PageLoadTimeout: pageLoadTimeout,
	}
}

// Open starts a session for caps.
func (p *DriverProvisioner) Open(ctx context.Context, caps config.Capabilities) (Browser, error) {
	switch p.Driver {
	case config.DriverHTTP:
		return NewHTTPBrowser(HTTPOptions{Timeout: p.PageLoadTimeout}), nil
	case config.DriverLocal:
		if !IsChromium(caps.BrowserName()) {
			return nil, fmt.Errorf("%w for local driver: %s", ErrUnsupportedBrowser, caps.BrowserName())
		}
		return NewLocalChrome(ctx, ChromeOptions{
			PageLoadTimeout: p.PageLoadTimeout,
			Headless:        true,
		})
	case config.DriverBrowserStack, "":
		wsURL, err := BrowserStackURL(caps, p.Credentials)
		if err != nil {
			return nil, err
		}
		return NewRemoteChrome(ctx, wsURL, ChromeOptions{PageLoadTimeout: p.PageLoadTimeout})
	default:
		return nil, fmt.Errorf("unknown driver: %s", p.Driver)
	}
}

// IsChromium reports whether a browserName can be driven over DevTools. An
// empty name means the default browser, which is Chrome.
func IsChromium(browserName string) bool {
	name := strings.ToLower(browserName)
	if name == "" {
		return true
	}
	for _, candidate := range []string{"chrome", "chromium", "edge"} {
		if strings.Contains(name, candidate) {
			return true
		}
	}
	return false
}

// vendorKeys maps W3C bstack:options names onto the CDP endpoint's names.
var vendorKeys = map[string]string{
	"os":          "os",
	"osVersion":   "os_version",
	"sessionName": "name",
	"buildName":   "build",
	"projectName": "project",
}

// BrowserStackURL builds the DevTools endpoint URL for caps. Only Chromium
// browsers are reachable this way.
func BrowserStackURL(caps config.Capabilities, creds config.Credentials) (string, error) {
	browserName := caps.BrowserName()
	if !IsChromium(browserName) {
		return "", fmt.Errorf("%w over DevTools: %s", ErrUnsupportedBrowser, browserName)
	}

	browser := strings.ToLower(browserName)
	if browser == "" {
		browser = "chrome"
	}
	version := caps.BrowserVersion()
	if version == "" {
		version = "latest"
	}

	payload := map[string]any{
		"browser":                browser,
		"browser_version":        version,
		"browserstack.username":  creds.User,
		"browserstack.accessKey": creds.Key,
	}
	for key, value := range caps.VendorOptions() {
		if mapped, ok := vendorKeys[key]; ok {
			payload[mapped] = value
			continue
		}
		payload["browserstack."+key] = value
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode capabilities: %w", err)
	}

	return BrowserStackCDPEndpoint + "?caps=" + url.QueryEscape(string(data)), nil
}
