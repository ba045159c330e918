// Package config loads dashboard settings and resolves the base URL of the
// analysis service.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/hydro.report/internal/units"
)

// DefaultConfigPath is the dashboard defaults file, relative to the working
// directory. Resolve falls back to it when no user config exists.
const DefaultConfigPath = "config/dashboard.defaults.json"

// Defaults applied by the Get* accessors when a field is unset.
const (
	DefaultDeployedURL       = "https://water-analytics.onrender.com"
	DefaultLocalURL          = "http://localhost:5000"
	DefaultListen            = ":8080"
	DefaultHideDelay         = 500 * time.Millisecond
	DefaultHistorySize       = 20
	DefaultNotificationLimit = 50
)

// maxFileSize bounds config files read from disk.
const maxFileSize = 1 * 1024 * 1024

// Config holds dashboard settings. Pointer fields distinguish "unset" from
// zero values so partial files and environment overrides layer cleanly.
// The same schema is accepted as JSON or YAML.
type Config struct {
	// BaseURL pins the analysis service URL. When unset it is resolved from
	// the hosting environment by ResolveBaseURL.
	BaseURL     *string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	DeployedURL *string `json:"deployed_url,omitempty" yaml:"deployed_url,omitempty"`
	Listen      *string `json:"listen,omitempty" yaml:"listen,omitempty"`

	HideDelay   *string `json:"hide_delay,omitempty" yaml:"hide_delay,omitempty"`     // duration string like "500ms"
	ScanTimeout *string `json:"scan_timeout,omitempty" yaml:"scan_timeout,omitempty"` // empty disables the timeout

	VolumeUnits *string `json:"volume_units,omitempty" yaml:"volume_units,omitempty"`
	AreaUnits   *string `json:"area_units,omitempty" yaml:"area_units,omitempty"`

	FixturePath       *string `json:"fixture_path,omitempty" yaml:"fixture_path,omitempty"`
	HistorySize       *int    `json:"history_size,omitempty" yaml:"history_size,omitempty"`
	NotificationLimit *int    `json:"notification_limit,omitempty" yaml:"notification_limit,omitempty"`
}

// Helper functions to create pointers
func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// Empty returns a Config with every field unset.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a .json, .yaml or .yml file and validates it.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", filepath.Base(cleanPath), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Merge overlays every field set in o onto c.
func (c *Config) Merge(o *Config) {
	if o == nil {
		return
	}
	if o.BaseURL != nil {
		c.BaseURL = o.BaseURL
	}
	if o.DeployedURL != nil {
		c.DeployedURL = o.DeployedURL
	}
	if o.Listen != nil {
		c.Listen = o.Listen
	}
	if o.HideDelay != nil {
		c.HideDelay = o.HideDelay
	}
	if o.ScanTimeout != nil {
		c.ScanTimeout = o.ScanTimeout
	}
	if o.VolumeUnits != nil {
		c.VolumeUnits = o.VolumeUnits
	}
	if o.AreaUnits != nil {
		c.AreaUnits = o.AreaUnits
	}
	if o.FixturePath != nil {
		c.FixturePath = o.FixturePath
	}
	if o.HistorySize != nil {
		c.HistorySize = o.HistorySize
	}
	if o.NotificationLimit != nil {
		c.NotificationLimit = o.NotificationLimit
	}
}

// Validate checks that the configuration values are valid.
func (c *Config) Validate() error {
	for name, u := range map[string]*string{"base_url": c.BaseURL, "deployed_url": c.DeployedURL} {
		if u == nil || *u == "" {
			continue
		}
		if err := validateHTTPURL(*u); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	if c.HideDelay != nil && *c.HideDelay != "" {
		d, err := time.ParseDuration(*c.HideDelay)
		if err != nil {
			return fmt.Errorf("invalid hide_delay '%s': %w", *c.HideDelay, err)
		}
		if d < 0 {
			return fmt.Errorf("hide_delay must be non-negative, got %s", d)
		}
	}

	if c.ScanTimeout != nil && *c.ScanTimeout != "" {
		d, err := time.ParseDuration(*c.ScanTimeout)
		if err != nil {
			return fmt.Errorf("invalid scan_timeout '%s': %w", *c.ScanTimeout, err)
		}
		if d < 0 {
			return fmt.Errorf("scan_timeout must be non-negative, got %s", d)
		}
	}

	if c.VolumeUnits != nil && !units.IsValidVolume(*c.VolumeUnits) {
		return fmt.Errorf("volume_units must be one of %s, got %q", units.GetValidVolumeUnitsString(), *c.VolumeUnits)
	}
	if c.AreaUnits != nil && !units.IsValidArea(*c.AreaUnits) {
		return fmt.Errorf("area_units must be one of %s, got %q", units.GetValidAreaUnitsString(), *c.AreaUnits)
	}

	if c.HistorySize != nil && *c.HistorySize < 1 {
		return fmt.Errorf("history_size must be positive, got %d", *c.HistorySize)
	}
	if c.NotificationLimit != nil && *c.NotificationLimit < 1 {
		return fmt.Errorf("notification_limit must be positive, got %d", *c.NotificationLimit)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

// GetDeployedURL returns the deployed analysis service URL or the default.
func (c *Config) GetDeployedURL() string {
	if c.DeployedURL == nil || *c.DeployedURL == "" {
		return DefaultDeployedURL
	}
	return strings.TrimRight(*c.DeployedURL, "/")
}

// GetBaseURL returns the pinned base URL, or resolves one from host.
func (c *Config) GetBaseURL(host string) string {
	if c.BaseURL != nil && *c.BaseURL != "" {
		return strings.TrimRight(*c.BaseURL, "/")
	}
	return ResolveBaseURL(host, c.GetDeployedURL())
}

// GetListen returns the dashboard listen address or the default.
func (c *Config) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return DefaultListen
	}
	return *c.Listen
}

// GetHideDelay returns how long the progress overlay lingers after a scan
// finishes.
func (c *Config) GetHideDelay() time.Duration {
	if c.HideDelay == nil || *c.HideDelay == "" {
		return DefaultHideDelay
	}
	d, err := time.ParseDuration(*c.HideDelay)
	if err != nil || d < 0 {
		return DefaultHideDelay
	}
	return d
}

// GetScanTimeout returns the scan timeout; zero means no timeout.
func (c *Config) GetScanTimeout() time.Duration {
	if c.ScanTimeout == nil || *c.ScanTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(*c.ScanTimeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// GetVolumeUnits returns the volume display unit or the default.
func (c *Config) GetVolumeUnits() string {
	if c.VolumeUnits == nil {
		return units.MCM
	}
	return *c.VolumeUnits
}

// GetAreaUnits returns the area display unit or the default.
func (c *Config) GetAreaUnits() string {
	if c.AreaUnits == nil {
		return units.KM2
	}
	return *c.AreaUnits
}

// GetFixturePath returns the dev fixture path, or "" when unset.
func (c *Config) GetFixturePath() string {
	if c.FixturePath == nil {
		return ""
	}
	return *c.FixturePath
}

// GetHistorySize returns how many finished sessions the controller keeps.
func (c *Config) GetHistorySize() int {
	if c.HistorySize == nil {
		return DefaultHistorySize
	}
	return *c.HistorySize
}

// GetNotificationLimit returns how many notifications the dashboard keeps.
func (c *Config) GetNotificationLimit() int {
	if c.NotificationLimit == nil {
		return DefaultNotificationLimit
	}
	return *c.NotificationLimit
}
