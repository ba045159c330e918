package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// AppName names the XDG config directory.
const AppName = "hydro"

// Environment variables consulted by FromEnv.
const (
	EnvBaseURL     = "HYDRO_BASE_URL"
	EnvDeployedURL = "HYDRO_DEPLOYED_URL"
	EnvListen      = "HYDRO_LISTEN"
	EnvFixturePath = "HYDRO_FIXTURES"
)

// DefaultPath returns the user config file location under the XDG config
// home, e.g. ~/.config/hydro/config.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// FromEnv builds a partial Config from HYDRO_* environment variables.
func FromEnv() *Config {
	cfg := Empty()
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = ptrString(v)
	}
	if v := os.Getenv(EnvDeployedURL); v != "" {
		cfg.DeployedURL = ptrString(v)
	}
	if v := os.Getenv(EnvListen); v != "" {
		cfg.Listen = ptrString(v)
	}
	if v := os.Getenv(EnvFixturePath); v != "" {
		cfg.FixturePath = ptrString(v)
	}
	return cfg
}

// Resolve builds the effective configuration: the file at path, overlaid
// with the environment. When path is empty the XDG default is used if it
// exists, then DefaultConfigPath. An explicitly named file must exist.
func Resolve(path string) (*Config, error) {
	cfg := Empty()
	if path == "" {
		path = firstExisting(DefaultPath(), DefaultConfigPath)
	}
	if path != "" {
		fileCfg, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg.Merge(fileCfg)
	}

	cfg.Merge(FromEnv())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// firstExisting returns the first of paths that names a regular file, or ""
// when none do.
func firstExisting(paths ...string) string {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			return p
		}
	}
	return ""
}
