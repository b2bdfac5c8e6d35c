// Package config handles XDG configuration directory and file paths.
package config

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the application directory name.
	AppName = "tasksync"

	// TokenFile is the stored credential filename. The credential is the
	// only state persisted across process restarts.
	TokenFile = "token.json"

	// ServerEnv is the environment variable overriding the store URL.
	ServerEnv = "TASKSYNC_SERVER"

	// DefaultServerURL is the remote store URL used when neither the
	// --server flag nor TASKSYNC_SERVER is set.
	DefaultServerURL = "http://localhost:8000"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// ServerURL is the remote store base URL.
	ServerURL string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// New creates a new Config with the default or specified config directory
// and server URL. If configDir is empty, uses XDG_CONFIG_HOME/tasksync or
// $HOME/.config/tasksync. If serverURL is empty, uses TASKSYNC_SERVER or
// the default.
func New(configDir, serverURL string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	url := serverURL
	if url == "" {
		url = os.Getenv(ServerEnv)
	}
	if url == "" {
		url = DefaultServerURL
	}
	return &Config{Dir: dir, ServerURL: url}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// TokenPath returns the path to the stored credential file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasToken checks if the credential file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the credential file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
