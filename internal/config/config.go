// Package config loads optional TOML configuration for the client and the
// reference authority server. Command-line flags override file values; the
// zero config is usable out of the box for local development.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ClientConfig configures the sync client.
type ClientConfig struct {
	// ServerURL is the base URL of the REST authority.
	ServerURL string `toml:"server_url"`
	// Backend selects the transport variant: "rest" or "docstore".
	Backend string `toml:"backend"`
	// DBPath is the local bbolt file (identity store; docstore backend
	// shares it when Backend is "docstore").
	DBPath string `toml:"db_path"`
	// Role is the participant capability: surgeon, admin or viewer.
	Role string `toml:"role"`
}

// ServerConfig configures the reference authority server.
type ServerConfig struct {
	Addr       string `toml:"addr"`
	DBPath     string `toml:"db_path"`
	JWTSecret  string `toml:"jwt_secret"`
	TokenTTL   string `toml:"token_ttl"`    // Go duration, e.g. "15m"
	WSTokenTTL string `toml:"ws_token_ttl"` // Go duration, e.g. "5m"
}

// DefaultClient returns the client defaults used when no file is given.
func DefaultClient() ClientConfig {
	return ClientConfig{
		ServerURL: "http://localhost:8000",
		Backend:   "rest",
		DBPath:    "layoutsync-client.db",
		Role:      "surgeon",
	}
}

// DefaultServer returns the server defaults used when no file is given.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Addr:       ":8000",
		DBPath:     "layoutsync.db",
		JWTSecret:  "dev-secret-change-me",
		TokenTTL:   "15m",
		WSTokenTTL: "5m",
	}
}

// LoadClient reads a client config file, applying defaults for absent keys.
func LoadClient(path string) (ClientConfig, error) {
	cfg := DefaultClient()
	if err := load(path, &cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

// LoadServer reads a server config file, applying defaults for absent keys.
func LoadServer(path string) (ServerConfig, error) {
	cfg := DefaultServer()
	if err := load(path, &cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

func load(path string, into any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
