// Package config holds the runtime settings of the raw2dng tool itself,
// as opposed to the user preferences kept in preferences.ini.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"strings"
)

type Config struct {
	Prefs  PrefsConfig
	Server ServerConfig
	Log    LogConfig
}

type PrefsConfig struct {
	// Path overrides the preferences.ini location. Empty means next to
	// the executable.
	Path string
	// Atomic enables write-then-rename for every write-back.
	Atomic bool
}

type ServerConfig struct {
	Addr  string
	Token string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr: "127.0.0.1:4100",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load returns the defaults with RAW2DNG_* environment overrides applied.
// Command-line flags are layered on top by the caller.
func Load() (Config, error) {
	cfg := defaults()
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the tool cannot run with.
func (c Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server address must not be empty")
	}
	if err := checkLoopback(c.Server.Addr); err != nil {
		return err
	}
	return nil
}

// checkLoopback accepts only host:port addresses bound to the loopback
// interface. An empty host would listen on every interface.
func checkLoopback(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid server address %q: %w", addr, err)
	}
	if strings.EqualFold(host, "localhost") {
		return nil
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return nil
	}
	return fmt.Errorf("server address %q is not a loopback address", addr)
}

// SlogLevel maps the configured level name to a slog.Level. Unknown names
// fall back to Info.
func (c LogConfig) SlogLevel() slog.Level {
	lvl, err := parseLevel(c.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func parseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", name)
}
