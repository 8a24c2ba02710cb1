package config

import (
	"log/slog"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kBool
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "prefs.path", typ: kString, env: "RAW2DNG_PREFS_PATH",
		apply:   func(cfg *Config, v any) { cfg.Prefs.Path = v.(string) },
		extract: func(cfg Config) any { return cfg.Prefs.Path },
	},
	{
		key: "prefs.atomic", typ: kBool, env: "RAW2DNG_PREFS_ATOMIC",
		apply:   func(cfg *Config, v any) { cfg.Prefs.Atomic = v.(bool) },
		extract: func(cfg Config) any { return cfg.Prefs.Atomic },
	},
	{
		key: "server.addr", typ: kString, env: "RAW2DNG_SERVER_ADDR",
		apply:   func(cfg *Config, v any) { cfg.Server.Addr = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.Addr },
	},
	{
		key: "server.token", typ: kString, env: "RAW2DNG_API_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Server.Token = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.Token },
	},
	{
		key: "log.level", typ: kString, env: "RAW2DNG_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kBool:
			if b, err := strconv.ParseBool(raw); err == nil {
				s.apply(cfg, b)
			} else {
				slog.Warn("could not parse bool from env var, using default", "env", s.env, "value", raw, "error", err)
			}
		}
	}
}
