package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
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
		key: "server.host", typ: kString, env: "FOLIO_SERVER_HOST",
		apply:   func(cfg *Config, v any) { cfg.Server.Host = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.Host },
	},
	{
		key: "server.port", typ: kInt, env: "FOLIO_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "storage.data_dir", typ: kString, env: "FOLIO_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "auth.email", typ: kString, env: "FOLIO_AUTH_EMAIL",
		apply:   func(cfg *Config, v any) { cfg.Auth.Email = v.(string) },
		extract: func(cfg Config) any { return cfg.Auth.Email },
	},
	{
		key: "auth.user", typ: kString, env: "FOLIO_AUTH_USER",
		apply:   func(cfg *Config, v any) { cfg.Auth.User = v.(string) },
		extract: func(cfg Config) any { return cfg.Auth.User },
	},
	{
		key: "auth.password", typ: kString, env: "FOLIO_AUTH_PASSWORD",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Auth.Password = v.(string) },
		extract: func(cfg Config) any { return cfg.Auth.Password },
	},
	{
		key: "log.level", typ: kString, env: "FOLIO_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
	{
		key: "ratelimit.window", typ: kString, env: "FOLIO_RATELIMIT_WINDOW",
		apply:   func(cfg *Config, v any) { cfg.RateLimit.Window = v.(string) },
		extract: func(cfg Config) any { return cfg.RateLimit.Window },
	},
	{
		key: "ratelimit.read_max", typ: kInt, env: "FOLIO_RATELIMIT_READ_MAX",
		apply:   func(cfg *Config, v any) { cfg.RateLimit.ReadMax = v.(int) },
		extract: func(cfg Config) any { return cfg.RateLimit.ReadMax },
	},
	{
		key: "ratelimit.write_max", typ: kInt, env: "FOLIO_RATELIMIT_WRITE_MAX",
		apply:   func(cfg *Config, v any) { cfg.RateLimit.WriteMax = v.(int) },
		extract: func(cfg Config) any { return cfg.RateLimit.WriteMax },
	},
	{
		key: "cors.origins", typ: kString, env: "FOLIO_CORS_ORIGINS",
		apply:   func(cfg *Config, v any) { cfg.CORS.Origins = v.(string) },
		extract: func(cfg Config) any { return cfg.CORS.Origins },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
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
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
