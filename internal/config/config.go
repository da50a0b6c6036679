package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type StorageConfig struct {
	DataDir string
}

// AuthConfig holds the single shared credential. Email is also the key of
// the profile document the server manages.
type AuthConfig struct {
	Email    string
	User     string
	Password string
}

type LogConfig struct {
	Level string
}

type RateLimitConfig struct {
	Window   string
	ReadMax  int
	WriteMax int
}

type CORSConfig struct {
	Origins string
}

const defaultRateWindow = 15 * time.Minute

// WindowDuration parses Window, falling back to 15 minutes when it is empty,
// malformed or not positive.
func (c RateLimitConfig) WindowDuration() time.Duration {
	d, err := time.ParseDuration(c.Window)
	if err != nil || d <= 0 {
		return defaultRateWindow
	}
	return d
}

// AllowedOrigins splits the comma-separated origin list.
func (c CORSConfig) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.Origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 5000,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			Window:   "15m",
			ReadMax:  100,
			WriteMax: 20,
		},
		CORS: CORSConfig{
			Origins: "http://localhost:3000",
		},
	}
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/folio/config.json, then applies FOLIO_* environment
// variable overrides. The password is a secret: it comes from
// FOLIO_AUTH_PASSWORD or, failing that, the local secrets file.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), secretsFile{})
}

// Resolve is Load without the required-key check. Used by `folio config show`
// on a host that is not fully configured yet.
func Resolve() (Config, error) {
	return resolveWith(newPlatformBackend(), secretsFile{})
}

func resolveWith(b ConfigBackend, secrets secretSource) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.Auth.Password == "" {
		pw, err := secrets.Password()
		if err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] could not read stored password: %v\n", err)
		}
		cfg.Auth.Password = pw
	}
	return cfg, nil
}

func loadWith(b ConfigBackend, secrets secretSource) (Config, error) {
	cfg, err := resolveWith(b, secrets)
	if err != nil {
		return Config{}, err
	}

	var missing []string
	if strings.TrimSpace(cfg.Auth.Email) == "" {
		missing = append(missing, "auth email (FOLIO_AUTH_EMAIL or `folio config set auth.email`)")
	}
	if cfg.Auth.Password == "" {
		missing = append(missing, "auth password (FOLIO_AUTH_PASSWORD or `folio config set-password`)")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}
