// Package config loads client settings from defaults, a YAML file, a .env
// file and LINKSHORT_* environment variables, in that order.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"github.com/me/linkshort/internal/store"
	"github.com/me/linkshort/pkg/gateway"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "LINKSHORT_"

// DefaultShortDomain is where share URLs point unless configured.
const DefaultShortDomain = gateway.DefaultBaseURL + "/urls/redirect"

// Config holds client configuration.
type Config struct {
	GatewayURL  string        `yaml:"baseUrl" env:"GATEWAY_URL, overwrite"`
	Timeout     time.Duration `yaml:"timeout" env:"TIMEOUT, overwrite"`
	Insecure    bool          `yaml:"insecure" env:"INSECURE, overwrite"`
	ShortDomain string        `yaml:"shortDomain" env:"SHORT_DOMAIN, overwrite"`

	Session SessionConfig `yaml:"session"`

	LogLevel  string `yaml:"logLevel" env:"LOG_LEVEL, overwrite"`
	LogFormat string `yaml:"logFormat" env:"LOG_FORMAT, overwrite"`

	QRSize int `yaml:"qrSize" env:"QR_SIZE, overwrite"`
}

// SessionConfig selects where the session is persisted.
type SessionConfig struct {
	Backend string      `yaml:"backend" env:"SESSION_STORE, overwrite"`
	Path    string      `yaml:"path" env:"SESSION_PATH, overwrite"`
	Profile string      `yaml:"profile" env:"PROFILE, overwrite"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig is used when Session.Backend is "redis".
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR, overwrite"`
	Username string `yaml:"username" env:"REDIS_USERNAME, overwrite"`
	Password string `yaml:"password" env:"REDIS_PASSWORD, overwrite"`
	DB       int    `yaml:"db" env:"REDIS_DB, overwrite"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		GatewayURL:  gateway.DefaultBaseURL,
		ShortDomain: DefaultShortDomain,
		Session: SessionConfig{
			Backend: store.BackendFile,
			Profile: "default",
			Redis:   RedisConfig{Addr: "localhost:6379"},
		},
		LogLevel:  "warn",
		LogFormat: "text",
		QRSize:    200,
	}
}

// Dir returns ~/.linkshort.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".linkshort"
	}
	return filepath.Join(home, ".linkshort")
}

// DefaultFile returns the config file read when none is given.
func DefaultFile() string {
	return filepath.Join(Dir(), "config.yaml")
}

// LoadOptions controls where Load reads from.
type LoadOptions struct {
	// File is the YAML config path. Empty means DefaultFile, which may be
	// absent; an explicit path must exist.
	File string

	// EnvFile is a dotenv file. Empty means ".env" in the working
	// directory, which may be absent.
	EnvFile string

	// Lookuper replaces the process environment, for tests.
	Lookuper envconfig.Lookuper
}

// Load builds the configuration. Later sources override earlier ones.
func Load(ctx context.Context, opts LoadOptions) (Config, error) {
	cfg := Default()

	file, required := opts.File, true
	if file == "" {
		file, required = DefaultFile(), false
	}
	if err := cfg.loadFile(file, required); err != nil {
		return Config{}, err
	}

	envFile, required := opts.EnvFile, true
	if envFile == "" {
		envFile, required = ".env", false
	}
	dotenv, err := readDotenv(envFile, required)
	if err != nil {
		return Config{}, err
	}

	base := opts.Lookuper
	if base == nil {
		base = envconfig.OsLookuper()
	}
	lookuper := envconfig.PrefixLookuper(EnvPrefix, envconfig.MultiLookuper(base, envconfig.MapLookuper(dotenv)))
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// readDotenv parses a dotenv file without touching the process environment.
func readDotenv(path string, required bool) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return vars, nil
}

// Validate reports settings that cannot work.
func (c Config) Validate() error {
	if strings.TrimSpace(c.GatewayURL) == "" {
		return errors.New("gateway URL is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %s", c.Timeout)
	}
	switch strings.ToLower(c.Session.Backend) {
	case store.BackendFile, store.BackendSQLite, store.BackendRedis, store.BackendMemory:
	default:
		return fmt.Errorf("%w: %q", store.ErrUnknownBackend, c.Session.Backend)
	}
	return nil
}

// Gateway returns the API client configuration.
func (c Config) Gateway() gateway.Config {
	gc := gateway.DefaultConfig().WithBaseURL(c.GatewayURL).WithTimeout(c.Timeout)
	gc.InsecureSkipTLS = c.Insecure
	return gc
}

// Store returns the session store options, filling in the default path for
// the selected backend.
func (c Config) Store() store.Options {
	backend := strings.ToLower(c.Session.Backend)
	path := c.Session.Path
	if path == "" {
		switch backend {
		case store.BackendSQLite:
			path = filepath.Join(Dir(), "session.db")
		default:
			path = filepath.Join(Dir(), "session.json")
		}
	}
	return store.Options{
		Backend:   backend,
		Path:      path,
		Namespace: c.Session.Profile,
		Redis: store.RedisOptions{
			Addr:     c.Session.Redis.Addr,
			Username: c.Session.Redis.Username,
			Password: c.Session.Redis.Password,
			DB:       c.Session.Redis.DB,
		},
	}
}
