// Package config loads the companion's settings from a TOML file, a .env
// file, the environment and command-line flags, in that order of precedence
// from lowest to highest.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

const (
	DefaultAPIURL   = "http://localhost:5000"
	DefaultPort     = "3001"
	DefaultDatabase = "./minijira.db"
	DefaultPageSize = 100
)

// Environment variables read by Load.
const (
	EnvAPIURL         = "MINIJIRA_API_URL"
	EnvPort           = "PORT"
	EnvDatabase       = "MINIJIRA_DB"
	EnvLogLevel       = "MINIJIRA_LOG_LEVEL"
	EnvAllowedOrigins = "MINIJIRA_ALLOWED_ORIGINS"
	EnvStaticDir      = "MINIJIRA_STATIC_DIR"
)

type Config struct {
	// APIURL is the mini-jira server root. The /api prefix is added by
	// APIBase.
	APIURL         string   `toml:"api-url"`
	Port           string   `toml:"port"`
	Database       string   `toml:"database"`
	LogLevel       string   `toml:"log-level"`
	AllowedOrigins []string `toml:"allowed-origins"`
	StaticDir      string   `toml:"static-dir"`
	PageSize       int      `toml:"page-size"`
}

func Default() Config {
	return Config{
		APIURL:         DefaultAPIURL,
		Port:           DefaultPort,
		Database:       DefaultDatabase,
		LogLevel:       "info",
		AllowedOrigins: []string{"*"},
		PageSize:       DefaultPageSize,
	}
}

// DefaultPath is ~/.config/minijira/config.toml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "minijira", "config.toml"), nil
}

// Load reads the TOML file at path (DefaultPath when empty), then envFile,
// then the environment. Missing files are not an error.
func Load(path, envFile string) (Config, error) {
	cfg := Default()

	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = defaultPath
	}
	if err := loadFile(path, &cfg); err != nil {
		return cfg, err
	}

	if envFile != "" {
		if err := LoadEnv(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg.applyEnv()

	return cfg, cfg.Validate()
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if value := os.Getenv(EnvAPIURL); value != "" {
		c.APIURL = value
	}
	if value := os.Getenv(EnvPort); value != "" {
		c.Port = value
	}
	if value := os.Getenv(EnvDatabase); value != "" {
		c.Database = value
	}
	if value := os.Getenv(EnvLogLevel); value != "" {
		c.LogLevel = value
	}
	if value := os.Getenv(EnvAllowedOrigins); value != "" {
		c.AllowedOrigins = splitList(value)
	}
	if value := os.Getenv(EnvStaticDir); value != "" {
		c.StaticDir = value
	}
}

// Flag names registered by RegisterFlags.
const (
	FlagAPIURL   = "api-url"
	FlagPort     = "port"
	FlagDatabase = "db"
	FlagLogLevel = "log-level"
	FlagOrigins  = "allowed-origins"
	FlagStatic   = "static-dir"
)

// RegisterFlags adds the override flags to flags. Defaults are left empty
// so that only flags the user set take effect in ApplyFlags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String(FlagAPIURL, "", "mini-jira server URL (default "+DefaultAPIURL+")")
	flags.String(FlagPort, "", "port to listen on (default "+DefaultPort+")")
	flags.String(FlagDatabase, "", "path to the local database (default "+DefaultDatabase+")")
	flags.String(FlagLogLevel, "", "log level: debug, info, warn or error")
	flags.StringSlice(FlagOrigins, nil, "origins allowed by CORS")
	flags.String(FlagStatic, "", "directory of static files to serve")
}

// ApplyFlags copies every flag the user changed onto the config.
func (c *Config) ApplyFlags(flags *pflag.FlagSet) error {
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case FlagAPIURL:
			c.APIURL = f.Value.String()
		case FlagPort:
			c.Port = f.Value.String()
		case FlagDatabase:
			c.Database = f.Value.String()
		case FlagLogLevel:
			c.LogLevel = f.Value.String()
		case FlagOrigins:
			c.AllowedOrigins, err = flags.GetStringSlice(FlagOrigins)
		case FlagStatic:
			c.StaticDir = f.Value.String()
		}
	})
	if err != nil {
		return err
	}
	return c.Validate()
}

func (c Config) Validate() error {
	parsed, err := url.Parse(c.APIURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid api url %q", c.APIURL)
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if strings.TrimSpace(c.Database) == "" {
		return errors.New("database path is empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("invalid page size %d", c.PageSize)
	}
	return nil
}

// APIBase is the API root with the /api prefix every endpoint lives under.
func (c Config) APIBase() string {
	base := strings.TrimRight(c.APIURL, "/")
	if strings.HasSuffix(base, "/api") {
		return base
	}
	return base + "/api"
}

// Addr is the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Level is the configured slog level.
func (c Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func ParseLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", value)
	}
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
