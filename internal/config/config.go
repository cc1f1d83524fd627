// Package config resolves settings from defaults, an optional
// phrasebook.yaml and PHRASEBOOK_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	AppName    = "phrasebook"
	AppVersion = "1.0.0"
	EnvPrefix  = "PHRASEBOOK"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverNone     = "none"
)

type Config struct {
	Addr            string        `mapstructure:"addr"`
	DataDir         string        `mapstructure:"data_dir"`
	CachePath       string        `mapstructure:"cache_path"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	Remote          RemoteConfig  `mapstructure:"remote"`

	cacheDerived bool
}

// RemoteConfig selects the remote store. Driver "none" runs on the local
// cache alone.
type RemoteConfig struct {
	Driver    string        `mapstructure:"driver"`
	DSN       string        `mapstructure:"dsn"`
	UserEmail string        `mapstructure:"user_email"`
	Timeout   time.Duration `mapstructure:"timeout"`
	QPS       int           `mapstructure:"qps"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("cache_path", "")
	v.SetDefault("refresh_interval", 15*time.Minute)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("remote.driver", DriverSQLite)
	v.SetDefault("remote.dsn", "")
	v.SetDefault("remote.user_email", "local@phrasebook")
	v.SetDefault("remote.timeout", 10*time.Second)
	v.SetDefault("remote.qps", 10)
}

// Load reads the configuration. An empty file means the default search
// path; a named file must exist.
func Load(file string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, AppName))
		} else if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", AppName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// the short form predates the remote section
	if err := v.BindEnv("remote.user_email", EnvPrefix+"_REMOTE_USER_EMAIL", EnvPrefix+"_USER_EMAIL"); err != nil {
		return Config{}, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.DataDir = filepath.Clean(c.DataDir)
	c.cacheDerived = c.CachePath == ""
	if c.cacheDerived {
		c.CachePath = filepath.Join(c.DataDir, "keywords_data.json")
	}
	c.CachePath = filepath.Clean(c.CachePath)
	c.Remote.Driver = strings.ToLower(strings.TrimSpace(c.Remote.Driver))
	c.Remote.UserEmail = strings.TrimSpace(c.Remote.UserEmail)
	c.LogFormat = strings.ToLower(c.LogFormat)
}

// WithDataDir moves the data directory. A cache path that was derived from
// the old directory follows it.
func (c Config) WithDataDir(dir string) Config {
	c.DataDir = filepath.Clean(dir)
	if c.cacheDerived {
		c.CachePath = filepath.Join(c.DataDir, "keywords_data.json")
	}
	return c
}

// SQLitePath is where the sqlite remote store lives when no DSN is given.
func (c Config) SQLitePath() string {
	if c.Remote.DSN != "" {
		return c.Remote.DSN
	}
	return filepath.Join(c.DataDir, "remote.db")
}

func (c Config) Validate() error {
	switch c.Remote.Driver {
	case DriverPostgres:
		if c.Remote.DSN == "" {
			return errors.New("remote.dsn is required for the postgres driver")
		}
	case DriverSQLite, DriverNone:
	default:
		return fmt.Errorf("unknown remote.driver %q", c.Remote.Driver)
	}
	if c.Remote.Driver != DriverNone {
		if c.Remote.UserEmail == "" {
			return errors.New("remote.user_email must not be empty")
		}
		if c.Remote.Timeout <= 0 {
			return errors.New("remote.timeout must be positive")
		}
		if c.Remote.QPS <= 0 {
			return errors.New("remote.qps must be positive")
		}
	}
	if c.RefreshInterval < 0 {
		return errors.New("refresh_interval must not be negative")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	return nil
}
