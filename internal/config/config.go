package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const EnvPrefix = "FOCUSLOG"

const (
	BackendSQLite = "sqlite"
	BackendDiskv  = "diskv"
)

// Config is the resolved runtime configuration.
type Config struct {
	DataDir            string `mapstructure:"data_dir"`
	CollectionsBackend string `mapstructure:"collections_backend"`
	LogLevel           string `mapstructure:"log_level"`
	LogFile            string `mapstructure:"log_file"`
	JSON               bool   `mapstructure:"json"`
}

// DefaultDataDir returns <UserConfigDir>/focuslog.
func DefaultDataDir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "focuslog"), nil
}

// New returns a viper instance with defaults and FOCUSLOG_* environment
// overrides applied.
func New() *viper.Viper {
	v := viper.New()
	if dir, err := DefaultDataDir(); err == nil {
		v.SetDefault("data_dir", dir)
	}
	v.SetDefault("collections_backend", BackendSQLite)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("json", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configFile, or config.yaml in the data directory when configFile
// is empty. A missing default file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		path, err := homedir.Expand(configFile)
		if err != nil {
			return nil, fmt.Errorf("expand config path: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		dir, err := homedir.Expand(v.GetString("data_dir"))
		if err != nil {
			return nil, fmt.Errorf("expand data dir: %w", err)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	var err error
	if c.DataDir, err = homedir.Expand(c.DataDir); err != nil {
		return nil, fmt.Errorf("expand data dir: %w", err)
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, "focuslog.log")
	}
	if c.LogFile, err = homedir.Expand(c.LogFile); err != nil {
		return nil, fmt.Errorf("expand log file: %w", err)
	}
	c.CollectionsBackend = strings.ToLower(strings.TrimSpace(c.CollectionsBackend))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("config: data_dir is empty")
	}
	switch c.CollectionsBackend {
	case BackendSQLite, BackendDiskv:
	default:
		return fmt.Errorf("config: unknown collections_backend %q (want %s or %s)", c.CollectionsBackend, BackendSQLite, BackendDiskv)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}

// CollectionsDir is where the diskv backend keeps day collections.
func (c *Config) CollectionsDir() string {
	return filepath.Join(c.DataDir, "collections")
}
