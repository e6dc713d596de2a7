// Package config loads settings from defaults, an optional YAML file and
// TASKBOARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sadopc/taskboard/internal/logging"
	"github.com/sadopc/taskboard/internal/metrics"
	"github.com/sadopc/taskboard/internal/store"
)

const envPrefix = "TASKBOARD"

type Config struct {
	Server   ServerConfig `mapstructure:"server"`
	Client   ClientConfig `mapstructure:"client"`
	Log      LogConfig    `mapstructure:"log"`
	Chart    ChartConfig  `mapstructure:"chart"`
	Timezone string       `mapstructure:"timezone"`
}

type ServerConfig struct {
	Addr   string `mapstructure:"addr"`
	DBPath string `mapstructure:"db_path"`
}

type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type ChartConfig struct {
	Window string `mapstructure:"window"`
}

// Dir returns ~/.config/taskboard
func Dir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "taskboard"), nil
}

func setDefaults(v *viper.Viper) {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		dbPath = "taskboard.db"
	}
	logPath, err := logging.DefaultLogPath()
	if err != nil {
		logPath = "taskboard.log"
	}

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.db_path", dbPath)
	v.SetDefault("client.base_url", "http://localhost:3000/api")
	v.SetDefault("client.timeout", time.Duration(0))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", logPath)
	v.SetDefault("chart.window", string(metrics.DefaultWindow))
	v.SetDefault("timezone", "Local")
}

// Load reads configuration. With an empty path it looks for config.yaml in
// Dir() and tolerates its absence; an explicit path must exist.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := metrics.ParseWindow(c.Chart.Window); err != nil {
		return fmt.Errorf("chart.window: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	if c.Client.Timeout < 0 {
		return fmt.Errorf("client.timeout: must not be negative")
	}
	return nil
}

// Location resolves Timezone; "" and "Local" mean the machine zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Window is the configured default chart window.
func (c Config) Window() metrics.Window {
	w, err := metrics.ParseWindow(c.Chart.Window)
	if err != nil {
		return metrics.DefaultWindow
	}
	return w
}
