// This file defines the configuration structure shared by the planner server
// and the planner CLI.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
	Log         struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Session struct {
		TTL           time.Duration `mapstructure:"ttl"`
		PurgeInterval int           `mapstructure:"purge_interval"` // minutes, 0 disables
	} `mapstructure:"session"`
	CORS struct {
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"cors"`
	Backend struct {
		URL     string        `mapstructure:"url"`
		Timeout time.Duration `mapstructure:"timeout"`
		Rate    float64       `mapstructure:"rate"` // requests per second, 0 disables throttling
		Burst   int           `mapstructure:"burst"`
		Token   string        `mapstructure:"token"`
	} `mapstructure:"backend"`
}

// Load reads configuration from a file named "config.yml" in the current
// directory, applies PLANNER_* environment overrides and unmarshals the
// result into a Config.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with an explicit directory to search for config.yml.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(dir)

	// e.g. PLANNER_DATABASE_PATH overrides `database.path`.
	v.SetEnvPrefix("PLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("backend.token", "PLANNER_TOKEN", "PLANNER_BACKEND_TOKEN")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.Backend.Token == "" {
		config.Backend.Token = ReadToken()
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("environment", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")
	v.SetDefault("database.path", "./planner.db")
	v.SetDefault("session.ttl", 7*24*time.Hour)
	v.SetDefault("session.purge_interval", 60)
	v.SetDefault("cors.allowed_origins", []string{})
	v.SetDefault("backend.url", "http://localhost:8080")
	v.SetDefault("backend.timeout", 15*time.Second)
	v.SetDefault("backend.rate", 10.0)
	v.SetDefault("backend.burst", 5)
	v.SetDefault("backend.token", "")
}

// TokenPath is where `planner login` stores the session token.
func TokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "planner", "token")
}

// ReadToken returns the stored session token, or "" when there is none.
func ReadToken() string {
	data, err := os.ReadFile(TokenPath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SaveToken stores token for later CLI invocations. An empty token removes
// the file.
func SaveToken(token string) error {
	path := TokenPath()
	if token == "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(token+"\n"), 0o600)
}
