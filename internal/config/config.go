package config

import (
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type SyncConfig struct {
	// BaseURL points at the spreadsheet values API; overridable so tests
	// and self-hosted grid stores can stand in for the real service.
	BaseURL string `mapstructure:"base_url"`
	// DebounceMs is the quiet period after the last local change before
	// an automatic push is attempted.
	DebounceMs int `mapstructure:"debounce_ms"`
	// TokenTTLMinutes is the assumed lifetime of an opaque bearer
	// credential whose expiry cannot be read out of the token itself.
	TokenTTLMinutes int `mapstructure:"token_ttl_minutes"`
	TimeoutSeconds  int `mapstructure:"timeout_seconds"`
}

type SnapshotConfig struct {
	Dir string `mapstructure:"dir"`
}

type SecurityConfig struct {
	EncryptionKey string `mapstructure:"encryption_key"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
	Security SecurityConfig `mapstructure:"security"`
	Log      LogConfig      `mapstructure:"log"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		if path == "" {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		} else {
			v.SetConfigFile(path)
		}

		v.SetDefault("server.address", "127.0.0.1")
		v.SetDefault("server.port", 8080)
		v.SetDefault("database.path", "data/expense-tracker.db")
		v.SetDefault("sync.base_url", "https://sheets.googleapis.com/v4/spreadsheets")
		v.SetDefault("sync.debounce_ms", 1500)
		v.SetDefault("sync.token_ttl_minutes", 55)
		v.SetDefault("sync.timeout_seconds", 30)
		v.SetDefault("snapshot.dir", "data/snapshots")
		v.SetDefault("log.level", "info")

		// environment overrides, e.g. ET_SERVER_PORT=9000
		v.SetEnvPrefix("ET")
		v.AutomaticEnv()

		if readErr := v.ReadInConfig(); readErr != nil {
			// a missing file is fine, the defaults stand on their own
			if _, notFound := readErr.(viper.ConfigFileNotFoundError); !notFound {
				err = fmt.Errorf("read config: %w", readErr)
				return
			}
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}
