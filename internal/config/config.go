package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	API           APIConfig      `mapstructure:"api"`
	Network       NetworkConfig  `mapstructure:"network"`
	Downloads     DownloadConfig `mapstructure:"downloads"`
	Log           LogConfig      `mapstructure:"log"`
	Server        ServerConfig   `mapstructure:"server"`
	Database      DatabaseConfig `mapstructure:"database"`
	Redis         RedisConfig    `mapstructure:"redis"`
	Notifications bool           `mapstructure:"notifications"`
}

// APIConfig holds the backend endpoints used by the client
type APIConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	UploadsURL string `mapstructure:"uploads_url"`
	PageSize   int    `mapstructure:"page_size"`
}

// NetworkConfig holds network settings
type NetworkConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	RetryBaseDelay  time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxDelay   time.Duration `mapstructure:"retry_max_delay"`
	RetryMultiplier float64       `mapstructure:"retry_multiplier"`
	UserAgent       string        `mapstructure:"user_agent"`
}

// DownloadConfig holds download settings
type DownloadConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// ServerConfig holds settings for `pavilion serve`
type ServerConfig struct {
	Addr          string  `mapstructure:"addr"`
	UploadDir     string  `mapstructure:"upload_dir"`
	MaxUploadSize int64   `mapstructure:"max_upload_size"`
	RateLimit     float64 `mapstructure:"rate_limit"` // requests per second, 0 disables
	Release       bool    `mapstructure:"release"`
}

// DatabaseConfig selects the server's storage backend
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite or postgres
	DSN    string `mapstructure:"dsn"`
}

// RedisConfig holds the optional book cache settings
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

var cfg *Config

// GetConfigDir returns the configuration directory path
func GetConfigDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pavilion")
}

// GetDBPath returns the default sqlite database path used by the server
func GetDBPath() string {
	return filepath.Join(GetConfigDir(), "pavilion.db")
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// Init initializes the configuration
func Init(cfgFile string) error {
	// .env values become ordinary environment variables
	_ = godotenv.Load()

	viper.SetDefault("api.base_url", "http://localhost:8080/api")
	viper.SetDefault("api.uploads_url", "http://localhost:8080/uploads")
	viper.SetDefault("api.page_size", 10)
	viper.SetDefault("network.timeout", 30*time.Second)
	viper.SetDefault("network.retry_attempts", 1)
	viper.SetDefault("network.retry_base_delay", 500*time.Millisecond)
	viper.SetDefault("network.retry_max_delay", 10*time.Second)
	viper.SetDefault("network.retry_multiplier", 2.0)
	viper.SetDefault("network.user_agent", "pavilion/"+Version)
	viper.SetDefault("downloads.path", "~/Downloads/books")
	viper.SetDefault("notifications", false)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.pretty", true)
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.upload_dir", "./uploads")
	viper.SetDefault("server.max_upload_size", 100<<20) // 100MB
	viper.SetDefault("server.rate_limit", 0)
	viper.SetDefault("server.release", false)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttl", 5*time.Minute)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(GetConfigDir())
	}

	// Environment variable overrides
	viper.SetEnvPrefix("PAVILION")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()

	cfg = nil
	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		cfg = &Config{}
		viper.Unmarshal(cfg)
		cfg.Downloads.Path = expandPath(cfg.Downloads.Path)
		cfg.Server.UploadDir = expandPath(cfg.Server.UploadDir)
		if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
			cfg.Database.DSN = GetDBPath()
		}
		cfg.Database.DSN = expandPath(cfg.Database.DSN)
		if cfg.API.PageSize <= 0 {
			cfg.API.PageSize = 10
		}
	}
	return cfg
}

// Set sets a configuration value
func Set(key, value string) error {
	viper.Set(key, value)

	// Ensure config directory exists
	configDir := GetConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	// Reset cached config
	cfg = nil

	return viper.WriteConfigAs(GetConfigPath())
}

// GetValue retrieves a configuration value
func GetValue(key string) interface{} {
	return viper.Get(key)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
