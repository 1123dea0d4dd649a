package config

import (
	"log"
	"os"
	"sync"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	MongoDB MongoDBConfig `mapstructure:"mongodb"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Scanner ScannerConfig `mapstructure:"scanner"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int    `mapstructure:"expire"` // seconds
	Issuer string `mapstructure:"issuer"`
}

type MongoDBConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
	Timeout  int    `mapstructure:"timeout"` // seconds
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ScannerConfig struct {
	Concurrency     int    `mapstructure:"concurrency"`
	TimeoutMS       int    `mapstructure:"timeout_ms"`
	BannerTimeoutMS int    `mapstructure:"banner_timeout_ms"`
	DefaultPorts    string `mapstructure:"default_ports"`
	ServiceFile     string `mapstructure:"service_file"`
	Workers         int    `mapstructure:"workers"` // task executor workers
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

var (
	cfg  *Config
	once sync.Once
)

// LoadConfig loads configuration from the given YAML file. A missing
// file is not fatal: the CLI must run on defaults alone.
func LoadConfig(path string) *Config {
	once.Do(func() {
		setDefaults()

		viper.SetConfigFile(path)
		viper.SetConfigType("yaml")

		if err := viper.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
				log.Printf("[Config] %s not found, using defaults", path)
			} else {
				log.Fatalf("Failed to read config file: %v", err)
			}
		}

		cfg = &Config{}
		if err := viper.Unmarshal(cfg); err != nil {
			log.Fatalf("Failed to unmarshal config: %v", err)
		}
	})

	return cfg
}

// GetConfig returns the loaded configuration, loading defaults if
// LoadConfig was never called.
func GetConfig() *Config {
	if cfg == nil {
		return LoadConfig("config/config.yaml")
	}
	return cfg
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")

	viper.SetDefault("jwt.secret", "change-me")
	viper.SetDefault("jwt.expire", 86400)
	viper.SetDefault("jwt.issuer", "porthound")

	viper.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongodb.database", "porthound")
	viper.SetDefault("mongodb.timeout", 10)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("scanner.concurrency", 100)
	viper.SetDefault("scanner.timeout_ms", 1000)
	viper.SetDefault("scanner.banner_timeout_ms", 800)
	viper.SetDefault("scanner.default_ports", "1-1000")
	viper.SetDefault("scanner.service_file", "config/services.yaml")
	viper.SetDefault("scanner.workers", 5)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", "")
}
