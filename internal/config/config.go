// Package config loads the service configuration from the environment.
//
// Variables carry the PIZZA_ prefix. The first underscore after the prefix
// separates the section from the key, so PIZZA_SERVER_PORT maps to server.port
// and PIZZA_STORE_ORDERS_TABLE to store.orders_table. A .env file in the
// working directory is loaded first when present.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PIZZA_"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverDynamoDB = "dynamodb"
	DriverRedis    = "redis"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig `koanf:"server"`
	Store  StoreConfig  `koanf:"store"`
	Auth   AuthConfig   `koanf:"auth"`
	CORS   CORSConfig   `koanf:"cors"`
	Log    LogConfig    `koanf:"log"`
}

// ServerConfig holds HTTP server settings. Timeouts are in seconds.
type ServerConfig struct {
	Host            string `koanf:"host"`
	Port            string `koanf:"port" validate:"required,numeric"`
	ReadTimeout     int    `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    int    `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout int    `koanf:"shutdown_timeout" validate:"gt=0"`
}

// StoreConfig selects and configures the key-value store
type StoreConfig struct {
	Driver       string `koanf:"driver" validate:"oneof=memory dynamodb redis"`
	CatalogTable string `koanf:"catalog_table" validate:"required"`
	OrdersTable  string `koanf:"orders_table" validate:"required"`
	AWSRegion    string `koanf:"aws_region"`
	Endpoint     string `koanf:"endpoint" validate:"omitempty,url"`
	RedisAddr    string `koanf:"redis_addr" validate:"required_if=Driver redis"`
	RedisDB      int    `koanf:"redis_db" validate:"gte=0"`
}

// AuthConfig lists the accepted API keys. An empty list disables the check.
type AuthConfig struct {
	APIKeys []string `koanf:"api_keys"`
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins" validate:"min=1"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15,
			WriteTimeout:    15,
			ShutdownTimeout: 30,
		},
		Store: StoreConfig{
			Driver:       DriverMemory,
			CatalogTable: "pizza-store",
			OrdersTable:  "pizza-orders",
			RedisAddr:    "localhost:6379",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// list-valued keys, given as comma-separated strings in the environment
var listKeys = []string{"auth.api_keys", "cors.allowed_origins"}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	for _, key := range listKeys {
		if !k.Exists(key) {
			continue
		}
		if err := k.Set(key, splitList(k.String(key))); err != nil {
			return nil, fmt.Errorf("parse %s: %w", key, err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

// Addr is the listen address of the HTTP server
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// envKey maps PIZZA_STORE_ORDERS_TABLE to store.orders_table.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.Replace(s, "_", ".", 1)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
