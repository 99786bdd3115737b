package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config holds service-level settings. Values come from the environment,
// optionally overridden by a YAML file named in CONFIG_FILE.
type Config struct {
	Port            int
	LogLevel        string
	EventBusEnabled bool
	RedisHost       string
	RedisPort       int
	TradeStream     string
}

func Load() *Config {
	cfg := &Config{
		Port:            getEnvInt("PORT", 5001),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		EventBusEnabled: getEnvBool("EVENT_BUS_ENABLED", false),
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnvInt("REDIS_PORT", 6379),
		TradeStream:     getEnv("TRADE_STREAM", "trade_events"),
	}

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to load config file")
		}
	}

	return cfg
}

type fileConfig struct {
	Port     *int    `yaml:"port"`
	LogLevel *string `yaml:"log_level"`
	EventBus struct {
		Enabled     *bool   `yaml:"enabled"`
		RedisHost   *string `yaml:"redis_host"`
		RedisPort   *int    `yaml:"redis_port"`
		TradeStream *string `yaml:"trade_stream"`
	} `yaml:"event_bus"`
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.Port != nil {
		c.Port = *fc.Port
	}
	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
	if fc.EventBus.Enabled != nil {
		c.EventBusEnabled = *fc.EventBus.Enabled
	}
	if fc.EventBus.RedisHost != nil {
		c.RedisHost = *fc.EventBus.RedisHost
	}
	if fc.EventBus.RedisPort != nil {
		c.RedisPort = *fc.EventBus.RedisPort
	}
	if fc.EventBus.TradeStream != nil {
		c.TradeStream = *fc.EventBus.TradeStream
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
