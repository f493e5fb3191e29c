package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/compasshq/compass-mcp/internal/engine"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
	Engine    engine.Settings `yaml:"engine"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "stdio" or "http"
}

type AuthConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads configuration from an optional YAML file and environment variables.
// Environment variables win over the file.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "compass.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		Engine: engine.Settings{
			Provider: "heuristic",
		},
	}

	if path := os.Getenv("COMPASS_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("COMPASS_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("COMPASS_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid COMPASS_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("COMPASS_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("COMPASS_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("COMPASS_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if mode := os.Getenv("COMPASS_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if authStr := os.Getenv("COMPASS_AUTH_ENABLED"); authStr != "" {
		enabled, err := strconv.ParseBool(authStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid COMPASS_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = enabled
	}
	if provider := os.Getenv("COMPASS_ENGINE_PROVIDER"); provider != "" {
		cfg.Engine.Provider = provider
	}
	if model := os.Getenv("COMPASS_ENGINE_MODEL"); model != "" {
		cfg.Engine.Model = model
	}
	if key := os.Getenv("COMPASS_ENGINE_API_KEY"); key != "" {
		cfg.Engine.APIKey = key
	}
	if capStr := os.Getenv("COMPASS_ENGINE_QUESTION_CAP"); capStr != "" {
		n, err := strconv.Atoi(capStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid COMPASS_ENGINE_QUESTION_CAP: %w", err)
		}
		cfg.Engine.QuestionCap = n
	}
	if winStr := os.Getenv("COMPASS_ENGINE_DIMINISHING_WINDOW"); winStr != "" {
		n, err := strconv.Atoi(winStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid COMPASS_ENGINE_DIMINISHING_WINDOW: %w", err)
		}
		cfg.Engine.DiminishingWindow = n
	}
	if thrStr := os.Getenv("COMPASS_ENGINE_DIMINISHING_THRESHOLD"); thrStr != "" {
		f, err := strconv.ParseFloat(thrStr, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid COMPASS_ENGINE_DIMINISHING_THRESHOLD: %w", err)
		}
		cfg.Engine.DiminishingThreshold = f
	}

	switch cfg.Transport.Mode {
	case "stdio", "http":
	default:
		return Config{}, fmt.Errorf("invalid transport mode %q (want stdio or http)", cfg.Transport.Mode)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
