package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Server holds the coordinator server configuration.
type Server struct {
	Service struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
	} `yaml:"service"`

	HTTP HTTPConfig `yaml:"http"`
	Log  LogConfig  `yaml:"log"`
}

// HTTPConfig represents HTTP server configuration.
type HTTPConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level string `yaml:"level"`
}

// LoadServer loads the server configuration. The file is optional: with an
// empty path, defaults plus environment overrides apply.
func LoadServer(path string) (*Server, error) {
	cfg := &Server{
		HTTP: HTTPConfig{
			Address:         ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
	cfg.Service.Name = "omniconnect-coordinator"
	cfg.Service.Environment = "development"

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvironmentOverrides(cfg)

	return cfg, nil
}

// applyEnvironmentOverrides applies environment overrides.
func applyEnvironmentOverrides(cfg *Server) {
	if addr := os.Getenv("HTTP_ADDRESS"); addr != "" {
		cfg.HTTP.Address = addr
	}

	if env := os.Getenv("ENVIRONMENT"); env != "" {
		cfg.Service.Environment = env
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
}
