package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Sentences struct {
		Path string `yaml:"path"`
	} `yaml:"sentences"`

	Auth struct {
		JWTSecret       string   `yaml:"jwt_secret"`
		TokenTTLMinutes int      `yaml:"token_ttl_minutes"`
		// AllowedUsers are seeded into the allow-list table at startup
		// (idempotent). The table remains the source of truth.
		AllowedUsers []string `yaml:"allowed_users"`
	} `yaml:"auth"`

	Annotation struct {
		// TicketThreshold is the number of annotations per reward ticket.
		TicketThreshold int `yaml:"ticket_threshold"`
		// FlushThreshold is the buffered record count that triggers a
		// background flush.
		FlushThreshold int `yaml:"flush_threshold"`
		// FlushQueueSize bounds the background flush queue. Jobs beyond
		// it are dropped; persistence is best-effort by design.
		FlushQueueSize int `yaml:"flush_queue_size"`
	} `yaml:"annotation"`
}

// LoadConfig loads configuration from YAML file
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	// Set defaults
	if config.Server.Port == "" {
		config.Server.Port = "8003"
	}

	if config.Database.Path == "" {
		config.Database.Path = "./data/annotations.db"
	}

	if config.Sentences.Path == "" {
		config.Sentences.Path = "./data/clean/processed_sentences.txt"
	}

	if config.Auth.TokenTTLMinutes == 0 {
		config.Auth.TokenTTLMinutes = 720
	}

	if config.Annotation.TicketThreshold == 0 {
		config.Annotation.TicketThreshold = 30
	}

	if config.Annotation.FlushThreshold == 0 {
		config.Annotation.FlushThreshold = 10
	}

	if config.Annotation.FlushQueueSize == 0 {
		config.Annotation.FlushQueueSize = 64
	}

	// Expand environment variables in secrets
	config.Auth.JWTSecret = os.ExpandEnv(config.Auth.JWTSecret)

	return config, nil
}
