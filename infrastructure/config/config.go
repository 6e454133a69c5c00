package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	domaincfg "canvas-backend/domain/config"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"serverAddress"`
	Environment   string `yaml:"environment"`

	// Persistence
	SnapshotDir string `yaml:"snapshotDir"`

	// Logging
	LogLevel string `yaml:"logLevel"`

	// Authentication
	JWTSecret string `yaml:"jwtSecret"`
	JWTIssuer string `yaml:"jwtIssuer"`

	// Feature flags
	EnableCORS bool `yaml:"enableCors"`
	EnableAuth bool `yaml:"enableAuth"`

	// Engine limits
	Limits domaincfg.DomainConfig `yaml:"limits"`
}

// LoadConfig loads configuration from environment variables, with an
// optional YAML file (CONFIG_FILE) overlaying the defaults before the
// environment is applied. Environment variables always win.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: ":8080",
		Environment:   "development",
		SnapshotDir:   "./data/snapshots",
		LogLevel:      "info",
		JWTIssuer:     "canvas-backend",
		EnableCORS:    true,
		Limits:        *domaincfg.DefaultDomainConfig(),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is an alias for LoadConfig for backwards compatibility
func Load() (*Config, error) {
	return LoadConfig()
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.SnapshotDir = getEnv("SNAPSHOT_DIR", c.SnapshotDir)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
	c.EnableAuth = getEnvBool("ENABLE_AUTH", c.EnableAuth)

	c.Limits.HistoryLimit = getEnvInt("HISTORY_LIMIT", c.Limits.HistoryLimit)
	c.Limits.TrashLimit = getEnvInt("TRASH_LIMIT", c.Limits.TrashLimit)
	c.Limits.MaxContextDepth = getEnvInt("MAX_CONTEXT_DEPTH", c.Limits.MaxContextDepth)
	c.Limits.ChunkTokenBudget = getEnvInt("CHUNK_TOKEN_BUDGET", c.Limits.ChunkTokenBudget)
	c.Limits.ConversationTail = getEnvInt("CONVERSATION_TAIL", c.Limits.ConversationTail)
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.JWTSecret == "" && c.EnableAuth {
			return fmt.Errorf("JWT_SECRET is required in production when auth is enabled")
		}
	}
	if c.SnapshotDir == "" {
		return fmt.Errorf("SNAPSHOT_DIR must not be empty")
	}
	return c.Limits.Validate()
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
