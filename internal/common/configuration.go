// Package common provides configuration management and the shared error
// taxonomy for ArchiveGraph components. Configuration supports YAML files,
// environment variable overrides and sensible defaults for development.
package common

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete configuration for a component embedding the
// authorization core. It selects and parameterizes the graph backend.
type Config struct {
	Graph    GraphConfig    `mapstructure:"graph" json:"graph"`       // Graph backend selection
	Postgres PostgresConfig `mapstructure:"postgres" json:"postgres"` // PostgreSQL graph settings
	Mongo    MongoConfig    `mapstructure:"mongo" json:"mongo"`       // MongoDB graph settings
}

// GraphConfig selects the graph substrate backend.
type GraphConfig struct {
	// Backend is one of "inmemory", "postgresql" or "mongodb".
	Backend string `mapstructure:"backend" json:"backend"`
}

// PostgresConfig contains PostgreSQL connection parameters, including
// connection pooling settings.
type PostgresConfig struct {
	Host                   string `mapstructure:"host" json:"host"`
	Port                   int    `mapstructure:"port" json:"port"`
	User                   string `mapstructure:"user" json:"user"`
	Password               string `mapstructure:"password" json:"password"`
	DBName                 string `mapstructure:"dbname" json:"dbname"`
	MaxOpenConnections     int    `mapstructure:"maxOpenConnections" json:"maxOpenConnections"`
	MaxIdleConnections     int    `mapstructure:"maxIdleConnections" json:"maxIdleConnections"`
	ConnMaxLifetimeMinutes int    `mapstructure:"connMaxLifetimeMinutes" json:"connMaxLifetimeMinutes"`
}

// DSN renders the PostgreSQL connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// MongoConfig contains MongoDB connection parameters.
type MongoConfig struct {
	URI      string `mapstructure:"uri" json:"uri"`
	Database string `mapstructure:"database" json:"database"`
}

// LoadConfig loads the configuration from a YAML file and environment
// variables.
//
// Sources by precedence: environment variables, then the configuration file
// (if provided), then defaults. Environment variables use underscore
// notation (e.g. GRAPH_BACKEND for graph.backend).
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		log.Printf("📁 Loading config from file: %s", configPath)
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		log.Println("📁 No config file provided — loading from environment variables only")
	}

	// Override config with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	log.Println("✅ Configuration loaded successfully")
	PrintConfiguration(cfg)
	return cfg, nil
}

// setDefaults configures defaults that let the engine run in development
// against the in-memory backend without any configuration at all.
func setDefaults(v *viper.Viper) {
	v.SetDefault("graph.backend", "inmemory")

	// PostgreSQL defaults
	v.SetDefault("postgres.host", "db")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "admin")
	v.SetDefault("postgres.password", "admin123")
	v.SetDefault("postgres.dbname", "archivegraphDB")
	v.SetDefault("postgres.maxOpenConnections", 50)
	v.SetDefault("postgres.maxIdleConnections", 50)
	v.SetDefault("postgres.connMaxLifetimeMinutes", 5)

	// MongoDB defaults
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "archivegraph")
}

// PrintConfiguration prints the current configuration with sensitive data
// redacted, useful for verifying configuration during startup.
func PrintConfiguration(cfg *Config) {
	cfgCopy := *cfg

	if cfg.Postgres.Host != "" {
		cfgCopy.Postgres.Host = "****"
		cfgCopy.Postgres.User = "****"
		cfgCopy.Postgres.Password = "****"
	}
	if cfg.Mongo.URI != "" {
		cfgCopy.Mongo.URI = "****"
	}

	configJSON, err := json.MarshalIndent(cfgCopy, "", "  ")
	if err != nil {
		log.Printf("Unable to marshal configuration to JSON: %v", err)
		return
	}

	log.Printf("📜 Loaded configuration:\n%s", string(configJSON))
}
