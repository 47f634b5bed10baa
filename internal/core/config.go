package core

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jo-hoe/gojournal/internal/backend/database"
	"github.com/jo-hoe/gojournal/internal/backend/export"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort       = 8080
	DefaultDateLayout = "1/2/2006, 3:04:05 PM"
	DefaultDatabase   = "journal.db"
)

type Database struct {
	Type             string `yaml:"type"`
	ConnectionString string `yaml:"connectionString"`
}

type Export struct {
	JSONFileName     string `yaml:"jsonFileName"`
	DocumentFileName string `yaml:"documentFileName"`
}

type ServiceConfig struct {
	Port       int      `yaml:"port"`
	LogLevel   string   `yaml:"logLevel"`
	Timezone   string   `yaml:"timezone"`
	DateLayout string   `yaml:"dateLayout"`
	Database   Database `yaml:"database"`
	Export     Export   `yaml:"export"`
}

// DefaultConfig returns the configuration used for keys missing from the file.
func DefaultConfig() *ServiceConfig {
	return &ServiceConfig{
		Port:       DefaultPort,
		LogLevel:   "info",
		DateLayout: DefaultDateLayout,
		Database: Database{
			Type:             database.TypeSQLite,
			ConnectionString: DefaultDatabase,
		},
		Export: Export{
			JSONFileName:     export.DefaultJSONFileName,
			DocumentFileName: export.DefaultDocumentFileName,
		},
	}
}

// LoadConfig loads configuration from the specified YAML file
func LoadConfig(configPath string) (*ServiceConfig, error) {
	// Read the config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	// Parse YAML on top of the defaults
	config := DefaultConfig()
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}

	return config, nil
}

// Validate checks the values that would otherwise only fail at first use.
func (c *ServiceConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}

	switch c.Database.Type {
	case database.TypeSQLite, database.TypeBolt, database.TypeRedis:
	default:
		return fmt.Errorf("unsupported database type: %q", c.Database.Type)
	}
	if c.Database.ConnectionString == "" {
		return fmt.Errorf("database connectionString must not be empty")
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if strings.TrimSpace(c.DateLayout) == "" {
		return fmt.Errorf("dateLayout must not be empty")
	}

	return nil
}

// Location resolves the configured timezone; an empty value means the process local zone.
func (c *ServiceConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Level maps logLevel onto a slog level.
func (c *ServiceConfig) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid logLevel %q: %w", c.LogLevel, err)
	}
	return level, nil
}
