package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Supported record store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

const defaultMongoDatabase = "shirtcatalog"

// Database holds record store settings.
type Database struct {
	Driver          string
	DSN             string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Config holds runtime configuration for the catalog service.
type Config struct {
	AppPort        string
	Database       Database
	UploadsDir     string
	MaxUploadBytes int
	RabbitMQURL    string
	// ConsumeEvents makes serve consume and log the catalog queue.
	ConsumeEvents bool
	LogLevel      string
	LogFormat     string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":3000")
	v.SetDefault("DATABASE_DRIVER", DriverMongo)
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017/"+defaultMongoDatabase)
	v.SetDefault("MONGODB_DATABASE", "")
	v.SetDefault("MONGODB_COLLECTION", "shirts")
	v.SetDefault("UPLOADS_DIR", "./uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", 10*1024*1024)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_CONSUME", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load reads configuration from the environment and, when present, a config file.
// configFile may be empty, in which case config.{yaml,toml,json} is looked up in the
// working directory and its absence is not an error.
func Load(v *viper.Viper, configFile string) (Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := Config{
		AppPort: v.GetString("APP_PORT"),
		Database: Database{
			Driver:          strings.ToLower(strings.TrimSpace(v.GetString("DATABASE_DRIVER"))),
			DSN:             v.GetString("DATABASE_DSN"),
			MongoURI:        v.GetString("MONGODB_URI"),
			MongoDatabase:   v.GetString("MONGODB_DATABASE"),
			MongoCollection: v.GetString("MONGODB_COLLECTION"),
		},
		UploadsDir:     v.GetString("UPLOADS_DIR"),
		MaxUploadBytes: v.GetInt("MAX_UPLOAD_BYTES"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		ConsumeEvents:  v.GetBool("RABBITMQ_CONSUME"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
	}
	if cfg.Database.MongoDatabase == "" {
		cfg.Database.MongoDatabase = databaseFromURI(cfg.Database.MongoURI)
	}
	if !strings.HasPrefix(cfg.AppPort, ":") && !strings.Contains(cfg.AppPort, ":") {
		cfg.AppPort = ":" + cfg.AppPort
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration can start a server.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required for driver %q", c.Database.Driver)
		}
	case DriverPostgres, DriverSQLite:
		if c.Database.DSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for driver %q", c.Database.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	if strings.TrimSpace(c.UploadsDir) == "" {
		return fmt.Errorf("UPLOADS_DIR is required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

// databaseFromURI returns the database named in the URI path, if any.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return defaultMongoDatabase
	}
	if name := strings.Trim(u.Path, "/"); name != "" {
		return name
	}
	return defaultMongoDatabase
}
