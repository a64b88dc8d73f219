package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Environment     string
	ServerPort      int
	StoreDriver     string
	MongoURI        string
	MongoDatabase   string
	DBHost          string
	DBPort          int
	DBUser          string
	DBPassword      string
	DBName          string
	RedisAddr       string
	CacheTTL        time.Duration
	UploadDir       string
	LogLevel        string
	LogPath         string
	ShutdownTimeout time.Duration
}

func defaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("PORT", 8080)
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "tutoring")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "tutoring")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("CACHE_TTL", 5*time.Minute)
	v.SetDefault("UPLOAD_DIR", "./uploads/homework")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PATH", "logs/app.log")
	v.SetDefault("SHUTDOWN_TIMEOUT", 5*time.Second)
}

// Load reads the configuration from the environment, after loading .env when it exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to read .env: %v", err)
	}

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Environment:     v.GetString("ENVIRONMENT"),
		ServerPort:      v.GetInt("PORT"),
		StoreDriver:     strings.ToLower(v.GetString("STORE_DRIVER")),
		MongoURI:        v.GetString("MONGO_URI"),
		MongoDatabase:   v.GetString("MONGO_DATABASE"),
		DBHost:          v.GetString("DB_HOST"),
		DBPort:          v.GetInt("DB_PORT"),
		DBUser:          v.GetString("DB_USER"),
		DBPassword:      v.GetString("DB_PASSWORD"),
		DBName:          v.GetString("DB_NAME"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		CacheTTL:        v.GetDuration("CACHE_TTL"),
		UploadDir:       v.GetString("UPLOAD_DIR"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogPath:         v.GetString("LOG_PATH"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid PORT %d", c.ServerPort)
	}
	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}
	if c.StoreDriver == DriverPostgres && c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD environment variable is required")
	}
	if c.StoreDriver == DriverMongo && c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
