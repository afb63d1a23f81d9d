package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Pagination PaginationConfig `mapstructure:"pagination"`
	Throttle   ThrottleConfig   `mapstructure:"throttle"`
	Blacklist  BlacklistConfig  `mapstructure:"blacklist"`
	S3         S3Config         `mapstructure:"s3"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Address            string        `mapstructure:"address"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
}

// DatabaseConfig selects the SQL driver. Driver is "sqlite" or "postgres".
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessExpiration  time.Duration `mapstructure:"access_expiration"`
	RefreshExpiration time.Duration `mapstructure:"refresh_expiration"`
}

type PaginationConfig struct {
	PageSize    int `mapstructure:"page_size"`
	MaxPageSize int `mapstructure:"max_page_size"`
}

// ThrottleConfig rates use the limiter format "<limit>-<period>", e.g. "100-H".
type ThrottleConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Store    string `mapstructure:"store"` // "memory" or "redis"
	RedisURL string `mapstructure:"redis_url"`
	AnonRate string `mapstructure:"anon_rate"`
	UserRate string `mapstructure:"user_rate"`
}

// BlacklistConfig picks where revoked refresh tokens live: "database" keeps
// them next to the users, "mongo" in a TTL-indexed collection.
type BlacklistConfig struct {
	Driver        string `mapstructure:"driver"`
	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
	// MongoTimeout bounds dialing, the startup ping and the shutdown disconnect.
	MongoTimeout time.Duration `mapstructure:"mongo_timeout"`
}

type S3Config struct {
	Endpoint          string        `mapstructure:"endpoint"`
	Region            string        `mapstructure:"region"`
	AccessKeyID       string        `mapstructure:"access_key_id"`
	SecretAccessKey   string        `mapstructure:"secret_access_key"`
	BucketName        string        `mapstructure:"bucket_name"`
	UseSSL            bool          `mapstructure:"use_ssl"`
	PresignExpiration time.Duration `mapstructure:"presign_expiration"`
}

// Enabled reports whether object storage is configured at all.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// LoadConfig reads configuration from path/config.yaml and environment
// variables. Nested keys map to variables with dots replaced by
// underscores, e.g. jwt.secret -> JWT_SECRET.
func LoadConfig(path string) (Config, error) {
	var config Config

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	// A missing file is fine; everything can come from the environment.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return config, err
	}
	return config, nil
}

// Every key needs a default, even an empty one, or AutomaticEnv will not
// see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.cors_allowed_origins", []string{})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "workouts.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_expiration", "5m")
	v.SetDefault("jwt.refresh_expiration", "24h")

	v.SetDefault("pagination.page_size", 10)
	v.SetDefault("pagination.max_page_size", 100)

	v.SetDefault("throttle.enabled", true)
	v.SetDefault("throttle.store", "memory")
	v.SetDefault("throttle.redis_url", "")
	v.SetDefault("throttle.anon_rate", "100-H")
	v.SetDefault("throttle.user_rate", "1000-D")

	v.SetDefault("blacklist.driver", "database")
	v.SetDefault("blacklist.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("blacklist.mongo_database", "workouts")
	v.SetDefault("blacklist.mongo_timeout", "10s")

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.presign_expiration", "15m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

func (c Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	switch c.Throttle.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("throttle.store must be memory or redis, got %q", c.Throttle.Store)
	}
	if c.Throttle.Store == "redis" && c.Throttle.RedisURL == "" {
		return errors.New("throttle.redis_url is required for the redis store")
	}
	switch c.Blacklist.Driver {
	case "database", "mongo":
	default:
		return fmt.Errorf("blacklist.driver must be database or mongo, got %q", c.Blacklist.Driver)
	}
	if c.Blacklist.Driver == "mongo" && c.Blacklist.MongoTimeout <= 0 {
		return errors.New("blacklist.mongo_timeout must be positive")
	}
	if c.Pagination.PageSize < 1 || c.Pagination.MaxPageSize < c.Pagination.PageSize {
		return errors.New("pagination.page_size must be between 1 and pagination.max_page_size")
	}
	return nil
}
