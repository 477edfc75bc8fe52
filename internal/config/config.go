package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	Log      LogConfig      `mapstructure:"log"`
	Populate PopulateConfig `mapstructure:"populate"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver    string        `mapstructure:"driver"` // "mongo" or "memory"
	URI       string        `mapstructure:"uri"`
	Name      string        `mapstructure:"name"`
	OpTimeout time.Duration `mapstructure:"op_timeout"` // Upper bound for a single storage call
}

// S3Config points at the bucket holding exercise demo videos.
// Video endpoints are disabled when BucketName is empty.
type S3Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	URLExpiry       time.Duration `mapstructure:"url_expiry"`
}

// Enabled reports whether object storage is configured.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// PopulateConfig controls reference resolution.
type PopulateConfig struct {
	// DanglingPolicy is "placeholder" (null at the index) or "fail".
	DanglingPolicy string `mapstructure:"dangling_policy"`
}

// LoadConfig reads configuration from file or environment variables.
// A .env file in path, if present, is loaded into the environment first.
func LoadConfig(path string) (Config, error) {
	var config Config

	if err := godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))
	// MONGODB_URI is what older deployments put in .env.
	if err := v.BindEnv("database.uri", "DATABASE_URI", "MONGODB_URI"); err != nil {
		return config, err
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("read config: %w", err)
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}

	return config, config.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":3000")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("database.driver", "mongo")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "fittrack")
	v.SetDefault("database.op_timeout", "5s")
	// Every key needs a default so AutomaticEnv can override it (S3_BUCKET_NAME, ...).
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.url_expiry", "15m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("populate.dangling_policy", "placeholder")
}

// Validate rejects values the rest of the application cannot work with.
func (c Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "mongo":
		if c.Database.URI == "" {
			errs = append(errs, errors.New("database.uri is required for the mongo driver"))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required for the mongo driver"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be mongo or memory, got %q", c.Database.Driver))
	}
	if c.Database.OpTimeout <= 0 {
		errs = append(errs, errors.New("database.op_timeout must be positive"))
	}
	switch c.Populate.DanglingPolicy {
	case "placeholder", "fail":
	default:
		errs = append(errs, fmt.Errorf("populate.dangling_policy must be placeholder or fail, got %q", c.Populate.DanglingPolicy))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
