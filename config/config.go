// Package config loads the handler configuration from the environment, an
// optional .env file and built-in defaults.
package config

import (
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Environment keys.
const (
	KeyTable         = "DYNAMODB_TABLE"
	KeyEndpoint      = "DYNAMODB_ENDPOINT"
	KeyRegion        = "AWS_REGION"
	KeyLogLevel      = "LOG_LEVEL"
	KeyLogFormat     = "LOG_FORMAT"
	KeyDevServerAddr = "DEV_SERVER_ADDR"
)

// ErrMissingTable is returned by Load when no table name is configured.
var ErrMissingTable = errors.New(KeyTable + " is required")

// Config holds all configuration for the handler and its tools.
type Config struct {
	Table         string
	Endpoint      string
	Region        string
	LogLevel      string
	LogFormat     string
	DevServerAddr string
}

// Load reads configuration and validates it. Files named in envFiles are
// loaded into the process environment first, missing files are ignored. With
// no envFiles a ".env" in the working directory is tried.
func Load(envFiles ...string) (*Config, error) {
	cfg := Read(envFiles...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Read is Load without validation, for tools that can run without a table.
func Read(envFiles ...string) *Config {
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(KeyRegion, "us-east-1")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyDevServerAddr, ":3000")

	cfg := &Config{
		Table:         strings.TrimSpace(v.GetString(KeyTable)),
		Endpoint:      v.GetString(KeyEndpoint),
		Region:        v.GetString(KeyRegion),
		LogLevel:      v.GetString(KeyLogLevel),
		LogFormat:     v.GetString(KeyLogFormat),
		DevServerAddr: v.GetString(KeyDevServerAddr),
	}

	return cfg
}

// Validate checks the required values are present and well formed.
func (cfg *Config) Validate() error {
	if cfg.Table == "" {
		return ErrMissingTable
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return errors.Wrapf(err, "invalid %s", KeyLogLevel)
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return errors.Errorf("invalid %s '%s', expected json or text", KeyLogFormat, cfg.LogFormat)
	}

	return nil
}

// Logger returns a logrus logger configured with the level and format.
func (cfg *Config) Logger() *logrus.Logger {
	logger := logrus.New()

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	if cfg.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

// Session returns an aws session for the configured region. Credentials come
// from the default provider chain.
func (cfg *Config) Session() (*session.Session, error) {
	s, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
	})

	if err != nil {
		return nil, errors.Wrap(err, "failed getting session")
	}

	return s, nil
}
