package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/robfig/cron/v3"
)

// Config holds all settings, populated from environment variables.
type Config struct {
	InputPath  string
	OutputPath string
	ModelPath  string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// PrepareSchedule is the cron expression serve mode re-runs preparation on.
	PrepareSchedule string

	// Optional Kafka feature sink; disabled when no brokers are configured.
	KafkaBrokers   []string
	KafkaSinkTopic string

	// Optional S3-compatible object storage for s3:// locations.
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Secure    bool
}

// KafkaEnabled reports whether encoded rows should be published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// S3Enabled reports whether s3:// locations can be resolved.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != ""
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	s3Secure := true
	if v := os.Getenv("S3_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("invalid S3_SECURE")
		}
		s3Secure = b
	}

	var brokers []string
	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		InputPath:       sharedcfg.EnvOrDefault("RAIN_INPUT_PATH", "data/raw-rain-data.csv"),
		OutputPath:      sharedcfg.EnvOrDefault("RAIN_OUTPUT_PATH", "data/processed_rain_data.csv"),
		ModelPath:       sharedcfg.EnvOrDefault("MODEL_PATH", "models/best_rf_model.json"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		PrepareSchedule: sharedcfg.EnvOrDefault("PREPARE_SCHEDULE", "@daily"),
		KafkaBrokers:    brokers,
		KafkaSinkTopic:  sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "rain-features"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:     os.Getenv("S3_SECRET_KEY"),
		S3Secure:        s3Secure,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that must hold after flags override env values.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("RAIN_INPUT_PATH is required")
	}
	if c.OutputPath == "" {
		return errors.New("RAIN_OUTPUT_PATH is required")
	}
	if c.KafkaEnabled() && c.KafkaSinkTopic == "" {
		return errors.New("KAFKA_SINK_TOPIC is required when KAFKA_BROKERS is set")
	}
	if _, err := cron.ParseStandard(c.PrepareSchedule); err != nil {
		return errors.New("invalid PREPARE_SCHEDULE")
	}
	if c.S3Enabled() && (c.S3AccessKey == "" || c.S3SecretKey == "") {
		return errors.New("S3_ENDPOINT is set but S3_ACCESS_KEY or S3_SECRET_KEY is missing")
	}
	return nil
}
