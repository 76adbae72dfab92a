package kafka_config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the Kafka wiring for the scheduler: one producer topic for
// outbound notifications, one consumer topic for inbound commands.
type Config struct {
	Brokers []string

	NotificationsTopic string
	CommandsTopic      string
	CommandsGroupID    string
	DLQTopic           string

	ProducerMaxAttempts  int
	ProducerBatchTimeout time.Duration
	ProducerRequireAcks  int    // -1 = all, 0 = none, 1 = leader only
	ProducerCompression  string // "none", "gzip", "snappy", "lz4", "zstd"

	ConsumerMinBytes       int
	ConsumerMaxBytes       int
	ConsumerMaxWait        time.Duration
	ConsumerCommitInterval time.Duration
	ConsumerMaxRetries     int
}

func Load() (*Config, error) {
	brokers := strings.Split(getEnvStr(EnvKafkaBrokers, DefaultKafkaBrokers), ",")
	for i, b := range brokers {
		brokers[i] = strings.TrimSpace(b)
	}

	cfg := &Config{
		Brokers: brokers,

		NotificationsTopic: getEnvStr(EnvKafkaNotificationsTopic, DefaultNotificationsTopic),
		CommandsTopic:      getEnvStr(EnvKafkaCommandsTopic, DefaultCommandsTopic),
		CommandsGroupID:    getEnvStr(EnvKafkaCommandsGroupID, DefaultCommandsGroupID),
		DLQTopic:           getEnvStr(EnvKafkaDLQTopic, DefaultDLQTopic),

		ProducerMaxAttempts:  getEnvInt(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts),
		ProducerBatchTimeout: getEnvDuration(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout),
		ProducerRequireAcks:  getEnvInt(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks),
		ProducerCompression:  getEnvStr(EnvKafkaProducerCompression, DefaultProducerCompression),

		ConsumerMinBytes:       getEnvInt(EnvKafkaConsumerMinBytes, DefaultConsumerMinBytes),
		ConsumerMaxBytes:       getEnvInt(EnvKafkaConsumerMaxBytes, DefaultConsumerMaxBytes),
		ConsumerMaxWait:        getEnvDuration(EnvKafkaConsumerMaxWait, DefaultConsumerMaxWait),
		ConsumerCommitInterval: getEnvDuration(EnvKafkaConsumerCommitInterval, DefaultConsumerCommitInterval),
		ConsumerMaxRetries:     getEnvInt(EnvKafkaConsumerMaxRetries, DefaultConsumerMaxRetries),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	var problems []string

	if len(cfg.Brokers) == 0 {
		problems = append(problems, "at least one Kafka broker is required")
	}
	for i, b := range cfg.Brokers {
		if b == "" {
			problems = append(problems, fmt.Sprintf("broker %d cannot be empty", i))
		}
	}

	if cfg.NotificationsTopic == "" {
		problems = append(problems, "NotificationsTopic cannot be empty")
	}
	if cfg.CommandsTopic == "" {
		problems = append(problems, "CommandsTopic cannot be empty")
	}
	if cfg.CommandsGroupID == "" {
		problems = append(problems, "CommandsGroupID cannot be empty")
	}

	if cfg.ProducerMaxAttempts <= 0 {
		problems = append(problems, fmt.Sprintf("ProducerMaxAttempts must be positive, got: %d", cfg.ProducerMaxAttempts))
	}
	if cfg.ProducerBatchTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("ProducerBatchTimeout must be positive, got: %s", cfg.ProducerBatchTimeout))
	}
	validCompressions := map[string]bool{"none": true, "gzip": true, "snappy": true, "lz4": true, "zstd": true}
	if !validCompressions[cfg.ProducerCompression] {
		problems = append(problems, fmt.Sprintf("ProducerCompression must be one of [none, gzip, snappy, lz4, zstd], got: %s", cfg.ProducerCompression))
	}
	validAcks := map[int]bool{-1: true, 0: true, 1: true}
	if !validAcks[cfg.ProducerRequireAcks] {
		problems = append(problems, fmt.Sprintf("ProducerRequireAcks must be -1, 0, or 1, got: %d", cfg.ProducerRequireAcks))
	}

	if cfg.ConsumerMinBytes <= 0 {
		problems = append(problems, fmt.Sprintf("ConsumerMinBytes must be positive, got: %d", cfg.ConsumerMinBytes))
	}
	if cfg.ConsumerMaxBytes < cfg.ConsumerMinBytes {
		problems = append(problems, fmt.Sprintf("ConsumerMaxBytes (%d) must be >= ConsumerMinBytes (%d)", cfg.ConsumerMaxBytes, cfg.ConsumerMinBytes))
	}
	if cfg.ConsumerMaxWait <= 0 {
		problems = append(problems, fmt.Sprintf("ConsumerMaxWait must be positive, got: %s", cfg.ConsumerMaxWait))
	}
	if cfg.ConsumerCommitInterval <= 0 {
		problems = append(problems, fmt.Sprintf("ConsumerCommitInterval must be positive, got: %s", cfg.ConsumerCommitInterval))
	}
	if cfg.ConsumerMaxRetries < 0 {
		problems = append(problems, fmt.Sprintf("ConsumerMaxRetries cannot be negative, got: %d", cfg.ConsumerMaxRetries))
	}

	if len(problems) > 0 {
		return fmt.Errorf("kafka configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnvStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
