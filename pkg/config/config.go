package config

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"scrimtime/pkg/client"
	"scrimtime/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	ExpectedParticipants int
	ConflictRetries      int
	SessionMaxAge        time.Duration
	CleanupSchedule      string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		ExpectedParticipants: getEnvNum(EnvExpectedParticipants, DefaultExpectedParticipants),
		ConflictRetries:      getEnvNum(EnvConflictRetries, DefaultConflictRetries),
		SessionMaxAge:        getEnvDuration(EnvSessionMaxAge, DefaultSessionMaxAge),
		CleanupSchedule:      getEnvStr(EnvCleanupSchedule, DefaultCleanupSchedule),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.FormatJSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) GracefulShutdown() {
	if cfg.Client.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
		defer cancel()
		if err := cfg.Client.Mongo.Disconnect(ctx); err != nil {
			cfg.Log.Error("Failed to disconnect MongoDB", "error", err)
			return
		}
		cfg.Log.Info("MongoDB connection closed")
	}
}

func (cfg *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		problems = append(problems, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		problems = append(problems, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}
	if cfg.MongoDatabaseName == "" {
		problems = append(problems, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		problems = append(problems, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.RateLimitWindow <= 0 {
		problems = append(problems, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		problems = append(problems, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.MaxRequestSize <= 0 {
		problems = append(problems, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.ReadTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.ExpectedParticipants < 2 {
		problems = append(problems, fmt.Sprintf("ExpectedParticipants must be at least 2, got: %d", cfg.ExpectedParticipants))
	}
	if cfg.ConflictRetries < 1 {
		problems = append(problems, fmt.Sprintf("ConflictRetries must be at least 1, got: %d", cfg.ConflictRetries))
	}
	if cfg.SessionMaxAge <= 0 {
		problems = append(problems, fmt.Sprintf("SessionMaxAge must be positive, got: %s", cfg.SessionMaxAge))
	}
	if cfg.CleanupSchedule == "" {
		problems = append(problems, "CleanupSchedule cannot be empty")
	}

	if len(problems) > 0 {
		msg := "Configuration validation failed:\n"
		for i, p := range problems {
			msg += fmt.Sprintf("  %d. %s\n", i+1, p)
		}
		return fmt.Errorf("%s", msg)
	}
	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"expected_participants", cfg.ExpectedParticipants,
		"conflict_retries", cfg.ConflictRetries,
		"session_max_age", cfg.SessionMaxAge,
		"cleanup_schedule", cfg.CleanupSchedule,
	)
}

var mongoCredentials = regexp.MustCompile(`(mongodb(\+srv)?://)[^@]+@`)

func redactMongoURI(uri string) string {
	return mongoCredentials.ReplaceAllString(uri, "$1***@")
}

func getEnvStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
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
