package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "scrimtime"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = time.Minute

	DefaultRequestTimeout = 15 * time.Second
	DefaultIdempotencyTTL = 10 * time.Minute
	DefaultMaxRequestSize = 1 << 20

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 20 * time.Second

	// 3v3 with one substitute per side.
	DefaultExpectedParticipants = 6

	DefaultConflictRetries = 3

	// A session whose window has long passed is dead weight; the cleanup job
	// deactivates it.
	DefaultSessionMaxAge   = 14 * 24 * time.Hour
	DefaultCleanupSchedule = "0 4 * * *"

	DefaultPaginationLimit = 50
	MaxPaginationLimit     = 200
)

// NormalizePaginationLimit clamps a requested page size into the allowed range.
func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		return DefaultPaginationLimit
	}
	if limit > MaxPaginationLimit {
		return MaxPaginationLimit
	}
	return limit
}

// NormalizeOffset clamps a requested offset to zero or above.
func NormalizeOffset(offset int64) int64 {
	if offset < 0 {
		return 0
	}
	return offset
}
