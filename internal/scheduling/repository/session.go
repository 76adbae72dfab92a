package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	schedulingerrors "scrimtime/internal/scheduling/errors"
	"scrimtime/pkg/config"
	"scrimtime/pkg/model"
)

const (
	CollectionName = "Sessions"
)

// SessionRepository is the session store. The session document is the unit
// of consistency: updates replace the whole document guarded by its version,
// so concurrent writers surface as ErrVersionConflict instead of silently
// clobbering each other.
type SessionRepository interface {
	Insert(ctx context.Context, s *model.SchedulingSession) error
	FindActiveByKey(ctx context.Context, key string) (*model.SchedulingSession, error)
	Update(ctx context.Context, s *model.SchedulingSession) error
	Deactivate(ctx context.Context, key string) error
	ListActive(ctx context.Context, limit int, offset int64) ([]*model.SchedulingSession, error)
	CountActive(ctx context.Context) (int64, error)
	DeactivateStale(ctx context.Context, maxAge time.Duration) (int64, error)
}

type mongoSessionRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSessionRepository(cfg *config.Config) SessionRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSessionRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoSessionRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Insert stores a new session. The partial unique index on (key, active)
// turns a concurrent second start for the same key into ErrSessionExists.
func (r *mongoSessionRepository) Insert(ctx context.Context, s *model.SchedulingSession) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.Version = 1

	if _, err := r.collection.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", schedulingerrors.ErrSessionExists, s.Key)
		}
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *mongoSessionRepository) FindActiveByKey(ctx context.Context, key string) (*model.SchedulingSession, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"key": key, "active": true}

	var s model.SchedulingSession
	if err := r.collection.FindOne(ctx, filter).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", schedulingerrors.ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &s, nil
}

// Update replaces the whole document if and only if nobody else has written
// it since it was loaded.
func (r *mongoSessionRepository) Update(ctx context.Context, s *model.SchedulingSession) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	loadedVersion := s.Version
	s.Version = loadedVersion + 1
	s.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	filter := bson.M{"_id": s.ID, "version": loadedVersion}
	result, err := r.collection.ReplaceOne(ctx, filter, s)
	if err != nil {
		s.Version = loadedVersion
		return fmt.Errorf("failed to update session: %w", err)
	}
	if result.MatchedCount == 0 {
		s.Version = loadedVersion
		return fmt.Errorf("%w: %s", schedulingerrors.ErrVersionConflict, s.Key)
	}
	return nil
}

func (r *mongoSessionRepository) Deactivate(ctx context.Context, key string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"key": key, "active": true}
	update := bson.M{"$set": bson.M{
		"active":     false,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to deactivate session: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", schedulingerrors.ErrNotFound, key)
	}
	return nil
}

func (r *mongoSessionRepository) ListActive(ctx context.Context, limit int, offset int64) ([]*model.SchedulingSession, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*model.SchedulingSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	return sessions, nil
}

func (r *mongoSessionRepository) CountActive(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"active": true})
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// DeactivateStale soft-deletes active sessions older than maxAge. Run by the
// housekeeping job; a negotiation that outlives its window is abandoned.
func (r *mongoSessionRepository) DeactivateStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	cutoff := time.Now().UTC().Add(-maxAge)
	filter := bson.M{"active": true, "created_at": bson.M{"$lt": cutoff}}
	update := bson.M{"$set": bson.M{
		"active":     false,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate stale sessions: %w", err)
	}
	return result.ModifiedCount, nil
}
