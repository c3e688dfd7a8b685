package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"venuebook/pkg/config"
	"venuebook/pkg/model"
)

// VenueLockRepository provides per-venue advisory locks. The lock _id
// is the venue ID, so a unique-key violation on insert means another
// creation request currently holds the venue.
type VenueLockRepository interface {
	Acquire(ctx context.Context, lock *model.VenueLock) error
	Release(ctx context.Context, lockID string) error
}

type mongoVenueLockRepository struct {
	collection *mongo.Collection
}

func NewVenueLockRepository(cfg *config.Config) VenueLockRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoVenueLockRepository{
		collection: db.Collection("Venue_locks"),
	}
}

// Acquire returns a duplicate key error when the lock is already held.
// Locks expire via the TTL index on expires_at, so a crashed holder
// cannot wedge the venue.
func (r *mongoVenueLockRepository) Acquire(ctx context.Context, lock *model.VenueLock) error {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	return err
}

func (r *mongoVenueLockRepository) Release(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}
