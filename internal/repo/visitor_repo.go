package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/houseoftheai/server/internal/model"
)

// VisitorRepo defines the interface for unique-visitor tracking
type VisitorRepo interface {
	Exists(ctx context.Context, visitorID string) (bool, error)
	Create(ctx context.Context, visitorID string) error
	IncrementCount(ctx context.Context) (int64, error)
	CurrentCount(ctx context.Context) (int64, error)
}

type visitorRepo struct {
	visitors *mongo.Collection
	counts   *mongo.Collection
}

// NewVisitorRepo creates a new VisitorRepo instance
func NewVisitorRepo(database *mongo.Database) VisitorRepo {
	return &visitorRepo{
		visitors: database.Collection("visitors"),
		counts:   database.Collection("visitor_counts"),
	}
}

// Exists reports whether the visitor id has been seen before
func (r *visitorRepo) Exists(ctx context.Context, visitorID string) (bool, error) {
	err := r.visitors.FindOne(ctx, bson.M{"visitorId": visitorID}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("query visitor: %w", err)
	}
	return true, nil
}

// Create records a first sighting. ErrDuplicate means another request won the
// race and the visitor is already counted.
func (r *visitorRepo) Create(ctx context.Context, visitorID string) error {
	visitor := model.Visitor{
		ID:        bson.NewObjectID(),
		VisitorID: visitorID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.visitors.InsertOne(ctx, visitor); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert visitor: %w", err)
	}
	return nil
}

// IncrementCount bumps the singleton counter document (upserting it on first
// use) and returns the new total.
func (r *visitorRepo) IncrementCount(ctx context.Context) (int64, error) {
	var counter model.VisitorCount
	err := r.counts.FindOneAndUpdate(ctx,
		bson.M{},
		bson.M{"$inc": bson.M{"count": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("increment visitor count: %w", err)
	}
	return counter.Count, nil
}

// CurrentCount returns the running total, zero when no counter exists yet
func (r *visitorRepo) CurrentCount(ctx context.Context) (int64, error) {
	var counter model.VisitorCount
	err := r.counts.FindOne(ctx, bson.M{}).Decode(&counter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("query visitor count: %w", err)
	}
	return counter.Count, nil
}
