package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/houseoftheai/server/internal/model"
)

// PendingRepo defines the interface for staged, unverified signups
type PendingRepo interface {
	GetByID(ctx context.Context, id bson.ObjectID) (model.PendingUser, error)
	Create(ctx context.Context, pending model.PendingUser) (model.PendingUser, error)
	ReplaceOTP(ctx context.Context, id bson.ObjectID, otpHash string, otpExpiry time.Time) error
	DeleteByID(ctx context.Context, id bson.ObjectID) error
	DeleteByEmail(ctx context.Context, email string) error
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type pendingRepo struct {
	col *mongo.Collection
}

// NewPendingRepo creates a new PendingRepo instance backed by the
// pending_users collection
func NewPendingRepo(database *mongo.Database) PendingRepo {
	return &pendingRepo{col: database.Collection("pending_users")}
}

// GetByID retrieves a pending signup by its tempId
func (r *pendingRepo) GetByID(ctx context.Context, id bson.ObjectID) (model.PendingUser, error) {
	var pending model.PendingUser
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&pending)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.PendingUser{}, ErrNotFound
		}
		return model.PendingUser{}, fmt.Errorf("query pending signup: %w", err)
	}
	return pending, nil
}

// Create inserts a new pending signup. The unique email index is the backstop
// against two concurrent signups staging the same address.
func (r *pendingRepo) Create(ctx context.Context, pending model.PendingUser) (model.PendingUser, error) {
	pending.ID = bson.NewObjectID()
	pending.CreatedAt = time.Now().UTC()

	if _, err := r.col.InsertOne(ctx, pending); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.PendingUser{}, ErrDuplicate
		}
		return model.PendingUser{}, fmt.Errorf("insert pending signup: %w", err)
	}
	return pending, nil
}

// ReplaceOTP overwrites the code hash and expiry in place; the previous code
// stops verifying immediately.
func (r *pendingRepo) ReplaceOTP(ctx context.Context, id bson.ObjectID, otpHash string, otpExpiry time.Time) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"otpHash": otpHash, "otpExpiry": otpExpiry},
	})
	if err != nil {
		return fmt.Errorf("replace otp: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByID removes a pending signup
func (r *pendingRepo) DeleteByID(ctx context.Context, id bson.ObjectID) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete pending signup: %w", err)
	}
	return nil
}

// DeleteByEmail removes any pending signup staged for the email. Deleting a
// non-existent record is not an error.
func (r *pendingRepo) DeleteByEmail(ctx context.Context, email string) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"email": email}); err != nil {
		return fmt.Errorf("delete pending signup by email: %w", err)
	}
	return nil
}

// DeleteExpiredBefore removes pending signups whose otpExpiry passed before
// the cutoff. Used by the background sweeper.
func (r *pendingRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"otpExpiry": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("delete expired pending signups: %w", err)
	}
	return res.DeletedCount, nil
}
