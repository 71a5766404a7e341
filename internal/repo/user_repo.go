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

// UserRepo defines the interface for confirmed account operations
type UserRepo interface {
	GetByID(ctx context.Context, id bson.ObjectID) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, user model.User) (model.User, error)
}

type userRepo struct {
	col *mongo.Collection
}

// NewUserRepo creates a new UserRepo instance backed by the users collection
func NewUserRepo(database *mongo.Database) UserRepo {
	return &userRepo{col: database.Collection("users")}
}

// GetByID retrieves a user by ID
func (r *userRepo) GetByID(ctx context.Context, id bson.ObjectID) (model.User, error) {
	var user model.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *userRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var user model.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

// Create inserts a new user. Returns ErrDuplicate if the email is taken.
func (r *userRepo) Create(ctx context.Context, user model.User) (model.User, error) {
	now := time.Now().UTC()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.User{}, ErrDuplicate
		}
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}
