package repo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/houseoftheai/server/internal/model"
)

// FeedbackRepo defines the interface for feedback persistence
type FeedbackRepo interface {
	Create(ctx context.Context, feedback model.Feedback) (model.Feedback, error)
}

type feedbackRepo struct {
	col *mongo.Collection
}

// NewFeedbackRepo creates a new FeedbackRepo instance
func NewFeedbackRepo(database *mongo.Database) FeedbackRepo {
	return &feedbackRepo{col: database.Collection("feedbacks")}
}

// Create persists a feedback submission
func (r *feedbackRepo) Create(ctx context.Context, feedback model.Feedback) (model.Feedback, error) {
	feedback.ID = bson.NewObjectID()
	feedback.CreatedAt = time.Now().UTC()

	if _, err := r.col.InsertOne(ctx, feedback); err != nil {
		return model.Feedback{}, fmt.Errorf("insert feedback: %w", err)
	}
	return feedback, nil
}
