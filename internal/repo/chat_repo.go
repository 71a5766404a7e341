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

// ErrUnknownAssistant is returned for an aiType outside the dispatch table.
var ErrUnknownAssistant = errors.New("unknown assistant type")

// chatCollections maps an assistant type to its history collection.
var chatCollections = map[string]string{
	"poet":     "poet_chats",
	"coder":    "coder_chats",
	"story":    "story_chats",
	"datasage": "datasage_chats",
}

// ValidAssistant reports whether aiType names a known assistant
func ValidAssistant(aiType string) bool {
	_, ok := chatCollections[aiType]
	return ok
}

// ChatRepo defines the interface for per-assistant chat history
type ChatRepo interface {
	Save(ctx context.Context, aiType string, userID bson.ObjectID, message, response string) error
	History(ctx context.Context, aiType string, userID bson.ObjectID) ([]model.ChatMessage, error)
}

type chatRepo struct {
	database *mongo.Database
}

// NewChatRepo creates a new ChatRepo instance
func NewChatRepo(database *mongo.Database) ChatRepo {
	return &chatRepo{database: database}
}

func (r *chatRepo) collection(aiType string) (*mongo.Collection, error) {
	name, ok := chatCollections[aiType]
	if !ok {
		return nil, ErrUnknownAssistant
	}
	return r.database.Collection(name), nil
}

// Save appends one exchange to the assistant's history collection
func (r *chatRepo) Save(ctx context.Context, aiType string, userID bson.ObjectID, message, response string) error {
	col, err := r.collection(aiType)
	if err != nil {
		return err
	}

	msg := model.ChatMessage{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		Message:   message,
		Response:  response,
		Timestamp: time.Now().UTC(),
	}
	if _, err := col.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

// History returns the user's exchanges with the assistant, oldest first
func (r *chatRepo) History(ctx context.Context, aiType string, userID bson.ObjectID) ([]model.ChatMessage, error) {
	col, err := r.collection(aiType)
	if err != nil {
		return nil, err
	}

	cursor, err := col.Find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("query chat history: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []model.ChatMessage{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode chat history: %w", err)
	}
	return messages, nil
}
