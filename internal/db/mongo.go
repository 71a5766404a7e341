package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/houseoftheai/server/internal/config"
)

var ErrFailedToConnect = errors.New("failed to connect to mongo")

// Connect establishes a connection to MongoDB with retries and returns the
// configured database handle.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Database, error) {
	for i := 0; i < cfg.RetryAttempts; i++ {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(cfg.URL).
				SetConnectTimeout(cfg.ConnectTimeout).
				SetMaxPoolSize(cfg.MaxPoolSize).
				SetMinPoolSize(cfg.MinPoolSize).
				SetMaxConnIdleTime(cfg.MaxConnIdleTime).
				SetRetryWrites(true).
				SetRetryReads(true),
		)
		if err == nil {
			if err := client.Ping(ctx, nil); err == nil {
				return client.Database(cfg.Database), nil
			}
			_ = client.Disconnect(ctx)
		}

		time.Sleep(cfg.RetryInterval)
	}

	return nil, ErrFailedToConnect
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely
// on. Idempotent; runs at startup in place of a migration step.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "googleId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	if err != nil {
		return err
	}

	_, err = database.Collection("pending_users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	_, err = database.Collection("visitors").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "visitorId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	for _, name := range []string{"poet_chats", "coder_chats", "story_chats", "datasage_chats"} {
		_, err = database.Collection(name).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{
				Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: 1}},
			},
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// Healthcheck returns a probe function that pings the underlying client.
func Healthcheck(database *mongo.Database) func(context.Context) error {
	return func(ctx context.Context) error {
		return database.Client().Ping(ctx, nil)
	}
}
