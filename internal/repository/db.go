package repository

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/propertydesk/property-broker/internal/common"
)

// Collection names.
const (
	CollProperties    = "properties"
	CollUsers         = "users"
	CollSubscriptions = "subscriptions"
	CollSearchLogs    = "search_logs"
	CollRequirements  = "requirements"
)

// Open connects to MongoDB, pings it, and ensures the search indexes.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	logger.Info("connecting to database", "uri", cfg.URI, "name", cfg.Name)

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, nil, common.WrapError(err, "mongo connect")
	}
	if err := client.Ping(dialCtx, nil); err != nil {
		logger.Error("database ping failed", "error", err)
		return nil, nil, common.WrapError(err, "mongo ping")
	}

	db := client.Database(cfg.Name)
	if err := ensureIndexes(dialCtx, db); err != nil {
		logger.Error("failed to create indexes", "error", err)
		return nil, nil, err
	}

	logger.Info("database ready")
	return client, db, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	propertyIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "location.city", Value: 1}, {Key: "location.area", Value: 1}}},
		{Keys: bson.D{{Key: "size.value", Value: 1}}},
		{Keys: bson.D{{Key: "floors", Value: 1}}},
		{Keys: bson.D{{Key: "bedrooms", Value: 1}}},
	}
	if _, err := db.Collection(CollProperties).Indexes().CreateMany(ctx, propertyIndexes); err != nil {
		return common.WrapError(err, "property indexes")
	}

	userIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "phone_number", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := db.Collection(CollUsers).Indexes().CreateMany(ctx, userIndexes); err != nil {
		return common.WrapError(err, "user indexes")
	}

	subIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "expiry_date", Value: 1}}},
		{Keys: bson.D{{Key: "is_active", Value: 1}}},
		{Keys: bson.D{{Key: "payment_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := db.Collection(CollSubscriptions).Indexes().CreateMany(ctx, subIndexes); err != nil {
		return common.WrapError(err, "subscription indexes")
	}

	logIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "searched_at", Value: -1}}},
		{Keys: bson.D{{Key: "search_params.area", Value: 1}, {Key: "searched_at", Value: -1}}},
	}
	if _, err := db.Collection(CollSearchLogs).Indexes().CreateMany(ctx, logIndexes); err != nil {
		return common.WrapError(err, "search log indexes")
	}

	return nil
}
