package repository

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/propertydesk/property-broker/internal/common"
	"github.com/propertydesk/property-broker/internal/entity"
)

// SubscriptionRepository defines persistence operations for access windows.
type SubscriptionRepository interface {
	Create(ctx context.Context, s *entity.Subscription) error
	FindActiveByUser(ctx context.Context, userID primitive.ObjectID) (*entity.Subscription, error)
	DeactivateAllForUser(ctx context.Context, userID primitive.ObjectID) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
	List(ctx context.Context, status string, page, limit int) ([]entity.Subscription, int64, error)
	ListAll(ctx context.Context) ([]entity.Subscription, error)
	CountActive(ctx context.Context, now time.Time) (int64, error)
	CountExpired(ctx context.Context, now time.Time) (int64, error)
	RevenueActive(ctx context.Context, now time.Time) (int64, error)
}

type subscriptionRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewSubscriptionRepository creates a Mongo-backed SubscriptionRepository.
func NewSubscriptionRepository(db *mongo.Database, logger *slog.Logger) SubscriptionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &subscriptionRepository{
		coll:   db.Collection(CollSubscriptions),
		logger: logger,
	}
}

func (r *subscriptionRepository) Create(ctx context.Context, s *entity.Subscription) error {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, s)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.NewAppError("DUPLICATE", "payment already recorded", common.ErrInvalidInput)
		}
		return common.NewAppError("DB_ERROR", "failed to create subscription", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		s.ID = oid
	}
	return nil
}

// FindActiveByUser returns the user's live subscription, meaning active
// and not yet past its expiry date. ErrNotFound when none exists.
func (r *subscriptionRepository) FindActiveByUser(ctx context.Context, userID primitive.ObjectID) (*entity.Subscription, error) {
	var s entity.Subscription
	err := r.coll.FindOne(ctx, bson.M{
		"user_id":     userID,
		"is_active":   true,
		"expiry_date": bson.M{"$gt": time.Now()},
	}, options.FindOne().SetSort(bson.D{{Key: "expiry_date", Value: -1}})).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, common.NewAppError("NOT_FOUND", "no active subscription", common.ErrNotFound)
	}
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to get subscription", err)
	}
	return &s, nil
}

func (r *subscriptionRepository) DeactivateAllForUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_active": true},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}})
	if err != nil {
		return common.NewAppError("DB_ERROR", "failed to deactivate subscriptions", err)
	}
	return nil
}

// DeactivateExpired flips is_active off for every subscription whose
// expiry passed. Run by the nightly sweep.
func (r *subscriptionRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"is_active": true, "expiry_date": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": now}})
	if err != nil {
		return 0, common.NewAppError("DB_ERROR", "failed to deactivate expired subscriptions", err)
	}
	if res.ModifiedCount > 0 {
		r.logger.Info("deactivated expired subscriptions", "count", res.ModifiedCount)
	}
	return res.ModifiedCount, nil
}

// List pages through subscriptions, newest first. Status "active" keeps
// live ones only, "expired" those past expiry or already deactivated,
// anything else means no filter.
func (r *subscriptionRepository) List(ctx context.Context, status string, page, limit int) ([]entity.Subscription, int64, error) {
	now := time.Now()
	filter := bson.M{}
	switch status {
	case "active":
		filter["is_active"] = true
		filter["expiry_date"] = bson.M{"$gt": now}
	case "expired":
		filter["$or"] = []bson.M{
			{"is_active": false},
			{"expiry_date": bson.M{"$lte": now}},
		}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, common.NewAppError("DB_ERROR", "failed to count subscriptions", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, common.NewAppError("DB_ERROR", "failed to list subscriptions", err)
	}
	defer cur.Close(ctx)

	var out []entity.Subscription
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, common.NewAppError("DB_ERROR", "failed to decode subscriptions", err)
	}
	return out, total, nil
}

func (r *subscriptionRepository) ListAll(ctx context.Context) ([]entity.Subscription, error) {
	cur, err := r.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to list subscriptions", err)
	}
	defer cur.Close(ctx)

	var out []entity.Subscription
	if err := cur.All(ctx, &out); err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to decode subscriptions", err)
	}
	return out, nil
}

func (r *subscriptionRepository) CountActive(ctx context.Context, now time.Time) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{
		"is_active":   true,
		"expiry_date": bson.M{"$gt": now},
	})
	if err != nil {
		return 0, common.NewAppError("DB_ERROR", "failed to count active subscriptions", err)
	}
	return n, nil
}

func (r *subscriptionRepository) CountExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{
		"expiry_date": bson.M{"$lte": now},
	})
	if err != nil {
		return 0, common.NewAppError("DB_ERROR", "failed to count expired subscriptions", err)
	}
	return n, nil
}

// RevenueActive sums the amount of every currently live subscription.
func (r *subscriptionRepository) RevenueActive(ctx context.Context, now time.Time) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"is_active":   true,
			"expiry_date": bson.M{"$gt": now},
		}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, common.NewAppError("DB_ERROR", "failed to aggregate revenue", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, common.NewAppError("DB_ERROR", "failed to decode revenue", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
