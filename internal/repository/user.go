package repository

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/propertydesk/property-broker/constants"
	"github.com/propertydesk/property-broker/internal/common"
	"github.com/propertydesk/property-broker/internal/entity"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	List(ctx context.Context, search string, page, limit int) ([]entity.User, int64, error)
	ListBrokers(ctx context.Context) ([]entity.User, error)
	CountBrokers(ctx context.Context) (int64, error)
	RecentBrokers(ctx context.Context, limit int) ([]entity.User, error)
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
}

type userRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewUserRepository creates a Mongo-backed UserRepository.
func NewUserRepository(db *mongo.Database, logger *slog.Logger) UserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &userRepository{
		coll:   db.Collection(CollUsers),
		logger: logger,
	}
}

func (r *userRepository) Create(ctx context.Context, u *entity.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.NewAppError("DUPLICATE", "email or phone already registered", common.ErrInvalidInput)
		}
		return common.NewAppError("DB_ERROR", "failed to create user", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	var u entity.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, common.NewAppError("NOT_FOUND", "user not found", common.ErrNotFound)
	}
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to get user", err)
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, common.NewAppError("NOT_FOUND", "user not found", common.ErrNotFound)
	}
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to get user", err)
	}
	return &u, nil
}

func (r *userRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"$or": []bson.M{
		{"email": email},
		{"phone_number": phone},
	}})
	if err != nil {
		return false, common.NewAppError("DB_ERROR", "failed to check user existence", err)
	}
	return n > 0, nil
}

// List pages through accounts, newest first. A non-empty search matches
// name, email or phone, case-insensitive and partial.
func (r *userRepository) List(ctx context.Context, search string, page, limit int) ([]entity.User, int64, error) {
	filter := bson.M{}
	if search = strings.TrimSpace(search); search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = []bson.M{
			{"full_name": re},
			{"email": re},
			{"phone_number": re},
		}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, common.NewAppError("DB_ERROR", "failed to count users", err)
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
		return nil, 0, common.NewAppError("DB_ERROR", "failed to list users", err)
	}
	defer cur.Close(ctx)

	var out []entity.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, common.NewAppError("DB_ERROR", "failed to decode users", err)
	}
	return out, total, nil
}

func (r *userRepository) ListBrokers(ctx context.Context) ([]entity.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{"role": constants.RoleBroker},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to list brokers", err)
	}
	defer cur.Close(ctx)

	var out []entity.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to decode brokers", err)
	}
	return out, nil
}

func (r *userRepository) CountBrokers(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"role": constants.RoleBroker})
	if err != nil {
		return 0, common.NewAppError("DB_ERROR", "failed to count brokers", err)
	}
	return n, nil
}

func (r *userRepository) RecentBrokers(ctx context.Context, limit int) ([]entity.User, error) {
	if limit < 1 {
		limit = 5
	}
	cur, err := r.coll.Find(ctx, bson.M{"role": constants.RoleBroker},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to list recent brokers", err)
	}
	defer cur.Close(ctx)

	var out []entity.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to decode recent brokers", err)
	}
	return out, nil
}

func (r *userRepository) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_active":  active,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return common.NewAppError("DB_ERROR", "failed to update user", err)
	}
	if res.MatchedCount == 0 {
		return common.NewAppError("NOT_FOUND", "user not found", common.ErrNotFound)
	}
	return nil
}
