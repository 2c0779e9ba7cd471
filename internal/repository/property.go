package repository

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/propertydesk/property-broker/internal/common"
	"github.com/propertydesk/property-broker/internal/entity"
)

// PropertyQuery carries the persisted-layer filters for a listing search.
// Every filter is optional. Records missing a filtered field still match;
// sheets rarely carry every attribute, so absence is not a mismatch.
// The size window is applied by the search service after unit conversion.
type PropertyQuery struct {
	City         string
	Area         string
	PropertyType string
	Bedrooms     *int
	Floors       []string
	Status       string
	BudgetMin    *float64
	BudgetMax    *float64
	Page         int
	Limit        int
}

// AreaCount is one bucket of the per-area property aggregation.
type AreaCount struct {
	Area  string `bson:"_id"`
	Count int64  `bson:"count"`
}

// PropertyRepository defines persistence operations for listings.
type PropertyRepository interface {
	Create(ctx context.Context, p *entity.Property) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Property, error)
	FindAll(ctx context.Context) ([]entity.Property, error)
	Search(ctx context.Context, q PropertyQuery) ([]entity.Property, int64, error)
	Count(ctx context.Context) (int64, error)
	CountByArea(ctx context.Context) ([]AreaCount, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type propertyRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

// NewPropertyRepository creates a Mongo-backed PropertyRepository.
func NewPropertyRepository(db *mongo.Database, logger *slog.Logger) PropertyRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &propertyRepository{
		coll:   db.Collection(CollProperties),
		logger: logger,
	}
}

func (r *propertyRepository) Create(ctx context.Context, p *entity.Property) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return common.NewAppError("DB_ERROR", "failed to create property", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

func (r *propertyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Property, error) {
	var p entity.Property
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, common.NewAppError("NOT_FOUND", "property not found", common.ErrNotFound)
	}
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to get property", err)
	}
	return &p, nil
}

func (r *propertyRepository) FindAll(ctx context.Context) ([]entity.Property, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{
		{Key: "location.area", Value: 1},
		{Key: "uploaded_at", Value: -1},
	}))
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to list properties", err)
	}
	defer cur.Close(ctx)

	var out []entity.Property
	if err := cur.All(ctx, &out); err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to decode properties", err)
	}
	return out, nil
}

// Search applies the hard filters and returns a page of candidates plus
// the total match count. Relevance ordering happens in the search service.
func (r *propertyRepository) Search(ctx context.Context, q PropertyQuery) ([]entity.Property, int64, error) {
	filter := buildPropertyFilter(q)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, common.NewAppError("DB_ERROR", "failed to count search results", err)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, common.NewAppError("DB_ERROR", "failed to search properties", err)
	}
	defer cur.Close(ctx)

	var out []entity.Property
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, common.NewAppError("DB_ERROR", "failed to decode search results", err)
	}
	return out, total, nil
}

// buildPropertyFilter turns a query into a Mongo filter. Optional-field
// groups each become their own $or clause combined under $and, so one
// group can never satisfy another.
func buildPropertyFilter(q PropertyQuery) bson.M {
	filter := bson.M{}
	if q.City != "" {
		filter["location.city"] = primitive.Regex{Pattern: regexp.QuoteMeta(q.City), Options: "i"}
	}
	if q.Area != "" {
		filter["location.area"] = primitive.Regex{Pattern: regexp.QuoteMeta(q.Area), Options: "i"}
	}
	if q.PropertyType != "" {
		filter["property_type"] = q.PropertyType
	}

	var groups []bson.M
	if q.Bedrooms != nil {
		groups = append(groups, bson.M{"$or": []bson.M{
			{"bedrooms": bson.M{"$exists": false}},
			{"bedrooms": nil},
			{"bedrooms": bson.M{"$gte": *q.Bedrooms}},
		}})
	}
	if len(q.Floors) > 0 {
		groups = append(groups, bson.M{"$or": []bson.M{
			{"floors": bson.M{"$exists": false}},
			{"floors": bson.M{"$size": 0}},
			{"floors": bson.M{"$in": q.Floors}},
		}})
	}
	if q.Status != "" {
		groups = append(groups, bson.M{"$or": []bson.M{
			{"status": bson.M{"$exists": false}},
			{"status": ""},
			{"status": q.Status},
		}})
	}
	if q.BudgetMin != nil || q.BudgetMax != nil {
		rng := bson.M{}
		if q.BudgetMin != nil {
			rng["$gte"] = *q.BudgetMin
		}
		if q.BudgetMax != nil {
			rng["$lte"] = *q.BudgetMax
		}
		groups = append(groups, bson.M{"$or": []bson.M{
			{"price": bson.M{"$exists": false}},
			{"price": nil},
			{"price": rng},
		}})
	}
	if len(groups) > 0 {
		filter["$and"] = groups
	}
	return filter
}

func (r *propertyRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, common.NewAppError("DB_ERROR", "failed to count properties", err)
	}
	return n, nil
}

func (r *propertyRepository) CountByArea(ctx context.Context) ([]AreaCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$location.area", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to aggregate areas", err)
	}
	defer cur.Close(ctx)

	var out []AreaCount
	if err := cur.All(ctx, &out); err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to decode area counts", err)
	}
	return out, nil
}

func (r *propertyRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, common.NewAppError("DB_ERROR", "failed to delete properties", err)
	}
	r.logger.Info("deleted all properties", "count", res.DeletedCount)
	return res.DeletedCount, nil
}
