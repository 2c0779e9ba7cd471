package repository

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/propertydesk/property-broker/internal/common"
	"github.com/propertydesk/property-broker/internal/entity"
)

// SearchLogRepository records executed searches and saved requirements
// for demand analytics. Writes are best effort; callers log failures
// instead of failing the search.
type SearchLogRepository interface {
	LogSearch(ctx context.Context, l *entity.SearchLog) error
	SaveRequirement(ctx context.Context, req *entity.Requirement) error
	TopAreas(ctx context.Context, since time.Time, limit int) ([]AreaCount, error)
}

type searchLogRepository struct {
	logs   *mongo.Collection
	reqs   *mongo.Collection
	logger *slog.Logger
}

// NewSearchLogRepository creates a Mongo-backed SearchLogRepository.
func NewSearchLogRepository(db *mongo.Database, logger *slog.Logger) SearchLogRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &searchLogRepository{
		logs:   db.Collection(CollSearchLogs),
		reqs:   db.Collection(CollRequirements),
		logger: logger,
	}
}

func (r *searchLogRepository) LogSearch(ctx context.Context, l *entity.SearchLog) error {
	if l.SearchedAt.IsZero() {
		l.SearchedAt = time.Now()
	}
	if _, err := r.logs.InsertOne(ctx, l); err != nil {
		return common.NewAppError("DB_ERROR", "failed to log search", err)
	}
	return nil
}

func (r *searchLogRepository) SaveRequirement(ctx context.Context, req *entity.Requirement) error {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	if _, err := r.reqs.InsertOne(ctx, req); err != nil {
		return common.NewAppError("DB_ERROR", "failed to save requirement", err)
	}
	return nil
}

// TopAreas returns the most searched areas since the given time.
func (r *searchLogRepository) TopAreas(ctx context.Context, since time.Time, limit int) ([]AreaCount, error) {
	if limit < 1 {
		limit = 10
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"searched_at":        bson.M{"$gte": since},
			"search_params.area": bson.M{"$ne": ""},
		}}},
		{{Key: "$group", Value: bson.M{"_id": "$search_params.area", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
		{{Key: "$limit", Value: limit}},
	}
	cur, err := r.logs.Aggregate(ctx, pipeline, options.Aggregate())
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to aggregate search areas", err)
	}
	defer cur.Close(ctx)

	var out []AreaCount
	if err := cur.All(ctx, &out); err != nil {
		return nil, common.NewAppError("DB_ERROR", "failed to decode search areas", err)
	}
	return out, nil
}
