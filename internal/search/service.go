package search

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/propertydesk/property-broker/constants"
	"github.com/propertydesk/property-broker/internal/entity"
	"github.com/propertydesk/property-broker/internal/repository"
)

const baseScore = 100

// Query is one broker search. Every field is optional; area is the one
// worth filling in.
type Query struct {
	City         string   `form:"city"`
	Area         string   `form:"area"`
	PropertyType string   `form:"propertyType"`
	SizeMin      *float64 `form:"sizeMin"`
	SizeMax      *float64 `form:"sizeMax"`
	SizeUnit     string   `form:"sizeUnit"`
	Bedrooms     *int     `form:"bedrooms"`
	Floors       string   `form:"floors"`
	Status       string   `form:"status"`
	BudgetMin    *float64 `form:"budgetMin"`
	BudgetMax    *float64 `form:"budgetMax"`
	Page         int      `form:"page,default=1"`
	Limit        int      `form:"limit,default=20"`
}

// Pagination describes the result window.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// Result is a scored, ordered page of listings.
type Result struct {
	Properties []entity.Property `json:"properties"`
	Pagination Pagination        `json:"pagination"`
}

// Service runs listing searches: hard filters in the store, size window
// and relevance ordering in memory, then demand logging.
type Service struct {
	props  repository.PropertyRepository
	logs   repository.SearchLogRepository
	logger *slog.Logger
}

// NewService creates the search service.
func NewService(props repository.PropertyRepository, logs repository.SearchLogRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{props: props, logs: logs, logger: logger}
}

// Search executes the query for the given user. Requirement and log
// writes are best effort; their failure never fails the search.
func (s *Service) Search(ctx context.Context, userID primitive.ObjectID, q Query) (Result, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}

	repoQuery := repository.PropertyQuery{
		City:         q.City,
		Area:         q.Area,
		PropertyType: q.PropertyType,
		Bedrooms:     q.Bedrooms,
		Floors:       parseFloors(q.Floors),
		Status:       q.Status,
		BudgetMin:    q.BudgetMin,
		BudgetMax:    q.BudgetMax,
		Page:         q.Page,
		Limit:        q.Limit,
	}

	props, total, err := s.props.Search(ctx, repoQuery)
	if err != nil {
		return Result{}, err
	}

	props = s.filterBySize(props, q)
	s.rank(props, q)

	s.record(ctx, userID, q, len(props))

	pages := int64(0)
	if total > 0 {
		pages = (total + int64(q.Limit) - 1) / int64(q.Limit)
	}
	return Result{
		Properties: props,
		Pagination: Pagination{Page: q.Page, Limit: q.Limit, Total: total, Pages: pages},
	}, nil
}

// filterBySize drops listings outside the requested window. Listings
// without a size stay in; absence is not a mismatch.
func (s *Service) filterBySize(props []entity.Property, q Query) []entity.Property {
	if q.SizeMin == nil && q.SizeMax == nil {
		return props
	}
	unit := queryUnit(q.SizeUnit)
	minSqft := 0.0
	if q.SizeMin != nil {
		minSqft = constants.ToSqft(*q.SizeMin, unit)
	}
	maxSqft := math.Inf(1)
	if q.SizeMax != nil {
		maxSqft = constants.ToSqft(*q.SizeMax, unit)
	}

	out := props[:0]
	for _, p := range props {
		if p.Size == nil || p.Size.Value == 0 {
			out = append(out, p)
			continue
		}
		sqft := p.Size.Sqft()
		if sqft >= minSqft && sqft <= maxSqft {
			out = append(out, p)
		}
	}
	return out
}

// rank orders listings by relevance. Exact city and area matches weigh
// most, then property type, then price and size proximity to the middle
// of the requested window. Ties keep store order (newest first).
func (s *Service) rank(props []entity.Property, q Query) {
	scores := make([]int, len(props))
	for i, p := range props {
		scores[i] = score(p, q)
	}
	sort.SliceStable(props, func(i, j int) bool {
		return scores[i] > scores[j]
	})
}

func score(p entity.Property, q Query) int {
	sc := baseScore
	if q.City != "" && strings.EqualFold(p.Location.City, q.City) {
		sc += 20
	}
	if q.Area != "" && strings.EqualFold(p.Location.Area, q.Area) {
		sc += 20
	}
	if q.PropertyType != "" && string(p.PropertyType) == q.PropertyType {
		sc += 15
	}
	if q.BudgetMin != nil && q.BudgetMax != nil && p.Price != nil {
		avg := (*q.BudgetMin + *q.BudgetMax) / 2
		if avg > 0 {
			diff := math.Abs(*p.Price-avg) / avg
			switch {
			case diff <= 0.1:
				sc += 15
			case diff <= 0.15:
				sc += 10
			}
		}
	}
	if q.SizeMin != nil && q.SizeMax != nil && p.Size != nil && p.Size.Value > 0 {
		unit := queryUnit(q.SizeUnit)
		avgSqft := constants.ToSqft((*q.SizeMin+*q.SizeMax)/2, unit)
		if avgSqft > 0 {
			diff := math.Abs(p.Size.Sqft()-avgSqft) / avgSqft
			switch {
			case diff <= 0.1:
				sc += 10
			case diff <= 0.15:
				sc += 5
			}
		}
	}
	return sc
}

// record persists the search log and, when the query names any demand,
// a requirement row.
func (s *Service) record(ctx context.Context, userID primitive.ObjectID, q Query, results int) {
	logEntry := &entity.SearchLog{
		UserID:       userID,
		Params:       toParams(q),
		ResultsCount: results,
	}
	if err := s.logs.LogSearch(ctx, logEntry); err != nil {
		s.logger.Warn("failed to log search", "user_id", userID.Hex(), "error", err)
	}

	if q.City == "" && q.Area == "" && q.PropertyType == "" && q.SizeMin == nil && q.SizeMax == nil && q.BudgetMin == nil && q.BudgetMax == nil {
		return
	}
	req := &entity.Requirement{
		UserID:       userID,
		City:         q.City,
		Area:         q.Area,
		PropertyType: q.PropertyType,
		SizeMin:      q.SizeMin,
		SizeMax:      q.SizeMax,
		SizeUnit:     string(queryUnit(q.SizeUnit)),
	}
	if q.BudgetMin != nil {
		req.BudgetMin = *q.BudgetMin
	}
	if q.BudgetMax != nil {
		req.BudgetMax = *q.BudgetMax
	}
	if err := s.logs.SaveRequirement(ctx, req); err != nil {
		s.logger.Warn("failed to save requirement", "user_id", userID.Hex(), "error", err)
	}
}

func toParams(q Query) entity.SearchParams {
	return entity.SearchParams{
		City:         q.City,
		Area:         q.Area,
		PropertyType: q.PropertyType,
		SizeMin:      q.SizeMin,
		SizeMax:      q.SizeMax,
		SizeUnit:     q.SizeUnit,
		Bedrooms:     q.Bedrooms,
		Floors:       q.Floors,
		Status:       q.Status,
		BudgetMin:    q.BudgetMin,
		BudgetMax:    q.BudgetMax,
	}
}

func queryUnit(raw string) constants.SizeUnit {
	switch constants.SizeUnit(strings.ToLower(strings.TrimSpace(raw))) {
	case constants.UnitGaj:
		return constants.UnitGaj
	case constants.UnitYard:
		return constants.UnitYard
	default:
		return constants.UnitSqft
	}
}

func parseFloors(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if f, ok := constants.CanonicalizeFloor(part); ok {
			out = append(out, string(f))
		} else {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
