package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/propertydesk/property-broker/constants"
	"github.com/propertydesk/property-broker/internal/entity"
	"github.com/propertydesk/property-broker/internal/parser"
	"github.com/propertydesk/property-broker/internal/repository"
)

type stubPropertyRepo struct {
	props []entity.Property
	total int64
	got   repository.PropertyQuery
}

func (s *stubPropertyRepo) Search(_ context.Context, q repository.PropertyQuery) ([]entity.Property, int64, error) {
	s.got = q
	return s.props, s.total, nil
}

func (s *stubPropertyRepo) Create(context.Context, *entity.Property) error { return nil }

func (s *stubPropertyRepo) GetByID(context.Context, primitive.ObjectID) (*entity.Property, error) {
	return nil, nil
}

func (s *stubPropertyRepo) FindAll(context.Context) ([]entity.Property, error) { return s.props, nil }

func (s *stubPropertyRepo) Count(context.Context) (int64, error) { return s.total, nil }

func (s *stubPropertyRepo) CountByArea(context.Context) ([]repository.AreaCount, error) {
	return nil, nil
}

func (s *stubPropertyRepo) DeleteAll(context.Context) (int64, error) { return 0, nil }

type memLogRepo struct {
	logs []entity.SearchLog
	reqs []entity.Requirement
}

func (m *memLogRepo) LogSearch(_ context.Context, l *entity.SearchLog) error {
	m.logs = append(m.logs, *l)
	return nil
}

func (m *memLogRepo) SaveRequirement(_ context.Context, r *entity.Requirement) error {
	m.reqs = append(m.reqs, *r)
	return nil
}

func (m *memLogRepo) TopAreas(context.Context, time.Time, int) ([]repository.AreaCount, error) {
	return nil, nil
}

func listing(area string, sizeValue float64, unit constants.SizeUnit) entity.Property {
	return entity.Property{
		ID:       primitive.NewObjectID(),
		Location: parser.Location{City: "south delhi", Area: area},
		Size:     &parser.Size{Value: sizeValue, Unit: unit},
	}
}

func fptr(v float64) *float64 { return &v }

func TestSearchFiltersBySizeWindowInSqft(t *testing.T) {
	repo := &stubPropertyRepo{
		props: []entity.Property{
			listing("vasant vihar", 100, constants.UnitGaj),  // 900 sqft
			listing("vasant vihar", 500, constants.UnitSqft), // 500 sqft
			listing("vasant vihar", 50, constants.UnitYard),  // 450 sqft
		},
		total: 3,
	}
	logs := &memLogRepo{}
	svc := NewService(repo, logs, nil)

	res, err := svc.Search(context.Background(), primitive.NewObjectID(), Query{
		Area:    "vasant vihar",
		SizeMin: fptr(400),
		SizeMax: fptr(600),
	})
	require.NoError(t, err)
	require.Len(t, res.Properties, 2)
	for _, p := range res.Properties {
		sqft := p.Size.Sqft()
		assert.GreaterOrEqual(t, sqft, 400.0)
		assert.LessOrEqual(t, sqft, 600.0)
	}
}

func TestSearchKeepsSizelessListings(t *testing.T) {
	noSize := entity.Property{
		ID:       primitive.NewObjectID(),
		Location: parser.Location{City: "south delhi", Area: "saket"},
	}
	repo := &stubPropertyRepo{props: []entity.Property{noSize}, total: 1}
	svc := NewService(repo, &memLogRepo{}, nil)

	res, err := svc.Search(context.Background(), primitive.NewObjectID(), Query{
		SizeMin: fptr(100),
		SizeMax: fptr(200),
	})
	require.NoError(t, err)
	assert.Len(t, res.Properties, 1)
}

func TestSearchRanksExactAreaMatchFirst(t *testing.T) {
	exact := listing("vasant vihar", 200, constants.UnitGaj)
	partial := listing("vasant vihar extension", 200, constants.UnitGaj)
	repo := &stubPropertyRepo{props: []entity.Property{partial, exact}, total: 2}
	svc := NewService(repo, &memLogRepo{}, nil)

	res, err := svc.Search(context.Background(), primitive.NewObjectID(), Query{Area: "vasant vihar"})
	require.NoError(t, err)
	require.Len(t, res.Properties, 2)
	assert.Equal(t, exact.ID, res.Properties[0].ID)
	assert.Equal(t, partial.ID, res.Properties[1].ID)
}

func TestSearchLogsAndSavesRequirement(t *testing.T) {
	repo := &stubPropertyRepo{total: 0}
	logs := &memLogRepo{}
	svc := NewService(repo, logs, nil)
	userID := primitive.NewObjectID()

	_, err := svc.Search(context.Background(), userID, Query{
		Area:      "greater kailash",
		BudgetMin: fptr(5000000),
		BudgetMax: fptr(9000000),
	})
	require.NoError(t, err)

	require.Len(t, logs.logs, 1)
	assert.Equal(t, userID, logs.logs[0].UserID)
	assert.Equal(t, "greater kailash", logs.logs[0].Params.Area)
	assert.Equal(t, 0, logs.logs[0].ResultsCount)

	require.Len(t, logs.reqs, 1)
	assert.Equal(t, "greater kailash", logs.reqs[0].Area)
	assert.Equal(t, 5000000.0, logs.reqs[0].BudgetMin)
}

func TestSearchSkipsRequirementForEmptyQuery(t *testing.T) {
	repo := &stubPropertyRepo{total: 0}
	logs := &memLogRepo{}
	svc := NewService(repo, logs, nil)

	_, err := svc.Search(context.Background(), primitive.NewObjectID(), Query{})
	require.NoError(t, err)
	assert.Len(t, logs.logs, 1)
	assert.Empty(t, logs.reqs)
}

func TestSearchCanonicalizesFloorShorthand(t *testing.T) {
	repo := &stubPropertyRepo{total: 0}
	svc := NewService(repo, &memLogRepo{}, nil)

	_, err := svc.Search(context.Background(), primitive.NewObjectID(), Query{Floors: "GF, ff,terrace"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ground", "first", "terrace"}, repo.got.Floors)
}

func TestSearchPagination(t *testing.T) {
	repo := &stubPropertyRepo{total: 45}
	svc := NewService(repo, &memLogRepo{}, nil)

	res, err := svc.Search(context.Background(), primitive.NewObjectID(), Query{Page: 2, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pagination.Page)
	assert.Equal(t, int64(45), res.Pagination.Total)
	assert.Equal(t, int64(3), res.Pagination.Pages)
	assert.Equal(t, 2, repo.got.Page)
}
