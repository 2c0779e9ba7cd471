package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/propertydesk/property-broker/internal/common"
	"github.com/propertydesk/property-broker/internal/entity"
	"github.com/propertydesk/property-broker/internal/extract"
	"github.com/propertydesk/property-broker/internal/parser"
	"github.com/propertydesk/property-broker/internal/repository"
	"github.com/propertydesk/property-broker/internal/schema"
)

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) Extract(_ context.Context, _ []byte) (extract.TextExtractionResult, error) {
	if s.err != nil {
		return extract.TextExtractionResult{}, s.err
	}
	return extract.TextExtractionResult{Text: s.text, Pages: 1, Method: "stub"}, nil
}

type memPropertyRepo struct {
	created []entity.Property
	failOn  string
}

func (m *memPropertyRepo) Create(_ context.Context, p *entity.Property) error {
	if m.failOn != "" && p.PropertyID == m.failOn {
		return errors.New("insert failed")
	}
	m.created = append(m.created, *p)
	return nil
}

func (m *memPropertyRepo) GetByID(context.Context, primitive.ObjectID) (*entity.Property, error) {
	return nil, errors.New("not implemented")
}

func (m *memPropertyRepo) FindAll(context.Context) ([]entity.Property, error) {
	return m.created, nil
}

func (m *memPropertyRepo) Search(context.Context, repository.PropertyQuery) ([]entity.Property, int64, error) {
	return nil, 0, nil
}

func (m *memPropertyRepo) Count(context.Context) (int64, error) {
	return int64(len(m.created)), nil
}

func (m *memPropertyRepo) CountByArea(context.Context) ([]repository.AreaCount, error) {
	return nil, nil
}

func (m *memPropertyRepo) DeleteAll(context.Context) (int64, error) {
	n := int64(len(m.created))
	m.created = nil
	return n, nil
}

type stubSnapshot struct {
	calls int
	err   error
}

func (s *stubSnapshot) SaveSnapshot(context.Context, string) (string, error) {
	s.calls++
	return "snapshot.xlsx", s.err
}

func newTestService(t *testing.T, ext extract.TextExtractor, repo repository.PropertyRepository) *Service {
	t.Helper()
	validator, err := schema.NewValidator()
	require.NoError(t, err)
	return NewService(ext, repo, validator, parser.Options{DefaultCity: "south delhi"}, nil)
}

const sampleSheet = `SOUTH DELHI RESIDENTIAL PROPERTIES
VASANT VIHAR
A-12 200 YD 3BR GF
B-4 150 SQFT FF SF
GREATER KAILASH
77 300 GAJ 4BR
`

func TestIngestPDFSavesValidRecords(t *testing.T) {
	repo := &memPropertyRepo{}
	svc := newTestService(t, stubExtractor{text: sampleSheet}, repo)

	res, err := svc.IngestPDF(context.Background(), []byte("%PDF"), "sheet.pdf")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Extracted)
	assert.Equal(t, 3, res.Saved)
	assert.Equal(t, 0, res.Failed)
	require.Len(t, repo.created, 3)

	first := repo.created[0]
	assert.Equal(t, "sheet.pdf", first.SourcePDF)
	assert.Equal(t, "south delhi", first.Location.City)
	assert.Equal(t, "vasant vihar", first.Location.Area)
	assert.False(t, first.UploadedAt.IsZero())
}

func TestIngestPDFExtractionFailureIsFatal(t *testing.T) {
	repo := &memPropertyRepo{}
	svc := newTestService(t, stubExtractor{err: errors.New("corrupt pdf")}, repo)

	_, err := svc.IngestPDF(context.Background(), []byte("junk"), "bad.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtractionFailed)
	assert.Empty(t, repo.created)
}

func TestIngestPDFNoRecordsIsFatal(t *testing.T) {
	repo := &memPropertyRepo{}
	svc := newTestService(t, stubExtractor{text: "RESIDENTIAL SALE PAGE 1\n"}, repo)

	_, err := svc.IngestPDF(context.Background(), []byte("%PDF"), "empty.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoRecordsExtracted)
	assert.Empty(t, repo.created)
}

func TestIngestPDFCountsPerRecordFailures(t *testing.T) {
	repo := &memPropertyRepo{failOn: "A-12"}
	svc := newTestService(t, stubExtractor{text: sampleSheet}, repo)

	res, err := svc.IngestPDF(context.Background(), []byte("%PDF"), "sheet.pdf")
	require.NoError(t, err)

	assert.Equal(t, 3, res.Extracted)
	assert.Equal(t, 2, res.Saved)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "A-12")
}

func TestIngestPDFRegeneratesSnapshot(t *testing.T) {
	repo := &memPropertyRepo{failOn: "A-12"}
	snap := &stubSnapshot{}
	svc := newTestService(t, stubExtractor{text: sampleSheet}, repo).
		WithSnapshot(snap, t.TempDir())

	res, err := svc.IngestPDF(context.Background(), []byte("%PDF"), "sheet.pdf")
	require.NoError(t, err)

	// the export runs even when some records failed persistence
	assert.Equal(t, 2, res.Saved)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, snap.calls)
}

func TestIngestPDFSnapshotFailureIsNotFatal(t *testing.T) {
	repo := &memPropertyRepo{}
	snap := &stubSnapshot{err: errors.New("disk full")}
	svc := newTestService(t, stubExtractor{text: sampleSheet}, repo).
		WithSnapshot(snap, t.TempDir())

	res, err := svc.IngestPDF(context.Background(), []byte("%PDF"), "sheet.pdf")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Saved)
	assert.Equal(t, 1, snap.calls)
}

func TestIngestResultKeepsRecordErrorsOffTheWire(t *testing.T) {
	res := Result{Saved: 2, Failed: 1, Errors: []string{"A-12: insert failed"}}

	body, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "insert failed")
	assert.Contains(t, string(body), `"failed":1`)
}
