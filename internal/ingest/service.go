package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/propertydesk/property-broker/constants"
	"github.com/propertydesk/property-broker/internal/common"
	"github.com/propertydesk/property-broker/internal/entity"
	"github.com/propertydesk/property-broker/internal/extract"
	"github.com/propertydesk/property-broker/internal/parser"
	"github.com/propertydesk/property-broker/internal/repository"
	"github.com/propertydesk/property-broker/internal/schema"
)

// Result summarizes one listing-sheet ingestion. Per-record failures are
// surfaced to callers as the Failed count only; the Errors strings stay
// out of any wire response and exist for logs and the CLI.
type Result struct {
	SourcePDF string        `json:"sourcePdf"`
	Extracted int           `json:"extracted"`
	Saved     int           `json:"saved"`
	Dropped   int           `json:"dropped"`
	Failed    int           `json:"failed"`
	Errors    []string      `json:"-"`
	Duration  time.Duration `json:"-"`
}

// DirStats aggregates a directory import.
type DirStats struct {
	Scanned   int `json:"scanned"`
	Matched   int `json:"matched"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	SavedRows int `json:"savedRows"`
}

// SnapshotWriter regenerates the denormalized dataset workbook after an
// ingest. Failures are logged, never fatal.
type SnapshotWriter interface {
	SaveSnapshot(ctx context.Context, dir string) (string, error)
}

// Service runs the extract -> parse -> validate -> persist pipeline for
// uploaded listing sheets.
type Service struct {
	extractor   extract.TextExtractor
	props       repository.PropertyRepository
	validator   *schema.Validator
	opts        parser.Options
	snapshots   SnapshotWriter
	snapshotDir string
	logger      *slog.Logger
}

// NewService creates the ingestion service.
func NewService(extractor extract.TextExtractor, props repository.PropertyRepository, validator *schema.Validator, opts parser.Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		extractor: extractor,
		props:     props,
		validator: validator,
		opts:      opts,
		logger:    logger,
	}
}

// WithSnapshot makes every successful ingest rewrite the dataset workbook
// under dir.
func (s *Service) WithSnapshot(w SnapshotWriter, dir string) *Service {
	s.snapshots = w
	s.snapshotDir = dir
	return s
}

// IngestPDF extracts text from the given PDF bytes, parses property
// records out of it, and persists each record that passes validation.
// Extraction failure and an empty parse are fatal; a record that fails
// validation or persistence is counted and skipped.
func (s *Service) IngestPDF(ctx context.Context, data []byte, filename string) (Result, error) {
	start := time.Now()
	out := Result{SourcePDF: filename}

	extraction, err := s.extractor.Extract(ctx, data)
	if err != nil {
		s.logger.Error("text extraction failed", "file", filename, "error", err)
		return out, common.NewAppError("EXTRACTION_FAILED", "could not extract text from pdf", common.ErrExtractionFailed)
	}

	asm := parser.NewAssembler(s.opts, s.logger)
	parsed := asm.Parse(extraction.Text)
	out.Extracted = len(parsed.Records)
	out.Dropped = parsed.Dropped

	if len(parsed.Records) == 0 {
		s.logger.Warn("no records extracted", "file", filename, "pages", extraction.Pages)
		return out, common.NewAppError("NO_RECORDS", "no properties found in pdf", common.ErrNoRecordsExtracted)
	}

	uploadedAt := time.Now()
	for _, rec := range parsed.Records {
		if err := s.validator.Validate(rec); err != nil {
			out.Failed++
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", rec.PropertyID, err))
			s.logger.Warn("record failed validation", "file", filename, "property_id", rec.PropertyID, "error", err)
			continue
		}
		p := entity.FromRecord(rec, filename, uploadedAt)
		if err := s.props.Create(ctx, &p); err != nil {
			out.Failed++
			out.Errors = append(out.Errors, fmt.Sprintf("%s: %v", rec.PropertyID, err))
			s.logger.Error("record persist failed", "file", filename, "property_id", rec.PropertyID, "error", err)
			continue
		}
		out.Saved++
	}

	if s.snapshots != nil {
		if _, err := s.snapshots.SaveSnapshot(ctx, s.snapshotDir); err != nil {
			s.logger.Warn("snapshot export failed", "file", filename, "error", err)
		}
	}

	out.Duration = time.Since(start)
	s.logger.Info("ingest.pdf.ok",
		"file", filename,
		"extracted", out.Extracted,
		"saved", out.Saved,
		"dropped", out.Dropped,
		"failed", out.Failed,
		"elapsed_ms", out.Duration.Milliseconds(),
	)
	return out, nil
}

// IngestFile reads one PDF from disk and ingests it. Used by the CLI.
func (s *Service) IngestFile(ctx context.Context, path string) (Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Result{}, common.WrapError(err, "abs path")
	}
	ext := constants.NormalizeExt(filepath.Ext(abs))
	if !constants.IsAllowedExt(ext) {
		return Result{}, common.NewAppError("BAD_EXTENSION", fmt.Sprintf("unsupported extension %q", ext), common.ErrInvalidInput)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return Result{}, common.WrapError(err, "stat")
	}
	if info.Size() > constants.MaxUploadBytes {
		return Result{}, common.NewAppError("TOO_LARGE", "pdf exceeds the upload size limit", common.ErrInvalidInput)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return Result{}, common.WrapError(err, "read file")
	}
	return s.IngestPDF(ctx, data, filepath.Base(abs))
}

// IngestDirectory walks root, skips hidden entries, and ingests every
// PDF found. Per-file failures are counted, not fatal.
func (s *Service) IngestDirectory(ctx context.Context, root string) ([]Result, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, common.NewAppError("BAD_INPUT", "root path is required", common.ErrInvalidInput)
	}

	var results []Result
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			stats.Failed++
			results = append(results, Result{SourcePDF: path, Errors: []string{walkErr.Error()}})
			return nil
		}
		if isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !constants.IsAllowedExt(constants.NormalizeExt(filepath.Ext(path))) {
			return nil
		}
		stats.Matched++

		r, err := s.IngestFile(ctx, path)
		if err != nil {
			stats.Failed++
			results = append(results, Result{SourcePDF: path, Errors: []string{err.Error()}})
			return nil
		}
		results = append(results, r)
		stats.Succeeded++
		stats.SavedRows += r.Saved
		return nil
	})
	if err != nil {
		return results, stats, common.WrapError(err, "walk")
	}
	return results, stats, nil
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && base != ".." && strings.HasPrefix(base, ".")
}
