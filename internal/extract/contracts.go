package extract

import (
	"context"
	"time"
)

// TextExtractor turns an uploaded document into its raw text layer.
// Implementations must honor ctx cancellation; extraction is the only
// unbounded external call in the ingestion pipeline.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (TextExtractionResult, error)
}

// TextExtractionResult is the outcome of one extraction.
type TextExtractionResult struct {
	Text     string
	Pages    int
	Method   string // "pdf-text"
	Duration time.Duration
	Warnings []string
}
