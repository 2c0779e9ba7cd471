package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads the embedded text layer of a PDF. Listing sheets are
// digitally produced, so there is no OCR stage; a scanned sheet simply
// yields no text and fails ingestion upstream.
type PDFExtractor struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewPDFExtractor creates an extractor. timeout bounds a single document;
// zero means 60s.
func NewPDFExtractor(timeout time.Duration, logger *slog.Logger) *PDFExtractor {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{timeout: timeout, logger: logger}
}

// Extract returns the full text of the document, one page per block.
// A timeout is treated the same as a malformed document: the caller sees a
// fatal extraction error either way.
func (e *PDFExtractor) Extract(ctx context.Context, data []byte) (TextExtractionResult, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	type outcome struct {
		res TextExtractionResult
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		res, err := extractText(data)
		ch <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		e.logger.Error("pdf extraction timed out", "timeout", e.timeout)
		return TextExtractionResult{}, fmt.Errorf("extract text: %w", ctx.Err())
	case out := <-ch:
		out.res.Duration = time.Since(start)
		if out.err != nil {
			e.logger.Error("pdf extraction failed", "error", out.err)
			return out.res, out.err
		}
		e.logger.Info("pdf text extracted",
			"pages", out.res.Pages,
			"bytes", len(out.res.Text),
			"elapsed_ms", out.res.Duration.Milliseconds(),
		)
		return out.res, nil
	}
}

func extractText(data []byte) (res TextExtractionResult, err error) {
	// The reader panics on some malformed inputs; fold that into the error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return res, fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	total := r.NumPage()
	for pageNr := 1; pageNr <= total; pageNr++ {
		p := r.Page(pageNr)
		if p.V.IsNull() {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d unreadable", pageNr))
			continue
		}
		text, perr := p.GetPlainText(nil)
		if perr != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", pageNr, perr))
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}

	res.Text = sb.String()
	res.Pages = total
	res.Method = "pdf-text"
	if strings.TrimSpace(res.Text) == "" {
		return res, fmt.Errorf("no text content found in pdf")
	}
	return res, nil
}
