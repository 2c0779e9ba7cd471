package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/propertydesk/property-broker/internal/repository"
)

// Service is a tiny façade over repositories that produces XLSX bytes
// for admin reports.
type Service struct {
	props  repository.PropertyRepository
	users  repository.UserRepository
	subs   repository.SubscriptionRepository
	logger *slog.Logger
}

func NewService(props repository.PropertyRepository, users repository.UserRepository, subs repository.SubscriptionRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{props: props, users: users, subs: subs, logger: logger}
}

// ExportPropertiesXLSX returns an XLSX workbook of every listing,
// denormalized one row per property.
func (s *Service) ExportPropertiesXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	props, err := s.props.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Properties"
	rows := 0

	writeHeaders(f, sheet, []string{
		"City",
		"Area",
		"Property ID",
		"Size",
		"Unit",
		"Size (sqft)",
		"Floors",
		"Bedrooms",
		"Status",
		"Price",
		"Detail",
		"Source PDF",
		"Uploaded At",
	})

	row := 2
	for _, p := range props {
		write := cellWriter(f, sheet, row)

		write(1, p.Location.City)
		write(2, p.Location.Area)
		write(3, p.PropertyID)
		if p.Size != nil {
			write(4, p.Size.Value)
			write(5, string(p.Size.Unit))
			write(6, p.Size.Sqft())
		}
		floors := make([]string, len(p.Floors))
		for i, fl := range p.Floors {
			floors[i] = string(fl)
		}
		write(7, strings.Join(floors, ", "))
		if p.Bedrooms != nil {
			write(8, *p.Bedrooms)
		}
		write(9, string(p.Status))
		if p.Price != nil {
			write(10, *p.Price)
		}
		write(11, truncate(p.Detail, 140))
		write(12, p.SourcePDF)
		if !p.UploadedAt.IsZero() {
			write(13, p.UploadedAt.Format("2006-01-02"))
		}

		row++
		rows++
	}

	_ = f.SetColWidth(sheet, "A", "B", 18)
	_ = f.SetColWidth(sheet, "C", "C", 12)
	_ = f.SetColWidth(sheet, "G", "G", 24)
	_ = f.SetColWidth(sheet, "K", "K", 48)
	_ = f.SetColWidth(sheet, "L", "L", 32)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.properties.ok",
		"rows", rows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ExportUsersXLSX returns an XLSX workbook of every broker account.
func (s *Service) ExportUsersXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	brokers, err := s.users.ListBrokers(ctx)
	if err != nil {
		return nil, fmt.Errorf("query brokers: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Users"

	writeHeaders(f, sheet, []string{
		"Full Name",
		"Email",
		"Phone",
		"Active",
		"Registered At",
	})

	row := 2
	for _, u := range brokers {
		write := cellWriter(f, sheet, row)
		write(1, u.FullName)
		write(2, u.Email)
		write(3, u.PhoneNumber)
		write(4, u.IsActive)
		write(5, u.CreatedAt.Format("2006-01-02"))
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 26)
	_ = f.SetColWidth(sheet, "B", "B", 32)
	_ = f.SetColWidth(sheet, "C", "C", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.users.ok",
		"rows", len(brokers),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ExportSubscriptionsXLSX returns an XLSX workbook of every subscription.
func (s *Service) ExportSubscriptionsXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	subs, err := s.subs.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Subscriptions"

	writeHeaders(f, sheet, []string{
		"User ID",
		"Plan",
		"Amount",
		"Payment ID",
		"Start Date",
		"Expiry Date",
		"Active",
	})

	row := 2
	for _, sub := range subs {
		write := cellWriter(f, sheet, row)
		write(1, sub.UserID.Hex())
		write(2, string(sub.PlanType))
		write(3, sub.Amount)
		write(4, sub.PaymentID)
		write(5, sub.StartDate.Format("2006-01-02"))
		write(6, sub.ExpiryDate.Format("2006-01-02"))
		write(7, sub.IsActive)
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 28)
	_ = f.SetColWidth(sheet, "D", "D", 24)
	_ = f.SetColWidth(sheet, "E", "F", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.subscriptions.ok",
		"rows", len(subs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// SaveSnapshot writes a properties workbook into dir, named by date.
// Best effort after an ingest; callers only log the error.
func (s *Service) SaveSnapshot(ctx context.Context, dir string) (string, error) {
	data, err := s.ExportPropertiesXLSX(ctx)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("properties-%s.xlsx", time.Now().Format("2006-01-02")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// SaveUsersSnapshot rewrites the on-disk users workbook. Called best
// effort after each registration; callers only log the error.
func (s *Service) SaveUsersSnapshot(ctx context.Context, dir string) (string, error) {
	data, err := s.ExportUsersXLSX(ctx)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	path := filepath.Join(dir, "users.xlsx")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write users workbook: %w", err)
	}
	return path, nil
}

func writeHeaders(f *excelize.File, sheet string, headers []string) {
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, _ = f.NewSheet(sheet)
	}
	if index, _ := f.GetSheetIndex(sheet); index != -1 {
		f.SetActiveSheet(index)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func cellWriter(f *excelize.File, sheet string, row int) func(col int, v any) {
	return func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
