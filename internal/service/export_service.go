package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/notehub/notehub-api/internal/models"
	appErrors "github.com/notehub/notehub-api/pkg/errors"
	"github.com/notehub/notehub-api/pkg/export"
)

// ExportFile bundles rendered export output for HTTP delivery.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders a user's resource catalog as CSV or PDF.
type ExportService struct {
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{csv: export.NewCSVExporter(), pdf: export.NewPDFExporter(), logger: logger}
}

var exportHeaders = []string{"Title", "Subject", "Type", "Semester", "Year", "Privacy", "Views", "Downloads", "Rating"}

// Render produces the export for the given format.
func (s *ExportService) Render(ctx context.Context, resources []models.Resource, format string) (*ExportFile, error) {
	dataset := export.Dataset{Headers: exportHeaders, Rows: make([]map[string]string, 0, len(resources))}
	for _, r := range resources {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Title":     r.Title,
			"Subject":   r.Subject,
			"Type":      string(r.ResourceType),
			"Semester":  fmt.Sprintf("%d", r.Semester),
			"Year":      fmt.Sprintf("%d", r.Year),
			"Privacy":   string(r.Privacy),
			"Views":     fmt.Sprintf("%d", r.Views),
			"Downloads": fmt.Sprintf("%d", r.Downloads),
			"Rating":    fmt.Sprintf("%.1f (%d)", r.AvgRating, r.RatingCount),
		})
	}

	stamp := time.Now().UTC().Format("20060102")
	switch strings.ToLower(format) {
	case "csv", "":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("my-resources-%s.csv", stamp),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case "pdf":
		data, err := s.pdf.Render(dataset, "My Resources")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("my-resources-%s.pdf", stamp),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}
