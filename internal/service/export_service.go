package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/laboserve/laboserve-api/internal/models"
	appErrors "github.com/laboserve/laboserve-api/pkg/errors"
	"github.com/laboserve/laboserve-api/pkg/export"
)

// ExportFormat selects the history export renderer.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

var historyHeaders = []string{"Tanggal", "Laboratorium", "Jam", "Kegiatan", "Kategori", "Status", "Diajukan"}

// ExportResult carries rendered bytes plus download metadata.
type ExportResult struct {
	Content     []byte
	Filename    string
	ContentType string
}

// ExportService renders reservation history as CSV or PDF downloads.
type ExportService struct {
	reservations reservationStore
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	logger       *zap.Logger
}

// NewExportService instantiates ExportService.
func NewExportService(reservations reservationStore, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		reservations: reservations,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		logger:       logger,
	}
}

// History renders the reservation history matching the filter. Admins pass an
// open filter; regular users are pinned to their own rows by the handler.
func (s *ExportService) History(ctx context.Context, filter models.ReservationFilter, format ExportFormat) (*ExportResult, error) {
	filter.Page = 1
	filter.PageSize = 100
	var rows []map[string]string
	for {
		reservations, total, err := s.reservations.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reservation history")
		}
		for _, res := range reservations {
			rows = append(rows, map[string]string{
				"Tanggal":      res.Date.Format("2006-01-02"),
				"Laboratorium": res.LabName,
				"Jam":          res.Interval().String(),
				"Kegiatan":     res.Description,
				"Kategori":     string(res.Category),
				"Status":       string(res.Status),
				"Diajukan":     res.CreatedAt.Format("2006-01-02 15:04"),
			})
		}
		if len(rows) >= total || len(reservations) == 0 {
			break
		}
		filter.Page++
	}

	dataset := export.Dataset{Headers: historyHeaders, Rows: rows}
	stamp := time.Now().UTC().Format("20060102")

	switch format {
	case FormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Content:     content,
			Filename:    fmt.Sprintf("riwayat-reservasi-%s.csv", stamp),
			ContentType: "text/csv",
		}, nil
	case FormatPDF:
		content, err := s.pdf.Render(dataset, "Riwayat Reservasi Laboratorium")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Content:     content,
			Filename:    fmt.Sprintf("riwayat-reservasi-%s.pdf", stamp),
			ContentType: "application/pdf",
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
