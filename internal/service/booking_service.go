package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/trainer-booking-api/internal/dto"
	"github.com/noah-isme/trainer-booking-api/internal/models"
	"github.com/noah-isme/trainer-booking-api/internal/repository"
	appErrors "github.com/noah-isme/trainer-booking-api/pkg/errors"
	"github.com/noah-isme/trainer-booking-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string, widths ...float64) ([]byte, error)
}

// ExportFile is a rendered booking export ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// BookingService serves admin booking listings, cancellations and exports.
type BookingService struct {
	bookings bookingRepository
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
	store    storeGuard
	location *time.Location
	now      func() time.Time
}

// NewBookingService constructs a BookingService. Nil renderers fall back to the defaults.
func NewBookingService(bookings bookingRepository, logger *zap.Logger, storeTimeout time.Duration, location *time.Location, metrics *MetricsService, csv csvRenderer, pdf pdfRenderer) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &BookingService{
		bookings: bookings,
		csv:      csv,
		pdf:      pdf,
		logger:   logger,
		store:    newStoreGuard(storeTimeout, metrics),
		location: location,
		now:      time.Now,
	}
}

// List returns bookings and blocks sorted by date then time.
func (s *BookingService) List(ctx context.Context, query dto.ListBookingsQuery) ([]models.BookingRecord, error) {
	filter, err := s.filter(query)
	if err != nil {
		return nil, err
	}
	var records []models.BookingRecord
	if err := s.store.run(ctx, "bookings.list_range", func(ctx context.Context) error {
		var err error
		records, err = s.bookings.ListRange(ctx, filter)
		return err
	}); err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.BookingRecord{}
	}
	return records, nil
}

func (s *BookingService) filter(query dto.ListBookingsQuery) (models.BookingFilter, error) {
	filter := models.BookingFilter{From: strings.TrimSpace(query.From), To: strings.TrimSpace(query.To)}
	var invalid []string
	if filter.From != "" {
		if _, ok := parseDate(filter.From, s.location); !ok {
			invalid = append(invalid, "from must be a valid YYYY-MM-DD date")
		}
	}
	if filter.To != "" {
		if _, ok := parseDate(filter.To, s.location); !ok {
			invalid = append(invalid, "to must be a valid YYYY-MM-DD date")
		}
	}
	if len(invalid) > 0 {
		return filter, appErrors.WithDetails(appErrors.ErrInvalidDate, "", invalid)
	}
	if filter.From != "" && filter.To != "" && filter.To < filter.From {
		return filter, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	return filter, nil
}

// Cancel deletes a booking or block by id.
func (s *BookingService) Cancel(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return appErrors.WithDetails(appErrors.ErrMissingField, "", []string{"id is required"})
	}
	err := s.store.run(ctx, "bookings.delete", func(ctx context.Context) error {
		return s.bookings.DeleteByID(ctx, id)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
	}
	if err != nil {
		return err
	}
	s.logger.Info("booking cancelled", zap.String("booking_id", id))
	return nil
}

// BookedSlots returns the occupied times of date keyed by HH:MM.
func (s *BookingService) BookedSlots(ctx context.Context, date string) (map[string]models.SlotStatus, error) {
	day, ok := parseDate(strings.TrimSpace(date), s.location)
	if !ok {
		return nil, appErrors.ErrInvalidDate
	}
	var records []models.BookingRecord
	if err := s.store.run(ctx, "bookings.list_by_date", func(ctx context.Context) error {
		var err error
		records, err = s.bookings.ListByDate(ctx, day.Format(dateLayout))
		return err
	}); err != nil {
		return nil, err
	}
	result := make(map[string]models.SlotStatus, len(records))
	for _, r := range records {
		result[r.Time] = models.SlotStatus{IsBooked: true, IsBlocked: r.IsBlocked}
	}
	return result, nil
}

var exportHeaders = []string{"Date", "Time", "Status", "Name", "Email", "Phone", "Notes", "Created"}

// Export renders the listed bookings as CSV or PDF.
func (s *BookingService) Export(ctx context.Context, query dto.ListBookingsQuery) (*ExportFile, error) {
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, "unsupported export format", []string{"format must be csv or pdf"})
	}

	records, err := s.List(ctx, query)
	if err != nil {
		return nil, err
	}
	dataset := bookingDataset(records, s.location)
	stamp := s.now().In(s.location).Format("20060102-150405")

	switch format {
	case ExportFormatPDF:
		body, err := s.pdf.Render(dataset, exportTitle(query), 1.1, 0.7, 0.8, 1.6, 2, 1.2, 2.2, 1.4)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportFile{Filename: "bookings-" + stamp + ".pdf", ContentType: "application/pdf", Body: body}, nil
	default:
		body, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportFile{Filename: "bookings-" + stamp + ".csv", ContentType: "text/csv; charset=utf-8", Body: body}, nil
	}
}

func bookingDataset(records []models.BookingRecord, loc *time.Location) export.Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		status := "Booked"
		if r.IsBlocked {
			status = "Blocked"
		}
		rows = append(rows, map[string]string{
			"Date":    r.Date,
			"Time":    r.Time,
			"Status":  status,
			"Name":    r.Name,
			"Email":   r.Email,
			"Phone":   r.Phone,
			"Notes":   r.Notes,
			"Created": r.CreatedAt.In(loc).Format("2006-01-02 15:04"),
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

func exportTitle(query dto.ListBookingsQuery) string {
	switch {
	case query.From != "" && query.To != "":
		return fmt.Sprintf("Bookings %s to %s", query.From, query.To)
	case query.From != "":
		return "Bookings from " + query.From
	case query.To != "":
		return "Bookings until " + query.To
	default:
		return "All bookings"
	}
}
