package service

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/trainer-booking-api/internal/models"
	"github.com/noah-isme/trainer-booking-api/pkg/jobs"
	"github.com/noah-isme/trainer-booking-api/pkg/mailer"
)

// Notification results recorded in booking_notifications_total.
const (
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
	NotificationDropped = "dropped"
	NotificationSkipped = "skipped"
)

const bookingNotificationJob = "booking.notification"

type mailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// NotificationService e-mails the trainer about new bookings from a background queue.
type NotificationService struct {
	sender    mailSender
	recipient string
	queue     *jobs.Queue
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewNotificationService builds the service. A nil sender or empty recipient disables delivery.
func NewNotificationService(sender mailSender, recipient string, metrics *MetricsService, logger *zap.Logger, queueCfg jobs.QueueConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &NotificationService{
		sender:    sender,
		recipient: strings.TrimSpace(recipient),
		metrics:   metrics,
		logger:    logger,
	}
	if queueCfg.Logger == nil {
		queueCfg.Logger = logger
	}
	svc.queue = jobs.NewQueue("notifications", svc.handle, queueCfg)
	return svc
}

// Enabled reports whether notifications will actually be delivered.
func (s *NotificationService) Enabled() bool {
	return s != nil && s.sender != nil && s.recipient != ""
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	if !s.Enabled() {
		s.logger.Warn("email service not configured, booking notifications disabled")
		return
	}
	s.queue.Start(ctx)
	s.logger.Info("booking notifications enabled", zap.String("recipient", s.recipient))
}

// Stop cancels outstanding deliveries and waits for the workers to exit.
func (s *NotificationService) Stop() {
	if s == nil {
		return
	}
	s.queue.Stop()
}

// NotifyNewBooking schedules a trainer e-mail. It never blocks and never reports failure.
func (s *NotificationService) NotifyNewBooking(record models.BookingRecord) {
	if s == nil {
		return
	}
	if !s.Enabled() {
		s.metrics.RecordNotification(NotificationSkipped)
		return
	}
	if err := s.queue.TryEnqueue(jobs.Job{Type: bookingNotificationJob, Payload: record}); err != nil {
		s.logger.Warn("booking notification dropped", zap.String("booking_id", record.ID), zap.Error(err))
		s.metrics.RecordNotification(NotificationDropped)
	}
}

func (s *NotificationService) handle(ctx context.Context, job jobs.Job) error {
	record, ok := job.Payload.(models.BookingRecord)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	msg, err := RenderBookingEmail(record)
	if err != nil {
		s.logger.Error("render booking notification", zap.String("booking_id", record.ID), zap.Error(err))
		s.metrics.RecordNotification(NotificationFailed)
		return nil
	}
	msg.To = []string{s.recipient}

	if err := s.sender.Send(ctx, msg); err != nil {
		s.metrics.RecordNotification(NotificationFailed)
		return fmt.Errorf("send booking notification %s: %w", record.ID, err)
	}
	s.metrics.RecordNotification(NotificationSent)
	s.logger.Info("booking notification sent", zap.String("booking_id", record.ID), zap.Int("attempt", job.Attempt+1))
	return nil
}

type bookingEmailView struct {
	Name  string
	Email string
	Phone string
	Date  string
	Time  string
	Notes string
}

var bookingTextTemplate = texttemplate.Must(texttemplate.New("booking_text").Parse(`New Booking Confirmed!

Client: {{.Name}}
Email: {{.Email}}
Phone: {{.Phone}}
Date: {{.Date}}
Time: {{.Time}}
{{- if .Notes}}
Notes: {{.Notes}}
{{- end}}

Please confirm this booking in your calendar.
`))

var bookingHTMLTemplate = htmltemplate.Must(htmltemplate.New("booking_html").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background-color: #f8bc1a; color: white; padding: 20px; text-align: center;">
      <h2>New Booking Confirmed!</h2>
    </div>
    <div style="background-color: #f9f9f9; padding: 30px;">
      <p>You have a new booking:</p>
      <table>
        <tr><td><strong>Client Name:</strong></td><td>{{.Name}}</td></tr>
        <tr><td><strong>Email:</strong></td><td>{{.Email}}</td></tr>
        <tr><td><strong>Phone:</strong></td><td>{{.Phone}}</td></tr>
        <tr><td><strong>Date:</strong></td><td>{{.Date}}</td></tr>
        <tr><td><strong>Time:</strong></td><td>{{.Time}}</td></tr>
        {{- if .Notes}}
        <tr><td><strong>Notes:</strong></td><td>{{.Notes}}</td></tr>
        {{- end}}
      </table>
      <p>Please confirm this booking in your calendar.</p>
    </div>
    <p style="text-align: center; color: #666; font-size: 12px;">This is an automated notification from your Fitness Booking System.</p>
  </div>
</body>
</html>
`))

// RenderBookingEmail builds the trainer notification for a booking. The recipient is left empty.
func RenderBookingEmail(record models.BookingRecord) (mailer.Message, error) {
	day, err := time.Parse(dateLayout, record.Date)
	if err != nil {
		return mailer.Message{}, fmt.Errorf("parse booking date: %w", err)
	}
	clock, err := time.Parse("15:04", record.Time)
	if err != nil {
		return mailer.Message{}, fmt.Errorf("parse booking time: %w", err)
	}
	view := bookingEmailView{
		Name:  record.Name,
		Email: record.Email,
		Phone: record.Phone,
		Date:  day.Format("Monday, January 2, 2006"),
		Time:  clock.Format("3:04 PM"),
		Notes: strings.TrimSpace(record.Notes),
	}

	var text, html bytes.Buffer
	if err := bookingTextTemplate.Execute(&text, view); err != nil {
		return mailer.Message{}, fmt.Errorf("render text body: %w", err)
	}
	if err := bookingHTMLTemplate.Execute(&html, view); err != nil {
		return mailer.Message{}, fmt.Errorf("render html body: %w", err)
	}
	return mailer.Message{
		Subject:  fmt.Sprintf("New Booking: %s - %s at %s", view.Name, view.Date, view.Time),
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}
