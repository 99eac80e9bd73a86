package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/trainer-booking-api/internal/models"
	"github.com/noah-isme/trainer-booking-api/internal/repository"
)

// memoryBookingRepo mimics a store with a unique (date, time) index.
type memoryBookingRepo struct {
	mu      sync.Mutex
	records map[string]models.BookingRecord
	err     error
	delay   time.Duration
}

func newMemoryBookingRepo(seed ...models.BookingRecord) *memoryBookingRepo {
	repo := &memoryBookingRepo{records: make(map[string]models.BookingRecord)}
	for _, r := range seed {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		repo.records[r.Date+" "+r.Time] = r
	}
	return repo
}

func (m *memoryBookingRepo) wait(ctx context.Context) error {
	if m.err != nil {
		return m.err
	}
	if m.delay <= 0 {
		return nil
	}
	select {
	case <-time.After(m.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *memoryBookingRepo) FindBySlot(ctx context.Context, date, slotTime string) (*models.BookingRecord, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[date+" "+slotTime]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (m *memoryBookingRepo) ListByDate(ctx context.Context, date string) ([]models.BookingRecord, error) {
	return m.ListRange(ctx, models.BookingFilter{From: date, To: date})
}

func (m *memoryBookingRepo) ListRange(ctx context.Context, filter models.BookingFilter) ([]models.BookingRecord, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.BookingRecord{}
	for _, r := range m.records {
		if filter.From != "" && r.Date < filter.From {
			continue
		}
		if filter.To != "" && r.Date > filter.To {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (m *memoryBookingRepo) Create(ctx context.Context, record *models.BookingRecord) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := record.Date + " " + record.Time
	if _, exists := m.records[key]; exists {
		return repository.ErrDuplicate
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	m.records[key] = *record
	return nil
}

func (m *memoryBookingRepo) DeleteByID(ctx context.Context, id string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, r := range m.records {
		if r.ID == id {
			delete(m.records, key)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memoryBookingRepo) DeleteBlocked(ctx context.Context, date, slotTime string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := date + " " + slotTime
	r, ok := m.records[key]
	if !ok || !r.IsBlocked {
		return repository.ErrNotFound
	}
	delete(m.records, key)
	return nil
}

func (m *memoryBookingRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type staticSettings struct {
	settings models.Settings
	err      error
}

func (s staticSettings) Get(ctx context.Context) (*models.Settings, error) {
	if s.err != nil {
		return nil, s.err
	}
	cp := s.settings
	return &cp, nil
}

type notifierStub struct {
	mu    sync.Mutex
	calls []models.BookingRecord
}

func (n *notifierStub) NotifyNewBooking(record models.BookingRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, record)
}
