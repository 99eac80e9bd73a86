package service

import (
	"context"
	"errors"
	"time"

	"github.com/noah-isme/trainer-booking-api/internal/repository"
	appErrors "github.com/noah-isme/trainer-booking-api/pkg/errors"
)

const defaultStoreTimeout = 3 * time.Second

type storeObserver interface {
	ObserveStoreCall(operation string, duration time.Duration, err error)
}

// storeGuard bounds every store call and turns driver failures into STORE_UNAVAILABLE.
// repository.ErrNotFound and repository.ErrDuplicate pass through for the caller to map.
type storeGuard struct {
	timeout  time.Duration
	observer storeObserver
}

func newStoreGuard(timeout time.Duration, observer storeObserver) storeGuard {
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	return storeGuard{timeout: timeout, observer: observer}
}

func (g storeGuard) run(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	err := fn(callCtx)
	if g.observer != nil {
		g.observer.ObserveStoreCall(operation, time.Since(start), err)
	}
	if err == nil || errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return appErrors.Unavailable(err, "")
}
