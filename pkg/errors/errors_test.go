package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneMatchesTemplateByCode(t *testing.T) {
	err := Clone(ErrTooSoon, "bookings must be made at least 24 hours in advance")
	wrapped := fmt.Errorf("create booking: %w", err)

	assert.True(t, stdErrors.Is(wrapped, ErrTooSoon))
	assert.False(t, stdErrors.Is(wrapped, ErrTooFarAhead))
	assert.Equal(t, ErrTooSoon.Message, "booking is too soon")
}

func TestFromErrorFallsBackToInternal(t *testing.T) {
	appErr := FromError(stdErrors.New("boom"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestWithDetailsCopiesMessages(t *testing.T) {
	details := []string{"startHour must be less than endHour"}
	err := WithDetails(ErrInvalidSettings, "", details)
	details[0] = "mutated"

	assert.Equal(t, "INVALID_SETTINGS", err.Code)
	assert.Equal(t, []string{"startHour must be less than endHour"}, err.Details)
}

func TestUnavailableKeepsCause(t *testing.T) {
	err := Unavailable(context.DeadlineExceeded, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
	assert.Equal(t, ErrStoreUnavailable.Message, err.Message)
}
