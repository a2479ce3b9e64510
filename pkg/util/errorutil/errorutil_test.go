package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassesThroughWrapped(t *testing.T) {
	base := NewAccessDenied()
	wrapped := fmt.Errorf("cancel ticket: %w", base)

	de := ToDomainError(wrapped)
	require.NotNil(t, de)
	assert.Equal(t, CodeAccessDenied, de.Code)
	assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
}

func TestToDomainErrorWrapsUnknownAsInternal(t *testing.T) {
	cause := errors.New("connection reset")
	de := ToDomainError(cause)

	assert.Equal(t, CodeInternal, de.Code)
	assert.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	assert.ErrorIs(t, de, cause)
}

func TestToDomainErrorNil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
	assert.Equal(t, "", CodeOf(nil))
}

func TestInsufficientCapacityDetails(t *testing.T) {
	de := ToDomainError(NewInsufficientCapacity(3, -1))
	assert.Equal(t, CodeInsufficientCapacity, de.Code)
	assert.Equal(t, 0, de.Details["available"])
	assert.Equal(t, 3, de.Details["requested"])
	assert.Equal(t, "only 0 seats available", de.Message)
}

func TestInvalidPromoCodeCarriesAllViolations(t *testing.T) {
	violations := []string{"Promo code is inactive", "Promo code has expired"}
	de := ToDomainError(NewInvalidPromoCode(violations))
	assert.Equal(t, http.StatusUnprocessableEntity, de.HTTPStatus)
	assert.Equal(t, violations, de.Details["errors"])
}
