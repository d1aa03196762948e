package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrInvalidInput, ErrForbidden, ErrOutOfStock, ErrRateLimited, ErrInternal}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j])
		}
	}
}

func TestAppError_ErrorString(t *testing.T) {
	withCause := &AppError{Code: CodeInternal, Message: "render failed", Err: fmt.Errorf("template: missing")}
	assert.Equal(t, "INTERNAL_ERROR: render failed: template: missing", withCause.Error())

	bare := &AppError{Code: CodeNotFound, Message: "cart view not found"}
	assert.Equal(t, "NOT_FOUND: cart view not found", bare.Error())
}

func TestNotFound(t *testing.T) {
	err := NotFound("product", "42")
	require.NotNil(t, err)
	assert.Equal(t, CodeNotFound, err.Code)
	assert.Equal(t, `product "42" not found`, err.Message)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestOutOfStock(t *testing.T) {
	err := OutOfStock("USB-C Cable")
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Contains(t, err.Message, "USB-C Cable")
	assert.True(t, errors.Is(err, ErrOutOfStock))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"app error", InvalidInput("bad"), http.StatusBadRequest},
		{"wrapped app error", Wrap(Forbidden("not yours"), "set quantity"), http.StatusForbidden},
		{"bare sentinel", ErrNotFound, http.StatusNotFound},
		{"wrapped sentinel", fmt.Errorf("lookup: %w", ErrInvalidInput), http.StatusBadRequest},
		{"out of stock sentinel", ErrOutOfStock, http.StatusConflict},
		{"rate limited", RateLimited(), http.StatusTooManyRequests},
		{"rate limited sentinel", ErrRateLimited, http.StatusTooManyRequests},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestAs(t *testing.T) {
	orig := NotFound("cart view", "abc")
	assert.Same(t, orig, As(Wrap(orig, "get cart")))

	sentinel := As(fmt.Errorf("lookup: %w", ErrNotFound))
	assert.Equal(t, CodeNotFound, sentinel.Code)

	unknown := As(errors.New("disk on fire"))
	assert.Equal(t, CodeInternal, unknown.Code)
	assert.Equal(t, "an internal error occurred", unknown.Message)
}
