package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probe(t *testing.T, h http.HandlerFunc) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestLivenessHandler_AlwaysReturns200(t *testing.T) {
	h := NewHandler()
	h.Register("catalog", func(context.Context) error { return fmt.Errorf("empty") })

	code, resp := probe(t, h.LivenessHandler())

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestReadinessHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return fmt.Errorf("cart store full") }

	tests := []struct {
		name        string
		critical    Checker
		nonCritical Checker
		wantCode    int
		wantStatus  Status
	}{
		{"all healthy", ok, ok, http.StatusOK, StatusUp},
		{"non-critical down", ok, fail, http.StatusOK, StatusDegraded},
		{"critical down", fail, ok, http.StatusServiceUnavailable, StatusDown},
		{"both down", fail, fail, http.StatusServiceUnavailable, StatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler()
			h.RegisterCritical("catalog", tt.critical)
			h.RegisterNonCritical("cart_store", tt.nonCritical)

			code, resp := probe(t, h.ReadinessHandler())

			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.True(t, resp.Checks["catalog"].Critical)
			assert.False(t, resp.Checks["cart_store"].Critical)
		})
	}
}

func TestReadinessHandler_ReportsCheckError(t *testing.T) {
	h := NewHandler()
	h.RegisterNonCritical("cart_store", func(context.Context) error { return fmt.Errorf("10000 of 10000 views in use") })

	_, resp := probe(t, h.ReadinessHandler())

	assert.Equal(t, StatusDown, resp.Checks["cart_store"].Status)
	assert.Equal(t, "10000 of 10000 views in use", resp.Checks["cart_store"].Error)
}

func TestReadinessHandler_NoChecks(t *testing.T) {
	code, resp := probe(t, NewHandler().ReadinessHandler())

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
}

func TestRegister_OverwritesAndDefaultsCritical(t *testing.T) {
	h := NewHandler()
	h.RegisterNonCritical("catalog", func(context.Context) error { return nil })
	h.Register("catalog", func(context.Context) error { return fmt.Errorf("fail") })

	code, resp := probe(t, h.ReadinessHandler())

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.True(t, resp.Checks["catalog"].Critical)
	assert.Equal(t, []string{"catalog"}, h.Names())
}
