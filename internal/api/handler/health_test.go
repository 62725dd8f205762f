package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/friendfinder/internal/testutil"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthWithoutPinger(t *testing.T) {
	h := NewHealthHandler("memory", nil, testutil.NopLogger())

	rr := httptest.NewRecorder()
	h.Check(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","storage":"memory"}`, rr.Body.String())
}

func TestHealthStorageDown(t *testing.T) {
	h := NewHealthHandler("redis", pingerFunc(func(context.Context) error {
		return errors.New("connection refused")
	}), testutil.NopLogger())

	rr := httptest.NewRecorder()
	h.Check(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"status":"unavailable","storage":"redis"}`, rr.Body.String())
}

func TestHealthStorageUp(t *testing.T) {
	h := NewHealthHandler("postgres", pingerFunc(func(context.Context) error { return nil }), testutil.NopLogger())

	rr := httptest.NewRecorder()
	h.Check(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
}
