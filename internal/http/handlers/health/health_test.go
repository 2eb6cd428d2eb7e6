package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type PingerMock struct {
	mock.Mock
}

func (m *PingerMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		pinger := new(PingerMock)
		pinger.On("Ping", mock.Anything).Return(nil).Once()

		rec := httptest.NewRecorder()
		New(newNoopLogger(), pinger).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)

		var got map[string]any
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, "OK", got["status"])
		data := got["data"].(map[string]any)
		assert.Equal(t, "healthy", data["status"])
	})

	t.Run("database down", func(t *testing.T) {
		pinger := new(PingerMock)
		pinger.On("Ping", mock.Anything).Return(errors.New("connection refused")).Once()

		rec := httptest.NewRecorder()
		New(newNoopLogger(), pinger).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var got map[string]any
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, "database unreachable", got["error"])
	})
}
