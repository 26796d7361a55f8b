package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sonirghv/Gemini-backend/internal/infrastructure/memstore"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newHandler(limit int, window time.Duration) http.Handler {
	limiter := memstore.NewRateLimiter(window, zap.NewNop())
	rl := NewRateLimiter(limiter, limit, window, zap.NewNop())
	return rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func doRequest(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_Middleware(t *testing.T) {
	t.Run("requests under the limit pass", func(t *testing.T) {
		handler := newHandler(3, time.Minute)

		for i := 0; i < 3; i++ {
			rec := doRequest(handler, "10.0.0.1:1234")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		}
	})

	t.Run("request over the limit is rejected", func(t *testing.T) {
		handler := newHandler(2, time.Minute)

		doRequest(handler, "10.0.0.1:1234")
		doRequest(handler, "10.0.0.1:1234")
		rec := doRequest(handler, "10.0.0.1:1234")

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("clients are throttled independently", func(t *testing.T) {
		handler := newHandler(1, time.Minute)

		assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.1:1234").Code)
		assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.2:5678").Code)
		assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, "10.0.0.1:9999").Code)
	})

	t.Run("bare IP remote address accepted", func(t *testing.T) {
		handler := newHandler(1, time.Minute)

		assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.3").Code)
		assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, "10.0.0.3").Code)
	})

	t.Run("unparsable remote address falls open", func(t *testing.T) {
		handler := newHandler(1, time.Minute)

		assert.Equal(t, http.StatusOK, doRequest(handler, "garbage").Code)
		assert.Equal(t, http.StatusOK, doRequest(handler, "garbage").Code)
	})

	t.Run("window elapsing readmits the client", func(t *testing.T) {
		handler := newHandler(1, 40*time.Millisecond)

		assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.4:1").Code)
		assert.Equal(t, http.StatusTooManyRequests, doRequest(handler, "10.0.0.4:1").Code)
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, http.StatusOK, doRequest(handler, "10.0.0.4:1").Code)
	})
}
