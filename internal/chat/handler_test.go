package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/taskpilot/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(delay time.Duration, maxBytes int64) http.Handler {
	r := chi.NewRouter()
	NewHandler(NewService(delay), maxBytes).RegisterRoutes(r)
	return r
}

func decodeReply(t *testing.T, w *httptest.ResponseRecorder) domain.ChatReply {
	t.Helper()
	var reply domain.ChatReply
	require.NoError(t, json.NewDecoder(w.Body).Decode(&reply))
	return reply
}

func TestHandleActionMissingMessage(t *testing.T) {
	h := newTestRouter(0, 1<<20)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, jsonRequest(`{}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"Please provide a valid message."}`, w.Body.String())
}

func TestHandleActionFormWithDelay(t *testing.T) {
	h := newTestRouter(DefaultReplyDelay, 1<<20)
	w := httptest.NewRecorder()

	start := time.Now()
	h.ServeHTTP(w, formRequest("thanks a lot"))
	elapsed := time.Since(start)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, thanksReply, decodeReply(t, w).Message)
	assert.GreaterOrEqual(t, elapsed, 500*time.Millisecond)
}

func TestHandleActionJSONOnAPIRoute(t *testing.T) {
	h := newTestRouter(0, 1<<20)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, jsonRequest(`{"message":"Hello, can you help me?"}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, greetingReply, decodeReply(t, w).Message)
}

func TestHandleActionDecodeFaultIsServerError(t *testing.T) {
	tests := []struct {
		name string
		req  *http.Request
	}{
		{"broken json", jsonRequest(`{"message":`)},
		{"null body", jsonRequest(`null`)},
		{"plain text", func() *http.Request {
			req := httptest.NewRequest(http.MethodPost, "/task/new", strings.NewReader("hi"))
			req.Header.Set("Content-Type", "text/plain")
			return req
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newTestRouter(0, 1<<20).ServeHTTP(w, tt.req)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"message":"Sorry, I encountered an error. Please try again."}`, w.Body.String())
		})
	}
}

func TestHandleActionBodyTooLarge(t *testing.T) {
	h := newTestRouter(0, 16)
	w := httptest.NewRecorder()

	h.ServeHTTP(w, jsonRequest(`{"message":"`+strings.Repeat("a", 64)+`"}`))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, ServerErrorReply, decodeReply(t, w).Message)
}

func TestHandleActionClientGone(t *testing.T) {
	h := newTestRouter(time.Minute, 1<<20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, formRequest("hello").WithContext(ctx))

	assert.Empty(t, w.Body.String())
}

func TestServiceReplyRejectsEmpty(t *testing.T) {
	_, err := NewService(0).Reply(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidMessage)
}

func TestNewServiceClampsNegativeDelay(t *testing.T) {
	assert.Equal(t, time.Duration(0), NewService(-time.Second).Delay())
}
