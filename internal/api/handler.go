// Package api provides the HTTP handlers for pages and JSON endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/taskpilot/internal/domain"
	"github.com/ashureev/taskpilot/web"
)

// Renderer renders a named, layout-wrapped page.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// UserLister loads the full user listing.
type UserLister interface {
	List(ctx context.Context) ([]domain.UserRecord, error)
}

// Handler serves the server-rendered pages and their JSON counterparts.
type Handler struct {
	renderer Renderer
	users    UserLister
	task     *domain.TaskRecord
	loc      *time.Location
}

// NewHandler creates a new Handler with common dependencies.
func NewHandler(renderer Renderer, users UserLister, task *domain.TaskRecord) *Handler {
	return &Handler{
		renderer: renderer,
		users:    users,
		task:     task,
	}
}

// WithLocation sets the zone user timestamps are shown in.
func (h *Handler) WithLocation(loc *time.Location) *Handler {
	h.loc = loc
	return h
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to encode JSON response", "error", err)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// render executes the page into a buffer before touching w, so a template
// error becomes a 500 instead of a truncated page under the success status.
func (h *Handler) render(w http.ResponseWriter, status int, name string, page web.Page) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, name, page); err != nil {
		slog.Error("failed to render page", "page", name, "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
