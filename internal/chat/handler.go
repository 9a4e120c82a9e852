package chat

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/taskpilot/internal/api"
	"github.com/ashureev/taskpilot/internal/domain"
	"github.com/go-chi/chi/v5"
)

// Fixed payloads for failed chat requests.
const (
	InvalidMessageReply = "Please provide a valid message."
	ServerErrorReply    = "Sorry, I encountered an error. Please try again."
)

// ActionPath is the JSON API route of the chat action.
const ActionPath = "/api/chat"

// Handler serves the chat action over HTTP.
type Handler struct {
	svc      *Service
	maxBytes int64
}

// NewHandler creates a chat action handler. maxBytes caps the request body.
func NewHandler(svc *Service, maxBytes int64) *Handler {
	return &Handler{svc: svc, maxBytes: maxBytes}
}

// RegisterRoutes registers the chat action on the page route and the API route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/task/new", h.HandleAction)
	r.Post(ActionPath, h.HandleAction)
}

// HandleAction decodes one message and responds with its canned reply.
// Failures never leak detail to the caller; they are logged instead.
func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("chat action panicked", "panic", rec, "path", r.URL.Path)
			api.JSON(w, http.StatusInternalServerError, domain.ChatReply{Message: ServerErrorReply})
		}
	}()

	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}

	res := Decode(r)
	if !res.OK() {
		if res.Invalid() {
			slog.Warn("chat action rejected message", "reason", res.Reason, "content_type", r.Header.Get("Content-Type"))
			api.JSON(w, http.StatusBadRequest, domain.ChatReply{Message: InvalidMessageReply})
			return
		}
		slog.Error("chat action failed to decode request", "error", res.Reason, "content_type", r.Header.Get("Content-Type"))
		api.JSON(w, http.StatusInternalServerError, domain.ChatReply{Message: ServerErrorReply})
		return
	}

	reply, err := h.svc.Reply(r.Context(), res.Message)
	if err != nil {
		if errors.Is(err, r.Context().Err()) {
			slog.Debug("chat client went away before reply", "error", err)
			return
		}
		slog.Error("chat action failed", "error", err)
		api.JSON(w, http.StatusInternalServerError, domain.ChatReply{Message: ServerErrorReply})
		return
	}

	api.JSON(w, http.StatusOK, domain.ChatReply{Message: reply})
}
