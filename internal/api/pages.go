package api

import (
	"log/slog"
	"net/http"

	"github.com/ashureev/taskpilot/internal/domain"
	"github.com/ashureev/taskpilot/internal/users"
	"github.com/ashureev/taskpilot/web"
	"github.com/go-chi/chi/v5"
)

// chatActionPath is where the chat page posts its form.
const chatActionPath = "/task/new"

// RegisterRoutes registers page and JSON routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Welcome)
	r.Get("/tasks", h.TaskDetail)
	r.Get("/task/new", h.ChatPage)
	r.Get("/task/edit/{id}", h.TaskDetail)
	r.Get("/users", h.UsersPage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/users", h.ListUsers)
		r.Get("/tasks/current", h.CurrentTask)
	})
}

// Welcome renders the dashboard card.
func (h *Handler) Welcome(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, web.PageWelcome, web.Page{Title: "Dashboard"})
}

// TaskDetail renders the fixed task. Every edit ID shows the same record.
func (h *Handler) TaskDetail(w http.ResponseWriter, r *http.Request) {
	if id := chi.URLParam(r, "id"); id != "" {
		slog.Debug("task edit requested", "id", id)
	}
	h.render(w, http.StatusOK, web.PageTask, web.Page{Title: h.task.Title, Active: "tasks", Data: h.task})
}

// ChatPage renders the chat widget.
func (h *Handler) ChatPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, web.PageChat, web.Page{Title: "New Task", Active: "chat", Data: chatActionPath})
}

// UsersPage renders the users table. A load failure renders nothing but a 500.
func (h *Handler) UsersPage(w http.ResponseWriter, r *http.Request) {
	records, err := h.users.List(r.Context())
	if err != nil {
		slog.Error("failed to load users", "error", err)
		http.Error(w, "failed to load users", http.StatusInternalServerError)
		return
	}

	h.render(w, http.StatusOK, web.PageUsers, web.Page{Title: "Users", Active: "users", Data: users.BuildPage(records, h.loc)})
}

// ListUsers returns the projected user listing. Password hashes are never included.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	records, err := h.users.List(r.Context())
	if err != nil {
		slog.Error("failed to load users", "error", err)
		Error(w, http.StatusInternalServerError, "failed to load users")
		return
	}

	views := make([]domain.UserView, 0, len(records))
	for i := range records {
		views = append(views, records[i].View())
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"users": views,
		"count": len(views),
	})
}

// CurrentTask returns the fixed task record.
func (h *Handler) CurrentTask(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.task)
}

// NotFound answers unmatched paths with an empty 404.
func NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
}
