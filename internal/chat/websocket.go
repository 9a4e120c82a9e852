package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/taskpilot/internal/domain"
	"github.com/ashureev/taskpilot/internal/identity"
	"github.com/coder/websocket"
)

const wsWriteTimeout = 5 * time.Second

// WebSocketHandler runs one chat Session per socket.
type WebSocketHandler struct {
	svc           *Service
	registry      *Registry
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates a chat socket handler.
func NewWebSocketHandler(svc *Service, registry *Registry, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		svc:           svc,
		registry:      registry,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// wsFrame is the JSON envelope for both directions.
type wsFrame struct {
	Type    string              `json:"type"`
	Content string              `json:"content,omitempty"`
	Message *domain.ChatMessage `json:"message,omitempty"`
	Busy    *bool               `json:"busy,omitempty"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	visitorID := identity.VisitorIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())
	slog.Info("Chat WebSocket connection request", "visitor_id", visitorID, "session_id", sessionID, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "visitor_id", visitorID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "chat ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "visitor_id", visitorID)
		}
	}()

	h.registry.Register(visitorID, sessionID, ws)
	defer h.registry.Unregister(visitorID, sessionID, ws)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sess := NewSession(NewLocalDispatcher(h.svc), SessionOptions{
		OnChange: func(msg domain.ChatMessage, busy bool) {
			if err := h.writeJSON(ws, wsFrame{Type: "message", Message: &msg}); err != nil {
				slog.Debug("Failed to send chat message", "error", err)
				return
			}
			if err := h.writeJSON(ws, wsFrame{Type: "state", Busy: &busy}); err != nil {
				slog.Debug("Failed to send chat state", "error", err)
			}
		},
	})
	defer func() {
		sess.Close()
		sess.Wait()
	}()

	h.readLoop(ctx, ws, sess, visitorID)
	slog.Info("Chat session ended", "visitor_id", visitorID, "messages", len(sess.Messages()))
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, sess *Session, visitorID string) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "visitor_id", visitorID)
			} else {
				slog.Debug("WebSocket read ended", "error", err, "visitor_id", visitorID)
			}
			return
		}

		var frame wsFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.sendError(ws, "malformed frame")
			continue
		}

		switch frame.Type {
		case "submit":
			if err := sess.Submit(ctx, frame.Content); err != nil {
				h.sendError(ws, err.Error())
			}
		case "ping":
			if err := h.writeJSON(ws, wsFrame{Type: "pong"}); err != nil {
				slog.Debug("Failed to send pong", "error", err)
			}
		default:
			h.sendError(ws, "unknown frame type: "+frame.Type)
		}
	}
}

func (h *WebSocketHandler) sendError(ws *websocket.Conn, content string) {
	if err := h.writeJSON(ws, wsFrame{Type: "error", Content: content}); err != nil {
		slog.Debug("Failed to send chat error", "error", err)
	}
}

func (h *WebSocketHandler) writeJSON(ws *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), wsWriteTimeout)
	defer cancel()
	return ws.Write(ctx, websocket.MessageText, data)
}
