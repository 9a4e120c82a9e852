package chat

import (
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// Registry tracks the live chat socket for each visitor and browser tab.
type Registry struct {
	mu     sync.RWMutex
	active map[string]map[string]*websocket.Conn
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		active: make(map[string]map[string]*websocket.Conn),
	}
}

// Register records conn for the visitor and tab. A previous connection for
// the same pair is closed: a reloaded tab replaces its old chat.
func (m *Registry) Register(visitorID, sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.active[visitorID]; !exists {
		m.active[visitorID] = make(map[string]*websocket.Conn)
	}

	if existing, exists := m.active[visitorID][sessionID]; exists && existing != conn {
		_ = existing.Close(websocket.StatusNormalClosure, "chat replaced")
	}

	m.active[visitorID][sessionID] = conn
	slog.Info("Chat session registered", "visitor_id", visitorID, "session_id", sessionID)
}

// Unregister removes conn if it is still the current one for the pair.
func (m *Registry) Unregister(visitorID, sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessions, ok := m.active[visitorID]; ok {
		if current, exists := sessions[sessionID]; exists && current == conn {
			delete(sessions, sessionID)
			if len(sessions) == 0 {
				delete(m.active, visitorID)
			}
			slog.Info("Chat session unregistered", "visitor_id", visitorID, "session_id", sessionID)
		}
	}
}

// Count returns the number of live chat sockets.
func (m *Registry) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, sessions := range m.active {
		n += len(sessions)
	}
	return n
}

// CloseAll closes every live socket, used on shutdown.
func (m *Registry) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for visitorID, sessions := range m.active {
		for sid, conn := range sessions {
			_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
			slog.Info("Chat session closed", "visitor_id", visitorID, "session_id", sid)
		}
	}
	m.active = make(map[string]map[string]*websocket.Conn)
}
