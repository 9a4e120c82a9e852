package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ashureev/taskpilot/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrEmptyMessage is returned when the submitted text is blank.
	ErrEmptyMessage = errors.New("message is empty")
	// ErrBusy is returned while a previous message is still awaiting its reply.
	ErrBusy = errors.New("a message is already being answered")
	// ErrSessionClosed is returned by Submit after Close.
	ErrSessionClosed = errors.New("chat session closed")

	errEmptyReply = errors.New("empty reply")
)

// SessionOptions configures a Session.
type SessionOptions struct {
	// OnChange is called after every append with the new message and whether
	// a reply is still outstanding. It runs outside the session lock.
	OnChange func(msg domain.ChatMessage, busy bool)
	// Timeout bounds each dispatch. Zero means no bound beyond the dispatcher's own.
	Timeout time.Duration
}

// Session is the in-memory transcript of one chat view. It is created when
// the view mounts and closed when it goes away; nothing is persisted.
type Session struct {
	dispatcher Dispatcher
	opts       SessionOptions

	inflight *semaphore.Weighted
	busy     atomic.Bool
	wg       sync.WaitGroup

	mu       sync.Mutex
	messages []domain.ChatMessage
	lastErr  error
	closed   bool
}

// NewSession creates an empty session that sends messages through d.
func NewSession(d Dispatcher, opts SessionOptions) *Session {
	return &Session{
		dispatcher: d,
		opts:       opts,
		inflight:   semaphore.NewWeighted(1),
	}
}

// Submit appends text as a user message and dispatches it in the background.
// At most one message is in flight; a second Submit before the reply
// arrives returns ErrBusy and changes nothing.
func (s *Session) Submit(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	if !s.inflight.TryAcquire(1) {
		return ErrBusy
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.inflight.Release(1)
		return ErrSessionClosed
	}
	s.busy.Store(true)
	msg := newMessage(domain.RoleUser, "user", text)
	s.messages = append(s.messages, msg)
	s.mu.Unlock()

	s.notify(msg, true)

	s.wg.Add(1)
	go s.dispatch(context.WithoutCancel(ctx), text)
	return nil
}

func (s *Session) dispatch(ctx context.Context, text string) {
	defer s.wg.Done()

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	content, err := s.dispatcher.Dispatch(ctx, text)
	if err == nil && content == "" {
		err = errEmptyReply
	}
	if err != nil {
		slog.Debug("chat dispatch failed", "error", err)
	}
	prefix, content := replyEntry(content, err)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.release()
		return
	}
	msg := newMessage(domain.RoleAssistant, prefix, content)
	s.messages = append(s.messages, msg)
	s.lastErr = err
	s.mu.Unlock()

	// The view must see the reply before submit is enabled again.
	s.notify(msg, false)
	s.release()
}

func (s *Session) release() {
	s.busy.Store(false)
	s.inflight.Release(1)
}

func (s *Session) notify(msg domain.ChatMessage, busy bool) {
	if s.opts.OnChange != nil {
		s.opts.OnChange(msg, busy)
	}
}

// replyEntry picks the ID prefix and text of the assistant entry for a
// dispatch result. Any payload carrying a message is shown as a normal
// assistant entry, even when it came with an error status; only results
// without a message fall back to the "error-" apology.
func replyEntry(content string, err error) (prefix, text string) {
	if err == nil {
		return "assistant", content
	}
	var replyErr *ReplyError
	if errors.As(err, &replyErr) && replyErr.Message != "" {
		return "assistant", replyErr.Message
	}
	return "error", ServerErrorReply
}

// LastError returns the error of the most recent completed dispatch, or nil
// when it succeeded. A message payload sent with an error status still
// counts as an error here.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Busy reports whether submit is disabled. It stays true until the reply
// has been appended and OnChange has returned for it.
func (s *Session) Busy() bool {
	return s.busy.Load()
}

// Messages returns a copy of the transcript in append order.
func (s *Session) Messages() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Close discards the session. An in-flight dispatch is not aborted, but its
// result is dropped when it arrives.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.messages = nil
}

// Wait blocks until the in-flight dispatch, if any, has finished.
func (s *Session) Wait() {
	s.wg.Wait()
}

func newMessage(role domain.Role, prefix, content string) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        prefix + "-" + uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}
