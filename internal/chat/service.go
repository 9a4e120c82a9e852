package chat

import (
	"context"
	"time"

	"github.com/ashureev/taskpilot/internal/domain"
)

// DefaultReplyDelay is the artificial latency added before every reply.
const DefaultReplyDelay = 500 * time.Millisecond

// Service produces canned replies after a fixed delay. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	delay time.Duration
}

// NewService creates a reply service. A negative delay is treated as zero.
func NewService(delay time.Duration) *Service {
	if delay < 0 {
		delay = 0
	}
	return &Service{delay: delay}
}

// Delay returns the configured artificial latency.
func (s *Service) Delay() time.Duration {
	return s.delay
}

// Reply waits out the delay and classifies message. The wait ends early
// only if ctx is done, in which case ctx.Err() is returned.
func (s *Service) Reply(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", domain.ErrInvalidMessage
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-timer.C:
	}

	return Classify(message), nil
}
