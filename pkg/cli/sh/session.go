package sh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robotalks/vlc.go/pkg/chat"
	"github.com/robotalks/vlc.go/pkg/link"
)

// Defaults of Session.
const (
	DefaultTransferTimeout = 30 * time.Second
	DefaultAutoPace        = 100 * time.Millisecond
)

// Session alternates the direction of messages between two endpoints.
type Session struct {
	Harness *chat.Harness
	// TransferTimeout bounds a single message transfer.
	TransferTimeout time.Duration
	// AutoPace is the delay between rounds in Auto.
	AutoPace time.Duration

	from *link.Endpoint
	lock sync.Mutex
}

// NewSession creates a Session starting with A sending to B.
func NewSession(h *chat.Harness) *Session {
	return &Session{
		Harness:         h,
		TransferTimeout: DefaultTransferTimeout,
		AutoPace:        DefaultAutoPace,
		from:            h.A,
	}
}

// Direction returns the endpoints of the next message.
func (s *Session) Direction() (from, to *link.Endpoint) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.from, s.Harness.Peer(s.from)
}

// Prompt shows the direction of the next message.
func (s *Session) Prompt() string {
	from, to := s.Direction()
	return fmt.Sprintf("%s -> %s >> ", from.Addr, to.Addr)
}

// Send transfers text in the current direction and flips the
// direction when delivered.
func (s *Session) Send(ctx context.Context, text string) error {
	from, to := s.Direction()
	if s.TransferTimeout > 0 {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, s.TransferTimeout)
		defer cancel()
	}
	if _, err := s.Harness.Transfer(ctx, from, to, text); err != nil {
		return err
	}
	s.lock.Lock()
	s.from = to
	s.lock.Unlock()
	return nil
}

// Auto exchanges greetings for the number of rounds.
func (s *Session) Auto(ctx context.Context, rounds int) error {
	for n := 0; n < rounds; n++ {
		if n > 0 && s.AutoPace > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.AutoPace):
			}
		}
		for i := 0; i < 2; i++ {
			from, _ := s.Direction()
			if err := s.Send(ctx, chat.Greeting(from)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Pending lists the messages kept for resending.
func (s *Session) Pending() []string {
	var lines []string
	for _, ep := range []*link.Endpoint{s.Harness.A, s.Harness.B} {
		if payload, ok := ep.Pending(); ok {
			lines = append(lines, fmt.Sprintf("%s: %q", ep.Addr, payload))
		} else {
			lines = append(lines, ep.Addr+": none")
		}
	}
	return lines
}
