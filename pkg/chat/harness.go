// Package chat drives two endpoints taking turns to exchange messages.
package chat

import (
	"context"
	"errors"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/vlc.go/pkg/link"
)

var (
	// ErrTooManyRounds indicates the message was not delivered within MaxRounds.
	ErrTooManyRounds = errors.New("too many rounds")
	// ErrNotResent indicates the sender got a NACK with nothing to resend.
	ErrNotResent = errors.New("nothing resent")
	// ErrSignalCorrupted indicates the sender got a corrupted frame while
	// waiting for the NACK, so the receiver's reply is lost.
	ErrSignalCorrupted = errors.New("signal from receiver corrupted")
)

// DefaultMaxRounds is the default number of frames processed by both
// sides per transfer.
const DefaultMaxRounds = 32

// DeliveryHandler is called when a message is delivered.
type DeliveryHandler interface {
	MessageDelivered(from, to *link.Endpoint, text string)
}

// MessageDeliveredFunc is func type of DeliveryHandler.
type MessageDeliveredFunc func(from, to *link.Endpoint, text string)

// MessageDelivered implements DeliveryHandler.
func (f MessageDeliveredFunc) MessageDelivered(from, to *link.Endpoint, text string) {
	f(from, to, text)
}

// Harness drives endpoint A and B in strict turns: A sends and B receives,
// then B sends and A receives.
type Harness struct {
	A *link.Endpoint
	B *link.Endpoint
	// MaxRounds limits the frames processed by both sides per transfer.
	// 0 uses DefaultMaxRounds, negative means unlimited.
	MaxRounds int
	// Pace is the pause between two exchanges in Run.
	Pace time.Duration
	// Rounds is the number of exchanges in Run, 0 runs until canceled.
	Rounds  int
	Handler DeliveryHandler
}

// NewHarness creates a Harness.
func NewHarness(a, b *link.Endpoint) *Harness {
	return &Harness{A: a, B: b}
}

// Peer returns the other endpoint.
func (h *Harness) Peer(ep *link.Endpoint) *link.Endpoint {
	if ep == h.A {
		return h.B
	}
	return h.A
}

// Transfer sends text from one endpoint and keeps both sides receiving
// until the other endpoint delivers a message, which is returned.
// A corrupted message makes the sender receive the NACK and resend.
func (h *Harness) Transfer(ctx context.Context, from, to *link.Endpoint, text string) (string, error) {
	if err := from.Send(text); err != nil {
		return "", err
	}
	budget := h.roundBudget()
	for {
		if err := budget.next(); err != nil {
			return "", err
		}
		res, err := to.Receive(ctx)
		if err != nil {
			return "", err
		}
		switch res.Outcome {
		case link.OutcomeDelivered:
			if h.Handler != nil {
				h.Handler.MessageDelivered(from, to, res.Text)
			}
			return res.Text, nil
		case link.OutcomeCorruptRejected:
			if err = awaitResend(ctx, from, budget); err != nil {
				return "", err
			}
		}
	}
}

// Exchange transfers textA from A to B, then textB from B to A.
func (h *Harness) Exchange(ctx context.Context, textA, textB string) error {
	if _, err := h.Transfer(ctx, h.A, h.B, textA); err != nil {
		return err
	}
	_, err := h.Transfer(ctx, h.B, h.A, textB)
	return err
}

// Run implements Runnable. It repeatedly exchanges greetings.
func (h *Harness) Run(ctx context.Context) error {
	for n := 0; h.Rounds <= 0 || n < h.Rounds; n++ {
		if err := h.Exchange(ctx, Greeting(h.A), Greeting(h.B)); err != nil {
			return err
		}
		if h.Pace > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(h.Pace):
			}
		}
	}
	return nil
}

// Greeting is the fixed message sent by an endpoint in Run.
func Greeting(ep *link.Endpoint) string {
	return "Hello from " + ep.Addr
}

type rounds struct {
	max   int
	count int
}

func (h *Harness) roundBudget() *rounds {
	r := &rounds{max: h.MaxRounds}
	if r.max == 0 {
		r.max = DefaultMaxRounds
	}
	return r
}

func (r *rounds) next() error {
	if r.max >= 0 && r.count >= r.max {
		return ErrTooManyRounds
	}
	r.count++
	return nil
}

func awaitResend(ctx context.Context, ep *link.Endpoint, budget *rounds) error {
	for {
		if err := budget.next(); err != nil {
			return err
		}
		res, err := ep.Receive(ctx)
		if err != nil {
			return err
		}
		switch res.Outcome {
		case link.OutcomeNackHandled:
			if !res.Resent {
				return ErrNotResent
			}
			return nil
		case link.OutcomeCorruptRejected:
			return ErrSignalCorrupted
		case link.OutcomeDelivered:
			glog.Warningf("%s: message from %s out of turn: %q", ep.Addr, ep.Peer, res.Text)
		}
	}
}
