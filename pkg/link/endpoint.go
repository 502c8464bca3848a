package link

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Outcome indicates what Receive has done with the received frame.
type Outcome int

// Outcomes of Receive.
const (
	// OutcomeDelivered means a verified message is delivered in Result.Text.
	OutcomeDelivered Outcome = iota
	// OutcomeNackHandled means the peer sent NACK and the pending message was resent.
	OutcomeNackHandled
	// OutcomeAckHandled means an ACK was received and ignored.
	OutcomeAckHandled
	// OutcomeCorruptRejected means a corrupted message was received and NACK was sent.
	OutcomeCorruptRejected
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeNackHandled:
		return "nack-handled"
	case OutcomeAckHandled:
		return "ack-handled"
	case OutcomeCorruptRejected:
		return "corrupt-rejected"
	}
	return "unknown"
}

// Result is the result of Receive.
type Result struct {
	Outcome Outcome
	// Text is only set with OutcomeDelivered.
	Text string
	// Resent is true if the pending message was sent again on NACK.
	Resent bool
}

// DefaultMaxResends is the default number of resends of the same message.
const DefaultMaxResends = 8

// UnlimitedResends disables the resend limit.
const UnlimitedResends = -1

// Endpoint sends and receives messages with one peer.
type Endpoint struct {
	Addr string
	Peer string
	// MaxResends limits the resends of the pending message on NACK.
	// 0 uses DefaultMaxResends, UnlimitedResends resends forever.
	MaxResends int
	Notifier   EventNotifier

	transport io.ReadWriter
	reader    *Reader

	pending    string
	hasPending bool
	resends    int
	lock       sync.Mutex
}

// NewEndpoint creates an Endpoint with the transport connecting to the modem.
func NewEndpoint(transport io.ReadWriter, addr, peer string) *Endpoint {
	return &Endpoint{
		Addr:      addr,
		Peer:      peer,
		transport: transport,
		reader:    NewReader(transport),
	}
}

// Reader gets the frame reader.
func (e *Endpoint) Reader() *Reader {
	return e.reader
}

// Pending returns the encoded message kept for resending.
func (e *Endpoint) Pending() (string, bool) {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.pending, e.hasPending
}

// Send sends a message to the peer and keeps it for resending.
// It doesn't wait for anything from the peer.
func (e *Endpoint) Send(text string) error {
	if err := ValidateText(text); err != nil {
		return err
	}
	payload := EncodeMessage(text)
	e.lock.Lock()
	e.pending, e.hasPending, e.resends = payload, true, 0
	e.lock.Unlock()
	if err := e.write(SendFrame(payload, e.Peer)); err != nil {
		return err
	}
	e.notify(EventSent, text)
	return nil
}

// Receive reads frames until one from the peer arrives and processes it.
// Read timeouts, unrecognized frames and responses to frames sent by this
// side are skipped. Only OutcomeDelivered carries a message.
func (e *Endpoint) Receive(ctx context.Context) (Result, error) {
	for {
		raw, err := e.reader.ReadFrame(ctx)
		switch err {
		case nil:
		case ErrTimeout:
			e.notify(EventTimeout, "")
			continue
		case ErrFrameTooLong:
			glog.V(2).Infof("%s: dropped oversized frame", e.Addr)
			e.notify(EventMalformed, "")
			continue
		default:
			return Result{}, err
		}
		frame := Classify(raw)
		switch frame.Kind {
		case FrameReceived:
			return e.handleReceived(frame)
		case FrameSentResponse:
			glog.V(2).Infof("%s: response %q", e.Addr, frame.Content)
			e.notify(EventSentResponse, frame.Content)
		default:
			glog.V(2).Infof("%s: ignored frame %q", e.Addr, raw)
			e.notify(EventMalformed, raw)
		}
	}
}

// Setup configures the modem with the address of this endpoint.
func (e *Endpoint) Setup(ctx context.Context, conf ModemConfig) error {
	return Setup(ctx, e.transport, e.Addr, conf)
}

// Close closes the transport.
func (e *Endpoint) Close() error {
	if closer, ok := e.transport.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (e *Endpoint) handleReceived(frame Frame) (Result, error) {
	if frame.IsNACK() {
		return e.resend()
	}
	if frame.IsACK() {
		glog.V(2).Infof("%s: ACK from %s", e.Addr, e.Peer)
		e.notify(EventACK, "")
		return Result{Outcome: OutcomeAckHandled}, nil
	}
	text, checksum, err := DecodeMessage(frame.Content)
	if err != nil || !VerifyMessage(text, checksum) {
		glog.V(1).Infof("%s: corrupted message from %s: %q", e.Addr, e.Peer, frame.Content)
		if err := e.write(SendFrame(SignalNACK, e.Peer)); err != nil {
			return Result{}, err
		}
		e.notify(EventCorrupted, frame.Content)
		return Result{Outcome: OutcomeCorruptRejected}, nil
	}
	e.notify(EventDelivered, text)
	return Result{Outcome: OutcomeDelivered, Text: text}, nil
}

func (e *Endpoint) resend() (Result, error) {
	e.notify(EventNACK, "")
	e.lock.Lock()
	payload, ok := e.pending, e.hasPending
	limit := e.MaxResends
	if limit == 0 {
		limit = DefaultMaxResends
	}
	exceeded := ok && limit >= 0 && e.resends >= limit
	if ok && !exceeded {
		e.resends++
	}
	e.lock.Unlock()

	if !ok {
		glog.Warningf("%s: NACK from %s but nothing was sent", e.Addr, e.Peer)
		return Result{Outcome: OutcomeNackHandled}, nil
	}
	if exceeded {
		glog.Warningf("%s: NACK from %s, message already resent %d times", e.Addr, e.Peer, limit)
		e.notify(EventResendLimit, "")
		return Result{Outcome: OutcomeNackHandled}, ErrResendLimit
	}
	glog.V(1).Infof("%s: NACK from %s, resending", e.Addr, e.Peer)
	if err := e.write(SendFrame(payload, e.Peer)); err != nil {
		return Result{}, err
	}
	text, _, _ := DecodeMessage(payload)
	e.notify(EventResent, text)
	return Result{Outcome: OutcomeNackHandled, Resent: true}, nil
}

func (e *Endpoint) write(frame string) error {
	if _, err := io.WriteString(e.transport, frame); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}

func (e *Endpoint) notify(kind EventKind, text string) {
	if n := e.Notifier; n != nil {
		n.LinkEvent(Event{Kind: kind, Addr: e.Addr, Peer: e.Peer, Text: text, Time: time.Now()})
	}
}
