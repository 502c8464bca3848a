package link

import (
	"strconv"
	"time"
)

// EventKind defines what happened on an Endpoint.
type EventKind int

// Event kinds.
const (
	// EventSent means a message was sent.
	EventSent EventKind = iota
	// EventResent means the pending message was sent again after a NACK.
	EventResent
	// EventDelivered means a verified message was received.
	EventDelivered
	// EventCorrupted means a message failed verification and NACK was sent.
	EventCorrupted
	// EventNACK means a NACK was received.
	EventNACK
	// EventACK means an ACK was received and ignored.
	EventACK
	// EventSentResponse means the modem responded to a frame sent by this side.
	EventSentResponse
	// EventMalformed means an unrecognized frame was dropped.
	EventMalformed
	// EventTimeout means the read timed out without a complete frame.
	EventTimeout
	// EventResendLimit means a NACK was not served as the resend limit was reached.
	EventResendLimit
)

var eventKindNames = map[EventKind]string{
	EventSent:         "sent",
	EventResent:       "resent",
	EventDelivered:    "delivered",
	EventCorrupted:    "corrupted",
	EventNACK:         "nack",
	EventACK:          "ack",
	EventSentResponse: "sent-response",
	EventMalformed:    "malformed",
	EventTimeout:      "timeout",
	EventResendLimit:  "resend-limit",
}

// String implements fmt.Stringer.
func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return "EventKind(" + strconv.Itoa(int(k)) + ")"
}

// ParseEventKind is the reverse of EventKind.String.
func ParseEventKind(name string) (EventKind, bool) {
	for kind, str := range eventKindNames {
		if str == name {
			return kind, true
		}
	}
	return 0, false
}

// Event describes a step of the protocol on an Endpoint.
type Event struct {
	Kind EventKind
	Addr string
	Peer string
	// Text is the message text, or the raw content for
	// EventCorrupted and EventMalformed.
	Text string
	Time time.Time
}

// EventNotifier is called on every Event.
// It's called synchronously from Endpoint operations and must not block.
type EventNotifier interface {
	LinkEvent(Event)
}

// LinkEventFunc is func type of EventNotifier.
type LinkEventFunc func(Event)

// LinkEvent implements EventNotifier.
func (f LinkEventFunc) LinkEvent(ev Event) {
	f(ev)
}

// NotifierMux dispatches events to multiple notifiers.
type NotifierMux []EventNotifier

// LinkEvent implements EventNotifier.
func (m NotifierMux) LinkEvent(ev Event) {
	for _, n := range m {
		if n != nil {
			n.LinkEvent(ev)
		}
	}
}
