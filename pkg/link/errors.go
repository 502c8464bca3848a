package link

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout indicates no complete frame arrived within the read timeout.
	// It's recoverable, simply read again.
	ErrTimeout = errors.New("read timeout")
	// ErrFrameTooLong indicates a frame exceeded the maximum size and was dropped.
	ErrFrameTooLong = errors.New("frame too long")
	// ErrNoChecksum indicates the payload has no checksum delimiter.
	ErrNoChecksum = errors.New("no checksum")
	// ErrInvalidText indicates the text can't be carried in a message.
	ErrInvalidText = errors.New("invalid message text")
	// ErrResendLimit indicates the peer kept rejecting the pending message.
	ErrResendLimit = errors.New("resend limit reached")
)

// TransportError wraps unrecoverable errors from the transport.
type TransportError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

type timeoutError interface {
	Timeout() bool
}

// IsTimeout determines if a transport error is a read timeout.
func IsTimeout(err error) bool {
	if err == ErrTimeout {
		return true
	}
	var te timeoutError
	return errors.As(err, &te) && te.Timeout()
}
