package link

import (
	"context"
	"io"
	"strings"
)

// DefaultMaxFrameSize is the default limit of a frame in bytes.
const DefaultMaxFrameSize = 1024

// Reader assembles newline terminated frames from a transport.
// The transport is expected to return from Read when its read timeout
// expires, either with a timeout error or with zero bytes.
type Reader struct {
	Reader       io.Reader
	MaxFrameSize int

	buf   [1]byte
	frame []byte
}

// NewReader creates a Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{Reader: r, MaxFrameSize: DefaultMaxFrameSize}
}

// ReadFrame reads bytes until a complete frame is received, and returns
// the frame without the terminator. If the transport times out before
// the terminator, bytes received so far are dropped and ErrTimeout is returned.
func (r *Reader) ReadFrame(ctx context.Context) (string, error) {
	maxSize := r.MaxFrameSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFrameSize
	}
	r.frame = r.frame[:0]
	var overflow bool
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		n, err := r.Reader.Read(r.buf[:])
		if err != nil {
			if IsTimeout(err) {
				return "", ErrTimeout
			}
			return "", &TransportError{Op: "read", Err: err}
		}
		if n == 0 {
			return "", ErrTimeout
		}
		b := r.buf[0]
		if b == Terminator {
			if overflow {
				return "", ErrFrameTooLong
			}
			return strings.TrimSuffix(string(r.frame), "\r"), nil
		}
		if len(r.frame) >= maxSize {
			overflow = true
			continue
		}
		r.frame = append(r.frame, b)
	}
}
