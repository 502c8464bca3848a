// Package sim provides an in-memory simulation of a pair of VLC modems.
package sim

import (
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/vlc.go/pkg/link"
)

// DefaultReadTimeout is the default read timeout of a simulated modem.
const DefaultReadTimeout = 100 * time.Millisecond

const inboxSize = 64 * 1024

// ErrClosed indicates the modem is closed.
var ErrClosed = errors.New("modem closed")

// Medium is the light channel between two modems.
type Medium struct {
	// Corrupt is called with every payload in flight and returns
	// what the receiving modem gets.
	Corrupt func(from, to, payload string) string
	// ACK makes the receiving modem acknowledge every payload.
	ACK bool

	lock sync.Mutex
}

// CorruptFirst returns a Corrupt func which damages the first n payloads
// matching the filter (nil matches all). The last byte of the payload is altered.
func CorruptFirst(n int, filter func(from, to, payload string) bool) func(string, string, string) string {
	var lock sync.Mutex
	return func(from, to, payload string) string {
		if payload == "" || (filter != nil && !filter(from, to, payload)) {
			return payload
		}
		lock.Lock()
		defer lock.Unlock()
		if n <= 0 {
			return payload
		}
		n--
		b := []byte(payload)
		b[len(b)-1] ^= 0x01
		return string(b)
	}
}

func (m *Medium) transfer(from, to, payload string) (string, bool) {
	m.lock.Lock()
	corrupt, ack := m.Corrupt, m.ACK
	m.lock.Unlock()
	if corrupt != nil {
		payload = corrupt(from, to, payload)
	}
	return payload, ack
}

// Modem simulates a modem on a serial port. It implements io.ReadWriteCloser.
// Reads return zero bytes after ReadTimeout if nothing is received.
type Modem struct {
	ReadTimeout time.Duration

	medium   *Medium
	peer     *Modem
	addr     string
	inbox    chan byte
	line     []byte
	outbound []link.Frame
	closed   chan struct{}

	closeOnce sync.Once
	lock      sync.Mutex
}

// NewPair creates two modems sharing the medium.
func NewPair(medium *Medium, addrA, addrB string) (*Modem, *Modem) {
	if medium == nil {
		medium = &Medium{}
	}
	a, b := newModem(medium, addrA), newModem(medium, addrB)
	a.peer, b.peer = b, a
	return a, b
}

func newModem(medium *Medium, addr string) *Modem {
	return &Modem{
		ReadTimeout: DefaultReadTimeout,
		medium:      medium,
		addr:        addr,
		inbox:       make(chan byte, inboxSize),
		closed:      make(chan struct{}),
	}
}

// Addr gets the current address.
func (m *Modem) Addr() string {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.addr
}

// Outbound returns all frames written to the modem so far.
func (m *Modem) Outbound() []link.Frame {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]link.Frame(nil), m.outbound...)
}

// Inject queues a raw line to be read from the modem.
func (m *Modem) Inject(line string) {
	m.push(line + string(link.Terminator))
}

// Read implements io.Reader.
func (m *Modem) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	var timeout <-chan time.Time
	if m.ReadTimeout > 0 {
		timer := time.NewTimer(m.ReadTimeout)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case b := <-m.inbox:
		p[0] = b
		n := 1
		for n < len(p) {
			select {
			case b = <-m.inbox:
				p[n] = b
				n++
			default:
				return n, nil
			}
		}
		return n, nil
	case <-timeout:
		return 0, nil
	case <-m.closed:
		return 0, io.EOF
	}
}

// Write implements io.Writer.
func (m *Modem) Write(p []byte) (int, error) {
	select {
	case <-m.closed:
		return 0, ErrClosed
	default:
	}
	var lines []string
	m.lock.Lock()
	for _, b := range p {
		if b == link.Terminator {
			lines = append(lines, strings.TrimSuffix(string(m.line), "\r"))
			m.line = m.line[:0]
			continue
		}
		m.line = append(m.line, b)
	}
	m.lock.Unlock()
	for _, line := range lines {
		m.process(line)
	}
	return len(p), nil
}

// Close implements io.Closer.
func (m *Modem) Close() error {
	m.closeOnce.Do(func() { close(m.closed) })
	return nil
}

func (m *Modem) process(line string) {
	frame := link.ParseOutbound(line)
	m.lock.Lock()
	m.outbound = append(m.outbound, frame)
	if frame.Kind == link.FrameSetAddress {
		m.addr = frame.Addr
	}
	addr := m.addr
	m.lock.Unlock()

	switch frame.Kind {
	case link.FrameSend:
		m.transmit(addr, frame)
	case link.FrameUnknown:
		glog.V(2).Infof("sim %s: unknown frame %q", addr, line)
	}
}

func (m *Modem) transmit(addr string, frame link.Frame) {
	m.push(link.Frame{Kind: link.FrameSentResponse, Content: frame.Content, Addr: frame.Addr}.String())
	peerAddr := m.peer.Addr()
	if frame.Addr != peerAddr {
		glog.V(2).Infof("sim %s: no modem at %s", addr, frame.Addr)
		return
	}
	payload, ack := m.medium.transfer(addr, peerAddr, frame.Content)
	m.peer.push(link.Frame{Kind: link.FrameReceived, Content: payload, Addr: addr}.String())
	if ack {
		m.push(link.Frame{Kind: link.FrameReceived, Content: link.SignalACK, Addr: peerAddr}.String())
	}
}

func (m *Modem) push(data string) {
	for i := 0; i < len(data); i++ {
		select {
		case m.inbox <- data[i]:
		case <-m.closed:
			return
		}
	}
}
