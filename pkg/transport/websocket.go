package transport

import (
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"
)

// Websocket carries modem bytes in binary websocket frames.
type Websocket struct {
	Conn        *websocket.Conn
	ReadTimeout time.Duration
}

// DialWebsocket connects to a modem exposed over websocket.
func DialWebsocket(location string, conf Config) (*Websocket, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, err
	}
	origin := &url.URL{Scheme: "http", Host: u.Host}
	if u.Scheme == "wss" {
		origin.Scheme = "https"
	}
	conn, err := websocket.Dial(location, "", origin.String())
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return &Websocket{Conn: conn, ReadTimeout: conf.readTimeout()}, nil
}

// Read implements io.Reader. It fails with a timeout error if nothing
// is received within ReadTimeout.
func (w *Websocket) Read(p []byte) (int, error) {
	if w.ReadTimeout > 0 {
		if err := w.Conn.SetReadDeadline(time.Now().Add(w.ReadTimeout)); err != nil {
			return 0, err
		}
	}
	return w.Conn.Read(p)
}

// Write implements io.Writer.
func (w *Websocket) Write(p []byte) (int, error) {
	return w.Conn.Write(p)
}

// Close implements io.Closer.
func (w *Websocket) Close() error {
	return w.Conn.Close()
}

// Bridge exposes a modem to one websocket client at a time.
// Bytes read from the modem but not delivered to a client are
// delivered to the next one.
type Bridge struct {
	Port io.ReadWriter

	undelivered []byte
	lock        sync.Mutex
}

// Handler returns the websocket handler.
func (b *Bridge) Handler() websocket.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		defer conn.Close()
		if err := b.Serve(conn); err != nil {
			glog.Warningf("bridge %s: %v", conn.Request().RemoteAddr, err)
		}
	})
}

// Serve copies bytes between the websocket and the modem until either
// fails. It returns after both directions stopped, and closes conn.
func (b *Bridge) Serve(conn *websocket.Conn) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	defer conn.Close()
	glog.Infof("bridge: %s connected", conn.Request().RemoteAddr)
	conn.PayloadType = websocket.BinaryFrame
	if len(b.undelivered) > 0 {
		if _, err := conn.Write(b.undelivered); err != nil {
			return err
		}
		b.undelivered = nil
	}

	errCh, done := make(chan error, 2), make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := io.Copy(b.Port, conn)
		if err == nil {
			err = io.EOF
		}
		errCh <- err
	}()
	go func() {
		defer wg.Done()
		errCh <- b.copyFromPort(conn, done)
	}()
	err := <-errCh
	close(done)
	conn.Close()
	wg.Wait()
	if err == io.EOF {
		glog.Infof("bridge: %s disconnected", conn.Request().RemoteAddr)
		return nil
	}
	return err
}

func (b *Bridge) copyFromPort(conn *websocket.Conn, done <-chan struct{}) error {
	buf := make([]byte, 256)
	for {
		select {
		case <-done:
			return nil
		default:
		}
		n, err := b.Port.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			continue
		}
		select {
		case <-done:
			b.undelivered = append(b.undelivered, buf[:n]...)
			return nil
		default:
		}
		if _, err = conn.Write(buf[:n]); err != nil {
			b.undelivered = append(b.undelivered, buf[:n]...)
			return err
		}
	}
}
