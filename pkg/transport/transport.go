// Package transport opens byte streams to VLC modems.
package transport

import (
	"fmt"
	"io"
	"net/url"
	"time"
)

// Config defines the options to open a transport.
type Config struct {
	BaudRate    int
	ReadTimeout time.Duration
}

// Defaults of Config.
const (
	DefaultBaudRate    = 115200
	DefaultReadTimeout = time.Second
)

// DefaultConfig returns a Config with defaults.
func DefaultConfig() Config {
	return Config{BaudRate: DefaultBaudRate, ReadTimeout: DefaultReadTimeout}
}

func (c Config) readTimeout() time.Duration {
	if c.ReadTimeout <= 0 {
		return DefaultReadTimeout
	}
	return c.ReadTimeout
}

// Open opens the transport specified by a device path or a URL:
//
//   /dev/ttyACM0 or serial:///dev/ttyACM0 - serial port
//   ws://host:port/path                   - modem exposed by vlcbridge
func Open(location string, conf Config) (io.ReadWriteCloser, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("invalid transport %q: %v", location, err)
	}
	switch u.Scheme {
	case "", "serial", "file":
		path := u.Path
		if u.Scheme == "" {
			path = location
		}
		port, err := OpenSerial(path, conf)
		if err != nil {
			return nil, err
		}
		return port, nil
	case "ws", "wss":
		ws, err := DialWebsocket(location, conf)
		if err != nil {
			return nil, err
		}
		return ws, nil
	default:
		return nil, fmt.Errorf("unknown transport scheme: %q", u.Scheme)
	}
}
