package transport

import (
	"fmt"

	"go.bug.st/serial"
)

// OpenSerial opens a serial port. Reads return zero bytes when
// nothing is received within the read timeout.
func OpenSerial(path string, conf Config) (serial.Port, error) {
	baud := conf.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err = port.SetReadTimeout(conf.readTimeout()); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", path, err)
	}
	return port, nil
}
