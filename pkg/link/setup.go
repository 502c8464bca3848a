package link

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"
)

// ModemConfig defines the one-time configuration of a modem.
type ModemConfig struct {
	// StartupDelay is the time for the modem to boot after the port is opened.
	StartupDelay time.Duration
	// SettleDelay is the time for each setting to be applied.
	SettleDelay time.Duration
	// Retransmissions is the number of link level retransmissions.
	Retransmissions int
	// FECThreshold is the minimum payload size for the modem to apply FEC.
	FECThreshold int
}

// Defaults of ModemConfig.
const (
	DefaultStartupDelay    = 2 * time.Second
	DefaultSettleDelay     = 100 * time.Millisecond
	DefaultRetransmissions = 5
	DefaultFECThreshold    = 30
)

// DefaultModemConfig returns the recommended configuration.
func DefaultModemConfig() ModemConfig {
	return ModemConfig{
		StartupDelay:    DefaultStartupDelay,
		SettleDelay:     DefaultSettleDelay,
		Retransmissions: DefaultRetransmissions,
		FECThreshold:    DefaultFECThreshold,
	}
}

// Modem configuration parameters for ConfigFrame.
const (
	configRetransmissions = 1
	configFECThreshold    = 0
)

// Setup assigns the address and applies the configuration to a modem.
func Setup(ctx context.Context, w io.Writer, addr string, conf ModemConfig) error {
	if err := sleep(ctx, conf.StartupDelay); err != nil {
		return err
	}
	frames := []string{
		AddressFrame(addr),
		ConfigFrame(configRetransmissions, 0, conf.Retransmissions),
		ConfigFrame(configFECThreshold, 1, conf.FECThreshold),
	}
	for _, frame := range frames {
		if _, err := io.WriteString(w, frame); err != nil {
			return &TransportError{Op: "write", Err: err}
		}
		if err := sleep(ctx, conf.SettleDelay); err != nil {
			return err
		}
	}
	glog.Infof("modem %s configured: retransmissions=%d fec-threshold=%d",
		addr, conf.Retransmissions, conf.FECThreshold)
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
