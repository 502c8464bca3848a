package env

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/golang/glog"

	fx "github.com/robotalks/vlc.go/pkg/framework"
	"github.com/robotalks/vlc.go/pkg/link"
	"github.com/robotalks/vlc.go/pkg/metrics"
	"github.com/robotalks/vlc.go/pkg/mqtt"
	"github.com/robotalks/vlc.go/pkg/sim"
	"github.com/robotalks/vlc.go/pkg/transport"
)

// Env is the runtime of the two endpoints.
type Env struct {
	Config *Config
	A      *link.Endpoint
	B      *link.Endpoint

	Notifier link.NotifierMux
	Runners  []fx.Runnable

	closers []io.Closer
}

// NewEnv opens the modems and creates the endpoints.
func (c *Config) NewEnv() (*Env, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	env := &Env{Config: c}
	if err := env.open(); err != nil {
		env.Close()
		return nil, err
	}
	return env, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

func (e *Env) open() error {
	c := e.Config
	var portA, portB io.ReadWriteCloser
	if c.Simulate {
		glog.Info("using simulated modems")
		simA, simB := sim.NewPair(&sim.Medium{}, c.A.Addr, c.B.Addr)
		simA.ReadTimeout, simB.ReadTimeout = c.Transport.ReadTimeout, c.Transport.ReadTimeout
		portA, portB = simA, simB
	} else {
		var err error
		if portA, err = transport.Open(c.A.Port, c.Transport); err != nil {
			return fmt.Errorf("open modem %s at %s error: %w", c.A.Addr, c.A.Port, err)
		}
		e.closers = append(e.closers, portA)
		if portB, err = transport.Open(c.B.Port, c.Transport); err != nil {
			return fmt.Errorf("open modem %s at %s error: %w", c.B.Addr, c.B.Port, err)
		}
		e.closers = append(e.closers, portB)
	}

	if c.MetricsAddr != "" {
		e.Notifier = append(e.Notifier, metrics.NewNotifier())
		e.Runners = append(e.Runners, fx.NamedRun("metrics", &metrics.Server{Addr: c.MetricsAddr}))
	}
	if c.MQTTBrokerURL != "" {
		q, err := mqtt.NewQueueFromURL(c.MQTTBrokerURL, ClientID())
		if err != nil {
			return fmt.Errorf("create MQTT queue error: %w", err)
		}
		if err = q.Connect(); err != nil {
			return fmt.Errorf("connect MQTT broker error: %w", err)
		}
		e.closers = append(e.closers, q)
		e.Notifier = append(e.Notifier, mqtt.NewPublisher(q))
	}

	e.A = e.newEndpoint(portA, c.A.Addr, c.B.Addr)
	e.B = e.newEndpoint(portB, c.B.Addr, c.A.Addr)
	if c.Simulate {
		e.closers = append(e.closers, e.A, e.B)
	}
	return nil
}

func (e *Env) newEndpoint(port io.ReadWriter, addr, peer string) *link.Endpoint {
	ep := link.NewEndpoint(port, addr, peer)
	ep.MaxResends = e.Config.MaxResends
	if len(e.Notifier) > 0 {
		ep.Notifier = e.Notifier
	}
	return ep
}

// Setup configures both modems unless skipped.
func (e *Env) Setup(ctx context.Context) error {
	if e.Config.SkipSetup {
		return nil
	}
	for _, ep := range []*link.Endpoint{e.A, e.B} {
		if err := ep.Setup(ctx, e.Config.Setup); err != nil {
			return fmt.Errorf("setup modem %s error: %w", ep.Addr, err)
		}
	}
	return nil
}

// Close implements io.Closer.
func (e *Env) Close() error {
	var errs fx.AggregatedError
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs.Add(e.closers[i].Close())
	}
	e.closers = nil
	return errs.Aggregate()
}

// ClientID is the default MQTT client id of this machine.
func ClientID() string {
	id := MachineID()
	if len(id) > 12 {
		id = id[:12]
	}
	return "vlc-" + id
}
