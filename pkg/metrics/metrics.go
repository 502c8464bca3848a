// Package metrics exports link events as Prometheus metrics.
package metrics

import (
	"context"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/vlc.go/pkg/link"
)

var (
	registerOnce sync.Once

	linkEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vlc",
			Subsystem: "link",
			Name:      "events_total",
			Help:      "Link protocol events.",
		},
		[]string{"addr", "kind"},
	)
	payloadBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vlc",
			Subsystem: "link",
			Name:      "payload_bytes_total",
			Help:      "Message text bytes sent and delivered.",
		},
		[]string{"addr", "direction"},
	)
)

// Register registers the collectors to the default registry.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(linkEvents, payloadBytes)
	})
}

// Notifier implements link.EventNotifier by updating the metrics.
type Notifier struct{}

// NewNotifier creates a Notifier and registers the collectors.
func NewNotifier() *Notifier {
	Register()
	return &Notifier{}
}

// LinkEvent implements link.EventNotifier.
func (n *Notifier) LinkEvent(ev link.Event) {
	linkEvents.WithLabelValues(ev.Addr, ev.Kind.String()).Inc()
	switch ev.Kind {
	case link.EventSent, link.EventResent:
		payloadBytes.WithLabelValues(ev.Addr, "out").Add(float64(len(ev.Text)))
	case link.EventDelivered:
		payloadBytes.WithLabelValues(ev.Addr, "in").Add(float64(len(ev.Text)))
	}
}

// Server serves /metrics.
type Server struct {
	Addr string
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: s.Addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		glog.Infof("metrics on %s/metrics", s.Addr)
		errCh <- server.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		server.Close()
		<-errCh
		return ctx.Err()
	}
}
