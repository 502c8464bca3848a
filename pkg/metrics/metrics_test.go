package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/vlc.go/pkg/link"
)

func TestNotifier(t *testing.T) {
	n := NewNotifier()
	NewNotifier()
	n.LinkEvent(link.Event{Kind: link.EventSent, Addr: "T1", Text: "hello"})
	n.LinkEvent(link.Event{Kind: link.EventResent, Addr: "T1", Text: "hello"})
	n.LinkEvent(link.Event{Kind: link.EventDelivered, Addr: "T1", Text: "hi"})
	n.LinkEvent(link.Event{Kind: link.EventCorrupted, Addr: "T1", Text: "garbage"})

	require.Equal(t, float64(1), testutil.ToFloat64(linkEvents.WithLabelValues("T1", "sent")))
	require.Equal(t, float64(1), testutil.ToFloat64(linkEvents.WithLabelValues("T1", "corrupted")))
	require.Equal(t, float64(10), testutil.ToFloat64(payloadBytes.WithLabelValues("T1", "out")))
	require.Equal(t, float64(2), testutil.ToFloat64(payloadBytes.WithLabelValues("T1", "in")))
}
