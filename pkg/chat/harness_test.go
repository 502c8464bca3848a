package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/vlc.go/pkg/link"
	"github.com/robotalks/vlc.go/pkg/sim"
)

type harnessTestEnv struct {
	modemA  *sim.Modem
	modemB  *sim.Modem
	harness *Harness
	ctx     context.Context
	cancel  func()
}

func newHarnessTestEnv(t *testing.T, medium *sim.Medium) *harnessTestEnv {
	env := &harnessTestEnv{}
	env.modemA, env.modemB = sim.NewPair(medium, "AB", "CD")
	env.modemA.ReadTimeout, env.modemB.ReadTimeout = 10*time.Millisecond, 10*time.Millisecond
	env.harness = NewHarness(
		link.NewEndpoint(env.modemA, "AB", "CD"),
		link.NewEndpoint(env.modemB, "CD", "AB"),
	)
	env.ctx, env.cancel = context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(env.close)
	return env
}

func (e *harnessTestEnv) close() {
	e.cancel()
	e.harness.A.Close()
	e.harness.B.Close()
}

func sentFrames(modem *sim.Modem) []link.Frame {
	var frames []link.Frame
	for _, frame := range modem.Outbound() {
		if frame.Kind == link.FrameSend {
			frames = append(frames, frame)
		}
	}
	return frames
}

func TestTransferDelivered(t *testing.T) {
	env := newHarnessTestEnv(t, nil)
	text, err := env.harness.Transfer(env.ctx, env.harness.A, env.harness.B, "Hello from AB")
	require.NoError(t, err)
	require.Equal(t, "Hello from AB", text)
	require.Len(t, sentFrames(env.modemA), 1)
	require.Empty(t, sentFrames(env.modemB))
}

func TestTransferCorruptedChecksum(t *testing.T) {
	env := newHarnessTestEnv(t, &sim.Medium{Corrupt: sim.CorruptFirst(1, nil)})
	text, err := env.harness.Transfer(env.ctx, env.harness.A, env.harness.B, "Hello from AB")
	require.NoError(t, err)
	require.Equal(t, "Hello from AB", text)

	sent := sentFrames(env.modemA)
	require.Len(t, sent, 2)
	require.Equal(t, sent[0], sent[1])
	require.Equal(t, link.EncodeMessage("Hello from AB"), sent[0].Content)
	require.Equal(t, []link.Frame{{Kind: link.FrameSend, Content: link.SignalNACK, Addr: "AB"}}, sentFrames(env.modemB))
}

func TestTransferSkipsOwnResponses(t *testing.T) {
	env := newHarnessTestEnv(t, nil)
	// B sent earlier, its modem response is queued before A's message.
	require.NoError(t, env.harness.B.Send("earlier"))
	text, err := env.harness.Transfer(env.ctx, env.harness.A, env.harness.B, "Hello from AB")
	require.NoError(t, err)
	require.Equal(t, "Hello from AB", text)
	require.Len(t, sentFrames(env.modemB), 1)
}

func TestTransferAfterTimeouts(t *testing.T) {
	env := newHarnessTestEnv(t, nil)
	require.NoError(t, env.harness.B.Send("pending"))
	pending, _ := env.harness.B.Pending()
	var timeouts int
	env.harness.B.Notifier = link.LinkEventFunc(func(ev link.Event) {
		if ev.Kind == link.EventTimeout {
			timeouts++
		}
	})
	time.AfterFunc(100*time.Millisecond, func() {
		env.harness.A.Send("late")
	})
	res, err := env.harness.B.Receive(env.ctx)
	require.NoError(t, err)
	require.Equal(t, link.Result{Outcome: link.OutcomeDelivered, Text: "late"}, res)
	require.True(t, timeouts >= 3)
	after, ok := env.harness.B.Pending()
	require.True(t, ok)
	require.Equal(t, pending, after)
}

func TestTransferDelimiterInText(t *testing.T) {
	env := newHarnessTestEnv(t, nil)
	text, err := env.harness.Transfer(env.ctx, env.harness.A, env.harness.B, "left|right")
	require.NoError(t, err)
	require.Equal(t, "left|right", text)
}

func TestTransferWithACK(t *testing.T) {
	env := newHarnessTestEnv(t, &sim.Medium{ACK: true, Corrupt: sim.CorruptFirst(2, func(from, _, payload string) bool {
		return from == "CD" && payload != link.SignalNACK
	})})
	require.NoError(t, env.harness.Exchange(env.ctx, "ping", "pong"))
	require.Len(t, sentFrames(env.modemB), 3)
	require.Len(t, sentFrames(env.modemA), 3)
}

func TestTransferResendLimit(t *testing.T) {
	env := newHarnessTestEnv(t, &sim.Medium{Corrupt: func(from, to, payload string) string {
		if from == "AB" {
			return payload + "x"
		}
		return payload
	}})
	env.harness.A.MaxResends = 2
	_, err := env.harness.Transfer(env.ctx, env.harness.A, env.harness.B, "Hello from AB")
	require.Equal(t, link.ErrResendLimit, err)
	require.Len(t, sentFrames(env.modemA), 3)
}

func TestTransferTooManyRounds(t *testing.T) {
	env := newHarnessTestEnv(t, &sim.Medium{ACK: true})
	env.harness.MaxRounds = 1
	// B only sees an ACK for its own message before A's.
	require.NoError(t, env.harness.B.Send("x"))
	env.modemB.Inject("m[RA,AB]")
	_, err := env.harness.Transfer(env.ctx, env.harness.A, env.harness.B, "Hello from AB")
	require.Equal(t, ErrTooManyRounds, err)
}

func TestRun(t *testing.T) {
	env := newHarnessTestEnv(t, &sim.Medium{Corrupt: sim.CorruptFirst(1, nil)})
	var delivered []string
	env.harness.Rounds = 3
	env.harness.Pace = time.Millisecond
	env.harness.Handler = MessageDeliveredFunc(func(from, to *link.Endpoint, text string) {
		require.Equal(t, env.harness.Peer(from), to)
		delivered = append(delivered, to.Addr+":"+text)
	})
	require.NoError(t, env.harness.Run(env.ctx))
	require.Equal(t, []string{
		"CD:Hello from AB", "AB:Hello from CD",
		"CD:Hello from AB", "AB:Hello from CD",
		"CD:Hello from AB", "AB:Hello from CD",
	}, delivered)
}

func TestTransferCorruptedNACK(t *testing.T) {
	env := newHarnessTestEnv(t, &sim.Medium{Corrupt: sim.CorruptFirst(2, nil)})
	env.harness.MaxRounds = 4
	start := time.Now()
	_, err := env.harness.Transfer(env.ctx, env.harness.A, env.harness.B, "Hello from AB")
	require.Equal(t, ErrSignalCorrupted, err)
	require.True(t, time.Since(start) < time.Second)

	sent := sentFrames(env.modemA)
	require.Len(t, sent, 2)
	require.Equal(t, link.EncodeMessage("Hello from AB"), sent[0].Content)
	require.Equal(t, link.SignalNACK, sent[1].Content)
	require.Equal(t, []link.Frame{{Kind: link.FrameSend, Content: link.SignalNACK, Addr: "AB"}}, sentFrames(env.modemB))
}

func TestTransferRoundsIncludeSender(t *testing.T) {
	env := newHarnessTestEnv(t, &sim.Medium{Corrupt: sim.CorruptFirst(1, func(from, _, _ string) bool {
		return from == "AB"
	})})
	env.harness.MaxRounds = 3
	// A has messages from B queued which arrive before the NACK.
	for i := 0; i < 3; i++ {
		env.modemA.Inject("m[R" + link.EncodeMessage("stale") + ",CD]")
	}
	_, err := env.harness.Transfer(env.ctx, env.harness.A, env.harness.B, "Hello from AB")
	require.Equal(t, ErrTooManyRounds, err)
	require.Len(t, sentFrames(env.modemA), 1)
}
