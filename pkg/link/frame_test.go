package link

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name   string
		raw    string
		expect Frame
	}{
		{"received", "m[RHello|abc,AB]", Frame{Kind: FrameReceived, Content: "Hello|abc", Addr: "AB"}},
		{"sent response", "m[PHello|abc,CD]", Frame{Kind: FrameSentResponse, Content: "Hello|abc", Addr: "CD"}},
		{"received with comma", "m[Ra,b|abc,AB]", Frame{Kind: FrameReceived, Content: "a,b|abc", Addr: "AB"}},
		{"received with nul", "m[RNACK\x00,AB]", Frame{Kind: FrameReceived, Content: "NACK", Addr: "AB"}},
		{"ack", "m[RA,AB]", Frame{Kind: FrameReceived, Content: "A", Addr: "AB"}},
		{"empty content", "m[R,AB]", Frame{Kind: FrameReceived, Content: "", Addr: "AB"}},
		{"no address", "m[RHello]", Frame{Kind: FrameUnknown, Content: "m[RHello]"}},
		{"no suffix", "m[RHello,AB", Frame{Kind: FrameUnknown, Content: "m[RHello,AB"}},
		{"other type", "m[XHello,AB]", Frame{Kind: FrameUnknown, Content: "m[XHello,AB]"}},
		{"config", "c[1,0,5]", Frame{Kind: FrameUnknown, Content: "c[1,0,5]"}},
		{"empty", "", Frame{Kind: FrameUnknown}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, Classify(tc.raw))
		})
	}
}

func TestFrameSyntax(t *testing.T) {
	require.Equal(t, "m[Hello|abc\x00,CD]\n", SendFrame("Hello|abc", "CD"))
	require.Equal(t, "m[NACK\x00,AB]\n", SendFrame(SignalNACK, "AB"))
	require.Equal(t, "a[AB]\n", AddressFrame("AB"))
	require.Equal(t, "c[1,0,5]\n", ConfigFrame(1, 0, 5))
	require.Equal(t, "c[0,1,30]\n", ConfigFrame(0, 1, 30))

	require.Equal(t, "m[RHello,AB]\n", Frame{Kind: FrameReceived, Content: "Hello", Addr: "AB"}.String())
	require.Equal(t, "m[PHello,AB]\n", Frame{Kind: FrameSentResponse, Content: "Hello", Addr: "AB"}.String())
	require.Equal(t, "c[0,1,30]\n", Frame{Kind: FrameSetConfig, Content: "0,1,30"}.String())
	require.Equal(t, "a[CD]\n", Frame{Kind: FrameSetAddress, Addr: "CD"}.String())
}

func TestParseOutbound(t *testing.T) {
	testCases := []struct {
		name   string
		raw    string
		expect Frame
	}{
		{"send", "m[Hello|abc\x00,CD]", Frame{Kind: FrameSend, Content: "Hello|abc", Addr: "CD"}},
		{"send text starting with R", "m[Robot|abc\x00,CD]", Frame{Kind: FrameSend, Content: "Robot|abc", Addr: "CD"}},
		{"send with comma", "m[a,b\x00,CD]", Frame{Kind: FrameSend, Content: "a,b", Addr: "CD"}},
		{"address", "a[AB]", Frame{Kind: FrameSetAddress, Addr: "AB"}},
		{"config", "c[1,0,5]", Frame{Kind: FrameSetConfig, Content: "1,0,5"}},
		{"send without nul", "m[Hello,CD]", Frame{Kind: FrameUnknown, Content: "m[Hello,CD]"}},
		{"garbage", "hello", Frame{Kind: FrameUnknown, Content: "hello"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			frame := ParseOutbound(tc.raw)
			require.Equal(t, tc.expect, frame)
			if frame.Kind != FrameUnknown {
				require.Equal(t, tc.raw+"\n", frame.String())
			}
		})
	}
}

func TestSignals(t *testing.T) {
	require.True(t, Frame{Content: "NACK"}.IsNACK())
	require.True(t, Frame{Content: "NACK123"}.IsNACK())
	require.False(t, Frame{Content: "NAC"}.IsNACK())
	require.True(t, Frame{Content: "A"}.IsACK())
	require.False(t, Frame{Content: "AB"}.IsACK())
	require.False(t, Frame{Content: "A|" + Checksum("A")}.IsACK())
}
