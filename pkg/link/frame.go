package link

import (
	"strconv"
	"strings"
)

// FrameKind defines the type of a frame.
type FrameKind int

// Frame kinds.
const (
	// FrameUnknown is any line not recognized.
	FrameUnknown FrameKind = iota
	// FrameSend asks the modem to transmit a payload to Addr.
	FrameSend
	// FrameReceived is a payload received from the peer at Addr.
	FrameReceived
	// FrameSentResponse is the modem's response to a payload sent by this side.
	FrameSentResponse
	// FrameSetAddress assigns the modem address.
	FrameSetAddress
	// FrameSetConfig configures the modem.
	FrameSetConfig
)

var frameKindNames = map[FrameKind]string{
	FrameUnknown:      "unknown",
	FrameSend:         "send",
	FrameReceived:     "received",
	FrameSentResponse: "sent-response",
	FrameSetAddress:   "set-address",
	FrameSetConfig:    "set-config",
}

// String implements fmt.Stringer.
func (k FrameKind) String() string {
	if name, ok := frameKindNames[k]; ok {
		return name
	}
	return "FrameKind(" + strconv.Itoa(int(k)) + ")"
}

// Wire syntax.
const (
	Terminator = '\n'

	// SignalACK is the content of an acknowledgment, ignored by the application.
	SignalACK = "A"
	// SignalNACK is the leading token of an integrity failure signal.
	SignalNACK = "NACK"
)

const (
	msgPrefix          = "m["
	recvPrefix         = "m[R"
	sentResponsePrefix = "m[P"
	addrPrefix         = "a["
	configPrefix       = "c["
	frameSuffix        = "]"
)

// Frame is a single line of the modem protocol.
// Content holds the payload for FrameSend, FrameReceived and FrameSentResponse,
// or the comma separated parameters for FrameSetConfig.
type Frame struct {
	Kind    FrameKind
	Content string
	Addr    string
}

// IsNACK indicates the frame carries a NACK signal.
func (f Frame) IsNACK() bool {
	return strings.HasPrefix(f.Content, SignalNACK)
}

// IsACK indicates the frame carries an ACK signal.
func (f Frame) IsACK() bool {
	return f.Content == SignalACK
}

// String encodes the frame in wire syntax, including the terminator.
func (f Frame) String() string {
	switch f.Kind {
	case FrameSend:
		return SendFrame(f.Content, f.Addr)
	case FrameReceived:
		return recvPrefix + f.Content + "," + f.Addr + frameSuffix + string(Terminator)
	case FrameSentResponse:
		return sentResponsePrefix + f.Content + "," + f.Addr + frameSuffix + string(Terminator)
	case FrameSetAddress:
		return AddressFrame(f.Addr)
	case FrameSetConfig:
		return configPrefix + f.Content + frameSuffix + string(Terminator)
	}
	return f.Content + string(Terminator)
}

// SendFrame encodes a frame to transmit content to dest.
func SendFrame(content, dest string) string {
	return msgPrefix + content + "\x00," + dest + frameSuffix + string(Terminator)
}

// AddressFrame encodes a frame to assign the modem address.
func AddressFrame(addr string) string {
	return addrPrefix + addr + frameSuffix + string(Terminator)
}

// ConfigFrame encodes a modem configuration frame.
func ConfigFrame(params ...int) string {
	strs := make([]string, len(params))
	for n, p := range params {
		strs[n] = strconv.Itoa(p)
	}
	return configPrefix + strings.Join(strs, ",") + frameSuffix + string(Terminator)
}

// Classify parses a raw line (without terminator) read from the modem.
func Classify(raw string) Frame {
	var kind FrameKind
	switch {
	case strings.HasPrefix(raw, recvPrefix):
		kind = FrameReceived
	case strings.HasPrefix(raw, sentResponsePrefix):
		kind = FrameSentResponse
	default:
		return Frame{Kind: FrameUnknown, Content: raw}
	}
	if !strings.HasSuffix(raw, frameSuffix) {
		return Frame{Kind: FrameUnknown, Content: raw}
	}
	body := raw[len(recvPrefix) : len(raw)-len(frameSuffix)]
	pos := strings.LastIndexByte(body, ',')
	if pos < 0 {
		return Frame{Kind: FrameUnknown, Content: raw}
	}
	return Frame{
		Kind:    kind,
		Content: strings.TrimSuffix(body[:pos], "\x00"),
		Addr:    body[pos+1:],
	}
}

// ParseOutbound parses a line written to the modem.
// It's the counterpart of SendFrame, AddressFrame and ConfigFrame.
func ParseOutbound(raw string) Frame {
	if !strings.HasSuffix(raw, frameSuffix) {
		return Frame{Kind: FrameUnknown, Content: raw}
	}
	switch {
	case strings.HasPrefix(raw, addrPrefix):
		return Frame{Kind: FrameSetAddress, Addr: raw[len(addrPrefix) : len(raw)-len(frameSuffix)]}
	case strings.HasPrefix(raw, configPrefix):
		return Frame{Kind: FrameSetConfig, Content: raw[len(configPrefix) : len(raw)-len(frameSuffix)]}
	case strings.HasPrefix(raw, msgPrefix):
		body := raw[len(msgPrefix) : len(raw)-len(frameSuffix)]
		pos := strings.LastIndex(body, "\x00,")
		if pos < 0 {
			return Frame{Kind: FrameUnknown, Content: raw}
		}
		return Frame{Kind: FrameSend, Content: body[:pos], Addr: body[pos+2:]}
	}
	return Frame{Kind: FrameUnknown, Content: raw}
}
