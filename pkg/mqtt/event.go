package mqtt

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"

	"github.com/robotalks/vlc.go/pkg/link"
)

const eventsTopicSuffix = "/events"

// EventTopic returns the topic of events from the endpoint addr.
func EventTopic(addr string) string {
	return addr + eventsTopicSuffix
}

// EventTopicPattern matches events from all endpoints.
const EventTopicPattern = "+" + eventsTopicSuffix

// AddrFromTopic extracts the endpoint address from an event topic.
func AddrFromTopic(topic string) (string, bool) {
	if !strings.HasSuffix(topic, eventsTopicSuffix) {
		return "", false
	}
	return strings.TrimSuffix(topic, eventsTopicSuffix), true
}

func stringValue(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}

// EncodeEvent encodes an event as google.protobuf.Struct.
func EncodeEvent(ev link.Event) ([]byte, error) {
	return proto.Marshal(&structpb.Struct{
		Fields: map[string]*structpb.Value{
			"kind": stringValue(ev.Kind.String()),
			"addr": stringValue(ev.Addr),
			"peer": stringValue(ev.Peer),
			"text": stringValue(ev.Text),
			"time": stringValue(ev.Time.UTC().Format(time.RFC3339Nano)),
		},
	})
}

// DecodeEvent is the reverse of EncodeEvent.
func DecodeEvent(data []byte) (ev link.Event, err error) {
	var s structpb.Struct
	if err = proto.Unmarshal(data, &s); err != nil {
		return
	}
	field := func(name string) string {
		return s.Fields[name].GetStringValue()
	}
	kind, ok := link.ParseEventKind(field("kind"))
	if !ok {
		err = fmt.Errorf("unknown event kind: %q", field("kind"))
		return
	}
	ev.Kind, ev.Addr, ev.Peer, ev.Text = kind, field("addr"), field("peer"), field("text")
	if str := field("time"); str != "" {
		if ev.Time, err = time.Parse(time.RFC3339Nano, str); err != nil {
			return
		}
	}
	return
}
