package mqtt

import (
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/vlc.go/pkg/link"
)

// Publishing abstracts Queue.Pub.
type Publishing interface {
	Pub(topic string, payload []byte) paho.Token
}

// Publisher implements link.EventNotifier by publishing events.
// Read timeouts are not published.
type Publisher struct {
	Queue Publishing
}

// NewPublisher creates a Publisher.
func NewPublisher(q Publishing) *Publisher {
	return &Publisher{Queue: q}
}

// LinkEvent implements link.EventNotifier.
func (p *Publisher) LinkEvent(ev link.Event) {
	if ev.Kind == link.EventTimeout {
		return
	}
	payload, err := EncodeEvent(ev)
	if err != nil {
		glog.Errorf("encode event error: %v", err)
		return
	}
	p.Queue.Pub(EventTopic(ev.Addr), payload)
}
