package main

import (
	"flag"
	"log"
	"os"

	"github.com/robotalks/vlc.go/pkg/env"
	fx "github.com/robotalks/vlc.go/pkg/framework"
	"github.com/robotalks/vlc.go/pkg/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/vlc/"
)

func init() {
	if val := os.Getenv("VLC_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL, env.ClientID()+"-mon")
	if err != nil {
		log.Fatalln(err)
	}
	if err = q.Connect(); err != nil {
		log.Fatalln(err)
	}
	defer q.Close()

	err = q.Sub(mqtt.EventTopicPattern, func(topic string, payload []byte) {
		ev, err := mqtt.DecodeEvent(payload)
		if err != nil {
			log.Printf("%s: bad event: %v", topic, err)
			return
		}
		log.Printf("%s -> %s [%s] %q", ev.Addr, ev.Peer, ev.Kind, ev.Text)
	})
	if err != nil {
		log.Fatalln(err)
	}
	<-fx.NewRunner().HandleSignals().Context.Done()
}
