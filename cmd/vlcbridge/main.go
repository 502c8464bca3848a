package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/golang/glog"

	fx "github.com/robotalks/vlc.go/pkg/framework"
	"github.com/robotalks/vlc.go/pkg/transport"
)

var (
	portPath   = "/dev/ttyACM0"
	listenAddr = ":8080"
	wsPath     = "/modem"
	conf       = transport.DefaultConfig()
)

func init() {
	flag.StringVar(&portPath, "port", portPath, "Serial port of the modem.")
	flag.IntVar(&conf.BaudRate, "baud", conf.BaudRate, "Serial baud rate.")
	flag.DurationVar(&conf.ReadTimeout, "read-timeout", conf.ReadTimeout, "Read timeout of the serial port.")
	flag.StringVar(&listenAddr, "listen", listenAddr, "Listen address.")
	flag.StringVar(&wsPath, "path", wsPath, "Websocket path.")
}

func main() {
	flag.Parse()

	port, err := transport.OpenSerial(portPath, conf)
	if err != nil {
		log.Fatalln(err)
	}
	defer port.Close()

	bridge := &transport.Bridge{Port: port}
	mux := http.NewServeMux()
	mux.Handle(wsPath, bridge.Handler())
	server := &http.Server{Addr: listenAddr, Handler: mux}

	runner := fx.NewRunner().HandleSignals()
	glog.Infof("serving %s on ws://%s%s", portPath, listenAddr, wsPath)
	err = fx.RunWithContextCloser(runner.Context, server, server.ListenAndServe)
	if err != nil && err != http.ErrServerClosed {
		log.Println(err)
	}
}
