// Package env builds the runtime environment of the chat endpoints
// from flags, environment variables and an optional config file.
package env

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/robotalks/vlc.go/pkg/link"
	"github.com/robotalks/vlc.go/pkg/transport"
)

// EndpointConfig defines one side of the chat.
type EndpointConfig struct {
	// Port is the serial device or websocket URL of the modem.
	Port string
	// Addr is the modem address.
	Addr string
}

// Config provides the options to setup the two endpoints.
type Config struct {
	A EndpointConfig
	B EndpointConfig

	Transport transport.Config
	Setup     link.ModemConfig
	SkipSetup bool

	// MaxResends is passed to both endpoints.
	MaxResends int

	// MQTTBrokerURL enables publishing link events when not empty,
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// MetricsAddr enables the Prometheus endpoint when not empty.
	MetricsAddr string

	// Simulate replaces the modems by an in-memory pair.
	Simulate bool

	// ConfigFile is loaded by Load.
	ConfigFile string
}

var defaultConfig = Config{
	A:         EndpointConfig{Port: "/dev/ttyACM0", Addr: "AB"},
	B:         EndpointConfig{Port: "/dev/ttyACM1", Addr: "CD"},
	Transport: transport.DefaultConfig(),
	Setup:     link.DefaultModemConfig(),
}

func init() {
	defaultConfig.LoadEnv()
}

// LoadEnv overrides the config from environment variables.
func (c *Config) LoadEnv() {
	for name, val := range map[string]*string{
		"VLC_PORT_A":       &c.A.Port,
		"VLC_PORT_B":       &c.B.Port,
		"VLC_ADDR_A":       &c.A.Addr,
		"VLC_ADDR_B":       &c.B.Addr,
		"VLC_MQTT_URL":     &c.MQTTBrokerURL,
		"VLC_METRICS_ADDR": &c.MetricsAddr,
	} {
		if str := os.Getenv(name); str != "" {
			*val = str
		}
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.A.Port, "port-a", defaultConfig.A.Port, "Serial port or URL of modem A.")
	flag.StringVar(&defaultConfig.A.Addr, "addr-a", defaultConfig.A.Addr, "Address of modem A.")
	flag.StringVar(&defaultConfig.B.Port, "port-b", defaultConfig.B.Port, "Serial port or URL of modem B.")
	flag.StringVar(&defaultConfig.B.Addr, "addr-b", defaultConfig.B.Addr, "Address of modem B.")
	flag.IntVar(&defaultConfig.Transport.BaudRate, "baud", defaultConfig.Transport.BaudRate, "Serial baud rate.")
	flag.DurationVar(&defaultConfig.Transport.ReadTimeout, "read-timeout", defaultConfig.Transport.ReadTimeout, "Read timeout of modems.")
	flag.IntVar(&defaultConfig.Setup.Retransmissions, "retrans", defaultConfig.Setup.Retransmissions, "Modem retransmissions.")
	flag.IntVar(&defaultConfig.Setup.FECThreshold, "fec", defaultConfig.Setup.FECThreshold, "Modem FEC threshold.")
	flag.BoolVar(&defaultConfig.SkipSetup, "skip-setup", defaultConfig.SkipSetup, "Don't configure the modems.")
	flag.IntVar(&defaultConfig.MaxResends, "max-resends", defaultConfig.MaxResends, "Max resends of a message on NACK, -1 for unlimited.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL to publish link events.")
	flag.StringVar(&defaultConfig.MetricsAddr, "metrics", defaultConfig.MetricsAddr, "Listen address of Prometheus metrics.")
	flag.BoolVar(&defaultConfig.Simulate, "sim", defaultConfig.Simulate, "Use simulated modems.")
	flag.StringVar(&defaultConfig.ConfigFile, "config", defaultConfig.ConfigFile, "TOML config file.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Load creates a Config with default configurations and
// the config file if specified.
func Load() (*Config, error) {
	conf := NewConfig()
	if conf.ConfigFile != "" {
		if err := conf.LoadFile(conf.ConfigFile); err != nil {
			return nil, err
		}
	}
	return conf, conf.Validate()
}

// Validate checks the addresses of endpoints.
func (c *Config) Validate() error {
	for _, addr := range []string{c.A.Addr, c.B.Addr} {
		if addr == "" || strings.ContainsAny(addr, ",]\n\x00") {
			return fmt.Errorf("invalid modem address %q", addr)
		}
	}
	if c.A.Addr == c.B.Addr {
		return fmt.Errorf("modems must have different addresses: %q", c.A.Addr)
	}
	return nil
}

type fileEndpoint struct {
	Port string `toml:"port"`
	Addr string `toml:"addr"`
}

type fileSetup struct {
	StartupDelay    string `toml:"startup_delay"`
	SettleDelay     string `toml:"settle_delay"`
	Retransmissions int    `toml:"retransmissions"`
	FECThreshold    int    `toml:"fec_threshold"`
	Skip            bool   `toml:"skip"`
}

type fileConfig struct {
	A           fileEndpoint `toml:"a"`
	B           fileEndpoint `toml:"b"`
	BaudRate    int          `toml:"baud_rate"`
	ReadTimeout string       `toml:"read_timeout"`
	Setup       fileSetup    `toml:"setup"`
	MaxResends  int          `toml:"max_resends"`
	MQTT        string       `toml:"mqtt"`
	Metrics     string       `toml:"metrics"`
	Simulate    bool         `toml:"simulate"`
}

// LoadFile overrides the config with the keys defined in a TOML file.
func (c *Config) LoadFile(path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	strs := []struct {
		key []string
		src string
		dst *string
	}{
		{[]string{"a", "port"}, raw.A.Port, &c.A.Port},
		{[]string{"a", "addr"}, raw.A.Addr, &c.A.Addr},
		{[]string{"b", "port"}, raw.B.Port, &c.B.Port},
		{[]string{"b", "addr"}, raw.B.Addr, &c.B.Addr},
		{[]string{"mqtt"}, raw.MQTT, &c.MQTTBrokerURL},
		{[]string{"metrics"}, raw.Metrics, &c.MetricsAddr},
	}
	for _, s := range strs {
		if meta.IsDefined(s.key...) {
			*s.dst = strings.TrimSpace(s.src)
		}
	}

	ints := []struct {
		key []string
		src int
		dst *int
	}{
		{[]string{"baud_rate"}, raw.BaudRate, &c.Transport.BaudRate},
		{[]string{"setup", "retransmissions"}, raw.Setup.Retransmissions, &c.Setup.Retransmissions},
		{[]string{"setup", "fec_threshold"}, raw.Setup.FECThreshold, &c.Setup.FECThreshold},
		{[]string{"max_resends"}, raw.MaxResends, &c.MaxResends},
	}
	for _, s := range ints {
		if meta.IsDefined(s.key...) {
			*s.dst = s.src
		}
	}

	durations := []struct {
		key []string
		src string
		dst *time.Duration
	}{
		{[]string{"read_timeout"}, raw.ReadTimeout, &c.Transport.ReadTimeout},
		{[]string{"setup", "startup_delay"}, raw.Setup.StartupDelay, &c.Setup.StartupDelay},
		{[]string{"setup", "settle_delay"}, raw.Setup.SettleDelay, &c.Setup.SettleDelay},
	}
	for _, s := range durations {
		if !meta.IsDefined(s.key...) {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(s.src))
		if err != nil {
			return fmt.Errorf("parse %s: %w", strings.Join(s.key, "."), err)
		}
		*s.dst = d
	}

	if meta.IsDefined("setup", "skip") {
		c.SkipSetup = raw.Setup.Skip
	}
	if meta.IsDefined("simulate") {
		c.Simulate = raw.Simulate
	}
	return nil
}
