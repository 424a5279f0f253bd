package common

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

var ErrParsingConfig = errors.New("failed to parse environment variables into config")

type Config struct {
	Network   NetworkConfig
	Mqtt      MqttConfig
	Dda       DdaConfig
	Lock      LockConfig
	Indicator IndicatorConfig
	Buzzer    BuzzerConfig
	Http      HttpConfig
	Trace     TraceConfig

	// Transport selects the command and telemetry collaborator, "mqtt" or "dda".
	Transport string `env:"LOCK_TRANSPORT"`
}

type NetworkConfig struct {
	Ssid      string `env:"WIFI_SSID"`
	Password  string `env:"WIFI_PASSWORD"`
	Interface string `env:"NETWORK_INTERFACE"`
}

type MqttConfig struct {
	Broker               string    `env:"MQTT_BROKER"`
	CommandTopic         string    `env:"MQTT_COMMAND_TOPIC"`
	HeartbeatTopic       string    `env:"MQTT_HEARTBEAT_TOPIC"`
	ClientId             string    `env:"MQTT_CLIENT_ID"`
	HeartbeatFrequencyMs LenientMs `env:"MQTT_HEARTBEAT_FREQUENCY_MS"`
}

type DdaConfig struct {
	Url     string `env:"DDA_URL"`
	Cluster string `env:"DDA_CLUSTER"`
}

type LockConfig struct {
	Mode         string `env:"LOCK_MODE"`
	Table        string `env:"LOCK_TABLE"`
	PollPeriodMs int    `env:"LOCK_POLL_PERIOD_MS"`
}

type IndicatorConfig struct {
	Output   string `env:"INDICATOR_OUTPUT"`
	PeriodMs int    `env:"INDICATOR_PERIOD_MS"`
	Inverted bool   `env:"INDICATOR_INVERTED"`
}

type BuzzerConfig struct {
	Enabled bool `env:"BUZZER_ENABLED"`
}

type HttpConfig struct {
	Addr string `env:"HTTP_ADDR"`
}

type TraceConfig struct {
	// Exporter is "none" or "stdout".
	Exporter string `env:"TRACE_EXPORTER"`
}

// LenientMs is a millisecond count. Text that is not an integer decodes to 0.
type LenientMs int

func (m *LenientMs) UnmarshalText(text []byte) error {
	v, err := strconv.Atoi(strings.TrimSpace(string(text)))
	if err != nil {
		v = 0
	}
	*m = LenientMs(v)
	return nil
}

const defaultHeartbeatFrequency = 1000 * time.Millisecond

func NewConfig() *Config {
	return &Config{
		Transport: "mqtt",
		Mqtt: MqttConfig{
			Broker:               "tcp://localhost:1883",
			CommandTopic:         "smartlock/command",
			HeartbeatTopic:       "smartlock/heartbeat",
			ClientId:             uuid.NewString(),
			HeartbeatFrequencyMs: 1000,
		},
		Dda: DdaConfig{
			Cluster: "smartlock",
		},
		Lock: LockConfig{
			Mode:         "simulated",
			PollPeriodMs: 50,
		},
		Indicator: IndicatorConfig{
			Output:   "log",
			PeriodMs: 500,
			Inverted: true,
		},
		Trace: TraceConfig{
			Exporter: "none",
		},
	}
}

// LoadConfig overlays .env files and the process environment onto the defaults.
// Missing .env files are not an error.
func LoadConfig(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	cfg := NewConfig()
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}

	return cfg, nil
}

// HeartbeatFrequency falls back to one second for unparsable or non-positive values.
func (c MqttConfig) HeartbeatFrequency() time.Duration {
	if c.HeartbeatFrequencyMs <= 0 {
		return defaultHeartbeatFrequency
	}
	return time.Duration(c.HeartbeatFrequencyMs) * time.Millisecond
}

func (c LockConfig) PollPeriod() time.Duration {
	if c.PollPeriodMs <= 0 {
		return 50 * time.Millisecond
	}
	return time.Duration(c.PollPeriodMs) * time.Millisecond
}

func (c IndicatorConfig) Period() time.Duration {
	if c.PeriodMs <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.PeriodMs) * time.Millisecond
}
