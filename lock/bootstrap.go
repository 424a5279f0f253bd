package lock

import (
	"context"
	"log"

	"github.com/danielbahrami/SE08-SP/common"
)

// Link brings up the network connection of the device.
type Link interface {
	Up(ctx context.Context) error
}

// Opener connects the command and telemetry transport.
type Opener interface {
	Open(ctx context.Context) error
}

// Bootstrap drives the machine through initialization. A failing link or
// transport is reported to the machine as err-wifi or err-mqtt and returned.
func (l *SmartLock) Bootstrap(ctx context.Context, link Link, transport Opener) error {
	if err := l.Send(common.INIT_EVENT); err != nil {
		return err
	}

	if err := link.Up(ctx); err != nil {
		log.Printf("lock - please check the network configuration: %s", err)
		l.report(common.ERR_WIFI_EVENT)
		return err
	}

	if err := transport.Open(ctx); err != nil {
		log.Printf("lock - please check the broker address: %s", err)
		l.report(common.ERR_MQTT_EVENT)
		return err
	}

	return l.Send(common.READY_EVENT)
}

func (l *SmartLock) report(event string) {
	if err := l.Send(event); err != nil {
		log.Printf("lock - could not report %s: %s", event, err)
	}
}
