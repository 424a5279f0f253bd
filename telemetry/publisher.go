package telemetry

import (
	"context"
	"log"
	"time"

	"github.com/danielbahrami/SE08-SP/common"
	"github.com/danielbahrami/SE08-SP/state"
)

// Transport hands a heartbeat to the broker. Delivery is not acknowledged.
type Transport interface {
	PublishHeartbeat(ctx context.Context, payload []byte) error
}

type StateReader interface {
	State() state.State
}

// Publisher samples the lock state once per period and publishes it.
type Publisher struct {
	reader    StateReader
	transport Transport
	period    time.Duration
	now       func() time.Time

	ticker common.Ticker
}

func NewPublisher(reader StateReader, transport Transport, period time.Duration) *Publisher {
	return &Publisher{
		reader:    reader,
		transport: transport,
		period:    period,
		now:       time.Now,
	}
}

// Start publishes the first heartbeat right away and then once per period.
func (p *Publisher) Start(ctx context.Context) {
	p.ticker.Start(p.period, func() {
		p.publish(ctx)
	})
}

func (p *Publisher) Stop() {
	p.ticker.Stop()
}

func (p *Publisher) publish(ctx context.Context) {
	msg := common.HeartbeatMessage(p.reader.State(), p.now())

	if err := p.transport.PublishHeartbeat(ctx, []byte(msg)); err != nil {
		log.Printf("telemetry - could not publish heartbeat: %s", err)
	}
}
