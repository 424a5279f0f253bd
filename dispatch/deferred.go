package dispatch

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/danielbahrami/SE08-SP/common"
)

// Deferred delivers follow-up events into a Dispatcher after a delay. Each
// scheduled event fires exactly once and cannot be cancelled.
type Deferred struct {
	dispatcher *Dispatcher
	wg         sync.WaitGroup
}

func NewDeferred(dispatcher *Dispatcher) *Deferred {
	return &Deferred{dispatcher: dispatcher}
}

// Schedule delivers event after delay. The event reaches the machine through the
// dispatcher, so ctx is not carried across.
func (d *Deferred) Schedule(_ context.Context, delay time.Duration, event string) {
	d.wg.Add(1)

	timer := common.Timer{}
	timer.Start(delay, func() {
		defer d.wg.Done()
		if err := d.dispatcher.Send(event); err != nil {
			log.Printf("dispatch - dropping follow-up event %s: %s", event, err)
		}
	})
}

// Wait blocks until every scheduled event has been delivered or dropped.
func (d *Deferred) Wait() {
	d.wg.Wait()
}
