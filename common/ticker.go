package common

import (
	"sync"
	"time"
)

// Ticker invokes a callback immediately and then once every period until stopped.
type Ticker struct {
	quit chan struct{}
	once sync.Once
}

func (t *Ticker) Start(duration time.Duration, callback func()) {
	t.quit = make(chan struct{})
	t.once = sync.Once{}

	ticker := time.NewTicker(duration)
	go func() {
		callback()
		for {
			select {
			case <-ticker.C:
				callback()
			case <-t.quit:
				ticker.Stop()
				return
			}
		}
	}()
}

func (t *Ticker) Stop() {
	if t.quit == nil {
		return
	}
	t.once.Do(func() {
		close(t.quit)
	})
}
