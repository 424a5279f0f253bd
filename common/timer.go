package common

import (
	"time"
)

// Timer runs a callback once after a delay. It cannot be stopped once started.
type Timer struct {
	done chan struct{}
}

func (t *Timer) Start(duration time.Duration, callback func()) {
	t.done = make(chan struct{})

	timer := time.NewTimer(duration)

	go func() {
		defer close(t.done)
		<-timer.C
		callback()
	}()
}

// Done is closed after the callback has returned.
func (t *Timer) Done() <-chan struct{} {
	return t.done
}
