package lock

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/danielbahrami/SE08-SP/dispatch"
	"github.com/danielbahrami/SE08-SP/fsm"
	"github.com/danielbahrami/SE08-SP/state"
	"go.opentelemetry.io/otel/trace"
)

type Mode string

const (
	// ModeSimulated completes simulated transitions from timer goroutines.
	ModeSimulated Mode = "simulated"
	// ModeInline sleeps through simulated transitions on the owner goroutine.
	ModeInline Mode = "inline"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeSimulated:
		return ModeSimulated, nil
	case ModeInline:
		return ModeInline, nil
	}
	return "", fmt.Errorf("unknown lock mode %q", s)
}

type Config struct {
	Mode           Mode
	PollPeriod     time.Duration
	TracerProvider trace.TracerProvider
}

// SmartLock owns the state machine and the event dispatcher feeding it. Only
// the goroutine running Run mutates the machine.
type SmartLock struct {
	machine    *fsm.Machine
	dispatcher *dispatch.Dispatcher
	deferred   *dispatch.Deferred
	pollPeriod time.Duration
	events     map[string]bool
	done       chan struct{}
}

func New(table *fsm.Table, cfg Config) (*SmartLock, error) {
	l := &SmartLock{
		dispatcher: dispatch.New(),
		pollPeriod: cfg.PollPeriod,
		events:     make(map[string]bool),
		done:       make(chan struct{}),
	}
	if l.pollPeriod <= 0 {
		l.pollPeriod = 50 * time.Millisecond
	}

	opts := []fsm.Option{}
	switch cfg.Mode {
	case ModeInline:
		opts = append(opts, fsm.WithInlineCompletion())
	case ModeSimulated, "":
		l.deferred = dispatch.NewDeferred(l.dispatcher)
		opts = append(opts, fsm.WithScheduler(l.deferred))
	default:
		return nil, fmt.Errorf("unknown lock mode %q", cfg.Mode)
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, fsm.WithTracerProvider(cfg.TracerProvider))
	}

	var err error
	if l.machine, err = fsm.NewMachine(table, opts...); err != nil {
		return nil, err
	}

	for _, e := range l.machine.Events() {
		l.events[e] = true
	}

	return l, nil
}

func (l *SmartLock) Machine() *fsm.Machine {
	return l.machine
}

func (l *SmartLock) State() state.State {
	return l.machine.State()
}

func (l *SmartLock) Snapshot() fsm.Snapshot {
	return l.machine.Snapshot()
}

// Send enqueues an internal event such as init or err-wifi.
func (l *SmartLock) Send(event string) error {
	return l.dispatcher.Send(event)
}

// Submit decodes an external command and enqueues the resulting event. Event
// names from the transition table pass through unchanged, anything else that is
// not a known command becomes err-command. Empty commands are dropped.
func (l *SmartLock) Submit(raw string) error {
	command := strings.TrimSpace(raw)
	if command == "" {
		return nil
	}

	event := command
	if c := DecodeCommand(command); c != CommandUnknown || !l.events[command] {
		event = c.Event()
	}
	if event != command {
		log.Printf("lock - command %q --> event %s", command, event)
	}

	return l.dispatcher.Send(event)
}

// Consume submits every command received on commands until the channel is
// closed, ctx is done or the dispatcher shut down.
func (l *SmartLock) Consume(ctx context.Context, commands <-chan string) {
	for {
		select {
		case command, ok := <-commands:
			if !ok {
				return
			}
			if err := l.Submit(command); err != nil {
				log.Printf("lock - command source stopped: %s", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Run polls the dispatcher and applies pending events until ctx is done. The
// dispatcher is closed on return, so later sends fail with ErrChannelClosed.
// Run must be called once.
func (l *SmartLock) Run(ctx context.Context) {
	defer close(l.done)
	defer l.dispatcher.Close()

	for {
		for {
			event, ok := l.dispatcher.TryReceive()
			if !ok {
				break
			}
			l.machine.Apply(ctx, event)
		}

		select {
		case <-ctx.Done():
			log.Println("lock - shutdown event loop")
			return
		case <-time.After(l.pollPeriod):
		}
	}
}

// Done is closed once Run has returned and no further follow-ups can be scheduled.
func (l *SmartLock) Done() <-chan struct{} {
	return l.done
}

// Wait blocks until every pending follow-up timer has fired. Call it after Done
// is closed.
func (l *SmartLock) Wait() {
	if l.deferred != nil {
		l.deferred.Wait()
	}
}
