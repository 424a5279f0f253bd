package fsm

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/danielbahrami/SE08-SP/state"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/danielbahrami/SE08-SP/fsm"

// Scheduler delivers the follow-up event of a simulated transition after delay.
// ctx carries the span of the triggering event.
type Scheduler interface {
	Schedule(ctx context.Context, delay time.Duration, event string)
}

// Snapshot is a consistent copy of the machine's observable state.
type Snapshot struct {
	State          state.State
	ErrorCondition string
	ErrorActive    bool
}

// FollowUp is the delayed event spawned by a simulated transition.
type FollowUp struct {
	Delay time.Duration
	Event string
}

type Result struct {
	From         state.State
	To           state.State
	Transitioned bool
	// Late is set for an outstanding follow-up that matched no transition.
	Late         bool
	FollowUp     *FollowUp
}

type Machine struct {
	mu             sync.Mutex
	current        state.State
	errorCondition *string
	table          *Table
	// pending counts outstanding follow-ups by event name. An event submitted
	// from outside with the same name consumes one count.
	pending        map[string]int

	scheduler Scheduler
	tracer    trace.Tracer
}

type Option func(*Machine)

// WithScheduler sends follow-up events through s, typically a timer feeding the
// event dispatcher.
func WithScheduler(s Scheduler) Option {
	return func(m *Machine) {
		m.scheduler = s
	}
}

// WithInlineCompletion sleeps on the calling goroutine and applies the follow-up
// directly, so a simulated transition completes before Apply returns.
func WithInlineCompletion() Option {
	return func(m *Machine) {
		m.scheduler = inlineScheduler{m}
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *Machine) {
		m.tracer = tp.Tracer(tracerName)
	}
}

func WithInitialState(s state.State) Option {
	return func(m *Machine) {
		m.current = s
	}
}

func NewMachine(table *Table, opts ...Option) (*Machine, error) {
	if err := table.Err(); err != nil {
		return nil, err
	}

	m := &Machine{
		current: state.Uninitialized,
		table:   table,
		pending: make(map[string]int),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.scheduler == nil {
		m.scheduler = inlineScheduler{m}
	}

	return m, nil
}

// Apply looks up the transition for event in the current state and performs it.
// Unknown events and unconfigured states are ignored.
func (m *Machine) Apply(ctx context.Context, event string) Result {
	ctx, span := m.tracer.Start(ctx, "fsm.Apply", trace.WithAttributes(attribute.String("lock.event", event)))
	defer span.End()

	result := m.transition(event)

	span.SetAttributes(
		attribute.String("lock.from", result.From.String()),
		attribute.String("lock.to", result.To.String()),
		attribute.Bool("lock.transitioned", result.Transitioned),
	)

	switch {
	case result.Late:
		log.Printf("fsm - ignoring late follow-up %s in state %s", event, result.From)
	case result.Transitioned:
		log.Printf("fsm - %s: %s --> %s", event, result.From, result.To)
	}

	if result.FollowUp != nil {
		span.AddEvent("follow-up scheduled", trace.WithAttributes(
			attribute.String("lock.follow_up", result.FollowUp.Event),
			attribute.Int64("lock.delay_ms", result.FollowUp.Delay.Milliseconds()),
		))
		m.scheduler.Schedule(ctx, result.FollowUp.Delay, result.FollowUp.Event)
	}

	return result
}

// transition is the critical section of Apply.
func (m *Machine) transition(event string) Result {
	defer m.mu.Unlock()
	m.mu.Lock()

	result := Result{From: m.current, To: m.current}

	isFollowUp := m.pending[event] > 0
	if isFollowUp {
		m.pending[event]--
		if m.pending[event] == 0 {
			delete(m.pending, event)
		}
	}

	node, ok := m.table.Node(m.current)
	if !ok {
		result.Late = isFollowUp
		return result
	}

	if next, ok := node.NextState(event); ok {
		m.setState(next, event)
	} else if sim, ok := node.NextSimState(event); ok {
		m.setState(sim.Intermediate, event)
		m.pending[sim.FollowUp]++
		result.FollowUp = &FollowUp{Delay: sim.Delay, Event: sim.FollowUp}
	} else {
		result.Late = isFollowUp
		return result
	}

	result.To = m.current
	result.Transitioned = true
	return result
}

func (m *Machine) setState(s state.State, event string) {
	if s == state.Error {
		e := event
		m.errorCondition = &e
	} else {
		m.errorCondition = nil
	}
	m.current = s
}

func (m *Machine) State() state.State {
	defer m.mu.Unlock()
	m.mu.Lock()
	return m.current
}

// ErrorCondition returns the event that drove the machine into Error.
func (m *Machine) ErrorCondition() (string, bool) {
	defer m.mu.Unlock()
	m.mu.Lock()
	if m.errorCondition == nil {
		return "", false
	}
	return *m.errorCondition, true
}

func (m *Machine) Snapshot() Snapshot {
	defer m.mu.Unlock()
	m.mu.Lock()

	s := Snapshot{State: m.current, ErrorActive: m.current == state.Error}
	if m.errorCondition != nil {
		s.ErrorCondition = *m.errorCondition
	}
	return s
}

// Events lists the event names the machine's table reacts to.
func (m *Machine) Events() []string {
	return m.table.Events()
}

type inlineScheduler struct {
	m *Machine
}

func (s inlineScheduler) Schedule(ctx context.Context, delay time.Duration, event string) {
	time.Sleep(delay)
	s.m.Apply(ctx, event)
}
