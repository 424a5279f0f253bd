package fsm

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/danielbahrami/SE08-SP/state"
)

var (
	ErrAmbiguousTransition = errors.New("event has both a direct and a simulated transition")
	ErrUnknownState        = errors.New("unknown state")
	ErrInvalidTable        = errors.New("invalid transition table")
)

// SimTransition moves to Intermediate immediately and re-injects FollowUp after Delay.
type SimTransition struct {
	Intermediate state.State
	Delay        time.Duration
	FollowUp     string
}

// StateNode holds the outgoing transitions of one state, keyed by event name.
type StateNode struct {
	transitions    map[string]state.State
	simTransitions map[string]SimTransition
}

func newStateNode() *StateNode {
	return &StateNode{
		transitions:    make(map[string]state.State),
		simTransitions: make(map[string]SimTransition),
	}
}

func (n *StateNode) NextState(event string) (state.State, bool) {
	next, ok := n.transitions[event]
	return next, ok
}

func (n *StateNode) NextSimState(event string) (SimTransition, bool) {
	sim, ok := n.simTransitions[event]
	return sim, ok
}

// Table maps a given state to its StateNode. States without a node have no
// outgoing transitions.
type Table struct {
	nodes map[state.State]*StateNode
	errs  []error
}

func NewTable() *Table {
	return &Table{nodes: make(map[state.State]*StateNode)}
}

func (t *Table) node(given state.State) *StateNode {
	n, ok := t.nodes[given]
	if !ok {
		n = newStateNode()
		t.nodes[given] = n
	}
	return n
}

// AddTransition registers an immediate transition. Registering the same event
// twice for a state replaces the earlier target.
func (t *Table) AddTransition(given state.State, event string, next state.State) *Table {
	n := t.node(given)
	if _, ok := n.simTransitions[event]; ok {
		t.errs = append(t.errs, fmt.Errorf("%w: %s on %q", ErrAmbiguousTransition, given, event))
		return t
	}
	n.transitions[event] = next
	return t
}

// AddSimTransition registers a transition that enters intermediate now and
// delivers followUp after delay.
func (t *Table) AddSimTransition(given state.State, event string, intermediate state.State, delay time.Duration, followUp string) *Table {
	n := t.node(given)
	if _, ok := n.transitions[event]; ok {
		t.errs = append(t.errs, fmt.Errorf("%w: %s on %q", ErrAmbiguousTransition, given, event))
		return t
	}
	if delay < 0 {
		t.errs = append(t.errs, fmt.Errorf("%w: negative delay for %s on %q", ErrInvalidTable, given, event))
		return t
	}
	n.simTransitions[event] = SimTransition{Intermediate: intermediate, Delay: delay, FollowUp: followUp}
	return t
}

// Err reports every problem found while the table was built.
func (t *Table) Err() error {
	return errors.Join(t.errs...)
}

func (t *Table) Node(given state.State) (*StateNode, bool) {
	n, ok := t.nodes[given]
	return n, ok
}

// Events returns every event name the table reacts to, including follow-ups, sorted.
func (t *Table) Events() []string {
	set := make(map[string]struct{})
	for _, n := range t.nodes {
		for e := range n.transitions {
			set[e] = struct{}{}
		}
		for e, sim := range n.simTransitions {
			set[e] = struct{}{}
			set[sim.FollowUp] = struct{}{}
		}
	}

	events := make([]string, 0, len(set))
	for e := range set {
		events = append(events, e)
	}
	sort.Strings(events)
	return events
}
