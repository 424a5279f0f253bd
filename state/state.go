package state

import (
	"fmt"
	"strings"
)

// State is the operating mode of the lock.
type State int

const (
	Uninitialized State = iota
	Initializing
	Error
	Locked
	Unlocking
	Unlocked
	Locking
)

var names = map[State]string{
	Uninitialized: "NONE",
	Initializing:  "INITIALIZING",
	Error:         "ERROR",
	Locked:        "LOCKED",
	Unlocking:     "UNLOCKING",
	Unlocked:      "UNLOCKED",
	Locking:       "LOCKING",
}

// All lists every state in declaration order.
func All() []State {
	return []State{Uninitialized, Initializing, Error, Locked, Unlocking, Unlocked, Locking}
}

func (s State) String() string {
	if name, ok := names[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Parse accepts the wire names used in telemetry ("LOCKED") case-insensitively,
// plus "uninitialized" as an alias of NONE.
func Parse(name string) (State, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if n == "UNINITIALIZED" {
		return Uninitialized, nil
	}
	for s, sn := range names {
		if sn == n {
			return s, nil
		}
	}
	return Uninitialized, fmt.Errorf("unknown state %q", name)
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
