package fsm

import (
	"embed"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/danielbahrami/SE08-SP/state"
	"gopkg.in/yaml.v3"
)

//go:embed tables/*.yaml
var profiles embed.FS

type tableConfig struct {
	Transitions []transitionConfig `yaml:"transitions"`
}

// transitionConfig is a direct transition unless Then is set, in which case To is
// the intermediate state and Then is delivered after Delay.
type transitionConfig struct {
	From  string `yaml:"from"`
	Event string `yaml:"event"`
	To    string `yaml:"to"`
	Delay string `yaml:"delay,omitempty"`
	Then  string `yaml:"then,omitempty"`
}

func LoadTable(r io.Reader) (*Table, error) {
	var cfg tableConfig
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}

	table := NewTable()
	for i, tc := range cfg.Transitions {
		from, err := state.Parse(tc.From)
		if err != nil {
			return nil, fmt.Errorf("%w: transition %d: %w", ErrUnknownState, i, err)
		}
		to, err := state.Parse(tc.To)
		if err != nil {
			return nil, fmt.Errorf("%w: transition %d: %w", ErrUnknownState, i, err)
		}
		if tc.Event == "" {
			return nil, fmt.Errorf("%w: transition %d has no event", ErrInvalidTable, i)
		}

		if tc.Then == "" {
			table.AddTransition(from, tc.Event, to)
			continue
		}

		var delay time.Duration
		if tc.Delay != "" {
			if delay, err = time.ParseDuration(tc.Delay); err != nil {
				return nil, fmt.Errorf("%w: transition %d: %w", ErrInvalidTable, i, err)
			}
		}
		table.AddSimTransition(from, tc.Event, to, delay, tc.Then)
	}

	if err := table.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LoadTable(f)
}

// Profile loads one of the embedded reference tables, "simulated" or "inline".
func Profile(name string) (*Table, error) {
	f, err := profiles.Open("tables/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown table profile %q", name)
	}
	defer f.Close()

	return LoadTable(f)
}
