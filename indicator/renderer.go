package indicator

import (
	"context"
	"log"
	"time"

	"github.com/danielbahrami/SE08-SP/fsm"
	"github.com/danielbahrami/SE08-SP/state"
)

const maxDuty = 255

// Output drives the three indicator channels with already polarity-adjusted
// duty values.
type Output interface {
	SetDuty(r, g, b uint8) error
}

type Source interface {
	Snapshot() fsm.Snapshot
}

// Chime is told about every state change the renderer observes.
type Chime interface {
	Notify(s state.State)
}

type Renderer struct {
	source   Source
	output   Output
	period   time.Duration
	inverted bool
	chimes   []Chime

	last    *state.State
	blankOn bool
}

type Option func(*Renderer)

func WithPeriod(period time.Duration) Option {
	return func(r *Renderer) {
		r.period = period
	}
}

// WithInverted selects the written value 255 - channel, used by common-anode LEDs.
func WithInverted(inverted bool) Option {
	return func(r *Renderer) {
		r.inverted = inverted
	}
}

func WithChime(c Chime) Option {
	return func(r *Renderer) {
		r.chimes = append(r.chimes, c)
	}
}

func NewRenderer(source Source, output Output, opts ...Option) *Renderer {
	r := &Renderer{
		source:   source,
		output:   output,
		period:   500 * time.Millisecond,
		inverted: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run renders one frame per period until ctx is done.
func (r *Renderer) Run(ctx context.Context) {
	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	r.render()
	for {
		select {
		case <-ticker.C:
			r.render()
		case <-ctx.Done():
			log.Println("indicator - shutdown renderer")
			return
		}
	}
}

func (r *Renderer) render() {
	if err := r.Tick(); err != nil {
		log.Printf("indicator - could not set duty: %s", err)
	}
}

// Tick samples the machine and writes one frame. While the machine is in Error
// frames alternate between all channels written at maximum and the state color.
func (r *Renderer) Tick() error {
	snapshot := r.source.Snapshot()

	if r.last == nil || *r.last != snapshot.State {
		s := snapshot.State
		r.last = &s
		r.blankOn = false
		for _, c := range r.chimes {
			c.Notify(s)
		}
	}

	if snapshot.ErrorActive {
		r.blankOn = !r.blankOn
		if r.blankOn {
			return r.output.SetDuty(maxDuty, maxDuty, maxDuty)
		}
	} else {
		r.blankOn = false
	}

	return r.write(snapshot.State.Color())
}

func (r *Renderer) write(c state.RGB) error {
	return r.output.SetDuty(r.duty(c.R), r.duty(c.G), r.duty(c.B))
}

func (r *Renderer) duty(channel uint8) uint8 {
	if r.inverted {
		return maxDuty - channel
	}
	return channel
}
