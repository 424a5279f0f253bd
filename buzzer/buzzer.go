package buzzer

import (
	"log"
	"time"

	"github.com/danielbahrami/SE08-SP/state"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

type note struct {
	freq     float64
	duration time.Duration
}

// Buzzer plays a short tune when the lock settles or fails.
type Buzzer struct {
	play func(beep.Streamer)
}

func New() (*Buzzer, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &Buzzer{play: func(s beep.Streamer) { speaker.Play(s) }}, nil
}

func (b *Buzzer) Notify(s state.State) {
	notes := tune(s)
	if len(notes) == 0 {
		return
	}

	streamer, err := melody(notes)
	if err != nil {
		log.Printf("buzzer - %s", err)
		return
	}
	b.play(streamer)
}

func (b *Buzzer) Close() {
	speaker.Close()
}

func tune(s state.State) []note {
	switch s {
	case state.Locked:
		return []note{{660, 80 * time.Millisecond}, {880, 120 * time.Millisecond}}
	case state.Unlocked:
		return []note{{880, 80 * time.Millisecond}, {660, 120 * time.Millisecond}}
	case state.Error:
		return []note{{220, 300 * time.Millisecond}}
	default:
		return nil
	}
}

func melody(notes []note) (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, len(notes)*2)
	for _, n := range notes {
		sine, err := generators.SineTone(sampleRate, n.freq)
		if err != nil {
			return nil, err
		}
		parts = append(parts, beep.Take(sampleRate.N(n.duration), sine), beep.Silence(sampleRate.N(20*time.Millisecond)))
	}
	return beep.Seq(parts...), nil
}
