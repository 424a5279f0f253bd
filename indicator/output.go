package indicator

import (
	"fmt"
	"log"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// LogOutput logs the duty values whenever they change.
type LogOutput struct {
	last [3]uint8
	set  bool
}

func (o *LogOutput) SetDuty(r, g, b uint8) error {
	duty := [3]uint8{r, g, b}
	if o.set && duty == o.last {
		return nil
	}
	o.last, o.set = duty, true
	log.Printf("indicator - duty r=%d g=%d b=%d", r, g, b)
	return nil
}

type NoneOutput struct{}

func (NoneOutput) SetDuty(r, g, b uint8) error { return nil }

// TerminalOutput paints the LED as a block of terminal cells. Inverted must
// match the renderer so the block shows the light the LED would emit.
type TerminalOutput struct {
	screen   tcell.Screen
	inverted bool
	quit     chan struct{}
	once     sync.Once
}

func NewTerminalOutput(inverted bool) (*TerminalOutput, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}

	if err := screen.Init(); err != nil {
		return nil, err
	}

	return newTerminalOutput(screen, inverted), nil
}

func newTerminalOutput(screen tcell.Screen, inverted bool) *TerminalOutput {
	o := &TerminalOutput{screen: screen, inverted: inverted, quit: make(chan struct{})}

	go func() {
		for {
			switch ev := screen.PollEvent().(type) {
			case nil:
				return
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					o.once.Do(func() { close(o.quit) })
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		}
	}()

	return o
}

func (o *TerminalOutput) SetDuty(r, g, b uint8) error {
	light := func(duty uint8) int32 {
		if o.inverted {
			return int32(maxDuty - duty)
		}
		return int32(duty)
	}
	color := tcell.NewRGBColor(light(r), light(g), light(b))
	style := tcell.StyleDefault.Background(color)

	o.screen.Clear()
	for y := 1; y <= 3; y++ {
		for x := 2; x <= 9; x++ {
			o.screen.SetContent(x, y, ' ', nil, style)
		}
	}

	label := fmt.Sprintf("duty %3d %3d %3d   q: quit", r, g, b)
	for i, c := range label {
		o.screen.SetContent(2+i, 5, c, nil, tcell.StyleDefault)
	}
	o.screen.Show()
	return nil
}

// Quit is closed when the user asks to leave with q, Esc or Ctrl-C.
func (o *TerminalOutput) Quit() <-chan struct{} {
	return o.quit
}

func (o *TerminalOutput) Close() {
	o.screen.Fini()
}
