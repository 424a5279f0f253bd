package state

// RGB holds the three indicator channel intensities, 0 is off and 255 is full.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

var (
	Black  = RGB{0, 0, 0}
	Red    = RGB{255, 0, 0}
	Green  = RGB{0, 255, 0}
	Blue   = RGB{0, 0, 255}
	Yellow = RGB{255, 255, 0}
	Orange = RGB{255, 140, 0}
	White  = RGB{255, 255, 255}
)

// Color maps every state to its fixed indicator color.
func (s State) Color() RGB {
	switch s {
	case Initializing:
		return Blue
	case Locked:
		return Green
	case Unlocked, Error:
		return Red
	case Locking, Unlocking:
		return Yellow
	default:
		return Black
	}
}
