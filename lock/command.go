package lock

import (
	"strings"

	"github.com/danielbahrami/SE08-SP/common"
)

// Command is an instruction received from outside the device.
type Command int

const (
	CommandUnknown Command = iota
	CommandOpen
	CommandClose
	CommandReset
)

var commandAliases = map[string]Command{
	"open":   CommandOpen,
	"unlock": CommandOpen,
	"close":  CommandClose,
	"lock":   CommandClose,
	"reset":  CommandReset,
}

// DecodeCommand maps a command string to a Command. Matching is case-insensitive.
func DecodeCommand(raw string) Command {
	if c, ok := commandAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return c
	}
	return CommandUnknown
}

// Event is the transition table event for c. Unknown commands become err-command.
func (c Command) Event() string {
	switch c {
	case CommandOpen:
		return common.OPEN_EVENT
	case CommandClose:
		return common.CLOSE_EVENT
	case CommandReset:
		return common.RESET_EVENT
	default:
		return common.ERR_COMMAND_EVENT
	}
}

func (c Command) String() string {
	switch c {
	case CommandOpen:
		return "open"
	case CommandClose:
		return "close"
	case CommandReset:
		return "reset"
	default:
		return "unknown"
	}
}
