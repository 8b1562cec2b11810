package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/onnwee/slot-tender/slots"
)

// Command is one parsed chat command.
type Command interface {
	Name() string
}

type (
	Toggle struct{ Slot slots.Slot }
	Status struct{ Slot slots.Slot }
	List   struct{}
	Reset  struct{}
	Start  struct{}
	Help   struct{}
)

func (Toggle) Name() string { return "toggle" }
func (Status) Name() string { return "status" }
func (List) Name() string   { return "lista" }
func (Reset) Name() string  { return "reset" }
func (Start) Name() string  { return "start" }
func (Help) Name() string   { return "help" }

var (
	ErrNotCommand      = errors.New("not a command")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing argument")
)

// ArgumentError reports a known command with a bad or missing argument.
// Command is kept so the caller can still authorize before replying.
type ArgumentError struct {
	Command string
	Err     error
}

func (e *ArgumentError) Error() string { return e.Command + ": " + e.Err.Error() }

func (e *ArgumentError) Unwrap() error { return e.Err }

// Parse reads a command from message text. The command word starts with '/'
// (Telegram) or '!' (Twitch) and may carry an "@botname" suffix. Only the first
// argument is considered.
func Parse(text string) (Command, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, ErrNotCommand
	}
	word := fields[0]
	if len(word) < 2 || (word[0] != '/' && word[0] != '!') {
		return nil, ErrNotCommand
	}
	name := strings.ToLower(word[1:])
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	var arg string
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch name {
	case "toggle":
		slot, err := parseSlotArg(name, arg)
		if err != nil {
			return nil, err
		}
		return Toggle{Slot: slot}, nil
	case "status":
		slot, err := parseSlotArg(name, arg)
		if err != nil {
			return nil, err
		}
		return Status{Slot: slot}, nil
	case "lista":
		return List{}, nil
	case "reset":
		return Reset{}, nil
	case "start":
		return Start{}, nil
	case "help":
		return Help{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}

// addressee returns the bot name a command is addressed to ("/toggle@NumerosBot 5"
// yields "NumerosBot"), or "" when the command word carries no "@" suffix.
func addressee(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	if _, to, ok := strings.Cut(fields[0], "@"); ok {
		return to
	}
	return ""
}

// commandPrefix returns the prefix character of a command message ("/" or "!").
// It is only meaningful for text Parse accepted.
func commandPrefix(text string) string {
	if t := strings.TrimSpace(text); t != "" {
		return t[:1]
	}
	return "/"
}

func parseSlotArg(command, arg string) (slots.Slot, error) {
	if arg == "" {
		return "", &ArgumentError{Command: command, Err: ErrMissingArgument}
	}
	slot, err := slots.ParseSlot(arg)
	if err != nil {
		return "", &ArgumentError{Command: command, Err: err}
	}
	return slot, nil
}

// commandName returns the command a Parse result refers to, or "" if none.
func commandName(cmd Command, err error) string {
	if cmd != nil {
		return cmd.Name()
	}
	var ae *ArgumentError
	if errors.As(err, &ae) {
		return ae.Command
	}
	return ""
}
