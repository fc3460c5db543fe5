package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeCall    Type = "call"
	TypeDelete  Type = "delete"
	TypeRefresh Type = "refresh"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AddArgs creates a reminder from the palette. When is the raw date and time
// pair; the caller parses and validates it against its own clock.
type AddArgs struct {
	Name        string
	Phone       string
	When        string
	Description string
}

// CallArgs opens the call screen for a reminder matched by id or name.
type CallArgs struct {
	Target string
}

type DeleteArgs struct {
	Target string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Call   *CallArgs
	Delete *DeleteArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeCall:
		return parseCall(input, args)
	case TypeDelete:
		return parseDelete(input, args)
	case TypeRefresh:
		return Command{Type: TypeRefresh, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// parseAdd expects: add <name> <phone> <date> <time> [description...].
func parseAdd(raw string, args []string) (Command, error) {
	if len(args) < 4 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires name, phone, date and time"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{
		Name:        args[0],
		Phone:       args[1],
		When:        args[2] + " " + args[3],
		Description: strings.TrimSpace(strings.Join(args[4:], " ")),
	}}, nil
}

func parseCall(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "call requires a reminder id or name"}
	}
	return Command{Type: TypeCall, Raw: raw, Call: &CallArgs{Target: strings.Join(args, " ")}}, nil
}

func parseDelete(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "delete requires a reminder id or name"}
	}
	return Command{Type: TypeDelete, Raw: raw, Delete: &DeleteArgs{Target: strings.Join(args, " ")}}, nil
}
