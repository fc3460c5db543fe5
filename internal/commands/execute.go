package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add     func(AddArgs) (Result, error)
	Call    func(CallArgs) (Result, error)
	Delete  func(DeleteArgs) (Result, error)
	Refresh func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "add handler not configured"}
		}
		return handlers.Add(*cmd.Add)
	case TypeCall:
		if handlers.Call == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "call handler not configured"}
		}
		return handlers.Call(*cmd.Call)
	case TypeDelete:
		if handlers.Delete == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "delete handler not configured"}
		}
		return handlers.Delete(*cmd.Delete)
	case TypeRefresh:
		if handlers.Refresh == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "refresh handler not configured"}
		}
		return handlers.Refresh()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
