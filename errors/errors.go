package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no words have been found")

	ErrInvalidFormat   = fmt.Errorf("invalid command format")
	ErrInvalidNumber   = fmt.Errorf("invalid message number")
	ErrEntryNotFound   = fmt.Errorf("message not found")
	ErrInvalidUsername = fmt.Errorf("invalid username")
	ErrUnknownCommand  = fmt.Errorf("unknown command")
	ErrNotAvailable    = fmt.Errorf("command not yet available")
)
