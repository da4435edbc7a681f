package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrNoActiveOrder     = errors.New("no production order in progress")
	ErrOperationMismatch = errors.New("operation does not belong to the order's vehicle type")
	ErrOperationFull     = errors.New("operation already has the maximum number of workers")
	ErrDuplicate         = errors.New("worker already registered for this operation today")
	ErrForbidden         = errors.New("not allowed")
	ErrAlreadyCompleted  = errors.New("registration already completed")
	ErrActiveOrderExists = errors.New("another production order is already in progress")
	ErrShiftExists       = errors.New("worker already has an active shift")
	ErrNoActiveShift     = errors.New("worker has no active shift")
	ErrInvalidStatus     = errors.New("invalid status for this transition")
	ErrOrderInProgress   = errors.New("cannot delete an order in progress")
	ErrInvalidRef        = errors.New("referenced record does not exist")
)

// IncompleteError is returned by order completion when one or more
// processes have not reached the order quantity yet.
type IncompleteError struct {
	Processes []IncompleteProcess
}

func (e *IncompleteError) Error() string {
	names := make([]string, 0, len(e.Processes))
	for _, p := range e.Processes {
		names = append(names, p.ProcessName)
	}
	return fmt.Sprintf("%d processes incomplete: %s", len(e.Processes), strings.Join(names, ", "))
}
