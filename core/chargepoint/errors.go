package chargepoint

import (
	"errors"

	"github.com/kilianp07/ocppcs/core/task"
)

var (
	// ErrValidation wraps every input error. No task is created when it is
	// returned.
	ErrValidation = errors.New("invalid parameters")
	// ErrNoRecipients is returned, wrapped in ErrValidation, for an empty
	// recipient list.
	ErrNoRecipients = task.ErrNoRecipients
	// ErrUnknownOperation is returned for an operation name that is not
	// supported.
	ErrUnknownOperation = errors.New("unknown operation")
)
