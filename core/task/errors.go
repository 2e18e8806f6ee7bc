package task

import "errors"

var (
	// ErrAlreadyCompleted is returned when a tracker receives a second
	// terminal outcome. The first outcome is kept.
	ErrAlreadyCompleted = errors.New("task: tracker already completed")
	// ErrNoRecipients is returned when a task would have no trackers.
	ErrNoRecipients = errors.New("task: no recipients")
	// ErrDispatched is returned when an effect is registered after the
	// tracker left the pending state.
	ErrDispatched = errors.New("task: tracker no longer pending")
)
