package domain

import (
	"errors"
	"fmt"
)

// ErrConcurrentModification is returned by Save when the backing status
// document changed since it was loaded. The store is last-writer-wins by
// construction; this optimistic check surfaces the race instead of silently
// dropping the other writer's update.
var ErrConcurrentModification = errors.New("status document modified since load")

// SessionNotFoundError indicates that a session with the specified id is not
// present in the active set.
type SessionNotFoundError struct {
	ID string
}

// Error implements the error interface.
func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: id=%q", e.ID)
}
