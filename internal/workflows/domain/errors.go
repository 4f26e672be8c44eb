package domain

import (
	"fmt"
	"strings"
)

// WorkflowNotFoundError indicates that a workflow id was absent from every
// scope searched. ScopesSearched lists the roots in the order they were tried
// so the message can point the user at all candidate locations.
type WorkflowNotFoundError struct {
	ID             string
	ScopesSearched []string
}

// Error implements the error interface.
func (e *WorkflowNotFoundError) Error() string {
	return fmt.Sprintf("workflow %q not found in any scope (searched: %s)", e.ID, strings.Join(e.ScopesSearched, ", "))
}

// AgentNotFoundError indicates that an agent id was absent from every scope
// searched.
type AgentNotFoundError struct {
	ID             string
	ScopesSearched []string
}

// Error implements the error interface.
func (e *AgentNotFoundError) Error() string {
	return fmt.Sprintf("agent %q not found in any scope (searched: %s)", e.ID, strings.Join(e.ScopesSearched, ", "))
}

// ParseError wraps a malformed definition file. The resolver swallows these
// per entity (log-and-skip); the type exists so the skip is an explicit policy
// choice at the call site rather than blanket suppression.
type ParseError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing definition %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying parse failure.
func (e *ParseError) Unwrap() error {
	return e.Err
}
