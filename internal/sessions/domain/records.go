// Package domain defines the guided-session model: the per-project status
// document, its active and completed session records, and the Store port the
// engine persists through.
package domain

import (
	"fmt"
	"time"
)

// DocumentVersion is written into every saved status document.
const DocumentVersion = "1.0"

// RecentCompletedCap bounds the completed-session history; oldest entries are
// evicted first.
const RecentCompletedCap = 10

// StepKey derives the response-map key for a step index.
func StepKey(stepIndex int) string {
	return fmt.Sprintf("step_%d", stepIndex)
}

// SessionRecord is one in-progress traversal of a workflow's steps.
type SessionRecord struct {
	// ID is an opaque, caller-generated identifier.
	ID string `yaml:"id"`

	// WorkflowID names the workflow being traversed.
	WorkflowID string `yaml:"workflow"`

	// DisplayName is shown in listings; defaults to the workflow name.
	DisplayName string `yaml:"name"`

	// CurrentStepIndex is the zero-based step the user is on. Reaching
	// TotalSteps completes the session.
	CurrentStepIndex int `yaml:"current_step"`

	// TotalSteps is the workflow's step count at start time.
	TotalSteps int `yaml:"total_steps"`

	StartedAt      time.Time `yaml:"started_at"`
	LastActivityAt time.Time `yaml:"last_activity"`

	// Responses maps StepKey(i) to the response submitted for step i.
	Responses map[string]string `yaml:"responses,omitempty"`
}

// Completed reports whether the record has advanced past its final step.
func (r SessionRecord) Completed() bool {
	return r.CurrentStepIndex >= r.TotalSteps
}

// Response returns the stored response for a step index, if any.
func (r SessionRecord) Response(stepIndex int) (string, bool) {
	value, ok := r.Responses[StepKey(stepIndex)]
	return value, ok
}

// CompletedSessionRecord is the projection kept in the capped history after a
// session finishes.
type CompletedSessionRecord struct {
	WorkflowID  string    `yaml:"workflow"`
	SessionID   string    `yaml:"session_id"`
	CompletedAt time.Time `yaml:"completed_at"`
	OutputPath  string    `yaml:"output_path,omitempty"`
}

// StatusDocument is the whole-document unit of persistence: one per project,
// read and written in full with no partial updates.
type StatusDocument struct {
	Version         string                   `yaml:"version"`
	LastUpdated     time.Time                `yaml:"last_updated"`
	ActiveSessions  []SessionRecord          `yaml:"active_sessions"`
	RecentCompleted []CompletedSessionRecord `yaml:"recent_completed"`
}

// NewStatusDocument returns an empty, correctly-shaped document.
func NewStatusDocument() *StatusDocument {
	return &StatusDocument{
		Version:         DocumentVersion,
		ActiveSessions:  []SessionRecord{},
		RecentCompleted: []CompletedSessionRecord{},
	}
}

// FindActive returns the index of the active record with the given id, or -1.
func (d *StatusDocument) FindActive(id string) int {
	for i, rec := range d.ActiveSessions {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

// PrependCompleted inserts a completed record most-recent-first and truncates
// the history to RecentCompletedCap.
func (d *StatusDocument) PrependCompleted(rec CompletedSessionRecord) {
	d.RecentCompleted = append([]CompletedSessionRecord{rec}, d.RecentCompleted...)
	if len(d.RecentCompleted) > RecentCompletedCap {
		d.RecentCompleted = d.RecentCompleted[:RecentCompletedCap]
	}
}
