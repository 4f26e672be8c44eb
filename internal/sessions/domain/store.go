package domain

// Store is the persistence port for session state. The engine only touches
// sessions through this interface so the file-backed document store can be
// swapped for the embedded-database backend without touching engine code.
//
// Reads favor availability: Load degrades a missing or corrupt backing store
// to an empty-shaped document. Writes surface their failures.
type Store interface {
	// Load returns the current status document, or an empty-shaped one when
	// the backing store is missing or unreadable.
	Load() (*StatusDocument, error)

	// Save stamps LastUpdated and persists the entire document.
	Save(doc *StatusDocument) error

	// StartSession creates an active record with CurrentStepIndex 0, or
	// returns the existing record unmodified when the id is already active.
	StartSession(id, workflowID, displayName string, totalSteps int) (SessionRecord, error)

	// UpdateStep sets the record's current step and activity time, storing a
	// non-empty response under the key of the step being left. Saves even
	// when the id is not found.
	UpdateStep(id string, newStepIndex int, response string) error

	// CompleteSession removes the active record and prepends its projection
	// to the capped completed history.
	CompleteSession(id, workflowID, outputPath string) error

	// GetActiveSessions returns all active records.
	GetActiveSessions() ([]SessionRecord, error)

	// GetSession returns the active record with the given id, or
	// SessionNotFoundError.
	GetSession(id string) (*SessionRecord, error)

	// Close releases any resources held by the store.
	Close() error
}
