package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/unreal-companion/unreal-companion/internal/log"
	"github.com/unreal-companion/unreal-companion/internal/sessions/domain"
)

// sessionStore implements domain.Store over the embedded session database.
// Unlike the YAML store there is no whole-file race: SQLite serializes
// writers, so Save needs no optimistic check.
type sessionStore struct {
	db  *sql.DB
	now func() time.Time
}

// Ensure sessionStore implements domain.Store.
var _ domain.Store = (*sessionStore)(nil)

func newSessionStore(db *sql.DB) *sessionStore {
	return &sessionStore{db: db, now: time.Now}
}

// Load reads the entire session state into a status document.
func (s *sessionStore) Load() (*domain.StatusDocument, error) {
	doc := domain.NewStatusDocument()

	var lastUpdated sql.NullInt64
	if err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'last_updated'`).Scan(&lastUpdated); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reading last_updated: %w", err)
	}
	if lastUpdated.Valid {
		doc.LastUpdated = time.Unix(lastUpdated.Int64, 0)
	}

	rows, err := s.db.Query(`SELECT id, workflow_id, display_name, current_step, total_steps, started_at, last_activity
		FROM active_sessions ORDER BY started_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing active sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var row sessionRow
		if err := rows.Scan(&row.ID, &row.WorkflowID, &row.DisplayName, &row.CurrentStep, &row.TotalSteps, &row.StartedAt, &row.LastActivity); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		responses, err := s.loadResponses(row.ID)
		if err != nil {
			return nil, err
		}
		doc.ActiveSessions = append(doc.ActiveSessions, row.toDomain(responses))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating session rows: %w", err)
	}

	completed, err := s.db.Query(`SELECT workflow_id, session_id, completed_at, output_path
		FROM recent_completed ORDER BY rowid_order DESC LIMIT ?`, domain.RecentCompletedCap)
	if err != nil {
		return nil, fmt.Errorf("listing completed sessions: %w", err)
	}
	defer func() { _ = completed.Close() }()

	for completed.Next() {
		var row completedRow
		if err := completed.Scan(&row.WorkflowID, &row.SessionID, &row.CompletedAt, &row.OutputPath); err != nil {
			return nil, fmt.Errorf("scanning completed row: %w", err)
		}
		doc.RecentCompleted = append(doc.RecentCompleted, row.toDomain())
	}
	return doc, completed.Err()
}

// Save replaces the entire session state with the document's contents.
func (s *sessionStore) Save(doc *domain.StatusDocument) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting save transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{`DELETE FROM session_responses`, `DELETE FROM active_sessions`, `DELETE FROM recent_completed`} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clearing session state: %w", err)
		}
	}

	for _, rec := range doc.ActiveSessions {
		if err := insertSession(tx, rec); err != nil {
			return err
		}
	}
	// Insert oldest-first so rowid_order preserves most-recent-last ordering.
	for i := len(doc.RecentCompleted) - 1; i >= 0; i-- {
		if err := insertCompleted(tx, doc.RecentCompleted[i]); err != nil {
			return err
		}
	}

	doc.LastUpdated = s.now()
	if err := stampLastUpdated(tx, doc.LastUpdated); err != nil {
		return err
	}
	return tx.Commit()
}

// StartSession creates an active record at step 0, or returns the existing
// record unmodified.
func (s *sessionStore) StartSession(id, workflowID, displayName string, totalSteps int) (domain.SessionRecord, error) {
	if existing, err := s.GetSession(id); err == nil {
		log.Debug(log.CatDB, "session already active, returning existing record", "id", id)
		return *existing, nil
	}

	now := s.now()
	rec := domain.SessionRecord{
		ID:               id,
		WorkflowID:       workflowID,
		DisplayName:      displayName,
		CurrentStepIndex: 0,
		TotalSteps:       totalSteps,
		StartedAt:        now,
		LastActivityAt:   now,
		Responses:        map[string]string{},
	}

	tx, err := s.db.Begin()
	if err != nil {
		return domain.SessionRecord{}, fmt.Errorf("starting session transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertSession(tx, rec); err != nil {
		return domain.SessionRecord{}, err
	}
	if err := stampLastUpdated(tx, now); err != nil {
		return domain.SessionRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.SessionRecord{}, err
	}
	return rec, nil
}

// UpdateStep moves the record to newStepIndex, storing a non-empty response
// under the step being left. An unknown id still stamps last_updated.
func (s *sessionStore) UpdateStep(id string, newStepIndex int, response string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting update transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	var currentStep int
	err = tx.QueryRow(`SELECT current_step FROM active_sessions WHERE id = ?`, id).Scan(&currentStep)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		log.Warn(log.CatDB, "updateStep for unknown session", "id", id)
	case err != nil:
		return fmt.Errorf("finding session %s: %w", id, err)
	default:
		if response != "" {
			if _, err := tx.Exec(`INSERT INTO session_responses (session_id, step_key, response) VALUES (?, ?, ?)
				ON CONFLICT(session_id, step_key) DO UPDATE SET response = excluded.response`,
				id, domain.StepKey(currentStep), response); err != nil {
				return fmt.Errorf("storing response: %w", err)
			}
		}
		if _, err := tx.Exec(`UPDATE active_sessions SET current_step = ?, last_activity = ? WHERE id = ?`,
			newStepIndex, now.Unix(), id); err != nil {
			return fmt.Errorf("updating session step: %w", err)
		}
	}

	if err := stampLastUpdated(tx, now); err != nil {
		return err
	}
	return tx.Commit()
}

// CompleteSession removes the active record and prepends its projection to
// the capped completed history.
func (s *sessionStore) CompleteSession(id, workflowID, outputPath string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting complete transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM active_sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("removing active session: %w", err)
	}

	now := s.now()
	if err := insertCompleted(tx, domain.CompletedSessionRecord{
		WorkflowID:  workflowID,
		SessionID:   id,
		CompletedAt: now,
		OutputPath:  outputPath,
	}); err != nil {
		return err
	}

	// Evict everything beyond the newest RecentCompletedCap entries.
	if _, err := tx.Exec(`DELETE FROM recent_completed WHERE rowid_order NOT IN
		(SELECT rowid_order FROM recent_completed ORDER BY rowid_order DESC LIMIT ?)`,
		domain.RecentCompletedCap); err != nil {
		return fmt.Errorf("trimming completed history: %w", err)
	}

	if err := stampLastUpdated(tx, now); err != nil {
		return err
	}
	return tx.Commit()
}

// GetActiveSessions returns all active records.
func (s *sessionStore) GetActiveSessions() ([]domain.SessionRecord, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	return doc.ActiveSessions, nil
}

// GetSession returns the active record with the given id.
func (s *sessionStore) GetSession(id string) (*domain.SessionRecord, error) {
	var row sessionRow
	err := s.db.QueryRow(`SELECT id, workflow_id, display_name, current_step, total_steps, started_at, last_activity
		FROM active_sessions WHERE id = ?`, id).
		Scan(&row.ID, &row.WorkflowID, &row.DisplayName, &row.CurrentStep, &row.TotalSteps, &row.StartedAt, &row.LastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.SessionNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("finding session %s: %w", id, err)
	}

	responses, err := s.loadResponses(id)
	if err != nil {
		return nil, err
	}
	rec := row.toDomain(responses)
	return &rec, nil
}

// Close is a no-op: the connection is owned by the DB struct.
func (s *sessionStore) Close() error {
	return nil
}

func (s *sessionStore) loadResponses(sessionID string) (map[string]string, error) {
	rows, err := s.db.Query(`SELECT step_key, response FROM session_responses WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading responses for %s: %w", sessionID, err)
	}
	defer func() { _ = rows.Close() }()

	responses := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning response row: %w", err)
		}
		responses[key] = value
	}
	return responses, rows.Err()
}

func insertSession(tx *sql.Tx, rec domain.SessionRecord) error {
	row := toSessionRow(rec)
	if _, err := tx.Exec(`INSERT INTO active_sessions (id, workflow_id, display_name, current_step, total_steps, started_at, last_activity)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.WorkflowID, row.DisplayName, row.CurrentStep, row.TotalSteps, row.StartedAt, row.LastActivity); err != nil {
		return fmt.Errorf("inserting session %s: %w", rec.ID, err)
	}
	for key, value := range rec.Responses {
		if _, err := tx.Exec(`INSERT INTO session_responses (session_id, step_key, response) VALUES (?, ?, ?)`,
			rec.ID, key, value); err != nil {
			return fmt.Errorf("inserting response %s/%s: %w", rec.ID, key, err)
		}
	}
	return nil
}

func insertCompleted(tx *sql.Tx, rec domain.CompletedSessionRecord) error {
	row := toCompletedRow(rec)
	if _, err := tx.Exec(`INSERT INTO recent_completed (workflow_id, session_id, completed_at, output_path) VALUES (?, ?, ?, ?)`,
		row.WorkflowID, row.SessionID, row.CompletedAt, row.OutputPath); err != nil {
		return fmt.Errorf("inserting completed record %s: %w", rec.SessionID, err)
	}
	return nil
}

func stampLastUpdated(tx *sql.Tx, now time.Time) error {
	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES ('last_updated', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, now.Unix()); err != nil {
		return fmt.Errorf("stamping last_updated: %w", err)
	}
	return nil
}
