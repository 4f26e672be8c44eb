// Package sync imports sessions visible only in the legacy session database
// into the primary session store. Reconciliation is strictly additive and
// one-directional: the primary store is authoritative and legacy rows never
// overwrite an existing record, however new the row looks.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/unreal-companion/unreal-companion/internal/log"
	"github.com/unreal-companion/unreal-companion/internal/sessions/domain"
)

// DefaultTimeout bounds the legacy query. The legacy store is an external
// blocking call; expiry is reported as unavailability rather than hanging the
// whole sync.
const DefaultTimeout = 5 * time.Second

// Row is one session row from the legacy database.
type Row struct {
	ID          string
	WorkflowID  string
	Status      string
	CurrentStep int
	TotalSteps  int
}

// Importable reports whether the row's status marks an in-flight session.
func (r Row) Importable() bool {
	return r.Status == "active" || r.Status == "in_progress"
}

// Source yields session rows from the legacy store.
type Source interface {
	// ActiveSessions returns rows with status active or in_progress.
	ActiveSessions(ctx context.Context) ([]Row, error)
}

// SyncUnavailableError indicates the legacy store was missing or unreachable.
// Callers treat it as non-fatal: zero rows were synced.
type SyncUnavailableError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *SyncUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("legacy store unavailable: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("legacy store unavailable: %s", e.Reason)
}

// Unwrap returns the underlying failure, if any.
func (e *SyncUnavailableError) Unwrap() error {
	return e.Err
}

// Result summarizes one reconciliation pass.
type Result struct {
	// Synced counts legacy rows imported as new active records.
	Synced int
	// Skipped counts legacy rows whose id already existed in the store.
	Skipped int
}

// FromLegacy imports legacy rows absent from the store. Rows whose id matches
// an existing active record are skipped unconditionally. The store is saved
// only when something was imported, so a no-op pass leaves the backing file
// untouched. A source failure or timeout yields SyncUnavailableError with a
// zero Result.
func FromLegacy(ctx context.Context, store domain.Store, source Source, timeout time.Duration) (Result, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	rows, err := source.ActiveSessions(queryCtx)
	if err != nil {
		log.Warn(log.CatSync, "legacy store unavailable", "error", err)
		return Result{}, &SyncUnavailableError{Reason: "query failed", Err: err}
	}

	doc, err := store.Load()
	if err != nil {
		return Result{}, fmt.Errorf("loading session store: %w", err)
	}

	var result Result
	now := time.Now()
	for _, row := range rows {
		if !row.Importable() {
			continue
		}
		if doc.FindActive(row.ID) >= 0 {
			result.Skipped++
			continue
		}
		displayName := row.WorkflowID
		doc.ActiveSessions = append(doc.ActiveSessions, domain.SessionRecord{
			ID:               row.ID,
			WorkflowID:       row.WorkflowID,
			DisplayName:      displayName,
			CurrentStepIndex: row.CurrentStep,
			TotalSteps:       row.TotalSteps,
			StartedAt:        now,
			LastActivityAt:   now,
			Responses:        map[string]string{},
		})
		result.Synced++
	}

	if result.Synced > 0 {
		if err := store.Save(doc); err != nil {
			return Result{}, fmt.Errorf("saving synced sessions: %w", err)
		}
	}
	log.Info(log.CatSync, "legacy sync complete", "synced", result.Synced, "skipped", result.Skipped)
	return result, nil
}
