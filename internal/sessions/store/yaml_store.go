// Package store implements the file-backed session Store: one YAML status
// document per project, read and written whole.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/unreal-companion/unreal-companion/internal/log"
	"github.com/unreal-companion/unreal-companion/internal/paths"
	"github.com/unreal-companion/unreal-companion/internal/sessions/domain"
)

// YAMLStore persists the status document at a fixed path. There is no file
// locking; an optimistic modification-time check on Save surfaces concurrent
// writers instead of silently losing their updates.
type YAMLStore struct {
	path string
	now  func() time.Time

	// loadedModTime is the backing file's modtime captured by the last Load.
	// Zero when the file did not exist or was unreadable.
	loadedModTime time.Time
}

// Ensure YAMLStore implements domain.Store.
var _ domain.Store = (*YAMLStore)(nil)

// New creates a store over the given status document path.
func New(path string) *YAMLStore {
	return &YAMLStore{path: path, now: time.Now}
}

// ForProject creates a store over the project's conventional status document
// location.
func ForProject(projectRoot string) *YAMLStore {
	return New(paths.StatusFilePath(projectRoot))
}

// Path returns the backing file path.
func (s *YAMLStore) Path() string {
	return s.path
}

// Load reads the status document. A missing or unparsable file degrades to an
// empty, correctly-shaped document; Load never fails.
func (s *YAMLStore) Load() (*domain.StatusDocument, error) {
	s.loadedModTime = time.Time{}

	raw, err := os.ReadFile(s.path) //nolint:gosec // G304: path is the project status document
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn(log.CatStore, "status document unreadable, starting empty", "path", s.path, "error", err)
		}
		return domain.NewStatusDocument(), nil
	}

	var doc domain.StatusDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		log.Warn(log.CatStore, "status document corrupt, starting empty", "path", s.path, "error", err)
		return domain.NewStatusDocument(), nil
	}
	if doc.Version == "" {
		doc.Version = domain.DocumentVersion
	}
	if doc.ActiveSessions == nil {
		doc.ActiveSessions = []domain.SessionRecord{}
	}
	if doc.RecentCompleted == nil {
		doc.RecentCompleted = []domain.CompletedSessionRecord{}
	}

	if info, err := os.Stat(s.path); err == nil {
		s.loadedModTime = info.ModTime()
	}
	return &doc, nil
}

// Save stamps LastUpdated, creates parent directories as needed, and
// overwrites the whole document. Returns ErrConcurrentModification when the
// backing file changed since this store's last Load.
func (s *YAMLStore) Save(doc *domain.StatusDocument) error {
	if !s.loadedModTime.IsZero() {
		if info, err := os.Stat(s.path); err == nil && !info.ModTime().Equal(s.loadedModTime) {
			return fmt.Errorf("saving %s: %w", s.path, domain.ErrConcurrentModification)
		}
	}

	doc.LastUpdated = s.now()
	if doc.Version == "" {
		doc.Version = domain.DocumentVersion
	}

	raw, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding status document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("creating status directory: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0600); err != nil {
		return fmt.Errorf("writing status document: %w", err)
	}

	if info, err := os.Stat(s.path); err == nil {
		s.loadedModTime = info.ModTime()
	}
	log.Debug(log.CatStore, "status document saved", "path", s.path, "active", len(doc.ActiveSessions), "completed", len(doc.RecentCompleted))
	return nil
}

// StartSession is idempotent: an existing active record with the same id is
// returned unmodified; otherwise a new record starting at step 0 is appended
// and the document saved.
func (s *YAMLStore) StartSession(id, workflowID, displayName string, totalSteps int) (domain.SessionRecord, error) {
	doc, err := s.Load()
	if err != nil {
		return domain.SessionRecord{}, err
	}

	if i := doc.FindActive(id); i >= 0 {
		log.Debug(log.CatStore, "session already active, returning existing record", "id", id)
		return doc.ActiveSessions[i], nil
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
	doc.ActiveSessions = append(doc.ActiveSessions, rec)
	if err := s.Save(doc); err != nil {
		return domain.SessionRecord{}, err
	}
	return rec, nil
}

// UpdateStep moves the record to newStepIndex, stamping activity time. A
// non-empty response is stored under the key of the step being left. The
// document is saved even when the id is not found.
func (s *YAMLStore) UpdateStep(id string, newStepIndex int, response string) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}

	if i := doc.FindActive(id); i >= 0 {
		rec := &doc.ActiveSessions[i]
		if response != "" {
			if rec.Responses == nil {
				rec.Responses = map[string]string{}
			}
			rec.Responses[domain.StepKey(rec.CurrentStepIndex)] = response
		}
		rec.CurrentStepIndex = newStepIndex
		rec.LastActivityAt = s.now()
	} else {
		log.Warn(log.CatStore, "updateStep for unknown session", "id", id)
	}
	return s.Save(doc)
}

// CompleteSession removes the active record and prepends its projection to
// the capped completed history.
func (s *YAMLStore) CompleteSession(id, workflowID, outputPath string) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}

	if i := doc.FindActive(id); i >= 0 {
		doc.ActiveSessions = append(doc.ActiveSessions[:i], doc.ActiveSessions[i+1:]...)
	}
	doc.PrependCompleted(domain.CompletedSessionRecord{
		WorkflowID:  workflowID,
		SessionID:   id,
		CompletedAt: s.now(),
		OutputPath:  outputPath,
	})
	return s.Save(doc)
}

// GetActiveSessions returns all active records.
func (s *YAMLStore) GetActiveSessions() ([]domain.SessionRecord, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	return doc.ActiveSessions, nil
}

// GetSession returns the active record with the given id.
func (s *YAMLStore) GetSession(id string) (*domain.SessionRecord, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}
	if i := doc.FindActive(id); i >= 0 {
		rec := doc.ActiveSessions[i]
		return &rec, nil
	}
	return nil, &domain.SessionNotFoundError{ID: id}
}

// Close is a no-op; the store holds no open resources between operations.
func (s *YAMLStore) Close() error {
	return nil
}
