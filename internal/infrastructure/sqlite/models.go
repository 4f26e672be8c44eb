package sqlite

import (
	"time"

	"github.com/unreal-companion/unreal-companion/internal/sessions/domain"
)

// sessionRow maps the active_sessions table. Time values are Unix timestamps.
type sessionRow struct {
	ID           string
	WorkflowID   string
	DisplayName  *string // nullable
	CurrentStep  int
	TotalSteps   int
	StartedAt    int64
	LastActivity int64
}

func toSessionRow(rec domain.SessionRecord) sessionRow {
	row := sessionRow{
		ID:           rec.ID,
		WorkflowID:   rec.WorkflowID,
		CurrentStep:  rec.CurrentStepIndex,
		TotalSteps:   rec.TotalSteps,
		StartedAt:    rec.StartedAt.Unix(),
		LastActivity: rec.LastActivityAt.Unix(),
	}
	if rec.DisplayName != "" {
		name := rec.DisplayName
		row.DisplayName = &name
	}
	return row
}

func (r sessionRow) toDomain(responses map[string]string) domain.SessionRecord {
	rec := domain.SessionRecord{
		ID:               r.ID,
		WorkflowID:       r.WorkflowID,
		CurrentStepIndex: r.CurrentStep,
		TotalSteps:       r.TotalSteps,
		StartedAt:        time.Unix(r.StartedAt, 0),
		LastActivityAt:   time.Unix(r.LastActivity, 0),
		Responses:        responses,
	}
	if r.DisplayName != nil {
		rec.DisplayName = *r.DisplayName
	}
	if rec.Responses == nil {
		rec.Responses = map[string]string{}
	}
	return rec
}

// completedRow maps the recent_completed table.
type completedRow struct {
	WorkflowID  string
	SessionID   string
	CompletedAt int64
	OutputPath  *string // nullable
}

func toCompletedRow(rec domain.CompletedSessionRecord) completedRow {
	row := completedRow{
		WorkflowID:  rec.WorkflowID,
		SessionID:   rec.SessionID,
		CompletedAt: rec.CompletedAt.Unix(),
	}
	if rec.OutputPath != "" {
		path := rec.OutputPath
		row.OutputPath = &path
	}
	return row
}

func (r completedRow) toDomain() domain.CompletedSessionRecord {
	rec := domain.CompletedSessionRecord{
		WorkflowID:  r.WorkflowID,
		SessionID:   r.SessionID,
		CompletedAt: time.Unix(r.CompletedAt, 0),
	}
	if r.OutputPath != nil {
		rec.OutputPath = *r.OutputPath
	}
	return rec
}
