// Package engine drives the guided-session lifecycle over one project: it
// resolves workflow definitions, walks their steps, and persists progress
// through the session Store.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/unreal-companion/unreal-companion/internal/log"
	sdomain "github.com/unreal-companion/unreal-companion/internal/sessions/domain"
	wdomain "github.com/unreal-companion/unreal-companion/internal/workflows/domain"
	"github.com/unreal-companion/unreal-companion/internal/workflows/resolver"
)

const tracerName = "github.com/unreal-companion/unreal-companion/internal/sessions/engine"

// StepView is the rendered data for one step of an active session, or a
// completion marker when the session has advanced past its final step.
type StepView struct {
	SessionID    string
	WorkflowID   string
	WorkflowName string

	// StepIndex is zero-based; meaningless when Completed is true.
	StepIndex  int
	TotalSteps int

	Step wdomain.StepDefinition

	// Response is the previously stored answer for this step, allowing
	// re-display and editing after back().
	Response string

	Completed bool
}

// Engine coordinates the resolver and the store for one project. All
// operations are synchronous and run on the calling goroutine.
type Engine struct {
	resolver *resolver.Resolver
	roots    []resolver.ScopeRoot
	store    sdomain.Store
	tracer   trace.Tracer
	newID    func() string
}

// New creates an Engine over the given resolver scope roots and store.
func New(r *resolver.Resolver, roots []resolver.ScopeRoot, store sdomain.Store) *Engine {
	return &Engine{
		resolver: r,
		roots:    roots,
		store:    store,
		tracer:   otel.Tracer(tracerName),
		newID:    uuid.NewString,
	}
}

// Start begins (or resumes) the session for a workflow. The session id is the
// workflow id, so calling Start twice returns the same record: an in-flight
// session resumes rather than duplicating. Fails with WorkflowNotFoundError
// when the workflow is absent from every scope.
func (e *Engine) Start(ctx context.Context, workflowID string) (sdomain.SessionRecord, error) {
	_, span := e.tracer.Start(ctx, "session.start", trace.WithAttributes(attribute.String("workflow.id", workflowID)))
	defer span.End()

	wf, err := e.resolver.FindWorkflow(e.roots, workflowID)
	if err != nil {
		return sdomain.SessionRecord{}, err
	}
	return e.store.StartSession(workflowID, wf.ID, wf.Name, wf.TotalSteps())
}

// StartFresh begins a new, independent session for a workflow under a unique
// id. Any active session of the same workflow is archived into the completed
// history first, so superseded attempts never linger in the active set.
func (e *Engine) StartFresh(ctx context.Context, workflowID string) (sdomain.SessionRecord, error) {
	_, span := e.tracer.Start(ctx, "session.start_fresh", trace.WithAttributes(attribute.String("workflow.id", workflowID)))
	defer span.End()

	wf, err := e.resolver.FindWorkflow(e.roots, workflowID)
	if err != nil {
		return sdomain.SessionRecord{}, err
	}

	active, err := e.store.GetActiveSessions()
	if err != nil {
		return sdomain.SessionRecord{}, err
	}
	for _, rec := range active {
		if rec.WorkflowID == workflowID {
			log.Info(log.CatEngine, "archiving superseded session", "id", rec.ID, "workflow", workflowID, "step", rec.CurrentStepIndex)
			if err := e.store.CompleteSession(rec.ID, rec.WorkflowID, ""); err != nil {
				return sdomain.SessionRecord{}, fmt.Errorf("archiving superseded session %s: %w", rec.ID, err)
			}
		}
	}

	id := workflowID + "-" + e.newID()
	return e.store.StartSession(id, wf.ID, wf.Name, wf.TotalSteps())
}

// LoadCurrentStep returns the rendered data for the session's current step,
// merging in any stored response for re-display. Sessions at or past their
// final step yield a completion view.
func (e *Engine) LoadCurrentStep(ctx context.Context, sessionID string) (StepView, error) {
	_, span := e.tracer.Start(ctx, "session.load_step", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	rec, err := e.store.GetSession(sessionID)
	if err != nil {
		return StepView{}, err
	}
	return e.stepView(*rec)
}

// SubmitStepResponse stores the response for the current step and advances
// the session. Reaching the final step completes the session atomically:
// the record leaves the active set and its projection enters the history.
// Returns the next step's view, or a completion view.
func (e *Engine) SubmitStepResponse(ctx context.Context, sessionID, response string) (StepView, error) {
	_, span := e.tracer.Start(ctx, "session.submit", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	rec, err := e.store.GetSession(sessionID)
	if err != nil {
		return StepView{}, err
	}

	newIndex := rec.CurrentStepIndex + 1
	if err := e.store.UpdateStep(sessionID, newIndex, response); err != nil {
		return StepView{}, err
	}

	if newIndex >= rec.TotalSteps {
		if err := e.store.CompleteSession(sessionID, rec.WorkflowID, ""); err != nil {
			return StepView{}, err
		}
		log.Info(log.CatEngine, "session completed", "id", sessionID, "workflow", rec.WorkflowID)
		return StepView{
			SessionID:  sessionID,
			WorkflowID: rec.WorkflowID,
			StepIndex:  newIndex,
			TotalSteps: rec.TotalSteps,
			Completed:  true,
		}, nil
	}

	updated, err := e.store.GetSession(sessionID)
	if err != nil {
		return StepView{}, err
	}
	return e.stepView(*updated)
}

// Back moves the session one step earlier. The engine does not guard against
// underflow: callers must only invoke Back when the session is past its first
// step.
func (e *Engine) Back(ctx context.Context, sessionID string) (StepView, error) {
	_, span := e.tracer.Start(ctx, "session.back", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	rec, err := e.store.GetSession(sessionID)
	if err != nil {
		return StepView{}, err
	}
	if err := e.store.UpdateStep(sessionID, rec.CurrentStepIndex-1, ""); err != nil {
		return StepView{}, err
	}

	updated, err := e.store.GetSession(sessionID)
	if err != nil {
		return StepView{}, err
	}
	return e.stepView(*updated)
}

// Skip advances the session without storing a response.
func (e *Engine) Skip(ctx context.Context, sessionID string) (StepView, error) {
	return e.SubmitStepResponse(ctx, sessionID, "")
}

// stepView resolves the record's workflow and hydrates its current step.
func (e *Engine) stepView(rec sdomain.SessionRecord) (StepView, error) {
	if rec.Completed() {
		return StepView{
			SessionID:  rec.ID,
			WorkflowID: rec.WorkflowID,
			StepIndex:  rec.CurrentStepIndex,
			TotalSteps: rec.TotalSteps,
			Completed:  true,
		}, nil
	}

	wf, err := e.resolver.FindWorkflow(e.roots, rec.WorkflowID)
	if err != nil {
		return StepView{}, err
	}
	step, err := e.resolver.LoadStep(wf, rec.CurrentStepIndex)
	if err != nil {
		return StepView{}, err
	}

	view := StepView{
		SessionID:    rec.ID,
		WorkflowID:   wf.ID,
		WorkflowName: wf.Name,
		StepIndex:    rec.CurrentStepIndex,
		TotalSteps:   rec.TotalSteps,
		Step:         step,
	}
	if stored, ok := rec.Response(rec.CurrentStepIndex); ok {
		view.Response = stored
	}
	return view, nil
}
