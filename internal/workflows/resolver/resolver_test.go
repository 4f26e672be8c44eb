package resolver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unreal-companion/unreal-companion/internal/workflows/domain"
)

// writeWorkflow creates {root}/{folder}/workflow.yaml with the given body.
func writeWorkflow(t *testing.T, root, folder, body string) string {
	t.Helper()
	dir := filepath.Join(root, folder)
	require.NoError(t, os.MkdirAll(dir, 0750))
	path := filepath.Join(dir, WorkflowFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

// writeStepFile creates {root}/{folder}/steps/{name} with the given body.
func writeStepFile(t *testing.T, root, folder, name, body string) {
	t.Helper()
	dir := filepath.Join(root, folder, StepsDirName)
	require.NoError(t, os.MkdirAll(dir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0600))
}

func threeScopes(t *testing.T) (defaults, custom, project string, roots []ScopeRoot) {
	t.Helper()
	defaults = t.TempDir()
	custom = t.TempDir()
	project = t.TempDir()
	roots = []ScopeRoot{
		{Scope: domain.ScopeDefault, Path: defaults},
		{Scope: domain.ScopeCustom, Path: custom},
		{Scope: domain.ScopeProject, Path: project},
	}
	return defaults, custom, project, roots
}

func TestResolveWorkflows_ProjectReplacesDefault(t *testing.T) {
	defaults, _, project, roots := threeScopes(t)

	// Default scope carries a category the project scope does not.
	writeWorkflow(t, defaults, "game-brief", `
id: game-brief
name: Game Brief (default)
description: default copy
category: planning
steps:
  - id: vision
    title: Vision
`)
	writeWorkflow(t, project, "game-brief", `
id: game-brief
name: Game Brief (project)
description: project copy
steps:
  - id: vision
    title: Vision
  - id: scope
    title: Scope
`)

	r := New(0)
	resolved := r.ResolveWorkflows(roots)
	require.Len(t, resolved, 1)

	wf := resolved[0]
	assert.Equal(t, "Game Brief (project)", wf.Name)
	assert.Equal(t, domain.ScopeProject, wf.SourceScope)
	assert.Len(t, wf.Steps, 2)
	// Full replacement: the default-only category must not leak through.
	assert.Empty(t, wf.Category)
}

func TestResolveWorkflows_ReplacementMovesToEndOfOrder(t *testing.T) {
	defaults, _, project, roots := threeScopes(t)

	writeWorkflow(t, defaults, "alpha", "id: alpha\nname: Alpha\nsteps: []\n")
	writeWorkflow(t, defaults, "beta", "id: beta\nname: Beta\nsteps: []\n")
	// Project redefines alpha; the entry moves to the end of insertion order.
	writeWorkflow(t, project, "alpha", "id: alpha\nname: Alpha v2\nsteps: []\n")

	r := New(0)
	resolved := r.ResolveWorkflows(roots)
	require.Len(t, resolved, 2)
	assert.Equal(t, "beta", resolved[0].ID)
	assert.Equal(t, "alpha", resolved[1].ID)
	assert.Equal(t, "Alpha v2", resolved[1].Name)
}

func TestResolveWorkflows_MalformedDefinitionSkipped(t *testing.T) {
	defaults, _, _, roots := threeScopes(t)

	writeWorkflow(t, defaults, "good", "id: good\nname: Good\nsteps: []\n")
	writeWorkflow(t, defaults, "broken", "id: [unclosed\n")

	r := New(0)
	resolved := r.ResolveWorkflows(roots)
	require.Len(t, resolved, 1)
	assert.Equal(t, "good", resolved[0].ID)
}

func TestResolveWorkflows_InvalidQuestionTypeFailsDefinition(t *testing.T) {
	defaults, _, _, roots := threeScopes(t)

	writeWorkflow(t, defaults, "bad-type", `
id: bad-type
name: Bad
steps:
  - id: s1
    questions:
      - id: q1
        prompt: pick one
        type: slider
`)

	r := New(0)
	assert.Empty(t, r.ResolveWorkflows(roots))
}

func TestResolveWorkflows_IDFallsBackToFolderName(t *testing.T) {
	defaults, _, _, roots := threeScopes(t)

	writeWorkflow(t, defaults, "folder-id", "name: No explicit id\nsteps: []\n")

	r := New(0)
	resolved := r.ResolveWorkflows(roots)
	require.Len(t, resolved, 1)
	assert.Equal(t, "folder-id", resolved[0].ID)
}

func TestResolveWorkflows_EmptyScopes(t *testing.T) {
	_, _, _, roots := threeScopes(t)
	r := New(0)
	assert.Empty(t, r.ResolveWorkflows(roots))
}

func TestResolveWorkflows_MissingScopeRootIgnored(t *testing.T) {
	defaults := t.TempDir()
	writeWorkflow(t, defaults, "solo", "id: solo\nname: Solo\nsteps: []\n")
	roots := []ScopeRoot{
		{Scope: domain.ScopeDefault, Path: defaults},
		{Scope: domain.ScopeCustom, Path: filepath.Join(defaults, "does-not-exist")},
	}

	r := New(0)
	require.Len(t, r.ResolveWorkflows(roots), 1)
}

func TestFindWorkflow_NotFoundListsAllScopes(t *testing.T) {
	defaults, custom, project, roots := threeScopes(t)

	r := New(0)
	_, err := r.FindWorkflow(roots, "missing")
	require.Error(t, err)

	var notFound *domain.WorkflowNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ID)
	assert.Equal(t, []string{defaults, custom, project}, notFound.ScopesSearched)
}

func TestResolveAgents_OverrideAndFallbackID(t *testing.T) {
	defaults, custom, _, roots := threeScopes(t)

	require.NoError(t, os.WriteFile(filepath.Join(defaults, "producer.yaml"), []byte(`
name: Producer (default)
description: keeps the team honest
persona:
  role: producer
`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(custom, "producer.yaml"), []byte(`
id: producer
name: Producer (custom)
description: custom copy
`), 0600))

	r := New(0)
	agents := r.ResolveAgents(roots)
	require.Len(t, agents, 1)
	assert.Equal(t, "producer", agents[0].ID)
	assert.Equal(t, "Producer (custom)", agents[0].Name)
	assert.Equal(t, domain.ScopeCustom, agents[0].SourceScope)
	// Full replacement, not merge: default persona must not survive.
	assert.Empty(t, agents[0].Persona.Role)
}

func TestLoadStep_FrontMatterAndBody(t *testing.T) {
	defaults, _, _, roots := threeScopes(t)

	writeWorkflow(t, defaults, "game-brief", `
id: game-brief
name: Game Brief
steps:
  - id: vision
    title: Vision
    file: vision.md
`)
	writeStepFile(t, defaults, "game-brief", "vision.md", `---
id: vision
title: Game Vision
progress: Step 1 of 3
goal: Capture the core fantasy
questions:
  - id: pitch
    prompt: What is the one-line pitch?
    type: textarea
    required: true
---
Ask open questions. Do not suggest genres.
`)

	r := New(0)
	resolved := r.ResolveWorkflows(roots)
	require.Len(t, resolved, 1)

	step, err := r.LoadStep(resolved[0], 0)
	require.NoError(t, err)
	assert.Equal(t, "Game Vision", step.Title)
	assert.Equal(t, "Step 1 of 3", step.ProgressLabel)
	assert.Equal(t, "Capture the core fantasy", step.Goal)
	require.Len(t, step.Questions, 1)
	assert.Equal(t, domain.QuestionTextarea, step.Questions[0].Type)
	assert.True(t, step.Questions[0].Required)
	assert.Contains(t, step.Content, "Ask open questions")
	assert.NotContains(t, step.Content, "---")
}

func TestLoadStep_InvalidQuestionTypeRejectsFrontMatter(t *testing.T) {
	defaults, _, _, roots := threeScopes(t)

	writeWorkflow(t, defaults, "game-brief", `
id: game-brief
name: Game Brief
steps:
  - id: vision
    title: Vision
    file: vision.md
`)
	writeStepFile(t, defaults, "game-brief", "vision.md", `---
title: Game Vision
questions:
  - id: pitch
    prompt: What is the one-line pitch?
    type: banana
---
Ask open questions.
`)

	r := New(0)
	resolved := r.ResolveWorkflows(roots)
	require.Len(t, resolved, 1)

	step, err := r.LoadStep(resolved[0], 0)
	require.NoError(t, err)
	// The whole front-matter block is dropped: no unknown question type may
	// reach the engine, and the stub from workflow.yaml stands.
	assert.Equal(t, "Vision", step.Title)
	assert.Empty(t, step.Questions)
	assert.Contains(t, step.Content, "Ask open questions")
}

func TestLoadStep_MissingContentFileYieldsEmptyContent(t *testing.T) {
	defaults, _, _, roots := threeScopes(t)

	writeWorkflow(t, defaults, "game-brief", `
id: game-brief
name: Game Brief
steps:
  - id: vision
    title: Vision
    file: nope.md
`)

	r := New(0)
	resolved := r.ResolveWorkflows(roots)
	require.Len(t, resolved, 1)

	step, err := r.LoadStep(resolved[0], 0)
	require.NoError(t, err)
	assert.Equal(t, "Vision", step.Title)
	assert.Empty(t, step.Content)
}

func TestLoadStep_OutOfRange(t *testing.T) {
	r := New(0)
	wf := domain.Workflow{ID: "x", Steps: []domain.StepDefinition{{ID: "only"}}}
	_, err := r.LoadStep(wf, 1)
	require.Error(t, err)
	_, err = r.LoadStep(wf, -1)
	require.Error(t, err)
}

func TestLoadStep_CachedUntilResolve(t *testing.T) {
	defaults, _, _, roots := threeScopes(t)

	writeWorkflow(t, defaults, "wf", `
id: wf
name: WF
steps:
  - id: s1
    title: One
    file: s1.md
`)
	writeStepFile(t, defaults, "wf", "s1.md", "original body\n")

	r := New(time.Minute)
	resolved := r.ResolveWorkflows(roots)
	require.Len(t, resolved, 1)
	wf := resolved[0]

	step, err := r.LoadStep(wf, 0)
	require.NoError(t, err)
	assert.Contains(t, step.Content, "original body")

	// Rewrite on disk; the cached hydration still serves the old body.
	writeStepFile(t, defaults, "wf", "s1.md", "updated body\n")
	step, err = r.LoadStep(wf, 0)
	require.NoError(t, err)
	assert.Contains(t, step.Content, "original body")

	// Re-resolving flushes the content cache.
	resolved = r.ResolveWorkflows(roots)
	step, err = r.LoadStep(resolved[0], 0)
	require.NoError(t, err)
	assert.Contains(t, step.Content, "updated body")
}

func TestScopeRoots_Builder(t *testing.T) {
	roots := ScopeRoots([]string{"/a", "/b", "/c"})
	require.Len(t, roots, 3)
	assert.Equal(t, domain.ScopeDefault, roots[0].Scope)
	assert.Equal(t, domain.ScopeCustom, roots[1].Scope)
	assert.Equal(t, domain.ScopeProject, roots[2].Scope)

	roots = ScopeRoots([]string{"/a", "/b"})
	require.Len(t, roots, 2)
}
