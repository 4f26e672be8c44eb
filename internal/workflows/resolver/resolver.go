// Package resolver discovers workflow and agent definitions across the three
// fixed-priority scopes and merges them into one effective, id-keyed set.
//
// Merging uses replace-and-reappend semantics: when a higher-priority scope
// redefines an id, the earlier entry is removed and the new one appended, so
// the overriding definition's position follows its own scope's insertion
// order. Definitions are never deep-merged across scopes.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"gopkg.in/yaml.v3"

	"github.com/unreal-companion/unreal-companion/internal/log"
	"github.com/unreal-companion/unreal-companion/internal/workflows/domain"
)

// WorkflowFileName is the definition file inside each workflow folder.
const WorkflowFileName = "workflow.yaml"

// StepsDirName is the per-workflow directory holding step markdown files.
const StepsDirName = "steps"

// DefaultContentTTL bounds how long hydrated step content stays cached.
const DefaultContentTTL = 5 * time.Minute

// ScopeRoot pairs a definition scope with its filesystem root.
type ScopeRoot struct {
	Scope domain.Scope
	Path  string
}

// ScopeRoots builds the conventional [default, custom, project?] root list
// from pre-resolved paths. The third path is optional.
func ScopeRoots(roots []string) []ScopeRoot {
	scopes := []domain.Scope{domain.ScopeDefault, domain.ScopeCustom, domain.ScopeProject}
	out := make([]ScopeRoot, 0, len(roots))
	for i, root := range roots {
		if i >= len(scopes) {
			break
		}
		out = append(out, ScopeRoot{Scope: scopes[i], Path: root})
	}
	return out
}

// Resolver loads and merges definitions from the filesystem. Discovery runs
// fresh on every Resolve call; only hydrated step content is cached, keyed by
// (scope, resolved path) and flushed whenever resolution re-runs.
type Resolver struct {
	content *gocache.Cache
}

// New creates a Resolver with the given step-content cache TTL.
// A non-positive TTL falls back to DefaultContentTTL.
func New(contentTTL time.Duration) *Resolver {
	if contentTTL <= 0 {
		contentTTL = DefaultContentTTL
	}
	return &Resolver{content: gocache.New(contentTTL, 2*contentTTL)}
}

// InvalidateContent drops all cached step content. Called internally on every
// Resolve and externally by the filesystem watcher.
func (r *Resolver) InvalidateContent() {
	r.content.Flush()
}

// ResolveWorkflows enumerates workflow folders under each scope root in
// priority order and merges them by id. Individual malformed definitions are
// logged and skipped; an empty result is not an error.
func (r *Resolver) ResolveWorkflows(roots []ScopeRoot) []domain.Workflow {
	r.InvalidateContent()

	merged := newOrderedSet[domain.Workflow]()
	for _, root := range roots {
		entries, err := os.ReadDir(root.Path)
		if err != nil {
			// A missing scope root is the common case, not a failure.
			log.Debug(log.CatResolver, "scope root not readable", "scope", root.Scope.String(), "path", root.Path, "error", err)
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			defPath := filepath.Join(root.Path, entry.Name(), WorkflowFileName)
			wf, err := parseWorkflowFile(defPath, entry.Name(), root.Scope)
			if err != nil {
				// Explicit skip policy: a bad definition drops out of the
				// resolved set, everything else keeps loading.
				log.Warn(log.CatResolver, "skipping malformed workflow definition", "path", defPath, "error", err)
				continue
			}
			merged.put(wf.ID, wf)
		}
	}
	return merged.values()
}

// ResolveAgents enumerates agent files (one YAML file per id) under each
// scope root in priority order and merges them by id.
func (r *Resolver) ResolveAgents(roots []ScopeRoot) []domain.Agent {
	merged := newOrderedSet[domain.Agent]()
	for _, root := range roots {
		entries, err := os.ReadDir(root.Path)
		if err != nil {
			log.Debug(log.CatResolver, "scope root not readable", "scope", root.Scope.String(), "path", root.Path, "error", err)
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !isYAMLFile(entry.Name()) {
				continue
			}
			defPath := filepath.Join(root.Path, entry.Name())
			agent, err := parseAgentFile(defPath, root.Scope)
			if err != nil {
				log.Warn(log.CatResolver, "skipping malformed agent definition", "path", defPath, "error", err)
				continue
			}
			merged.put(agent.ID, agent)
		}
	}
	return merged.values()
}

// FindWorkflow resolves all scopes and returns the effective definition for
// id. Returns WorkflowNotFoundError listing every scope root searched when
// the id is absent everywhere.
func (r *Resolver) FindWorkflow(roots []ScopeRoot, id string) (domain.Workflow, error) {
	for _, wf := range r.ResolveWorkflows(roots) {
		if wf.ID == id {
			return wf, nil
		}
	}
	return domain.Workflow{}, &domain.WorkflowNotFoundError{ID: id, ScopesSearched: rootPaths(roots)}
}

// FindAgent resolves all scopes and returns the effective agent definition
// for id.
func (r *Resolver) FindAgent(roots []ScopeRoot, id string) (domain.Agent, error) {
	for _, agent := range r.ResolveAgents(roots) {
		if agent.ID == id {
			return agent, nil
		}
	}
	return domain.Agent{}, &domain.AgentNotFoundError{ID: id, ScopesSearched: rootPaths(roots)}
}

// LoadStep hydrates the step at stepIndex: the referenced markdown file is
// read from the workflow's steps directory, its front-matter merged over the
// definition stub and its body attached as Content. A missing or unreadable
// content file yields the stub with empty content, never an error. Results
// are served from the read-through cache until the next Resolve.
func (r *Resolver) LoadStep(wf domain.Workflow, stepIndex int) (domain.StepDefinition, error) {
	if stepIndex < 0 || stepIndex >= len(wf.Steps) {
		return domain.StepDefinition{}, fmt.Errorf("workflow %q has no step %d (total %d)", wf.ID, stepIndex, len(wf.Steps))
	}
	step := wf.Steps[stepIndex]
	if step.File == "" {
		return step, nil
	}

	contentPath := filepath.Join(filepath.Dir(wf.SourcePath), StepsDirName, step.File)
	cacheKey := wf.SourceScope.String() + "|" + contentPath
	if cached, ok := r.content.Get(cacheKey); ok {
		hydrated := cached.(domain.StepDefinition)
		return hydrated, nil
	}

	raw, err := os.ReadFile(contentPath) //nolint:gosec // G304: path is derived from the workflow's own step directory
	if err != nil {
		log.Debug(log.CatResolver, "step content file missing", "workflow", wf.ID, "path", contentPath)
		return step, nil
	}

	front, body := splitFrontMatter(raw)
	if len(front) > 0 {
		var fm stepFrontMatter
		if err := yaml.Unmarshal(front, &fm); err != nil {
			log.Warn(log.CatResolver, "ignoring malformed step front-matter", "workflow", wf.ID, "path", contentPath, "error", err)
		} else if err := fm.validate(); err != nil {
			log.Warn(log.CatResolver, "ignoring step front-matter with invalid question", "workflow", wf.ID, "path", contentPath, "error", err)
		} else {
			fm.applyTo(&step)
		}
	}
	step.Content = string(body)

	r.content.SetDefault(cacheKey, step)
	return step, nil
}

func parseWorkflowFile(path, folderName string, scope domain.Scope) (domain.Workflow, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path is enumerated from the scope root
	if err != nil {
		return domain.Workflow{}, &domain.ParseError{Path: path, Err: err}
	}
	var wf domain.Workflow
	if err := yaml.Unmarshal(raw, &wf); err != nil {
		return domain.Workflow{}, &domain.ParseError{Path: path, Err: err}
	}
	if wf.ID == "" {
		wf.ID = folderName
	}
	if err := wf.ValidateQuestions(); err != nil {
		return domain.Workflow{}, &domain.ParseError{Path: path, Err: err}
	}
	wf.SourceScope = scope
	wf.SourcePath = path
	return wf, nil
}

func parseAgentFile(path string, scope domain.Scope) (domain.Agent, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path is enumerated from the scope root
	if err != nil {
		return domain.Agent{}, &domain.ParseError{Path: path, Err: err}
	}
	var agent domain.Agent
	if err := yaml.Unmarshal(raw, &agent); err != nil {
		return domain.Agent{}, &domain.ParseError{Path: path, Err: err}
	}
	if agent.ID == "" {
		base := filepath.Base(path)
		agent.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	agent.SourceScope = scope
	agent.SourcePath = path
	return agent, nil
}

func isYAMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func rootPaths(roots []ScopeRoot) []string {
	paths := make([]string, len(roots))
	for i, root := range roots {
		paths[i] = root.Path
	}
	return paths
}

// orderedSet is an insertion-ordered map with replace-and-reappend override
// semantics: putting an existing key removes the old entry and appends the
// new one at the end.
type orderedSet[T any] struct {
	order []string
	items map[string]T
}

func newOrderedSet[T any]() *orderedSet[T] {
	return &orderedSet[T]{items: make(map[string]T)}
}

func (s *orderedSet[T]) put(key string, value T) {
	if _, exists := s.items[key]; exists {
		for i, k := range s.order {
			if k == key {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.order = append(s.order, key)
	s.items[key] = value
}

func (s *orderedSet[T]) values() []T {
	out := make([]T, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.items[key])
	}
	return out
}
