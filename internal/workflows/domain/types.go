// Package domain defines the workflow and agent definition model shared by
// the resolver, the session engine, and the CLI. Definitions are parsed from
// YAML files discovered across three fixed-priority scopes.
package domain

import "fmt"

// Scope indicates which definition source a workflow or agent came from.
// Scopes have fixed override priority: default < custom < project.
type Scope int

const (
	// ScopeDefault indicates a definition from the global defaults directory.
	ScopeDefault Scope = iota
	// ScopeCustom indicates a user-customized definition from the global
	// custom directory.
	ScopeCustom
	// ScopeProject indicates a definition from the project's
	// .unreal-companion directory.
	ScopeProject
)

// String returns a human-readable representation of the Scope.
func (s Scope) String() string {
	switch s {
	case ScopeDefault:
		return "default"
	case ScopeCustom:
		return "custom"
	case ScopeProject:
		return "project"
	default:
		return "unknown"
	}
}

// QuestionType is the closed set of elicitation input kinds. Parsing a step
// file with any other value fails that definition rather than carrying an
// arbitrary string through the engine.
type QuestionType string

const (
	// QuestionText is a single-line free-text input.
	QuestionText QuestionType = "text"
	// QuestionTextarea is a multi-line free-text input.
	QuestionTextarea QuestionType = "textarea"
	// QuestionChoice is a selection from a fixed option list.
	QuestionChoice QuestionType = "choice"
)

// Valid reports whether t is one of the known question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionText, QuestionTextarea, QuestionChoice:
		return true
	}
	return false
}

// QuestionDefinition is one prompt within a step's question set.
type QuestionDefinition struct {
	ID       string       `yaml:"id"`
	Prompt   string       `yaml:"prompt"`
	Type     QuestionType `yaml:"type"`
	Required bool         `yaml:"required"`
	// Options is only meaningful for choice questions.
	Options []string `yaml:"options,omitempty"`
}

// StepDefinition is one ordered unit of a workflow. Content is the markdown
// instructional body and is loaded lazily; see resolver.LoadStep.
type StepDefinition struct {
	ID            string               `yaml:"id"`
	Title         string               `yaml:"title"`
	ProgressLabel string               `yaml:"progress"`
	Goal          string               `yaml:"goal"`
	Questions     []QuestionDefinition `yaml:"questions,omitempty"`
	// File references the step's markdown file relative to the workflow's
	// steps directory. Empty means the step carries no separate content file.
	File string `yaml:"file,omitempty"`
	// Content is the instructional body, populated on demand.
	Content string `yaml:"-"`
}

// Workflow is a resolved workflow definition plus its source metadata.
type Workflow struct {
	// ID comes from the definition's explicit id field, falling back to the
	// workflow's folder name.
	ID string `yaml:"id"`

	// Name is the human-readable display name.
	Name string `yaml:"name"`

	// Description is a brief description shown in listings.
	Description string `yaml:"description"`

	// Category is an optional grouping category.
	Category string `yaml:"category,omitempty"`

	// Behavior is free-form guidance for the collaborator driving the flow.
	Behavior string `yaml:"behavior,omitempty"`

	// Steps is the ordered elicitation sequence.
	Steps []StepDefinition `yaml:"steps"`

	// SourceScope indicates which scope this definition was resolved from.
	SourceScope Scope `yaml:"-"`

	// SourcePath is the absolute path of the workflow.yaml file.
	SourcePath string `yaml:"-"`
}

// TotalSteps returns the number of steps in the workflow.
func (w Workflow) TotalSteps() int {
	return len(w.Steps)
}

// AgentPersona holds the persona fields of an agent definition.
type AgentPersona struct {
	Role     string `yaml:"role,omitempty"`
	Identity string `yaml:"identity,omitempty"`
	Style    string `yaml:"style,omitempty"`
	Focus    string `yaml:"focus,omitempty"`
}

// Agent is a resolved agent definition plus its source metadata.
type Agent struct {
	// ID comes from the definition's explicit id field, falling back to the
	// file name without extension.
	ID string `yaml:"id"`

	// Name is the human-readable display name.
	Name string `yaml:"name"`

	// Title is an optional short role title.
	Title string `yaml:"title,omitempty"`

	// Description is a brief description shown in listings.
	Description string `yaml:"description"`

	// Persona holds role/identity/style fields for the agent.
	Persona AgentPersona `yaml:"persona,omitempty"`

	// Principles are ordered behavioral guidelines.
	Principles []string `yaml:"principles,omitempty"`

	// SourceScope indicates which scope this definition was resolved from.
	SourceScope Scope `yaml:"-"`

	// SourcePath is the absolute path of the agent YAML file.
	SourcePath string `yaml:"-"`
}

// ValidateQuestions checks every question of every step for a known type.
// Returns the first offending step/question pair.
func (w Workflow) ValidateQuestions() error {
	for _, step := range w.Steps {
		for _, q := range step.Questions {
			if !q.Type.Valid() {
				return fmt.Errorf("step %q question %q: unknown question type %q", step.ID, q.ID, q.Type)
			}
		}
	}
	return nil
}
