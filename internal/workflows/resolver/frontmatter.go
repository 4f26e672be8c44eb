package resolver

import (
	"bytes"
	"fmt"

	"github.com/unreal-companion/unreal-companion/internal/workflows/domain"
)

var frontMatterDelim = []byte("---")

// stepFrontMatter mirrors the YAML front-matter of a step markdown file.
// Fields present in the front-matter override the stub from workflow.yaml.
type stepFrontMatter struct {
	ID        string                      `yaml:"id"`
	Title     string                      `yaml:"title"`
	Progress  string                      `yaml:"progress"`
	Goal      string                      `yaml:"goal"`
	Questions []domain.QuestionDefinition `yaml:"questions"`
}

// validate holds front-matter questions to the same closed type set as
// workflow.yaml questions; an offending question rejects the whole block.
func (fm stepFrontMatter) validate() error {
	for _, q := range fm.Questions {
		if !q.Type.Valid() {
			return fmt.Errorf("question %q: unknown question type %q", q.ID, q.Type)
		}
	}
	return nil
}

func (fm stepFrontMatter) applyTo(step *domain.StepDefinition) {
	if fm.ID != "" {
		step.ID = fm.ID
	}
	if fm.Title != "" {
		step.Title = fm.Title
	}
	if fm.Progress != "" {
		step.ProgressLabel = fm.Progress
	}
	if fm.Goal != "" {
		step.Goal = fm.Goal
	}
	if len(fm.Questions) > 0 {
		step.Questions = fm.Questions
	}
}

// splitFrontMatter separates a leading "---" delimited YAML block from the
// markdown body. Files without front-matter return a nil front block and the
// whole input as body.
func splitFrontMatter(raw []byte) (front, body []byte) {
	trimmed := bytes.TrimLeft(raw, "\r\n")
	if !bytes.HasPrefix(trimmed, frontMatterDelim) {
		return nil, raw
	}
	rest := trimmed[len(frontMatterDelim):]
	rest = bytes.TrimPrefix(rest, []byte("\r"))
	if !bytes.HasPrefix(rest, []byte("\n")) {
		return nil, raw
	}
	rest = rest[1:]

	end := bytes.Index(rest, append([]byte("\n"), frontMatterDelim...))
	if end < 0 {
		return nil, raw
	}
	front = rest[:end]
	body = rest[end+1+len(frontMatterDelim):]
	body = bytes.TrimLeft(body, "\r\n")
	return front, body
}
