package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkflowNotFoundError_ListsScopes(t *testing.T) {
	err := &WorkflowNotFoundError{
		ID:             "game-brief",
		ScopesSearched: []string{"/global/workflows/defaults", "/global/workflows/custom", "/proj/.unreal-companion/workflows"},
	}
	msg := err.Error()
	require.Contains(t, msg, `"game-brief"`)
	require.Contains(t, msg, "/global/workflows/defaults")
	require.Contains(t, msg, "/global/workflows/custom")
	require.Contains(t, msg, "/proj/.unreal-companion/workflows")
}

func TestAgentNotFoundError(t *testing.T) {
	err := &AgentNotFoundError{ID: "producer", ScopesSearched: []string{"/a", "/b"}}
	require.Contains(t, err.Error(), `"producer"`)
	require.Contains(t, err.Error(), "/a, /b")
}

func TestParseError_Unwrap(t *testing.T) {
	cause := errors.New("yaml: line 3: mapping values are not allowed")
	err := &ParseError{Path: "/x/workflow.yaml", Err: cause}
	require.Contains(t, err.Error(), "/x/workflow.yaml")
	require.ErrorIs(t, err, cause)
}
