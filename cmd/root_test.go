package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unreal-companion/unreal-companion/internal/config"
	"github.com/unreal-companion/unreal-companion/internal/sessions/store"
	"github.com/unreal-companion/unreal-companion/internal/workflows/domain"
)

// withTestState points the package-level command state at temp directories
// for the duration of a test.
func withTestState(t *testing.T) {
	t.Helper()
	prevCfg, prevProject, prevGlobal := cfg, projectRoot, globalDir
	t.Cleanup(func() { cfg, projectRoot, globalDir = prevCfg, prevProject, prevGlobal })

	cfg = config.Defaults()
	projectRoot = t.TempDir()
	globalDir = t.TempDir()

	// Tests drive the run functions directly without cobra's Execute, which
	// normally installs the command context; without one cmd.Context() is nil.
	for _, c := range []*cobra.Command{
		sessionStartCmd, sessionStatusCmd, sessionAnswerCmd,
		sessionSkipCmd, sessionBackCmd, sessionListCmd,
	} {
		c.SetContext(context.Background())
	}
}

func TestOpenStore_DefaultsToYAML(t *testing.T) {
	withTestState(t)

	st, closeStore, err := openStore()
	require.NoError(t, err)
	defer closeStore()

	_, ok := st.(*store.YAMLStore)
	assert.True(t, ok, "yaml backend should produce a YAMLStore")
}

func TestOpenStore_SQLiteBackend(t *testing.T) {
	withTestState(t)
	cfg.Store.Backend = config.StoreBackendSQLite

	st, closeStore, err := openStore()
	require.NoError(t, err)
	defer closeStore()

	doc, err := st.Load()
	require.NoError(t, err)
	assert.Empty(t, doc.ActiveSessions)
}

func TestWorkflowRoots_ThreeScopesInOrder(t *testing.T) {
	withTestState(t)

	roots := workflowRoots()
	require.Len(t, roots, 3)
	assert.Equal(t, domain.ScopeDefault, roots[0].Scope)
	assert.Equal(t, domain.ScopeCustom, roots[1].Scope)
	assert.Equal(t, domain.ScopeProject, roots[2].Scope)
	assert.Equal(t, filepath.Join(globalDir, "workflows", "defaults"), roots[0].Path)
}

func TestScopeHeading(t *testing.T) {
	assert.Equal(t, "Default Workflows:", scopeHeading(domain.ScopeDefault))
	assert.Equal(t, "Project Workflows:", scopeHeading(domain.ScopeProject))
}

func TestMaxIDLen(t *testing.T) {
	workflows := []domain.Workflow{{ID: "a"}, {ID: "longest-id"}, {ID: "mid"}}
	assert.Equal(t, len("longest-id"), maxIDLen(workflows))
}
