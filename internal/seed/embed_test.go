package seed

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unreal-companion/unreal-companion/internal/workflows/resolver"
)

func TestDefaultsFS_GameBriefExists(t *testing.T) {
	fsys := DefaultsFS()

	data, err := fs.ReadFile(fsys, "workflows/game-brief/workflow.yaml")
	require.NoError(t, err, "should be able to read game-brief workflow.yaml via DefaultsFS")
	require.NotEmpty(t, data)
}

func TestDefaultsFS_AgentsExist(t *testing.T) {
	fsys := DefaultsFS()

	for _, name := range []string{"game-designer.yaml", "level-designer.yaml"} {
		data, err := fs.ReadFile(fsys, "agents/"+name)
		require.NoError(t, err, "agent %s should be readable via DefaultsFS", name)
		require.NotEmpty(t, data)
	}
}

func TestMaterialize_ProducesResolvableDefinitions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Materialize(dir))

	r := resolver.New(0)
	workflows := r.ResolveWorkflows(resolver.ScopeRoots([]string{filepath.Join(dir, "workflows", "defaults")}))
	require.Len(t, workflows, 2, "every embedded workflow should parse")

	byID := map[string]int{}
	for _, wf := range workflows {
		byID[wf.ID] = wf.TotalSteps()
	}
	assert.Equal(t, 3, byID["game-brief"])
	assert.Equal(t, 4, byID["level-design-doc"])

	agents := r.ResolveAgents(resolver.ScopeRoots([]string{filepath.Join(dir, "agents", "defaults")}))
	require.Len(t, agents, 2)
}

func TestMaterialize_EveryStepFileHydrates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Materialize(dir))

	r := resolver.New(0)
	workflows := r.ResolveWorkflows(resolver.ScopeRoots([]string{filepath.Join(dir, "workflows", "defaults")}))

	for _, wf := range workflows {
		for i := range wf.Steps {
			step, err := r.LoadStep(wf, i)
			require.NoError(t, err, "workflow %s step %d", wf.ID, i)
			assert.NotEmpty(t, step.Content, "workflow %s step %s should have body content", wf.ID, step.ID)
		}
	}
}

func TestMaterialize_PreservesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflows", "defaults", "game-brief", "workflow.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	edited := []byte("id: game-brief\nname: Edited\nsteps: []\n")
	require.NoError(t, os.WriteFile(path, edited, 0600))

	require.NoError(t, Materialize(dir))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, edited, data, "local edits should survive re-materialization")
}
