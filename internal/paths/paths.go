// Package paths resolves the filesystem locations unreal-companion reads and
// writes: the global configuration directory and the per-project
// .unreal-companion directory, plus the fixed-priority scope roots used by
// definition resolution.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// CompanionDirName is the per-project data directory.
const CompanionDirName = ".unreal-companion"

// GlobalDirEnv overrides the global configuration directory when set.
const GlobalDirEnv = "UNREAL_COMPANION_HOME"

// GlobalDir returns the global configuration directory, honoring the
// UNREAL_COMPANION_HOME override and falling back to ~/.unreal-companion.
func GlobalDir() string {
	if dir := os.Getenv(GlobalDirEnv); dir != "" {
		return filepath.Clean(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return CompanionDirName
	}
	return filepath.Join(home, CompanionDirName)
}

// ResolveProjectDir maps a project root to its .unreal-companion directory.
// Paths already ending in .unreal-companion are preserved, and an empty root
// means the current directory.
func ResolveProjectDir(projectRoot string) string {
	if projectRoot == "" {
		return CompanionDirName
	}
	cleaned := filepath.Clean(projectRoot)
	if strings.HasSuffix(cleaned, CompanionDirName) {
		return cleaned
	}
	if cleaned == "." {
		return CompanionDirName
	}
	return filepath.Join(cleaned, CompanionDirName)
}

// StatusFilePath returns the session status document path for a project root.
func StatusFilePath(projectRoot string) string {
	return filepath.Join(ResolveProjectDir(projectRoot), "workflow-status.yaml")
}

// LegacyDBPath returns the legacy session database path for a project root.
func LegacyDBPath(projectRoot string) string {
	return filepath.Join(ResolveProjectDir(projectRoot), "sessions", "workflows.db")
}

// WorkflowScopeRoots returns the workflow definition roots in priority order:
// global defaults, then global custom, then the project scope. The project
// entry is omitted when projectRoot is empty.
func WorkflowScopeRoots(globalDir, projectRoot string) []string {
	roots := []string{
		filepath.Join(globalDir, "workflows", "defaults"),
		filepath.Join(globalDir, "workflows", "custom"),
	}
	if projectRoot != "" {
		roots = append(roots, filepath.Join(ResolveProjectDir(projectRoot), "workflows"))
	}
	return roots
}

// AgentScopeRoots returns the agent definition roots in priority order,
// mirroring WorkflowScopeRoots.
func AgentScopeRoots(globalDir, projectRoot string) []string {
	roots := []string{
		filepath.Join(globalDir, "agents", "defaults"),
		filepath.Join(globalDir, "agents", "custom"),
	}
	if projectRoot != "" {
		roots = append(roots, filepath.Join(ResolveProjectDir(projectRoot), "agents"))
	}
	return roots
}
