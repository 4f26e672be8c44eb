// Package seed embeds the default workflow and agent definitions that ship
// with the companion.
//
// The defaults are materialized into the global companion directory on init,
// becoming the lowest-precedence definition scope. Custom and project scopes
// override them by id without ever touching the materialized files.
package seed

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// defaultDefinitions embeds the shipped definition tree:
//   - defaults/workflows/<workflow-id>/workflow.yaml
//   - defaults/workflows/<workflow-id>/steps/*.md
//   - defaults/agents/*.yaml
//
//go:embed defaults
var defaultDefinitions embed.FS

// DefaultsFS returns the embedded filesystem rooted at the defaults tree, so
// callers see workflows/ and agents/ at the top level.
func DefaultsFS() fs.FS {
	sub, err := fs.Sub(defaultDefinitions, "defaults")
	if err != nil {
		// The defaults directory is embedded at compile time.
		panic(err)
	}
	return sub
}

// Materialize writes the embedded defaults under targetDir, producing the
// defaults scope roots targetDir/workflows/defaults/... and
// targetDir/agents/defaults/... . Existing files are left untouched so local
// edits survive re-initialization.
func Materialize(targetDir string) error {
	fsys := DefaultsFS()
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(targetDir, filepath.FromSlash(scopedPath(path)))
		if d.IsDir() {
			if err := os.MkdirAll(target, 0750); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			return nil
		}
		if _, err := os.Stat(target); err == nil {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("reading embedded %s: %w", path, err)
		}
		if err := os.WriteFile(target, data, 0600); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
		return nil
	})
}

// scopedPath rewrites an embedded path like workflows/game-brief/... into
// workflows/defaults/game-brief/..., matching the defaults scope root layout.
func scopedPath(path string) string {
	kind, rest, found := strings.Cut(path, "/")
	if !found {
		return path
	}
	return kind + "/defaults/" + rest
}
