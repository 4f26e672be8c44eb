package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unreal-companion/unreal-companion/internal/infrastructure/sqlite"
	"github.com/unreal-companion/unreal-companion/internal/log"
	"github.com/unreal-companion/unreal-companion/internal/paths"
	legacysync "github.com/unreal-companion/unreal-companion/internal/sessions/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import active sessions from the legacy database",
	Long: `Import still-active sessions from the legacy workflows.db into the
current status file. Existing sessions are never overwritten; a missing or
unreadable legacy database is reported and otherwise ignored.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	dbPath := paths.LegacyDBPath(projectRoot)
	reader, err := sqlite.OpenLegacy(dbPath)
	if err != nil {
		// Legacy data is optional: nothing to import is not a failure.
		log.Info(log.CatSync, "Legacy database unavailable", "path", dbPath, "reason", err.Error())
		fmt.Println(mutedStyle.Render("No legacy database found; nothing to import."))
		return nil
	}
	defer func() { _ = reader.Close() }()

	result, err := legacysync.FromLegacy(cmd.Context(), st, reader, cfg.Sync.Timeout)
	if err != nil {
		var unavailable *legacysync.SyncUnavailableError
		if errors.As(err, &unavailable) {
			fmt.Println(errorStyle.Render("Legacy sync unavailable: ") + unavailable.Reason)
			return nil
		}
		return err
	}

	fmt.Println(progressStyle.Render(fmt.Sprintf("Imported %d session(s), skipped %d already present.",
		result.Synced, result.Skipped)))
	return nil
}
