package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/unreal-companion/unreal-companion/internal/log"
	legacysync "github.com/unreal-companion/unreal-companion/internal/sessions/sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// LegacyReader provides read-only access to the legacy session database at
// {project}/.unreal-companion/sessions/workflows.db. It is only a discovery
// source: nothing is ever written back.
type LegacyReader struct {
	db     *sql.DB
	dbPath string
}

// Ensure LegacyReader implements the sync source port.
var _ legacysync.Source = (*LegacyReader)(nil)

// OpenLegacy opens the legacy database read-only. A missing file is an error
// here; callers translate it into sync unavailability.
func OpenLegacy(dbPath string) (*LegacyReader, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("legacy database not found at %s: %w", dbPath, err)
	}

	log.Debug(log.CatDB, "Opening legacy database", "path", dbPath)
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro")
	if err != nil {
		log.ErrorErr(log.CatDB, "Failed to open legacy database", err, "path", dbPath)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		log.ErrorErr(log.CatDB, "Failed to ping legacy database", err, "path", dbPath)
		return nil, err
	}
	return &LegacyReader{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (r *LegacyReader) Close() error {
	return r.db.Close()
}

// DBPath returns the resolved path to the legacy database file.
func (r *LegacyReader) DBPath() string {
	return r.dbPath
}

// ActiveSessions returns legacy rows with status active or in_progress.
func (r *LegacyReader) ActiveSessions(ctx context.Context) ([]legacysync.Row, error) {
	query := `
		SELECT id, workflow_id, status, current_step, total_steps
		FROM workflow_sessions
		WHERE status IN ('active', 'in_progress')
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		log.ErrorErr(log.CatDB, "Legacy session query failed", err, "path", r.dbPath)
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []legacysync.Row
	for rows.Next() {
		var row legacysync.Row
		if err := rows.Scan(&row.ID, &row.WorkflowID, &row.Status, &row.CurrentStep, &row.TotalSteps); err != nil {
			log.ErrorErr(log.CatDB, "Legacy session scan failed", err, "path", r.dbPath)
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
