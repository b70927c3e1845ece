package export

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wagiedev/recordrig-go/internal/session"
)

// ArchivedSession is one row of the archive's session index.
type ArchivedSession struct {
	ID          string
	SubjectID   string
	TaskType    string
	StartedAt   time.Time
	Duration    time.Duration
	Trials      int
	Interrupted bool
}

// SQLiteArchive keeps every exported session in a local SQLite database.
// Re-exporting a session ID replaces its earlier rows.
type SQLiteArchive struct {
	log *slog.Logger
	db  *sql.DB
	mu  sync.Mutex // serializes writers to avoid SQLITE_BUSY
}

// OpenSQLiteArchive opens or creates the archive at path.
func OpenSQLiteArchive(log *slog.Logger, path string) (*SQLiteArchive, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping archive: %w", err)
	}

	a := &SQLiteArchive{log: log.With("component", "archive"), db: db}
	if err := a.initSchema(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("initialize archive schema: %w", err)
	}

	return a, nil
}

func (a *SQLiteArchive) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		task_type TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL,
		trials INTEGER NOT NULL,
		interrupted INTEGER NOT NULL DEFAULT 0,
		archived_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_subject ON sessions(subject_id, started_at);

	CREATE TABLE IF NOT EXISTS session_metadata (
		session_id TEXT NOT NULL REFERENCES sessions(session_id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (session_id, key)
	);

	CREATE TABLE IF NOT EXISTS trial_events (
		session_id TEXT NOT NULL REFERENCES sessions(session_id) ON DELETE CASCADE,
		trial_index INTEGER NOT NULL,
		column_name TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (session_id, trial_index, column_name)
	);
	`
	if _, err := a.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// Export implements session.Exporter.
func (a *SQLiteArchive) Export(ctx context.Context, s *session.Summary) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id := s.ID.String()

	for _, q := range []string{
		`DELETE FROM trial_events WHERE session_id = ?`,
		`DELETE FROM session_metadata WHERE session_id = ?`,
		`DELETE FROM sessions WHERE session_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("clear archived session: %w", err)
		}
	}

	interrupted := 0
	if s.Interrupted {
		interrupted = 1
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO sessions (session_id, subject_id, task_type, started_at, duration_ns, trials, interrupted, archived_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.Config.Subject.ID, s.Config.TaskType,
		s.Start.UnixNano(), int64(s.Duration()), len(s.Trials), interrupted,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	for i, e := range BuildMetadata(s) {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO session_metadata (session_id, position, key, value) VALUES (?, ?, ?, ?)`,
			id, i, e.Key, e.Value)
		if err != nil {
			return fmt.Errorf("insert metadata %s: %w", e.Key, err)
		}
	}

	loc := s.Location()

	for i := range s.Trials {
		rec := &s.Trials[i]

		for name, value := range rec.Columns(loc) {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO trial_events (session_id, trial_index, column_name, value) VALUES (?, ?, ?, ?)`,
				id, rec.Index, name, value)
			if err != nil {
				return fmt.Errorf("insert trial %d %s: %w", rec.Index, name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive transaction: %w", err)
	}

	a.log.Info("Archived session", "session_id", id, "trials", len(s.Trials))

	return nil
}

// Sessions lists archived sessions, most recent first.
func (a *SQLiteArchive) Sessions(ctx context.Context) ([]ArchivedSession, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT session_id, subject_id, task_type, started_at, duration_ns, trials, interrupted
		FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []ArchivedSession

	for rows.Next() {
		var (
			s           ArchivedSession
			startedAt   int64
			durationNS  int64
			interrupted int
		)

		if err := rows.Scan(&s.ID, &s.SubjectID, &s.TaskType, &startedAt, &durationNS, &s.Trials, &interrupted); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}

		s.StartedAt = time.Unix(0, startedAt)
		s.Duration = time.Duration(durationNS)
		s.Interrupted = interrupted != 0
		out = append(out, s)
	}

	return out, rows.Err()
}

// Metadata returns the metadata archived for a session, in export order.
func (a *SQLiteArchive) Metadata(ctx context.Context, sessionID string) (Metadata, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT key, value FROM session_metadata WHERE session_id = ? ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query metadata: %w", err)
	}
	defer rows.Close()

	var md Metadata

	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("scan metadata row: %w", err)
		}

		md = append(md, e)
	}

	return md, rows.Err()
}

// TrialEvents returns the event-log cells of one archived trial.
func (a *SQLiteArchive) TrialEvents(ctx context.Context, sessionID string, trialIndex int) (map[string]string, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT column_name, value FROM trial_events WHERE session_id = ? AND trial_index = ?`,
		sessionID, trialIndex)
	if err != nil {
		return nil, fmt.Errorf("query trial events: %w", err)
	}
	defer rows.Close()

	cols := make(map[string]string)

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("scan trial event row: %w", err)
		}

		cols[name] = value
	}

	return cols, rows.Err()
}

// Close closes the database.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}
