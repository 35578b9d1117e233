package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists research sessions and their message transcripts.
type Store struct {
	db *sql.DB
}

type SessionRecord struct {
	ID           string
	Query        string
	AnalysisType string
	Status       string
	Report       string
}

type MessageRecord struct {
	ID            string
	SessionID     string
	Role          string
	Agent         string
	Content       string
	ToolCallsJSON string
	Seq           int
}

type SessionWithMeta struct {
	SessionRecord
	RowID     int64
	CreatedAt string
	UpdatedAt string
}

type MessageWithMeta struct {
	MessageRecord
	CreatedAt string
}

func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    query TEXT NOT NULL,
    analysis_type TEXT,
    status TEXT NOT NULL,
    report TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    role TEXT NOT NULL,
    agent TEXT,
    content TEXT NOT NULL DEFAULT '',
    tool_calls_json TEXT NOT NULL DEFAULT '',
    seq INTEGER NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(session_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_messages_session_created ON messages(session_id, created_at);
`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// CreateSession inserts or updates a session row.
func (s *Store) CreateSession(ctx context.Context, session SessionRecord) error {
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("session id is required")
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO sessions (id, query, analysis_type, status, report)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    query=excluded.query,
    analysis_type=excluded.analysis_type,
    status=excluded.status,
    report=excluded.report,
    updated_at=CURRENT_TIMESTAMP
`, session.ID, session.Query, session.AnalysisType, session.Status, session.Report)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// UpdateSessionStatus transitions a session, optionally attaching the final
// report.
func (s *Store) UpdateSessionStatus(ctx context.Context, sessionID, status, report string) error {
	if strings.TrimSpace(sessionID) == "" || strings.TrimSpace(status) == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
UPDATE sessions
SET status = ?,
    report = CASE WHEN ? <> '' THEN ? ELSE report END,
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, status, report, report, sessionID)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return nil
}

// InsertMessage appends one transcript message.
func (s *Store) InsertMessage(ctx context.Context, msg MessageRecord) error {
	if msg.Seq <= 0 {
		return fmt.Errorf("message seq must be positive")
	}
	if strings.TrimSpace(msg.Role) == "" {
		return fmt.Errorf("message role is required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO messages (id, session_id, role, agent, content, tool_calls_json, seq)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING
`, msg.ID, msg.SessionID, msg.Role, msg.Agent, msg.Content, msg.ToolCallsJSON, msg.Seq)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// ListSessions pages sessions newest first using rowid as the cursor.
func (s *Store) ListSessions(ctx context.Context, cursor int64, limit int) ([]SessionWithMeta, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT rowid, id, query, analysis_type, status, report, created_at, updated_at
FROM sessions
WHERE (? = 0 OR rowid < ?)
ORDER BY rowid DESC
LIMIT ?
`, cursor, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionWithMeta
	for rows.Next() {
		var rec SessionWithMeta
		if err := rows.Scan(&rec.RowID, &rec.ID, &rec.Query, &rec.AnalysisType, &rec.Status, &rec.Report, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions rows: %w", err)
	}
	return sessions, nil
}

// GetSession returns one session or nil when not found.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*SessionWithMeta, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}
	row := s.db.QueryRowContext(ctx, `
SELECT rowid, id, query, analysis_type, status, report, created_at, updated_at
FROM sessions
WHERE id = ?
LIMIT 1
`, sessionID)

	var rec SessionWithMeta
	if err := row.Scan(&rec.RowID, &rec.ID, &rec.Query, &rec.AnalysisType, &rec.Status, &rec.Report, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &rec, nil
}

// ListMessages returns the transcript of one session in order.
func (s *Store) ListMessages(ctx context.Context, sessionID string) ([]MessageWithMeta, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, session_id, role, agent, content, tool_calls_json, seq, created_at
FROM messages
WHERE session_id = ?
ORDER BY seq ASC
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []MessageWithMeta
	for rows.Next() {
		var rec MessageWithMeta
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Role, &rec.Agent, &rec.Content, &rec.ToolCallsJSON, &rec.Seq, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages rows: %w", err)
	}
	return messages, nil
}
