package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anthropics/feishu-guard/internal/biz/repo"
)

// auditRepo persists executed moderation actions in SQLite. The volatile
// moderation state (counters, archive ledger) stays in memory; the audit log
// only records actions, so it survives restarts without changing behavior.
type auditRepo struct {
	db *sql.DB
}

// NewAuditRepo opens (or creates) the audit database at dbPath.
func NewAuditRepo(dbPath string) (repo.AuditRepo, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS actions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			action TEXT NOT NULL,
			target_id TEXT NOT NULL,
			message_id TEXT,
			reason TEXT,
			automatic INTEGER NOT NULL,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create actions table: %w", err)
	}

	return &auditRepo{db: db}, nil
}

func (r *auditRepo) Record(ctx context.Context, rec repo.AuditRecord) error {
	automatic := 0
	if rec.Automatic {
		automatic = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO actions (action, target_id, message_id, reason, automatic, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Action, rec.TargetID, rec.MessageID, rec.Reason, automatic, rec.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

func (r *auditRepo) Recent(ctx context.Context, limit int) ([]repo.AuditRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT action, target_id, message_id, reason, automatic, created_at FROM actions ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var records []repo.AuditRecord
	for rows.Next() {
		var rec repo.AuditRecord
		var automatic int
		var createdAt int64
		if err := rows.Scan(&rec.Action, &rec.TargetID, &rec.MessageID, &rec.Reason, &automatic, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		rec.Automatic = automatic == 1
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *auditRepo) Close() error {
	return r.db.Close()
}
