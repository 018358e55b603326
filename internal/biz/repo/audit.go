package repo

import (
	"context"
	"time"
)

// AuditRecord describes one executed moderation action.
type AuditRecord struct {
	Action    string // delete, warn, mute, ban, unban, kick, alert, archive
	TargetID  string
	MessageID string
	Reason    string
	Automatic bool // true for pipeline actions, false for admin commands
	CreatedAt time.Time
}

// AuditRepo persists moderation actions for later review. A nil AuditRepo
// disables auditing. Recording is best-effort: callers log failures and
// carry on.
type AuditRepo interface {
	Record(ctx context.Context, rec AuditRecord) error
	Recent(ctx context.Context, limit int) ([]AuditRecord, error)
	Close() error
}
