package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/feishu-guard/internal/biz/domain"
	"github.com/anthropics/feishu-guard/internal/biz/repo"
)

// ActionExecutor translates moderation decisions and admin commands into
// platform operations. Automatic actions swallow platform failures (logged,
// never propagated); admin-initiated methods return the error so the command
// dispatcher can report it back to the issuing chat.
type ActionExecutor struct {
	cfg      GuardConfig
	platform repo.PlatformRepo
	audit    repo.AuditRepo
	logger   *slog.Logger
}

// NewActionExecutor creates an action executor. audit may be nil.
func NewActionExecutor(cfg GuardConfig, platform repo.PlatformRepo, audit repo.AuditRepo, logger *slog.Logger) *ActionExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActionExecutor{cfg: cfg, platform: platform, audit: audit, logger: logger}
}

// DeleteAndNotify removes a message and privately tells the sender why.
// Used by the automatic pipeline: both operations are fire-and-forget.
func (x *ActionExecutor) DeleteAndNotify(ctx context.Context, msg *domain.Message, notice, reason string) {
	if err := x.platform.DeleteMessage(ctx, msg.ID); err != nil {
		actionFailureCount.WithLabelValues("delete").Inc()
		x.logger.Warn("delete message failed", "msg_id", msg.ID, "err", err)
	}
	if err := x.platform.SendDirect(ctx, msg.SenderID, notice); err != nil {
		actionFailureCount.WithLabelValues("notify").Inc()
		x.logger.Warn("notify sender failed", "user_id", msg.SenderID, "err", err)
	}
	x.record(ctx, repo.AuditRecord{
		Action: "delete", TargetID: msg.SenderID, MessageID: msg.ID,
		Reason: reason, Automatic: true,
	})
}

// AlertAdmins sends a private alert to every configured admin. Failures per
// recipient are independent; one unreachable admin does not stop the rest.
func (x *ActionExecutor) AlertAdmins(ctx context.Context, text string) {
	adminAlertCount.Inc()
	for _, adminID := range x.cfg.AdminIDs {
		if err := x.platform.SendDirect(ctx, adminID, text); err != nil {
			actionFailureCount.WithLabelValues("alert").Inc()
			x.logger.Warn("admin alert failed", "admin_id", adminID, "err", err)
		}
	}
}

// Warn posts a public warning naming the target member.
func (x *ActionExecutor) Warn(ctx context.Context, target *domain.Message, reason string) error {
	text := fmt.Sprintf("Warning: %s, you have received a warning from the admins.", target.SenderName)
	if reason != "" {
		text += " Reason: " + reason
	}
	text += " Please follow the group rules to avoid further action."
	if err := x.platform.SendText(ctx, x.cfg.GroupID, text); err != nil {
		actionFailureCount.WithLabelValues("warn").Inc()
		return err
	}
	x.record(ctx, repo.AuditRecord{Action: "warn", TargetID: target.SenderID, MessageID: target.ID, Reason: reason})
	return nil
}

// Kick removes a member from the group.
func (x *ActionExecutor) Kick(ctx context.Context, userID string) error {
	if err := x.platform.RemoveMember(ctx, x.cfg.GroupID, userID); err != nil {
		actionFailureCount.WithLabelValues("kick").Inc()
		return err
	}
	x.record(ctx, repo.AuditRecord{Action: "kick", TargetID: userID})
	return nil
}

// Ban kicks a member and records them on the denylist so a rejoin is
// kicked again by the membership handler.
func (x *ActionExecutor) Ban(ctx context.Context, state repo.StateRepo, userID string) error {
	state.Ban(userID)
	if err := x.platform.RemoveMember(ctx, x.cfg.GroupID, userID); err != nil {
		actionFailureCount.WithLabelValues("ban").Inc()
		return err
	}
	x.record(ctx, repo.AuditRecord{Action: "ban", TargetID: userID})
	return nil
}

// Unban removes a member from the denylist.
func (x *ActionExecutor) Unban(ctx context.Context, state repo.StateRepo, userID string) {
	state.Unban(userID)
	x.record(ctx, repo.AuditRecord{Action: "unban", TargetID: userID})
}

// Mute records a bot-enforced restriction. until is a unix timestamp in
// seconds, zero for no expiry; the pipeline deletes the member's messages
// while the restriction is active.
func (x *ActionExecutor) Mute(ctx context.Context, state repo.StateRepo, userID string, until int64) {
	state.Mute(userID, until)
	x.record(ctx, repo.AuditRecord{Action: "mute", TargetID: userID, Reason: fmt.Sprintf("until=%d", until)})
}

// Unmute lifts a restriction.
func (x *ActionExecutor) Unmute(ctx context.Context, state repo.StateRepo, userID string) {
	state.Unmute(userID)
	x.record(ctx, repo.AuditRecord{Action: "unmute", TargetID: userID})
}

// Archive forwards a message to the archive channel and appends a ledger
// entry. Returns the entry so the caller can confirm to the admin.
func (x *ActionExecutor) Archive(ctx context.Context, state repo.StateRepo, target *domain.Message) (domain.ArchiveEntry, error) {
	archivedID, err := x.platform.ForwardMessage(ctx, target.ID, x.cfg.ArchiveChatID)
	if err != nil {
		actionFailureCount.WithLabelValues("archive").Inc()
		return domain.ArchiveEntry{}, err
	}

	text := target.Text
	if text == "" {
		text = "[no text]"
	}
	entry := domain.ArchiveEntry{
		OriginalMsgID: target.ID,
		ArchivedMsgID: archivedID,
		Text:          text,
		AuthorName:    target.SenderName,
		ArchivedAt:    time.Now(),
	}
	state.AppendArchive(entry)
	x.record(ctx, repo.AuditRecord{Action: "archive", TargetID: target.SenderID, MessageID: target.ID})
	return entry, nil
}

// record writes an audit entry, best-effort.
func (x *ActionExecutor) record(ctx context.Context, rec repo.AuditRecord) {
	if x.audit == nil {
		return
	}
	rec.CreatedAt = time.Now()
	if err := x.audit.Record(ctx, rec); err != nil {
		x.logger.Warn("audit record failed", "action", rec.Action, "err", err)
	}
}
