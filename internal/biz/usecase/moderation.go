package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/anthropics/feishu-guard/internal/biz/domain"
	"github.com/anthropics/feishu-guard/internal/biz/repo"
)

// ModerationUsecase is the decision pipeline. For each group message it runs
// the ordered stages: counters, monitoring gate, admin exemption, mute
// enforcement, rule engine, semantic classification, action execution.
type ModerationUsecase struct {
	cfg        GuardConfig
	rules      *RuleEngine
	state      repo.StateRepo
	classifier repo.ClassifierRepo // nil disables the semantic layer
	actions    *ActionExecutor
	logger     *slog.Logger
}

// NewModerationUsecase creates the pipeline. classifier may be nil.
func NewModerationUsecase(
	cfg GuardConfig,
	rules *RuleEngine,
	state repo.StateRepo,
	classifier repo.ClassifierRepo,
	actions *ActionExecutor,
	logger *slog.Logger,
) *ModerationUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModerationUsecase{
		cfg:        cfg,
		rules:      rules,
		state:      state,
		classifier: classifier,
		actions:    actions,
		logger:     logger,
	}
}

// Handle processes one inbound message. At most one terminal deletion runs
// per message; the dangerous-word alert is non-terminal and may co-occur
// with a later classifier-triggered deletion.
func (uc *ModerationUsecase) Handle(ctx context.Context, msg *domain.Message) {
	// Messages outside the monitored group are ignored entirely.
	if msg.ChatID != uc.cfg.GroupID {
		return
	}

	// Counters reflect all traffic, admins and commands included, and are
	// updated before anything can block.
	uc.state.IncrementCounters(msg.SenderID)
	messageProcessedCount.Inc()

	if !uc.state.Monitoring() && !msg.IsCommand() {
		return
	}

	// Admins are exempt from every filter (but were already counted).
	if uc.cfg.IsAdmin(msg.SenderID) {
		return
	}

	// Mute enforcement: the platform has no per-user restriction API, so
	// the pipeline deletes messages from muted senders itself.
	if r, ok := uc.state.Muted(msg.SenderID); ok {
		if r.Active(time.Now()) {
			messageDeletedCount.WithLabelValues("muted").Inc()
			uc.actions.DeleteAndNotify(ctx, msg, mutedDeletedNotice, "muted")
			return
		}
		uc.state.Unmute(msg.SenderID)
	}

	decision := uc.rules.Classify(msg)
	switch decision.Verdict {
	case domain.VerdictDeleteLink:
		messageDeletedCount.WithLabelValues(decision.Verdict.String()).Inc()
		uc.actions.DeleteAndNotify(ctx, msg, linkDeletedNotice, "link")
		return
	case domain.VerdictDeleteForbiddenWord:
		messageDeletedCount.WithLabelValues(decision.Verdict.String()).Inc()
		uc.actions.DeleteAndNotify(ctx, msg, forbiddenDeletedNotice, "forbidden word: "+decision.Word)
		return
	case domain.VerdictAlertDangerous:
		// Non-terminal: the message stays visible for admin review and
		// still goes through semantic classification below.
		uc.logger.Info("dangerous word alert", "sender", msg.SenderID, "word", decision.Word)
		uc.actions.AlertAdmins(ctx, dangerousAlertText(msg.SenderName, msg.SenderID, decision.Word, msg.Text))
	}

	if msg.Text == "" || uc.classifier == nil {
		return
	}

	classifierCallCount.Inc()
	cls, err := uc.classifier.Classify(ctx, msg.Text)
	if err != nil {
		// Fail open: an unavailable classifier must never block the chat.
		classifierErrorCount.Inc()
		uc.logger.Warn("classifier unavailable", "err", err)
		cls = domain.ClassificationUnavailable()
	}
	if cls.Violation {
		messageDeletedCount.WithLabelValues(domain.VerdictDeleteAIViolation.String()).Inc()
		uc.actions.DeleteAndNotify(ctx, msg, forbiddenDeletedNotice, "classifier: "+cls.Reason)
		uc.actions.AlertAdmins(ctx, aiAlertText(msg.SenderName, msg.SenderID, cls.Reason, msg.Text))
	}
}

// HandleMemberJoined welcomes new members and re-enforces bans: a banned
// user who rejoins is kicked immediately.
func (uc *ModerationUsecase) HandleMemberJoined(ctx context.Context, chatID, userID, name string) {
	if chatID != uc.cfg.GroupID {
		return
	}

	if uc.state.Banned(userID) {
		uc.logger.Info("banned user rejoined, kicking", "user_id", userID)
		if err := uc.actions.Kick(ctx, userID); err != nil {
			uc.logger.Warn("re-kick of banned user failed", "user_id", userID, "err", err)
		}
		return
	}

	if name == "" {
		name = userID
	}
	if err := uc.actions.platform.SendCard(ctx, uc.cfg.GroupID, welcomeCard(name)); err != nil {
		uc.logger.Warn("welcome card failed", "user_id", userID, "err", err)
	}
}
