package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/anthropics/feishu-guard/internal/biz/domain"
	"github.com/anthropics/feishu-guard/internal/biz/repo"
)

// durationToken matches a mute duration like 10m, 2h or 1d.
var durationToken = regexp.MustCompile(`(\d+)([mhd])`)

// CommandUsecase maps operator commands to direct state and executor calls,
// bypassing the decision pipeline. Admin commands from non-admins are
// silently ignored so the admin-only surface is not revealed; card-button
// presses get an explicit "admins only" toast instead.
type CommandUsecase struct {
	cfg      GuardConfig
	state    repo.StateRepo
	platform repo.PlatformRepo
	actions  *ActionExecutor
	logger   *slog.Logger
}

// NewCommandUsecase creates the command dispatcher.
func NewCommandUsecase(cfg GuardConfig, state repo.StateRepo, platform repo.PlatformRepo, actions *ActionExecutor, logger *slog.Logger) *CommandUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandUsecase{cfg: cfg, state: state, platform: platform, actions: actions, logger: logger}
}

// Dispatch handles a slash command. Returns false when the message is not a
// recognized command.
func (uc *CommandUsecase) Dispatch(ctx context.Context, msg *domain.Message) bool {
	if !msg.IsCommand() {
		return false
	}
	fields := strings.Fields(msg.Text)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "/start":
		commandCount.WithLabelValues(cmd).Inc()
		if err := uc.platform.SendCard(ctx, msg.ChatID, helpCard()); err != nil {
			uc.logger.Warn("send help card failed", "err", err)
			uc.send(ctx, msg.ChatID, HelpText)
		}
	case "/help":
		commandCount.WithLabelValues(cmd).Inc()
		uc.send(ctx, msg.ChatID, HelpText)
	case "/rules":
		commandCount.WithLabelValues(cmd).Inc()
		uc.send(ctx, msg.ChatID, RulesText)
	case "/stats":
		commandCount.WithLabelValues(cmd).Inc()
		uc.sendStats(ctx, msg.ChatID)

	case "/on":
		uc.adminOnly(ctx, msg, cmd, func() {
			uc.state.SetMonitoring(true)
			uc.send(ctx, msg.ChatID, "Monitoring and filtering enabled.")
		})
	case "/off":
		uc.adminOnly(ctx, msg, cmd, func() {
			uc.state.SetMonitoring(false)
			uc.send(ctx, msg.ChatID, "Monitoring and filtering disabled.")
		})
	case "/warn":
		uc.adminOnly(ctx, msg, cmd, func() { uc.warn(ctx, msg, strings.Join(args, " ")) })
	case "/mute":
		uc.adminOnly(ctx, msg, cmd, func() { uc.mute(ctx, msg) })
	case "/unmute":
		uc.adminOnly(ctx, msg, cmd, func() { uc.unmute(ctx, msg) })
	case "/kick":
		uc.adminOnly(ctx, msg, cmd, func() { uc.kick(ctx, msg) })
	case "/ban":
		uc.adminOnly(ctx, msg, cmd, func() { uc.ban(ctx, msg) })
	case "/unban":
		uc.adminOnly(ctx, msg, cmd, func() { uc.unban(ctx, msg, args) })
	case "/archive":
		uc.adminOnly(ctx, msg, cmd, func() { uc.archive(ctx, msg) })
	case "/list_archives":
		uc.adminOnly(ctx, msg, cmd, func() { uc.listArchives(ctx, msg.ChatID) })
	case "/admin":
		uc.adminOnly(ctx, msg, cmd, func() {
			if err := uc.platform.SendCard(ctx, msg.ChatID, adminPanelCard(uc.state.Monitoring())); err != nil {
				uc.logger.Warn("send admin panel failed", "err", err)
			}
		})
	default:
		return false
	}
	return true
}

// HandleCardAction processes a card-button press and returns the toast text
// to answer the press with. msgID identifies the card itself and may be
// empty when the platform omits it.
func (uc *CommandUsecase) HandleCardAction(ctx context.Context, operatorID, chatID, msgID, action string) string {
	switch action {
	case actionShowRules:
		uc.send(ctx, chatID, RulesText)
		return ""
	case actionShowStats:
		uc.sendStats(ctx, chatID)
		return ""
	case actionMonitorOn, actionMonitorOff:
		// Unlike slash commands, panel presses answer non-admins
		// explicitly: the button is already visible to them.
		if !uc.cfg.IsAdmin(operatorID) {
			return adminsOnlyToast
		}
		on := action == actionMonitorOn
		uc.state.SetMonitoring(on)
		uc.refreshAdminPanel(ctx, msgID)
		if on {
			uc.send(ctx, chatID, "Monitoring and filtering enabled.")
		} else {
			uc.send(ctx, chatID, "Monitoring and filtering disabled.")
		}
		return ""
	}
	return ""
}

// refreshAdminPanel re-renders the panel card in place so its status line
// matches the new monitoring state. Best-effort.
func (uc *CommandUsecase) refreshAdminPanel(ctx context.Context, msgID string) {
	if msgID == "" {
		return
	}
	if err := uc.platform.UpdateCard(ctx, msgID, adminPanelCard(uc.state.Monitoring())); err != nil {
		actionFailureCount.WithLabelValues("update_card").Inc()
		uc.logger.Warn("admin panel refresh failed", "msg_id", msgID, "err", err)
	}
}

// adminOnly runs fn when the sender is an admin; otherwise the command is
// silently dropped.
func (uc *CommandUsecase) adminOnly(ctx context.Context, msg *domain.Message, cmd string, fn func()) {
	if !uc.cfg.IsAdmin(msg.SenderID) {
		uc.logger.Info("admin command from non-admin ignored", "cmd", cmd, "sender", msg.SenderID)
		return
	}
	commandCount.WithLabelValues(cmd).Inc()
	fn()
}

// replyTarget resolves the reply-to message a targeting command needs,
// answering with a usage notice when it is missing.
func (uc *CommandUsecase) replyTarget(ctx context.Context, msg *domain.Message) *domain.Message {
	if msg.ReplyTo == nil {
		uc.send(ctx, msg.ChatID, replyRequiredNotice)
		return nil
	}
	return msg.ReplyTo
}

func (uc *CommandUsecase) warn(ctx context.Context, msg *domain.Message, reason string) {
	target := uc.replyTarget(ctx, msg)
	if target == nil {
		return
	}
	if err := uc.actions.Warn(ctx, target, reason); err != nil {
		uc.send(ctx, msg.ChatID, "Error: "+err.Error())
	}
}

func (uc *CommandUsecase) mute(ctx context.Context, msg *domain.Message) {
	target := uc.replyTarget(ctx, msg)
	if target == nil {
		return
	}

	until, token := ParseMuteDuration(msg.Text, time.Now())
	uc.actions.Mute(ctx, uc.state, target.SenderID, until)

	durationText := "indefinitely"
	if token != "" {
		durationText = "for " + token
	}
	uc.send(ctx, uc.cfg.GroupID, fmt.Sprintf("Muted %s %s.", target.SenderName, durationText))
}

func (uc *CommandUsecase) unmute(ctx context.Context, msg *domain.Message) {
	target := uc.replyTarget(ctx, msg)
	if target == nil {
		return
	}
	uc.actions.Unmute(ctx, uc.state, target.SenderID)
	uc.send(ctx, uc.cfg.GroupID, fmt.Sprintf("Unmuted %s.", target.SenderName))
}

func (uc *CommandUsecase) kick(ctx context.Context, msg *domain.Message) {
	target := uc.replyTarget(ctx, msg)
	if target == nil {
		return
	}
	if err := uc.actions.Kick(ctx, target.SenderID); err != nil {
		uc.send(ctx, msg.ChatID, "Error: "+err.Error())
		return
	}
	uc.send(ctx, uc.cfg.GroupID, fmt.Sprintf("Removed %s from the group.", target.SenderName))
}

func (uc *CommandUsecase) ban(ctx context.Context, msg *domain.Message) {
	target := uc.replyTarget(ctx, msg)
	if target == nil {
		return
	}
	if err := uc.actions.Ban(ctx, uc.state, target.SenderID); err != nil {
		uc.send(ctx, msg.ChatID, "Error: "+err.Error())
		return
	}
	uc.send(ctx, uc.cfg.GroupID, fmt.Sprintf("Banned %s from the group.", target.SenderName))
}

func (uc *CommandUsecase) unban(ctx context.Context, msg *domain.Message, args []string) {
	if len(args) == 0 {
		uc.send(ctx, msg.ChatID, "Usage: /unban <user id>")
		return
	}
	userID := args[0]
	uc.actions.Unban(ctx, uc.state, userID)
	uc.send(ctx, uc.cfg.GroupID, "Unbanned user "+userID+".")
}

func (uc *CommandUsecase) archive(ctx context.Context, msg *domain.Message) {
	target := uc.replyTarget(ctx, msg)
	if target == nil {
		return
	}
	if uc.cfg.ArchiveChatID == "" {
		uc.send(ctx, msg.ChatID, archiveUnsetNotice)
		return
	}
	if _, err := uc.actions.Archive(ctx, uc.state, target); err != nil {
		uc.send(ctx, msg.ChatID, "Archiving failed: "+err.Error())
		return
	}
	uc.send(ctx, msg.ChatID, "Message archived.")
}

func (uc *CommandUsecase) listArchives(ctx context.Context, chatID string) {
	entries := uc.state.RecentArchives(10)
	if len(entries) == 0 {
		uc.send(ctx, chatID, "No archived messages yet.")
		return
	}

	var b strings.Builder
	b.WriteString("Last archived messages:\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %q by %s (%s)\n", i+1, truncate(e.Text, 30), e.AuthorName, e.ArchivedAt.Format("2006-01-02 15:04"))
	}
	uc.send(ctx, chatID, b.String())
}

// sendStats reports the counters, resolving the top contributor's display
// name best-effort; stats still go out with the raw ID when the lookup fails.
func (uc *CommandUsecase) sendStats(ctx context.Context, chatID string) {
	stats := uc.state.SnapshotStats()
	topID, topCount := stats.TopUser()

	topName := topID
	if topID != "" {
		if members, err := uc.platform.GetMembers(ctx, uc.cfg.GroupID); err == nil {
			for _, m := range members {
				if m.UserID == topID {
					topName = m.Name
					break
				}
			}
		} else {
			uc.logger.Warn("member lookup for stats failed", "err", err)
		}
	}
	if topName == "" {
		topName = "nobody yet"
	}

	var b strings.Builder
	b.WriteString("Group stats:\n")
	if info, err := uc.platform.GetChatInfo(ctx, uc.cfg.GroupID); err == nil && info.MemberCount > 0 {
		fmt.Fprintf(&b, "- Group members: %d\n", info.MemberCount)
	}
	fmt.Fprintf(&b, "- Total messages: %d\n- Participating members: %d\n- Most active: %s (%d messages)",
		stats.TotalMessages, len(stats.UserMessages), topName, topCount)
	uc.send(ctx, chatID, b.String())
}

func (uc *CommandUsecase) send(ctx context.Context, chatID, text string) {
	if text == "" {
		return
	}
	if err := uc.platform.SendText(ctx, chatID, text); err != nil {
		actionFailureCount.WithLabelValues("send").Inc()
		uc.logger.Warn("send failed", "chat_id", chatID, "err", err)
	}
}

// ParseMuteDuration extracts a <integer><unit> token (m/h/d) from the
// command text and converts it to an absolute unix expiry. No token means
// an indefinite restriction (until = 0). Returns the matched token for the
// confirmation message.
func ParseMuteDuration(text string, now time.Time) (until int64, token string) {
	m := durationToken.FindStringSubmatch(text)
	if m == nil {
		return 0, ""
	}
	var value int64
	fmt.Sscanf(m[1], "%d", &value)
	switch m[2] {
	case "m":
		until = now.Unix() + value*60
	case "h":
		until = now.Unix() + value*3600
	case "d":
		until = now.Unix() + value*86400
	}
	return until, m[0]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
