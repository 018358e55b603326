package usecase

import (
	"encoding/json"
	"fmt"
)

// GuardConfig carries the moderation settings the usecases need. It is
// immutable for the process lifetime; conf converts into it at startup.
type GuardConfig struct {
	GroupID       string
	ArchiveChatID string // empty disables /archive
	AdminIDs      []string
}

// IsAdmin checks if the user is in the configured trusted set.
func (c GuardConfig) IsAdmin(userID string) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// RulesText is the group rule text, shown by /rules and embedded in the
// semantic classifier prompt.
const RulesText = `Group rules:

1. No external links of any kind.
2. No offensive or abusive language.
3. No repeated messages (spam).
4. No threats, fraud, blackmail or solicitation.
5. Treat every member with respect.`

// HelpText lists the available commands.
const HelpText = `Guard bot commands:

/start - show this welcome message
/help - show this list
/rules - show the group rules
/stats - show group activity stats

Admin commands (reply to the target's message unless noted):
/on - enable monitoring
/off - disable monitoring
/warn [reason] - warn a member
/mute [duration] - mute a member (e.g. /mute 10m, /mute 2h, /mute 1d)
/unmute - lift a mute
/kick - remove a member
/ban - ban a member
/unban <id> - unban by user id
/archive - archive the replied-to message
/list_archives - show the last 10 archived messages
/admin - open the admin panel`

// Texts used by the moderation pipeline and command handlers.
const (
	linkDeletedNotice      = "Sorry, posting links is not allowed in this group."
	forbiddenDeletedNotice = "Your message was removed because it contained disallowed words."
	mutedDeletedNotice     = "You are currently muted in this group."
	replyRequiredNotice    = "Please use this command as a reply to the target member's message."
	archiveUnsetNotice     = "Error: no archive channel is configured."
	adminsOnlyToast        = "Admins only."
)

func dangerousAlertText(senderName, senderID, word, text string) string {
	return fmt.Sprintf("Security alert: dangerous word %q from %s (%s)\nMessage: %q", word, senderName, senderID, text)
}

func aiAlertText(senderName, senderID, reason, text string) string {
	return fmt.Sprintf("Removed a message from %s (%s) flagged by the classifier.\nReason: %s\nMessage: %q", senderName, senderID, reason, text)
}

// cardElement is a minimal building block for Feishu interactive cards.
type cardElement map[string]interface{}

// buildCard assembles an interactive card JSON body with a markdown header
// text and a row of buttons. Button values come back verbatim in the card
// action callback.
func buildCard(text string, buttons ...cardButton) string {
	actions := make([]cardElement, 0, len(buttons))
	for _, b := range buttons {
		actions = append(actions, cardElement{
			"tag": "button",
			"text": cardElement{
				"tag":     "plain_text",
				"content": b.Label,
			},
			"type":  "default",
			"value": map[string]string{"action": b.Action},
		})
	}

	elements := []cardElement{
		{"tag": "markdown", "content": text},
	}
	if len(actions) > 0 {
		elements = append(elements, cardElement{"tag": "action", "actions": actions})
	}

	card := cardElement{
		"config":   cardElement{"wide_screen_mode": true},
		"elements": elements,
	}
	data, _ := json.Marshal(card)
	return string(data)
}

type cardButton struct {
	Label  string
	Action string
}

// Card action identifiers.
const (
	actionShowRules  = "show_rules"
	actionShowStats  = "show_stats"
	actionMonitorOn  = "monitor_on"
	actionMonitorOff = "monitor_off"
)

func welcomeCard(name string) string {
	text := fmt.Sprintf("Welcome to the group, **%s**!\n\nPlease read the group rules before posting.", name)
	return buildCard(text, cardButton{Label: "Show rules", Action: actionShowRules})
}

func helpCard() string {
	return buildCard(HelpText,
		cardButton{Label: "Show rules", Action: actionShowRules},
		cardButton{Label: "Show stats", Action: actionShowStats},
	)
}

func adminPanelCard(monitoring bool) string {
	status := "off"
	if monitoring {
		status = "on"
	}
	text := fmt.Sprintf("**Admin panel**\n\nMonitoring is currently **%s**.", status)
	return buildCard(text,
		cardButton{Label: "Enable monitoring", Action: actionMonitorOn},
		cardButton{Label: "Disable monitoring", Action: actionMonitorOff},
		cardButton{Label: "Show stats", Action: actionShowStats},
	)
}
