package usecase

import (
	"regexp"
	"strings"

	"github.com/anthropics/feishu-guard/internal/biz/domain"
)

// urlPattern catches bare links that arrive as plain text without a
// structured anchor span.
var urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+|\b[a-z0-9][a-z0-9-]*\.(?:com|net|org|io|me|co|info|biz|ru|cn)(?:/\S*)?)`)

// RuleEngine runs the deterministic checks. It is pure: no external calls,
// no state, total over its inputs.
type RuleEngine struct {
	forbidden []string
	dangerous []string
}

// NewRuleEngine creates a rule engine over the configured word lists.
// Matching is case-insensitive substring on the raw text; no accent or
// diacritic folding is applied.
func NewRuleEngine(forbidden, dangerous []string) *RuleEngine {
	return &RuleEngine{
		forbidden: lowerAll(forbidden),
		dangerous: lowerAll(dangerous),
	}
}

// Classify applies the ordered checks, first match wins:
// link -> forbidden word -> dangerous word. The dangerous-word verdict is
// non-terminal; the pipeline still runs semantic classification after it.
func (e *RuleEngine) Classify(msg *domain.Message) domain.Decision {
	if msg.HasLinkEntity() || urlPattern.MatchString(msg.Text) {
		return domain.Decision{Verdict: domain.VerdictDeleteLink}
	}

	text := strings.ToLower(msg.Text)
	if word := matchWord(text, e.forbidden); word != "" {
		return domain.Decision{Verdict: domain.VerdictDeleteForbiddenWord, Word: word}
	}
	if word := matchWord(text, e.dangerous); word != "" {
		return domain.Decision{Verdict: domain.VerdictAlertDangerous, Word: word}
	}

	return domain.Decision{Verdict: domain.VerdictAllow}
}

// matchWord returns the first word contained in text, or "".
// An empty text never matches.
func matchWord(text string, words []string) string {
	if text == "" {
		return ""
	}
	for _, w := range words {
		if w != "" && strings.Contains(text, w) {
			return w
		}
	}
	return ""
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(strings.ToLower(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}
