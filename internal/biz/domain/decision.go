package domain

// Verdict is the outcome of classifying one message.
type Verdict int

const (
	// VerdictAllow lets the message stand.
	VerdictAllow Verdict = iota
	// VerdictDeleteLink deletes a message carrying a link.
	VerdictDeleteLink
	// VerdictDeleteForbiddenWord deletes a message containing a forbidden word.
	VerdictDeleteForbiddenWord
	// VerdictAlertDangerous alerts the admins but keeps the message visible
	// so they can review it and act manually.
	VerdictAlertDangerous
	// VerdictDeleteAIViolation deletes a message the semantic classifier flagged.
	VerdictDeleteAIViolation
)

func (v Verdict) String() string {
	switch v {
	case VerdictAllow:
		return "allow"
	case VerdictDeleteLink:
		return "delete_link"
	case VerdictDeleteForbiddenWord:
		return "delete_forbidden_word"
	case VerdictAlertDangerous:
		return "alert_dangerous"
	case VerdictDeleteAIViolation:
		return "delete_ai_violation"
	}
	return "unknown"
}

// Terminal reports whether the verdict deletes the message and stops
// further checks. The dangerous-word alert is non-terminal: the message
// stays visible for admin review.
func (v Verdict) Terminal() bool {
	switch v {
	case VerdictDeleteLink, VerdictDeleteForbiddenWord, VerdictDeleteAIViolation:
		return true
	}
	return false
}

// Decision carries a verdict plus the evidence that triggered it, used when
// composing the deletion notice or admin alert.
type Decision struct {
	Verdict Verdict
	Word    string // matched forbidden/dangerous word, if any
	Reason  string // classifier-provided reason, if any
}

// Classification is the parsed result of one semantic classifier call.
// It is transient and never persisted.
type Classification struct {
	Violation bool   `json:"is_violation"`
	Reason    string `json:"reason"`
}

// ReasonUnavailable marks a classification produced by the fail-open path
// when the external classifier could not be reached or parsed.
const ReasonUnavailable = "classification unavailable"

// ClassificationUnavailable is the fail-open result: an unreachable or
// malformed classifier response is treated as a non-violation so an outage
// never blocks the chat.
func ClassificationUnavailable() Classification {
	return Classification{Violation: false, Reason: ReasonUnavailable}
}
