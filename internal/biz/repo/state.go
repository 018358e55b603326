package repo

import (
	"github.com/anthropics/feishu-guard/internal/biz/domain"
)

// StateRepo owns all mutable moderation state. Operations are synchronous
// and atomic with respect to concurrent message handlers; no multi-step
// transaction spans a blocking call.
//
// State is volatile: counters, the archive ledger, and the mute/ban
// registries are all lost on restart.
type StateRepo interface {
	// IncrementCounters bumps the total and per-sender message counters.
	IncrementCounters(senderID string)

	// SetMonitoring toggles automatic filtering. Initial value is true.
	SetMonitoring(active bool)
	Monitoring() bool

	// AppendArchive records a message forwarded to the archive channel.
	AppendArchive(entry domain.ArchiveEntry)

	// RecentArchives returns up to n entries, most recent first.
	RecentArchives(n int) []domain.ArchiveEntry

	// SnapshotStats returns a copy of the activity counters.
	SnapshotStats() domain.Stats

	// Mute registry for bot-enforced restrictions (the platform has no
	// per-user timed restriction API).
	Mute(userID string, until int64)
	Unmute(userID string)
	Muted(userID string) (domain.Restriction, bool)

	// Ban denylist, re-enforced when a banned user rejoins.
	Ban(userID string)
	Unban(userID string)
	Banned(userID string) bool
}
