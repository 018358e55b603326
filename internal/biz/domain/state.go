package domain

import "time"

// ArchiveEntry records one message forwarded to the archive channel by the
// /archive command. Entries are append-only and live for the process lifetime.
type ArchiveEntry struct {
	OriginalMsgID string
	ArchivedMsgID string // ID assigned by the archive destination
	Text          string // "[no text]" placeholder when the original was empty
	AuthorName    string
	ArchivedAt    time.Time
}

// Stats is a point-in-time snapshot of the activity counters.
type Stats struct {
	TotalMessages int
	UserMessages  map[string]int // senderID -> message count
}

// TopUser returns the sender with the most messages, or ("", 0) when no
// messages have been counted yet.
func (s Stats) TopUser() (string, int) {
	topID := ""
	topCount := 0
	for id, count := range s.UserMessages {
		if count > topCount {
			topID = id
			topCount = count
		}
	}
	return topID, topCount
}

// Restriction represents a bot-enforced mute. Until is a unix timestamp in
// seconds; zero means the restriction has no expiry.
type Restriction struct {
	Until int64
}

// Active reports whether the restriction still applies at time now.
func (r Restriction) Active(now time.Time) bool {
	return r.Until == 0 || now.Unix() < r.Until
}
