package data

import (
	"sync"

	"github.com/anthropics/feishu-guard/internal/biz/domain"
	"github.com/anthropics/feishu-guard/internal/biz/repo"
)

// stateRepo is the in-memory moderation state store. All state is volatile:
// it lives for the process lifetime only. A single mutex guards every
// operation so concurrent message handlers never observe a torn update.
type stateRepo struct {
	mu sync.Mutex

	monitoring    bool
	totalMessages int
	userMessages  map[string]int
	archive       []domain.ArchiveEntry
	muted         map[string]domain.Restriction
	banned        map[string]struct{}
}

// NewStateRepo creates the state store. Monitoring starts enabled.
func NewStateRepo() repo.StateRepo {
	return &stateRepo{
		monitoring:   true,
		userMessages: make(map[string]int),
		muted:        make(map[string]domain.Restriction),
		banned:       make(map[string]struct{}),
	}
}

func (s *stateRepo) IncrementCounters(senderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalMessages++
	s.userMessages[senderID]++
}

func (s *stateRepo) SetMonitoring(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monitoring = active
}

func (s *stateRepo) Monitoring() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.monitoring
}

func (s *stateRepo) AppendArchive(entry domain.ArchiveEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archive = append(s.archive, entry)
}

// RecentArchives returns up to n entries, most recent first.
func (s *stateRepo) RecentArchives(n int) []domain.ArchiveEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > len(s.archive) {
		n = len(s.archive)
	}
	out := make([]domain.ArchiveEntry, 0, n)
	for i := len(s.archive) - 1; i >= len(s.archive)-n; i-- {
		out = append(out, s.archive[i])
	}
	return out
}

func (s *stateRepo) SnapshotStats() domain.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	perUser := make(map[string]int, len(s.userMessages))
	for id, count := range s.userMessages {
		perUser[id] = count
	}
	return domain.Stats{TotalMessages: s.totalMessages, UserMessages: perUser}
}

func (s *stateRepo) Mute(userID string, until int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted[userID] = domain.Restriction{Until: until}
}

func (s *stateRepo) Unmute(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.muted, userID)
}

func (s *stateRepo) Muted(userID string) (domain.Restriction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.muted[userID]
	return r, ok
}

func (s *stateRepo) Ban(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banned[userID] = struct{}{}
}

func (s *stateRepo) Unban(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.banned, userID)
}

func (s *stateRepo) Banned(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.banned[userID]
	return ok
}
