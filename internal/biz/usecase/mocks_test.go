package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/anthropics/feishu-guard/internal/biz/domain"
	"github.com/anthropics/feishu-guard/internal/biz/repo"
)

// Hand-rolled mocks implementing the repo interfaces.

type mockPlatform struct {
	mu sync.Mutex

	sent       map[string][]string // chatID -> texts
	directs    map[string][]string // userID -> texts
	cards      map[string][]string // chatID -> card JSON
	updated    map[string]string   // msgID -> latest card JSON
	deleted    []string
	forwarded  []string
	removed    []string
	members    []repo.Member
	membersErr error
	failOps    map[string]error // op name -> forced error
}

func newMockPlatform() *mockPlatform {
	return &mockPlatform{
		sent:    make(map[string][]string),
		directs: make(map[string][]string),
		cards:   make(map[string][]string),
		updated: make(map[string]string),
		failOps: make(map[string]error),
	}
}

func (m *mockPlatform) fail(op string) {
	m.failOps[op] = errors.New(op + " failed")
}

func (m *mockPlatform) SendText(ctx context.Context, chatID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOps["send"]; err != nil {
		return err
	}
	m.sent[chatID] = append(m.sent[chatID], text)
	return nil
}

func (m *mockPlatform) SendDirect(ctx context.Context, userID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOps["direct"]; err != nil {
		return err
	}
	m.directs[userID] = append(m.directs[userID], text)
	return nil
}

func (m *mockPlatform) SendCard(ctx context.Context, chatID, cardJSON string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOps["card"]; err != nil {
		return err
	}
	m.cards[chatID] = append(m.cards[chatID], cardJSON)
	return nil
}

func (m *mockPlatform) UpdateCard(ctx context.Context, msgID, cardJSON string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOps["update"]; err != nil {
		return err
	}
	m.updated[msgID] = cardJSON
	return nil
}

func (m *mockPlatform) DeleteMessage(ctx context.Context, msgID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOps["delete"]; err != nil {
		return err
	}
	m.deleted = append(m.deleted, msgID)
	return nil
}

func (m *mockPlatform) ForwardMessage(ctx context.Context, msgID, toChatID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOps["forward"]; err != nil {
		return "", err
	}
	m.forwarded = append(m.forwarded, msgID)
	return "archived-" + msgID, nil
}

func (m *mockPlatform) RemoveMember(ctx context.Context, chatID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failOps["remove"]; err != nil {
		return err
	}
	m.removed = append(m.removed, userID)
	return nil
}

func (m *mockPlatform) GetMembers(ctx context.Context, chatID string) ([]repo.Member, error) {
	if m.membersErr != nil {
		return nil, m.membersErr
	}
	return m.members, nil
}

func (m *mockPlatform) GetChatInfo(ctx context.Context, chatID string) (*repo.ChatInfo, error) {
	return &repo.ChatInfo{ChatID: chatID, MemberCount: len(m.members)}, nil
}

type mockState struct {
	mu sync.Mutex

	monitoring bool
	total      int
	perUser    map[string]int
	archive    []domain.ArchiveEntry
	muted      map[string]domain.Restriction
	banned     map[string]struct{}
}

func newMockState() *mockState {
	return &mockState{
		monitoring: true,
		perUser:    make(map[string]int),
		muted:      make(map[string]domain.Restriction),
		banned:     make(map[string]struct{}),
	}
}

func (m *mockState) IncrementCounters(senderID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total++
	m.perUser[senderID]++
}

func (m *mockState) SetMonitoring(active bool) { m.monitoring = active }
func (m *mockState) Monitoring() bool          { return m.monitoring }

func (m *mockState) AppendArchive(entry domain.ArchiveEntry) {
	m.archive = append(m.archive, entry)
}

func (m *mockState) RecentArchives(n int) []domain.ArchiveEntry {
	if n > len(m.archive) {
		n = len(m.archive)
	}
	out := make([]domain.ArchiveEntry, 0, n)
	for i := len(m.archive) - 1; i >= len(m.archive)-n; i-- {
		out = append(out, m.archive[i])
	}
	return out
}

func (m *mockState) SnapshotStats() domain.Stats {
	perUser := make(map[string]int, len(m.perUser))
	for k, v := range m.perUser {
		perUser[k] = v
	}
	return domain.Stats{TotalMessages: m.total, UserMessages: perUser}
}

func (m *mockState) Mute(userID string, until int64) {
	m.muted[userID] = domain.Restriction{Until: until}
}
func (m *mockState) Unmute(userID string) { delete(m.muted, userID) }
func (m *mockState) Muted(userID string) (domain.Restriction, bool) {
	r, ok := m.muted[userID]
	return r, ok
}

func (m *mockState) Ban(userID string)   { m.banned[userID] = struct{}{} }
func (m *mockState) Unban(userID string) { delete(m.banned, userID) }
func (m *mockState) Banned(userID string) bool {
	_, ok := m.banned[userID]
	return ok
}

type mockClassifier struct {
	calls  int
	result domain.Classification
	err    error
}

func (m *mockClassifier) Classify(ctx context.Context, text string) (domain.Classification, error) {
	m.calls++
	if m.err != nil {
		return domain.Classification{}, m.err
	}
	return m.result, nil
}
