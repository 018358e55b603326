package repo

import "context"

// ChatInfo holds basic information about a chat.
type ChatInfo struct {
	ChatID      string
	Name        string
	MemberCount int
}

// Member represents a chat member.
type Member struct {
	UserID string
	Name   string
}

// PlatformRepo is the chat platform interface consumed by the moderation
// core. Implementations wrap the Feishu client; tests use mocks.
type PlatformRepo interface {
	// SendText sends a text message to a chat.
	SendText(ctx context.Context, chatID, text string) error

	// SendDirect sends a private text message to a user.
	SendDirect(ctx context.Context, userID, text string) error

	// SendCard sends an interactive card to a chat.
	SendCard(ctx context.Context, chatID, cardJSON string) error

	// UpdateCard replaces the content of a previously sent card.
	UpdateCard(ctx context.Context, msgID, cardJSON string) error

	// DeleteMessage removes a message from the chat.
	DeleteMessage(ctx context.Context, msgID string) error

	// ForwardMessage forwards a message to another chat and returns the ID
	// the destination assigned to the copy.
	ForwardMessage(ctx context.Context, msgID, toChatID string) (string, error)

	// RemoveMember kicks a user out of the chat.
	RemoveMember(ctx context.Context, chatID, userID string) error

	// GetMembers lists the chat members.
	GetMembers(ctx context.Context, chatID string) ([]Member, error)

	// GetChatInfo fetches chat metadata (name, member count).
	GetChatInfo(ctx context.Context, chatID string) (*ChatInfo, error)
}
