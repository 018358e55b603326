package domain

import "time"

// EntityType identifies a structured span inside a message.
type EntityType string

const (
	EntityURL      EntityType = "url"       // bare URL in the text
	EntityTextLink EntityType = "text_link" // anchor span with a hidden href
)

// Entity represents a structured span attached to a message, such as a
// link anchor extracted from a rich-text (post) message.
type Entity struct {
	Type EntityType
	Href string
}

// Message represents an inbound chat message as seen by the moderation core.
type Message struct {
	ID         string
	ChatID     string
	SenderID   string
	SenderName string
	Text       string // text content or post text, possibly empty
	Entities   []Entity
	ReplyTo    *Message // parent message, set for reply-target admin commands
	CreateTime time.Time
}

// HasLinkEntity checks if the message carries a structured link span.
func (m *Message) HasLinkEntity() bool {
	for _, e := range m.Entities {
		if e.Type == EntityURL || e.Type == EntityTextLink {
			return true
		}
	}
	return false
}

// IsCommand checks if the message text is a slash command.
func (m *Message) IsCommand() bool {
	return len(m.Text) > 0 && m.Text[0] == '/'
}
