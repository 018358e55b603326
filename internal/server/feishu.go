package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/anthropics/feishu-guard/feishu"
	"github.com/anthropics/feishu-guard/internal/biz/domain"
	"github.com/anthropics/feishu-guard/internal/biz/usecase"
)

// GuardServer binds the Feishu event stream to the moderation usecases.
type GuardServer struct {
	feishuClient *feishu.Client
	moderation   *usecase.ModerationUsecase
	commands     *usecase.CommandUsecase

	// Message deduplication cache: Feishu redelivers events when an ACK
	// is slow, and a redelivered message must not be counted or moderated
	// twice.
	seenMsgsMu sync.RWMutex
	seenMsgs   map[string]time.Time // msgID -> timestamp
}

// NewGuardServer creates the server.
func NewGuardServer(feishuClient *feishu.Client, moderation *usecase.ModerationUsecase, commands *usecase.CommandUsecase) *GuardServer {
	return &GuardServer{
		feishuClient: feishuClient,
		moderation:   moderation,
		commands:     commands,
		seenMsgs:     make(map[string]time.Time),
	}
}

// Start registers the event handlers and connects (blocking).
func (s *GuardServer) Start() error {
	s.feishuClient.OnMessage(s.handleMessage)
	s.feishuClient.OnMemberJoined(s.handleMemberJoined)
	s.feishuClient.OnCardAction(s.handleCardAction)
	return s.feishuClient.Start()
}

// Stop disconnects from Feishu.
func (s *GuardServer) Stop() {
	s.feishuClient.Stop()
}

// handleMessage converts a platform message into a domain message and runs
// it through the pipeline, then through the command dispatcher.
func (s *GuardServer) handleMessage(msg *feishu.Message) {
	if s.isMessageSeen(msg.MsgID) {
		fmt.Printf("[Server] Duplicate message ignored: %s\n", msg.MsgID)
		return
	}
	s.markMessageSeen(msg.MsgID)

	ctx := context.Background()
	dm := s.toDomain(msg)
	s.resolveSenderName(ctx, dm)

	// Reply-target commands need the parent message resolved before
	// dispatch; skip the lookup for everything else.
	if dm.IsCommand() && msg.ParentID != "" {
		parent, err := s.feishuClient.GetMessage(msg.ParentID)
		if err != nil {
			fmt.Printf("[Server] Reply target lookup failed for %s: %v\n", msg.ParentID, err)
		} else {
			dm.ReplyTo = s.toDomain(parent)
			s.resolveSenderName(ctx, dm.ReplyTo)
		}
	}

	// The pipeline counts and filters every group message, commands
	// included; the dispatcher then handles commands on top.
	s.moderation.Handle(ctx, dm)
	if dm.IsCommand() {
		s.commands.Dispatch(ctx, dm)
	}
}

func (s *GuardServer) handleMemberJoined(chatID string, members []feishu.ChatMember) {
	ctx := context.Background()
	for _, m := range members {
		s.moderation.HandleMemberJoined(ctx, chatID, m.MemberID, m.Name)
	}
}

func (s *GuardServer) handleCardAction(action *feishu.CardAction) string {
	return s.commands.HandleCardAction(context.Background(), action.OperatorID, action.ChatID, action.MessageID, action.Action)
}

// toDomain maps a platform message onto the moderation core's message shape.
func (s *GuardServer) toDomain(msg *feishu.Message) *domain.Message {
	dm := &domain.Message{
		ID:     msg.MsgID,
		ChatID: msg.ChatID,
		Text:   msg.Content,
	}
	if msg.Sender != nil {
		dm.SenderID = msg.Sender.SenderID
	}
	if msg.CreateTime > 0 {
		dm.CreateTime = time.UnixMilli(msg.CreateTime)
	}
	for _, href := range msg.Anchors {
		dm.Entities = append(dm.Entities, domain.Entity{Type: domain.EntityTextLink, Href: href})
	}
	return dm
}

// resolveSenderName fills the display name from the member list, best-effort.
func (s *GuardServer) resolveSenderName(ctx context.Context, dm *domain.Message) {
	if dm.SenderID == "" {
		return
	}
	members, err := s.feishuClient.GetChatMembers(dm.ChatID)
	if err != nil {
		fmt.Printf("[Server] Member lookup failed: %v\n", err)
		dm.SenderName = dm.SenderID
		return
	}
	dm.SenderName = dm.SenderID
	for _, m := range members {
		if m.MemberID == dm.SenderID {
			dm.SenderName = m.Name
			break
		}
	}
}

// isMessageSeen checks if a message has been processed
func (s *GuardServer) isMessageSeen(msgID string) bool {
	s.seenMsgsMu.RLock()
	defer s.seenMsgsMu.RUnlock()
	_, exists := s.seenMsgs[msgID]
	return exists
}

// markMessageSeen marks a message as processed
func (s *GuardServer) markMessageSeen(msgID string) {
	s.seenMsgsMu.Lock()
	defer s.seenMsgsMu.Unlock()
	s.seenMsgs[msgID] = time.Now()

	// Clean up expired records (older than 5 minutes) while holding the
	// lock to prevent unbounded growth.
	cutoff := time.Now().Add(-5 * time.Minute)
	for id, ts := range s.seenMsgs {
		if ts.Before(cutoff) {
			delete(s.seenMsgs, id)
		}
	}
}
