package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"github.com/larksuite/oapi-sdk-go/v3/event/dispatcher"
	"github.com/larksuite/oapi-sdk-go/v3/event/dispatcher/callback"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	larkws "github.com/larksuite/oapi-sdk-go/v3/ws"
)

// Message represents a received Feishu message
type Message struct {
	ChatID     string
	MsgID      string
	MsgType    string   // text, post
	ChatType   string   // p2p (private), group
	Content    string   // Text content (extracted from all message types)
	Anchors    []string // Link hrefs extracted from rich-text (post) messages
	ParentID   string   // Replied-to message ID, empty when not a reply
	Sender     *Sender
	CreateTime int64 // Message creation time (milliseconds Unix timestamp from Feishu)
}

// Sender represents the message sender
type Sender struct {
	SenderID   string // User ID or bot ID
	SenderType string // user, bot
}

// ChatMember represents a member in a chat
type ChatMember struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
}

// ChatInfo represents information about a chat
type ChatInfo struct {
	ChatID      string `json:"chat_id"`
	Name        string `json:"name"`
	MemberCount int    `json:"user_count"`
}

// CardAction represents a card-button press
type CardAction struct {
	OperatorID string
	ChatID     string
	MessageID  string // the card message, used to patch it in place
	Action     string // the "action" field of the button value
}

// MessageHandler is the callback for received messages
type MessageHandler func(msg *Message)

// MemberJoinedHandler is the callback for members joining a chat
type MemberJoinedHandler func(chatID string, members []ChatMember)

// CardActionHandler is the callback for card-button presses. The returned
// string is shown to the operator as a toast; empty means no toast.
type CardActionHandler func(action *CardAction) string

// Client is the Feishu API client
type Client struct {
	appID          string
	appSecret      string
	larkCli        *lark.Client
	wsCli          *larkws.Client
	onMessage      MessageHandler
	onMemberJoined MemberJoinedHandler
	onCardAction   CardActionHandler
	ctx            context.Context
	cancel         context.CancelFunc
}

// NewClient creates a new Feishu client. The REST client is usable
// immediately; Start connects the WebSocket event stream.
func NewClient(appID, appSecret string) *Client {
	return &Client{
		appID:     appID,
		appSecret: appSecret,
		larkCli:   lark.NewClient(appID, appSecret),
	}
}

// OnMessage sets the message handler
func (c *Client) OnMessage(handler MessageHandler) {
	c.onMessage = handler
}

// OnMemberJoined sets the member-joined handler
func (c *Client) OnMemberJoined(handler MemberJoinedHandler) {
	c.onMemberJoined = handler
}

// OnCardAction sets the card-button handler
func (c *Client) OnCardAction(handler CardActionHandler) {
	c.onCardAction = handler
}

// Start connects to Feishu via WebSocket and starts listening for events
func (c *Client) Start() error {
	c.ctx, c.cancel = context.WithCancel(context.Background())

	// Register event handlers
	// Note: Must return quickly so SDK can send ACK, otherwise Feishu will retry due to timeout
	eventHandler := dispatcher.NewEventDispatcher("", "").
		OnP2MessageReceiveV1(func(ctx context.Context, event *larkim.P2MessageReceiveV1) error {
			// Process message asynchronously, return immediately to let SDK send ACK
			go c.handleMessage(event)
			return nil
		}).
		OnP2ChatMemberUserAddedV1(func(ctx context.Context, event *larkim.P2ChatMemberUserAddedV1) error {
			go c.handleMemberAdded(event)
			return nil
		}).
		OnP2CardActionTrigger(func(ctx context.Context, event *callback.CardActionTriggerEvent) (*callback.CardActionTriggerResponse, error) {
			return c.handleCardAction(event), nil
		})

	// Create WebSocket client
	c.wsCli = larkws.NewClient(c.appID, c.appSecret,
		larkws.WithEventHandler(eventHandler),
		larkws.WithLogLevel(larkcore.LogLevelInfo),
	)

	fmt.Println("[Feishu] Starting WebSocket connection...")

	// Start WebSocket (blocking)
	return c.wsCli.Start(c.ctx)
}

// Stop disconnects from Feishu
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

// handleMessage processes incoming Feishu messages
func (c *Client) handleMessage(event *larkim.P2MessageReceiveV1) {
	rawMsg := event.Event.Message
	if rawMsg == nil {
		return
	}

	// Filter out messages sent by the bot itself to prevent loops
	if event.Event.Sender != nil && event.Event.Sender.SenderType != nil {
		if *event.Event.Sender.SenderType == "app" {
			return
		}
	}

	msg := &Message{
		ChatID:  *rawMsg.ChatId,
		MsgID:   *rawMsg.MessageId,
		MsgType: *rawMsg.MessageType,
	}

	// Parse create time (milliseconds Unix timestamp)
	if rawMsg.CreateTime != nil {
		if ts, err := strconv.ParseInt(*rawMsg.CreateTime, 10, 64); err == nil {
			msg.CreateTime = ts
		}
	}

	if rawMsg.ChatType != nil {
		msg.ChatType = *rawMsg.ChatType
	}
	if rawMsg.ParentId != nil {
		msg.ParentID = *rawMsg.ParentId
	}

	// Parse sender info
	if event.Event.Sender != nil {
		msg.Sender = &Sender{}
		if event.Event.Sender.SenderId != nil && event.Event.Sender.SenderId.OpenId != nil {
			msg.Sender.SenderID = *event.Event.Sender.SenderId.OpenId
		}
		if event.Event.Sender.SenderType != nil {
			msg.Sender.SenderType = *event.Event.Sender.SenderType
		}
	}

	switch msg.MsgType {
	case "text":
		msg.Content = parseTextContent(*rawMsg.Content)
	case "post":
		msg.Content, msg.Anchors = parsePostContent(*rawMsg.Content)
	default:
		// Non-text messages carry no moderatable text; pass them through
		// with a placeholder so counters still see them.
		msg.Content = ""
	}

	fmt.Printf("[Feishu] Received %s from %s chat %s: %s\n", msg.MsgType, msg.ChatType, msg.ChatID, truncate(msg.Content, 50))

	if c.onMessage != nil {
		c.onMessage(msg)
	}
}

// handleMemberAdded processes chat-member-added events
func (c *Client) handleMemberAdded(event *larkim.P2ChatMemberUserAddedV1) {
	if event.Event == nil || event.Event.ChatId == nil {
		return
	}
	chatID := *event.Event.ChatId

	var members []ChatMember
	for _, u := range event.Event.Users {
		m := ChatMember{}
		if u.Name != nil {
			m.Name = *u.Name
		}
		if u.UserId != nil && u.UserId.OpenId != nil {
			m.MemberID = *u.UserId.OpenId
		}
		if m.MemberID != "" {
			members = append(members, m)
		}
	}

	fmt.Printf("[Feishu] %d member(s) joined chat %s\n", len(members), chatID)

	if c.onMemberJoined != nil && len(members) > 0 {
		c.onMemberJoined(chatID, members)
	}
}

// handleCardAction processes a card-button press and answers it
func (c *Client) handleCardAction(event *callback.CardActionTriggerEvent) *callback.CardActionTriggerResponse {
	if event.Event == nil || event.Event.Action == nil {
		return &callback.CardActionTriggerResponse{}
	}

	action := &CardAction{}
	if event.Event.Operator != nil {
		action.OperatorID = event.Event.Operator.OpenID
	}
	if event.Event.Context != nil {
		action.ChatID = event.Event.Context.OpenChatID
		action.MessageID = event.Event.Context.OpenMessageID
	}
	if v, ok := event.Event.Action.Value["action"].(string); ok {
		action.Action = v
	}

	fmt.Printf("[Feishu] Card action %q from %s\n", action.Action, action.OperatorID)

	toast := ""
	if c.onCardAction != nil {
		toast = c.onCardAction(action)
	}
	if toast == "" {
		return &callback.CardActionTriggerResponse{}
	}
	return &callback.CardActionTriggerResponse{
		Toast: &callback.Toast{Type: "warning", Content: toast},
	}
}

// SendText sends a text message to a chat
func (c *Client) SendText(chatID, text string) error {
	return c.send(larkim.ReceiveIdTypeChatId, chatID, larkim.MsgTypeText, textContent(text))
}

// SendDirect sends a private text message to a user by open_id
func (c *Client) SendDirect(openID, text string) error {
	return c.send(larkim.ReceiveIdTypeOpenId, openID, larkim.MsgTypeText, textContent(text))
}

// SendCard sends an interactive card to a chat
func (c *Client) SendCard(chatID, cardJSON string) error {
	return c.send(larkim.ReceiveIdTypeChatId, chatID, larkim.MsgTypeInteractive, cardJSON)
}

func textContent(text string) string {
	content, _ := json.Marshal(map[string]string{"text": text})
	return string(content)
}

func (c *Client) send(idType, receiveID, msgType, content string) error {
	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(idType).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(receiveID).
			MsgType(msgType).
			Content(content).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Create(context.Background(), req)
	if err != nil {
		return fmt.Errorf("send message failed: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("send message error: %s", resp.Msg)
	}
	return nil
}

// UpdateCard patches an interactive card in place, used to re-render the
// admin panel after a state toggle
func (c *Client) UpdateCard(msgID, cardJSON string) error {
	req := larkim.NewPatchMessageReqBuilder().
		MessageId(msgID).
		Body(larkim.NewPatchMessageReqBodyBuilder().
			Content(cardJSON).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Patch(context.Background(), req)
	if err != nil {
		return fmt.Errorf("update card failed: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("update card error: %s", resp.Msg)
	}
	return nil
}

// DeleteMessage removes a message
func (c *Client) DeleteMessage(msgID string) error {
	req := larkim.NewDeleteMessageReqBuilder().
		MessageId(msgID).
		Build()

	resp, err := c.larkCli.Im.Message.Delete(context.Background(), req)
	if err != nil {
		return fmt.Errorf("delete message failed: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("delete message error: %s", resp.Msg)
	}

	fmt.Printf("[Feishu] Deleted message %s\n", msgID)
	return nil
}

// ForwardMessage forwards a message to another chat and returns the new
// message ID assigned by the destination
func (c *Client) ForwardMessage(msgID, toChatID string) (string, error) {
	req := larkim.NewForwardMessageReqBuilder().
		MessageId(msgID).
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewForwardMessageReqBodyBuilder().
			ReceiveId(toChatID).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Forward(context.Background(), req)
	if err != nil {
		return "", fmt.Errorf("forward message failed: %w", err)
	}
	if !resp.Success() {
		return "", fmt.Errorf("forward message error: %s", resp.Msg)
	}

	archivedID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		archivedID = *resp.Data.MessageId
	}
	fmt.Printf("[Feishu] Forwarded message %s to %s as %s\n", msgID, toChatID, archivedID)
	return archivedID, nil
}

// RemoveMember kicks a user out of a chat
func (c *Client) RemoveMember(chatID, openID string) error {
	req := larkim.NewDeleteChatMembersReqBuilder().
		ChatId(chatID).
		MemberIdType("open_id").
		Body(larkim.NewDeleteChatMembersReqBodyBuilder().
			IdList([]string{openID}).
			Build()).
		Build()

	resp, err := c.larkCli.Im.ChatMembers.Delete(context.Background(), req)
	if err != nil {
		return fmt.Errorf("remove member failed: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("remove member error: %s", resp.Msg)
	}

	fmt.Printf("[Feishu] Removed %s from chat %s\n", openID, chatID)
	return nil
}

// GetMessage fetches a single message by ID, used to resolve reply targets
func (c *Client) GetMessage(msgID string) (*Message, error) {
	req := larkim.NewGetMessageReqBuilder().
		MessageId(msgID).
		Build()

	resp, err := c.larkCli.Im.Message.Get(context.Background(), req)
	if err != nil {
		return nil, fmt.Errorf("get message failed: %w", err)
	}
	if !resp.Success() {
		return nil, fmt.Errorf("get message error: %s", resp.Msg)
	}
	if len(resp.Data.Items) == 0 {
		return nil, fmt.Errorf("message %s not found", msgID)
	}

	item := resp.Data.Items[0]
	msg := &Message{MsgID: msgID}
	if item.MsgType != nil {
		msg.MsgType = *item.MsgType
	}
	if item.ChatId != nil {
		msg.ChatID = *item.ChatId
	}
	if item.Sender != nil && item.Sender.Id != nil {
		msg.Sender = &Sender{SenderID: *item.Sender.Id}
		if item.Sender.SenderType != nil {
			msg.Sender.SenderType = *item.Sender.SenderType
		}
	}
	if item.Body != nil && item.Body.Content != nil {
		switch msg.MsgType {
		case "text":
			msg.Content = parseTextContent(*item.Body.Content)
		case "post":
			msg.Content, msg.Anchors = parsePostContent(*item.Body.Content)
		}
	}
	return msg, nil
}

// GetChatMembers retrieves all members of a chat
func (c *Client) GetChatMembers(chatID string) ([]*ChatMember, error) {
	var members []*ChatMember
	var pageToken string

	for {
		reqBuilder := larkim.NewGetChatMembersReqBuilder().
			MemberIdType("open_id"). // Request open_id format for user IDs
			ChatId(chatID).
			PageSize(100) // Max page size

		if pageToken != "" {
			reqBuilder = reqBuilder.PageToken(pageToken)
		}

		req := reqBuilder.Build()
		resp, err := c.larkCli.Im.ChatMembers.Get(context.Background(), req)
		if err != nil {
			return nil, fmt.Errorf("get chat members failed: %w", err)
		}
		if !resp.Success() {
			return nil, fmt.Errorf("get chat members error: %s", resp.Msg)
		}

		for _, item := range resp.Data.Items {
			member := &ChatMember{}
			if item.MemberId != nil {
				member.MemberID = *item.MemberId
			}
			if item.Name != nil {
				member.Name = *item.Name
			}
			members = append(members, member)
		}

		// Check if there are more pages
		if resp.Data.PageToken == nil || *resp.Data.PageToken == "" {
			break
		}
		pageToken = *resp.Data.PageToken
	}

	return members, nil
}

// GetChatInfo retrieves information about a chat
func (c *Client) GetChatInfo(chatID string) (*ChatInfo, error) {
	req := larkim.NewGetChatReqBuilder().
		ChatId(chatID).
		Build()

	resp, err := c.larkCli.Im.Chat.Get(context.Background(), req)
	if err != nil {
		return nil, fmt.Errorf("get chat info failed: %w", err)
	}
	if !resp.Success() {
		return nil, fmt.Errorf("get chat info error: %s", resp.Msg)
	}

	info := &ChatInfo{ChatID: chatID}
	if resp.Data.Name != nil {
		info.Name = *resp.Data.Name
	}
	if resp.Data.UserCount != nil {
		var count int
		fmt.Sscanf(*resp.Data.UserCount, "%d", &count)
		info.MemberCount = count
	}
	return info, nil
}

// parseTextContent extracts text from a text message body
func parseTextContent(content string) string {
	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return content
	}
	return parsed.Text
}

// parsePostContent extracts the plain text and link hrefs from a rich-text
// (post) message body. Anchor spans (tag "a") are the structured link
// entities the rule engine checks.
func parsePostContent(content string) (string, []string) {
	var parsed struct {
		Title   string `json:"title"`
		Content [][]struct {
			Tag  string `json:"tag"`
			Text string `json:"text,omitempty"`
			Href string `json:"href,omitempty"`
		} `json:"content"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return content, nil
	}

	var parts []string
	var anchors []string
	if parsed.Title != "" {
		parts = append(parts, parsed.Title)
	}
	for _, line := range parsed.Content {
		var lineParts []string
		for _, elem := range line {
			switch elem.Tag {
			case "text":
				if elem.Text != "" {
					lineParts = append(lineParts, elem.Text)
				}
			case "a":
				if elem.Text != "" {
					lineParts = append(lineParts, elem.Text)
				}
				if elem.Href != "" {
					anchors = append(anchors, elem.Href)
				}
			}
		}
		if len(lineParts) > 0 {
			parts = append(parts, joinStrings(lineParts, ""))
		}
	}
	return joinStrings(parts, "\n"), anchors
}

func joinStrings(parts []string, sep string) string {
	if len(parts) == 0 {
		return ""
	}
	result := parts[0]
	for i := 1; i < len(parts); i++ {
		result += sep + parts[i]
	}
	return result
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
