package data

import (
	"context"

	"github.com/anthropics/feishu-guard/feishu"
	"github.com/anthropics/feishu-guard/internal/biz/repo"
)

// feishuRepo implements the platform repository on the Feishu client
type feishuRepo struct {
	client *feishu.Client
}

// NewFeishuRepo creates a new Feishu platform repository
func NewFeishuRepo(client *feishu.Client) repo.PlatformRepo {
	return &feishuRepo{client: client}
}

func (r *feishuRepo) SendText(ctx context.Context, chatID, text string) error {
	return r.client.SendText(chatID, text)
}

func (r *feishuRepo) SendDirect(ctx context.Context, userID, text string) error {
	return r.client.SendDirect(userID, text)
}

func (r *feishuRepo) SendCard(ctx context.Context, chatID, cardJSON string) error {
	return r.client.SendCard(chatID, cardJSON)
}

func (r *feishuRepo) UpdateCard(ctx context.Context, msgID, cardJSON string) error {
	return r.client.UpdateCard(msgID, cardJSON)
}

func (r *feishuRepo) DeleteMessage(ctx context.Context, msgID string) error {
	return r.client.DeleteMessage(msgID)
}

func (r *feishuRepo) ForwardMessage(ctx context.Context, msgID, toChatID string) (string, error) {
	return r.client.ForwardMessage(msgID, toChatID)
}

func (r *feishuRepo) RemoveMember(ctx context.Context, chatID, userID string) error {
	return r.client.RemoveMember(chatID, userID)
}

func (r *feishuRepo) GetMembers(ctx context.Context, chatID string) ([]repo.Member, error) {
	members, err := r.client.GetChatMembers(chatID)
	if err != nil {
		return nil, err
	}

	var result []repo.Member
	for _, m := range members {
		result = append(result, repo.Member{
			UserID: m.MemberID,
			Name:   m.Name,
		})
	}
	return result, nil
}

func (r *feishuRepo) GetChatInfo(ctx context.Context, chatID string) (*repo.ChatInfo, error) {
	info, err := r.client.GetChatInfo(chatID)
	if err != nil {
		return nil, err
	}
	return &repo.ChatInfo{
		ChatID:      info.ChatID,
		Name:        info.Name,
		MemberCount: info.MemberCount,
	}, nil
}
