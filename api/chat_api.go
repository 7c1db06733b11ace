package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/ihsandara/PemBlle/models"
	"github.com/ihsandara/PemBlle/pkg"
)

// ChatAPI, birebir mesajlaşma endpoint'lerinin typed interface'i.
//
//   - ListChats: Kullanıcının tüm sohbetleri (last_message + unread_count dahil)
//   - GetOrCreateChat: İki kullanıcı arasındaki sohbeti bul veya oluştur
//   - GetMessages: Sohbetin mesajları (created_at asc) — sunucu tarafında
//     karşı tarafın mesajlarını otomatik okundu işaretler
//   - SendMessage: Yeni mesaj gönder
//   - MarkAsRead: Sohbetteki tüm gelen mesajları okundu işaretle
//   - GetUnreadCount: Tüm sohbetlerdeki toplam okunmamış mesaj sayısı
type ChatAPI interface {
	ListChats(ctx context.Context) ([]models.Chat, error)
	GetOrCreateChat(ctx context.Context, otherUserID string) (*models.Chat, error)
	GetMessages(ctx context.Context, chatID string) ([]models.Message, error)
	SendMessage(ctx context.Context, chatID string, req *models.SendMessageRequest) (*models.Message, error)
	MarkAsRead(ctx context.Context, chatID string) error
	GetUnreadCount(ctx context.Context) (int64, error)
}

type chatAPI struct {
	client *Client
}

// NewChatAPI, constructor.
func NewChatAPI(client *Client) ChatAPI {
	return &chatAPI{client: client}
}

func (c *chatAPI) ListChats(ctx context.Context) ([]models.Chat, error) {
	var chats []models.Chat
	if err := c.client.get(ctx, "/api/chats/", nil, &chats); err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

func (c *chatAPI) GetOrCreateChat(ctx context.Context, otherUserID string) (*models.Chat, error) {
	if otherUserID == "" {
		return nil, fmt.Errorf("%w: user id is required", pkg.ErrValidation)
	}
	body := map[string]string{"user_id": otherUserID}
	var chat models.Chat
	if err := c.client.post(ctx, "/api/chats/", body, &chat); err != nil {
		return nil, fmt.Errorf("failed to get or create chat: %w", err)
	}
	return &chat, nil
}

func (c *chatAPI) GetMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	if chatID == "" {
		return nil, fmt.Errorf("%w: chat id is required", pkg.ErrValidation)
	}
	var messages []models.Message
	if err := c.client.get(ctx, "/api/chats/"+url.PathEscape(chatID)+"/messages", nil, &messages); err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return messages, nil
}

func (c *chatAPI) SendMessage(ctx context.Context, chatID string, req *models.SendMessageRequest) (*models.Message, error) {
	if chatID == "" {
		return nil, fmt.Errorf("%w: chat id is required", pkg.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var msg models.Message
	if err := c.client.post(ctx, "/api/chats/"+url.PathEscape(chatID)+"/messages", req, &msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return &msg, nil
}

func (c *chatAPI) MarkAsRead(ctx context.Context, chatID string) error {
	if chatID == "" {
		return fmt.Errorf("%w: chat id is required", pkg.ErrValidation)
	}
	if err := c.client.put(ctx, "/api/chats/"+url.PathEscape(chatID)+"/read", nil, nil); err != nil {
		return fmt.Errorf("failed to mark chat as read: %w", err)
	}
	return nil
}

func (c *chatAPI) GetUnreadCount(ctx context.Context) (int64, error) {
	var resp struct {
		Count int64 `json:"count"`
	}
	if err := c.client.get(ctx, "/api/chats/unread-count", nil, &resp); err != nil {
		return 0, fmt.Errorf("failed to get unread count: %w", err)
	}
	return resp.Count, nil
}
