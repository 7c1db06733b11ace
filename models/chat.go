package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ihsandara/PemBlle/pkg"
)

// Chat, iki kullanıcı arasındaki sohbeti temsil eder.
//
// UnreadCount türetilmiş bir sayaçtır:
//   - SADECE gelen live event'ler (bu sohbete adreslenmiş new_message) arttırır
//   - SADECE açık "mark read" aksiyonu 0'a sıfırlar
//
// Başka hiçbir yol bu sayacı değiştirmez — invariant ChatService'te korunur.
type Chat struct {
	ID          string    `json:"id"`
	User1ID     string    `json:"user1_id"`
	User2ID     string    `json:"user2_id"`
	User1       *UserRef  `json:"user1,omitempty"`
	User2       *UserRef  `json:"user2,omitempty"`
	LastMessage *Message  `json:"last_message,omitempty"`
	UnreadCount int       `json:"unread_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemID, pager dedupe'u için Chat'in kimliğini döner.
func (c Chat) ItemID() string { return c.ID }

// OtherParticipant, sohbetin karşı tarafını döner.
// currentUserID sohbette değilse nil döner.
func (c *Chat) OtherParticipant(currentUserID string) *UserRef {
	switch currentUserID {
	case c.User1ID:
		return c.User2
	case c.User2ID:
		return c.User1
	default:
		return nil
	}
}

// Message, bir sohbetteki tek mesajdır. Sohbet başına append-only dizidir.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	SenderID  string    `json:"sender_id"`
	Sender    *UserRef  `json:"sender,omitempty"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`

	// Pending: optimistic olarak eklenmiş, sunucu onayı beklenen mesaj.
	// API'ye serialize edilmez — tamamen lokal bir işarettir.
	Pending bool `json:"-"`
}

// MessageLess, mesajların kararlı sıralama kuralıdır:
// created_at artan; eşitlikte sunucu ID'si artan (tie-break).
// Live kanal mesajları sırasız teslim etse bile gösterim sırası
// bu kurala göre deterministiktir.
func MessageLess(a, b *Message) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// SortMessages, mesaj dizisini MessageLess kuralına göre yerinde sıralar.
// sort.SliceStable: eşit elemanların mevcut sırasını korur.
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return MessageLess(&msgs[i], &msgs[j])
	})
}

// SendMessageRequest, sohbete mesaj gönderirken kullanılan veri.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// Validate, SendMessageRequest'in geçerli olup olmadığını kontrol eder.
func (r *SendMessageRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	if r.Content == "" {
		return fmt.Errorf("%w: content is required", pkg.ErrValidation)
	}
	if utf8.RuneCountInString(r.Content) > 2000 {
		return fmt.Errorf("%w: message must be at most 2000 characters", pkg.ErrValidation)
	}
	return nil
}
