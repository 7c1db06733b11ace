package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ihsandara/PemBlle/pkg"
)

// Tell içerik sınırı — sunucu tarafıyla uyumlu.
const MaxTellContentLen = 500

// Tell, bir kullanıcıya gönderilen anonim soruyu temsil eder.
//
// Lifecycle: sunucuda oluşturulur; client tarafında SADECE Answer
// eklenerek mutate edilir, asla silinmez.
//
// SenderID pointer'dır — anonim tell'lerde sunucu bu alanı hiç göndermez
// (nil kalır). IsAnonymous true iken SenderID'ye güvenilmez.
type Tell struct {
	ID          string    `json:"id"`
	SenderID    *string   `json:"sender_id,omitempty"`
	ReceiverID  string    `json:"receiver_id"`
	Receiver    *UserRef  `json:"receiver,omitempty"`
	Content     string    `json:"content"`
	IsAnonymous bool      `json:"is_anonymous"`
	Answer      *Answer   `json:"answer,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	// IsFromFollowing, public feed'de item'ın takip edilen bir
	// kullanıcıdan gelip gelmediğini işaretler.
	IsFromFollowing bool `json:"is_from_following,omitempty"`
}

// ItemID, pager dedupe'u için Tell'in kimliğini döner.
func (t Tell) ItemID() string { return t.ID }

// Answered, tell'in cevaplanıp cevaplanmadığını döner.
func (t *Tell) Answered() bool { return t.Answer != nil }

// Answer, bir Tell'in public cevabıdır (Tell ile bire bir).
// Replies append-only sıralı dizidir — ekleme sırası gösterim sırasıdır.
type Answer struct {
	ID        string    `json:"id"`
	TellID    string    `json:"tell_id"`
	Content   string    `json:"content"`
	Replies   []Reply   `json:"replies,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HasReply, verilen ID'li reply'ın zaten ekli olup olmadığını döner.
// Live event + optimistic echo çakışmasında duplicate eklemeyi önler.
func (a *Answer) HasReply(replyID string) bool {
	for i := range a.Replies {
		if a.Replies[i].ID == replyID {
			return true
		}
	}
	return false
}

// Reply, bir Answer altındaki tek bir yanıttır.
// Answer'a aittir, asla başka Answer'a taşınmaz.
type Reply struct {
	ID        string    `json:"id"`
	AnswerID  string    `json:"answer_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTellRequest, yeni tell gönderirken kullanılan veri.
type CreateTellRequest struct {
	ReceiverID  string `json:"receiver_id"`
	Content     string `json:"content"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// Validate, CreateTellRequest'in geçerli olup olmadığını kontrol eder.
func (r *CreateTellRequest) Validate() error {
	if r.ReceiverID == "" {
		return fmt.Errorf("%w: receiver is required", pkg.ErrValidation)
	}
	r.Content = strings.TrimSpace(r.Content)
	if r.Content == "" {
		return fmt.Errorf("%w: content is required", pkg.ErrValidation)
	}
	if utf8.RuneCountInString(r.Content) > MaxTellContentLen {
		return fmt.Errorf("%w: content must be at most %d characters", pkg.ErrValidation, MaxTellContentLen)
	}
	return nil
}

// AnswerRequest, bir tell'i cevaplarken gönderilen veri.
type AnswerRequest struct {
	Content string `json:"content"`
}

// Validate, AnswerRequest'in geçerli olup olmadığını kontrol eder.
func (r *AnswerRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	if r.Content == "" {
		return fmt.Errorf("%w: content is required", pkg.ErrValidation)
	}
	if utf8.RuneCountInString(r.Content) > MaxTellContentLen {
		return fmt.Errorf("%w: content must be at most %d characters", pkg.ErrValidation, MaxTellContentLen)
	}
	return nil
}

// ReplyRequest, bir answer'a reply gönderirken kullanılan veri.
type ReplyRequest struct {
	Content string `json:"content"`
}

// Validate, ReplyRequest'in geçerli olup olmadığını kontrol eder.
func (r *ReplyRequest) Validate() error {
	r.Content = strings.TrimSpace(r.Content)
	if r.Content == "" {
		return fmt.Errorf("%w: content is required", pkg.ErrValidation)
	}
	if utf8.RuneCountInString(r.Content) > MaxTellContentLen {
		return fmt.Errorf("%w: content must be at most %d characters", pkg.ErrValidation, MaxTellContentLen)
	}
	return nil
}
