package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ihsandara/PemBlle/api"
	"github.com/ihsandara/PemBlle/models"
	"github.com/ihsandara/PemBlle/pkg"
	"github.com/ihsandara/PemBlle/pkg/ratelimit"
	"github.com/ihsandara/PemBlle/session"
	"github.com/ihsandara/PemBlle/ws"
)

// ChatService, birebir mesajlaşmanın iş mantığı interface'i.
//
// Sohbet listesi:
//   - RefreshChats / Chats: Sohbetler (last_message + unread_count ile)
//   - StartChatWith: Kullanıcıyla sohbeti bul/oluştur
//   - UnreadTotal: Tüm sohbetlerin toplam okunmamış sayısı (lokal)
//   - RefreshUnreadTotal: Toplamı sunucudan tazele
//
// Açık sohbet:
//   - OpenThread: Sohbeti aç — mesajları çek, okundu işaretle, aktif yap
//   - CloseThread: Aktif sohbeti kapat
//   - Messages: Aktif sohbetin mesajları (her zaman kararlı sırayla)
//   - SendMessage: Optimistic gönderim — mesaj anında listede görünür
//
// Unread sözleşmesi:
//   - unread_count'u SADECE gelen live mesaj arttırır (aktif sohbet hariç)
//   - SADECE okundu işaretleme 0'a çeker
//   - Aktif sohbete gelen mesaj sayacı HİÇ arttırmaz — anında okundu sayılır
//
// Live:
//   - BindLive: new_message event'ini aktif sohbete/sayaçlara bağlar
type ChatService interface {
	RefreshChats(ctx context.Context) ([]models.Chat, error)
	Chats() []models.Chat
	StartChatWith(ctx context.Context, otherUserID string) (*models.Chat, error)
	UnreadTotal() int64
	RefreshUnreadTotal(ctx context.Context) (int64, error)

	OpenThread(ctx context.Context, chatID string) ([]models.Message, error)
	CloseThread()
	ActiveThread() string
	Messages() []models.Message
	SendMessage(ctx context.Context, chatID, content string) error

	BindLive(d *ws.Dispatcher)
}

type chatService struct {
	chats     api.ChatAPI
	sessions  session.Store
	mutations MutationService
	limiter   *ratelimit.SubmitLimiter

	mu          sync.RWMutex
	chatList    []models.Chat
	active      string           // aktif sohbet ID'si; boş string = hiçbiri açık değil
	messages    []models.Message // aktif sohbetin mesajları
	unreadTotal int64
}

// NewChatService, constructor.
func NewChatService(
	chats api.ChatAPI,
	sessions session.Store,
	mutations MutationService,
	limiter *ratelimit.SubmitLimiter,
) ChatService {
	return &chatService{
		chats:     chats,
		sessions:  sessions,
		mutations: mutations,
		limiter:   limiter,
	}
}

func (s *chatService) RefreshChats(ctx context.Context) ([]models.Chat, error) {
	chats, err := s.chats.ListChats(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.chatList = chats
	s.mu.Unlock()
	return s.Chats(), nil
}

func (s *chatService) Chats() []models.Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Chat, len(s.chatList))
	copy(out, s.chatList)
	return out
}

func (s *chatService) StartChatWith(ctx context.Context, otherUserID string) (*models.Chat, error) {
	chat, err := s.chats.GetOrCreateChat(ctx, otherUserID)
	if err != nil {
		return nil, err
	}
	// Yeni sohbeti lokal listeye de al
	s.mu.Lock()
	found := false
	for i := range s.chatList {
		if s.chatList[i].ID == chat.ID {
			found = true
			break
		}
	}
	if !found {
		s.chatList = append([]models.Chat{*chat}, s.chatList...)
	}
	s.mu.Unlock()
	return chat, nil
}

func (s *chatService) UnreadTotal() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unreadTotal
}

func (s *chatService) RefreshUnreadTotal(ctx context.Context) (int64, error) {
	count, err := s.chats.GetUnreadCount(ctx)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.unreadTotal = count
	s.mu.Unlock()
	return count, nil
}

// OpenThread, sohbeti aktif yapar ve mesajlarını yükler.
//
// Sunucu GET messages sırasında karşı tarafın mesajlarını zaten okundu
// işaretler; lokal unread_count da burada sıfırlanır — unread sözleşmesinin
// "sadece okundu işaretleme sıfırlar" kuralı bu iki adımın ikisini de kapsar.
func (s *chatService) OpenThread(ctx context.Context, chatID string) ([]models.Message, error) {
	msgs, err := s.chats.GetMessages(ctx, chatID)
	if err != nil {
		return nil, err
	}
	models.SortMessages(msgs)

	s.mu.Lock()
	s.active = chatID
	s.messages = msgs
	for i := range s.chatList {
		if s.chatList[i].ID == chatID {
			s.unreadTotal -= int64(s.chatList[i].UnreadCount)
			if s.unreadTotal < 0 {
				s.unreadTotal = 0
			}
			s.chatList[i].UnreadCount = 0
			break
		}
	}
	s.mu.Unlock()

	return s.Messages(), nil
}

// CloseThread, aktif sohbeti kapatır. Mesaj kopyası bırakılır —
// tekrar açılışta OpenThread zaten tazeler.
func (s *chatService) CloseThread() {
	s.mu.Lock()
	s.active = ""
	s.messages = nil
	s.mu.Unlock()
}

func (s *chatService) ActiveThread() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Messages, aktif sohbetin mesajlarının kopyasını döner (kararlı sırayla).
func (s *chatService) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// SendMessage, aktif sohbete optimistic mesaj gönderir.
//
// Apply: uuid'li Pending mesaj listeye eklenir, sohbetin last_message'ı
// echo'yu gösterir — kullanıcı anında görür.
// Commit: sunucu mesajı dönünce echo sunucununki ile değiştirilir.
// Rollback: echo listeden çıkar, sohbetin last_message/updated_at'i Apply
// öncesi değerine döner (kullanıcıya gönderim hatası gösterilir).
// Aynı sohbete ikinci gönderim, ilki sunucuda beklerken ErrMutationInFlight alır.
func (s *chatService) SendMessage(ctx context.Context, chatID, content string) error {
	req := &models.SendMessageRequest{Content: content}
	if err := req.Validate(); err != nil {
		return err
	}

	cur := s.sessions.Current()
	if cur == nil {
		return pkg.ErrNoSession
	}

	if !s.limiter.Allow("message:" + chatID) {
		return fmt.Errorf("%w: sending too fast, slow down", pkg.ErrValidation)
	}

	echoID := uuid.NewString()
	echo := models.Message{
		ID:        echoID,
		ChatID:    chatID,
		SenderID:  cur.UserID,
		Content:   req.Content,
		CreatedAt: time.Now(),
		Pending:   true,
	}

	// Rollback için sohbetin Apply öncesi last_message/updated_at'i saklanır —
	// Rollback, Apply'ın dokunduğu her alanı geri almak zorundadır.
	var prevLast *models.Message
	var prevUpdated time.Time

	return s.mutations.Run(ctx, "message:"+chatID, Mutation{
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.active == chatID {
				s.messages = append(s.messages, echo)
			}
			for i := range s.chatList {
				if s.chatList[i].ID == chatID {
					prevLast = s.chatList[i].LastMessage
					prevUpdated = s.chatList[i].UpdatedAt
					break
				}
			}
			s.touchChat(chatID, &echo)
		},
		Rollback: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.removeMessage(echoID)
			for i := range s.chatList {
				if s.chatList[i].ID == chatID {
					// Sohbet hâlâ echo'yu gösteriyorsa eski değerlere dön;
					// arada canlı bir mesaj geldiyse ona dokunma.
					if s.chatList[i].LastMessage != nil && s.chatList[i].LastMessage.ID == echoID {
						s.chatList[i].LastMessage = prevLast
						s.chatList[i].UpdatedAt = prevUpdated
					}
					break
				}
			}
		},
		Commit: func(ctx context.Context) error {
			msg, err := s.chats.SendMessage(ctx, chatID, req)
			if err != nil {
				return err
			}
			s.mu.Lock()
			defer s.mu.Unlock()
			s.removeMessage(echoID)
			if s.active == chatID && !s.hasMessage(msg.ID) {
				s.messages = append(s.messages, *msg)
				models.SortMessages(s.messages)
			}
			s.touchChat(chatID, msg)
			return nil
		},
	})
}

// BindLive, new_message event'ini unread sözleşmesine göre işler.
//
// Aktif sohbete gelen mesaj: listeye sıralı eklenir, sayaç ARTMAZ,
// sunucuya async okundu işaretleme gönderilir.
// Başka sohbete gelen mesaj: o sohbetin unread_count'u ve toplam +1,
// last_message güncellenir.
// Kendi gönderdiğimiz mesajın yankısı (optimistic commit zaten ekledi)
// duplicate kontrolüyle düşürülür.
func (s *chatService) BindLive(d *ws.Dispatcher) {
	d.Subscribe(ws.EventNewMessage, func(ev ws.Event) {
		p, err := ev.DecodeNewMessage()
		if err != nil {
			log.Printf("[chat] %v", err)
			return
		}

		var ownUserID string
		if cur := s.sessions.Current(); cur != nil {
			ownUserID = cur.UserID
		}

		s.mu.Lock()
		if p.Message.SenderID == ownUserID {
			// Kendi mesajımız — optimistic akış zaten işledi
			s.mu.Unlock()
			return
		}

		active := s.active == p.ChatID
		if active && !s.hasMessage(p.Message.ID) {
			s.messages = append(s.messages, p.Message)
			models.SortMessages(s.messages)
		}
		s.touchChat(p.ChatID, &p.Message)
		if !active {
			for i := range s.chatList {
				if s.chatList[i].ID == p.ChatID {
					s.chatList[i].UnreadCount++
					break
				}
			}
			s.unreadTotal++
		}
		s.mu.Unlock()

		if active {
			// Açık sohbette mesaj anında okundu — sunucuya da bildir.
			// Hata kritik değildir: bir sonraki OpenThread zaten işaretler.
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := s.chats.MarkAsRead(ctx, p.ChatID); err != nil {
					log.Printf("[chat] failed to mark %s as read: %v", p.ChatID, err)
				}
			}()
		}
	})
}

// touchChat, sohbetin last_message'ını günceller. Lock çağıranda.
func (s *chatService) touchChat(chatID string, msg *models.Message) {
	for i := range s.chatList {
		if s.chatList[i].ID == chatID {
			m := *msg
			s.chatList[i].LastMessage = &m
			s.chatList[i].UpdatedAt = msg.CreatedAt
			return
		}
	}
}

// hasMessage, aktif mesaj listesinde ID kontrolü. Lock çağıranda.
func (s *chatService) hasMessage(id string) bool {
	for i := range s.messages {
		if s.messages[i].ID == id {
			return true
		}
	}
	return false
}

// removeMessage, aktif listeden ID'li mesajı çıkarır. Lock çağıranda.
func (s *chatService) removeMessage(id string) {
	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return
		}
	}
}
