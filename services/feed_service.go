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
	"github.com/ihsandara/PemBlle/pkg/pager"
	"github.com/ihsandara/PemBlle/pkg/ratelimit"
	"github.com/ihsandara/PemBlle/session"
	"github.com/ihsandara/PemBlle/ws"
)

// FeedService, tell akışlarının iş mantığı interface'i.
//
// Listeleme:
//   - Feed: Offset pagination'lı public feed (pager — LoadFirstPage/LoadNextPage)
//   - UserTells: Bir profildeki cevaplanmış tell'ler
//   - RefreshInbox / Inbox: Kullanıcıya gelen tell'ler (lokal kopya tutulur)
//   - Sent: Gönderilen tell'ler
//
// Yazma:
//   - SendTell: Tell gönder — oturum varsa auth'lu, yoksa public endpoint
//   - AnswerTell: Optimistic cevap — lokal liste hemen güncellenir, hata olursa geri alınır
//   - ReplyToAnswer: Optimistic reply — aynı şekilde
//
// Badge:
//   - RefreshBadge / Badge: Cevaplanmamış gelen tell sayısı
//
// Live:
//   - BindLive: new_tell / tell_answered / new_reply event'lerini lokal
//     listelere bağlar — açık ekran yeniden fetch etmeden güncellenir
type FeedService interface {
	Feed() *pager.Pager[models.Tell]
	UserTells(ctx context.Context, username string) ([]models.Tell, error)
	RefreshInbox(ctx context.Context) ([]models.Tell, error)
	Inbox() []models.Tell
	Sent(ctx context.Context) ([]models.Tell, error)

	SendTell(ctx context.Context, receiverID, content string, anonymous bool) (*models.Tell, error)
	AnswerTell(ctx context.Context, tellID, content string) error
	ReplyToAnswer(ctx context.Context, tellID, answerID, content string) error

	RefreshBadge(ctx context.Context) (int64, error)
	Badge() int64

	BindLive(d *ws.Dispatcher)
}

type feedService struct {
	tells     api.TellAPI
	sessions  session.Store
	mutations MutationService
	limiter   *ratelimit.SubmitLimiter
	feed      *pager.Pager[models.Tell]

	mu    sync.RWMutex
	inbox []models.Tell
	badge int64
}

// NewFeedService, constructor.
// pageSize public feed'in sayfa boyutudur (config'ten gelir).
func NewFeedService(
	tells api.TellAPI,
	sessions session.Store,
	mutations MutationService,
	limiter *ratelimit.SubmitLimiter,
	pageSize int,
) FeedService {
	s := &feedService{
		tells:     tells,
		sessions:  sessions,
		mutations: mutations,
		limiter:   limiter,
	}
	// Fetch closure'ı oturuma her çağrıda bakar — login/logout arasında
	// pager yeniden kurulmaz, sadece Reset edilir.
	s.feed = pager.New(func(ctx context.Context, limit, offset int) ([]models.Tell, error) {
		var userID string
		if cur := sessions.Current(); cur != nil {
			userID = cur.UserID
		}
		return tells.GetPublicFeed(ctx, limit, offset, userID)
	}, pageSize)
	return s
}

func (s *feedService) Feed() *pager.Pager[models.Tell] {
	return s.feed
}

func (s *feedService) UserTells(ctx context.Context, username string) ([]models.Tell, error) {
	return s.tells.GetUserTells(ctx, username)
}

// RefreshInbox, gelen kutusunu sunucudan çeker ve lokal kopyayı değiştirir.
func (s *feedService) RefreshInbox(ctx context.Context) ([]models.Tell, error) {
	tells, err := s.tells.GetInbox(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.inbox = tells
	s.mu.Unlock()
	return s.Inbox(), nil
}

// Inbox, lokal gelen kutusu kopyasını döner.
func (s *feedService) Inbox() []models.Tell {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Tell, len(s.inbox))
	copy(out, s.inbox)
	return out
}

func (s *feedService) Sent(ctx context.Context) ([]models.Tell, error) {
	return s.tells.GetSent(ctx)
}

// SendTell, alıcıya tell gönderir.
// Oturum varsa auth'lu endpoint kullanılır (sender kaydedilir, anonymous
// bayrağı kullanıcının seçimidir); oturum yoksa public endpoint — sunucu
// bu durumda tell'i her zaman anonim yapar.
// Aynı alıcıya art arda gönderim lokal olarak sınırlanır (spam koruması).
func (s *feedService) SendTell(ctx context.Context, receiverID, content string, anonymous bool) (*models.Tell, error) {
	if !s.limiter.Allow("tell:" + receiverID) {
		return nil, fmt.Errorf("%w: too many tells to this user, slow down", pkg.ErrValidation)
	}

	req := &models.CreateTellRequest{
		ReceiverID:  receiverID,
		Content:     content,
		IsAnonymous: anonymous,
	}
	if s.sessions.Current() != nil {
		return s.tells.Create(ctx, req)
	}
	return s.tells.CreatePublic(ctx, req)
}

// AnswerTell, gelen kutusundaki bir tell'i optimistic cevaplar.
//
// Apply: lokal tell'e geçici (uuid'li) answer takılır, badge azalır.
// Commit: sunucu cevabı dönerse geçici answer sunucununki ile değiştirilir.
// Rollback: tell cevapsız haline, badge eski değerine döner.
// Aynı tell'e ikinci cevap denemesi commit bitene kadar ErrMutationInFlight alır.
func (s *feedService) AnswerTell(ctx context.Context, tellID, content string) error {
	req := &models.AnswerRequest{Content: content}
	if err := req.Validate(); err != nil {
		return err
	}

	// In-flight kontrolü Answered()'dan ÖNCE gelir: ilk denemenin Apply'ı
	// tell'e optimistic echo'yu çoktan takmıştır — ikinci deneme "zaten
	// cevaplı" değil "işlem sürüyor" olarak raporlanmalıdır.
	key := "answer:" + tellID
	if s.mutations.InFlight(key) {
		return fmt.Errorf("%w: %s", pkg.ErrMutationInFlight, key)
	}

	s.mu.RLock()
	idx := s.findInbox(tellID)
	if idx < 0 {
		s.mu.RUnlock()
		return fmt.Errorf("%w: tell %s not in inbox", pkg.ErrNotFound, tellID)
	}
	if s.inbox[idx].Answered() {
		s.mu.RUnlock()
		return fmt.Errorf("%w: tell already answered", pkg.ErrBadRequest)
	}
	s.mu.RUnlock()

	echo := &models.Answer{
		ID:        uuid.NewString(),
		TellID:    tellID,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}

	// Badge, Apply'da gerçekten azaltıldıysa geri artırılır — badge 0'ken
	// (ör. hiç refresh edilmemiş) başarısız bir cevap sayacı 1 yapmamalı.
	badgeDropped := false

	return s.mutations.Run(ctx, key, Mutation{
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if i := s.findInbox(tellID); i >= 0 {
				s.inbox[i].Answer = echo
			}
			if s.badge > 0 {
				s.badge--
				badgeDropped = true
			}
		},
		Rollback: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if i := s.findInbox(tellID); i >= 0 {
				s.inbox[i].Answer = nil
			}
			if badgeDropped {
				s.badge++
			}
		},
		Commit: func(ctx context.Context) error {
			answer, err := s.tells.Answer(ctx, tellID, req)
			if err != nil {
				return err
			}
			// Geçici echo'yu sunucunun answer'ı ile değiştir
			s.mu.Lock()
			defer s.mu.Unlock()
			if i := s.findInbox(tellID); i >= 0 {
				s.inbox[i].Answer = answer
			}
			return nil
		},
	})
}

// ReplyToAnswer, bir answer'a optimistic reply ekler.
// Reply append-only dizidir: Apply sona ekler, Rollback son ekleneni çıkarır.
func (s *feedService) ReplyToAnswer(ctx context.Context, tellID, answerID, content string) error {
	req := &models.ReplyRequest{Content: content}
	if err := req.Validate(); err != nil {
		return err
	}

	var senderID string
	if cur := s.sessions.Current(); cur != nil {
		senderID = cur.UserID
	} else {
		return pkg.ErrNoSession
	}

	echoID := uuid.NewString()
	echo := models.Reply{
		ID:        echoID,
		AnswerID:  answerID,
		SenderID:  senderID,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}

	return s.mutations.Run(ctx, "reply:"+answerID, Mutation{
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if a := s.findAnswer(tellID, answerID); a != nil {
				a.Replies = append(a.Replies, echo)
			}
		},
		Rollback: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if a := s.findAnswer(tellID, answerID); a != nil {
				for i := range a.Replies {
					if a.Replies[i].ID == echoID {
						a.Replies = append(a.Replies[:i], a.Replies[i+1:]...)
						break
					}
				}
			}
		},
		Commit: func(ctx context.Context) error {
			reply, err := s.tells.Reply(ctx, answerID, req)
			if err != nil {
				return err
			}
			s.mu.Lock()
			defer s.mu.Unlock()
			if a := s.findAnswer(tellID, answerID); a != nil {
				for i := range a.Replies {
					if a.Replies[i].ID == echoID {
						a.Replies[i] = *reply
						break
					}
				}
			}
			return nil
		},
	})
}

// RefreshBadge, cevaplanmamış tell sayısını sunucudan çeker.
func (s *feedService) RefreshBadge(ctx context.Context) (int64, error) {
	count, err := s.tells.GetUnansweredCount(ctx)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.badge = count
	s.mu.Unlock()
	return count, nil
}

// Badge, lokal badge değerini döner (son refresh + live artışlar).
func (s *feedService) Badge() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.badge
}

// BindLive, canlı event'leri lokal listelere bağlar.
//
// new_tell: gelen kutusunun başına eklenir, badge artar.
// tell_answered: gönderilen tell feed'de görünüyorsa cevabıyla güncellenir.
// new_reply: gelen kutusundaki ilgili answer'a reply eklenir (duplicate'ler
// HasReply ile düşürülür — kendi optimistic echo'muz live olarak geri gelebilir).
func (s *feedService) BindLive(d *ws.Dispatcher) {
	d.Subscribe(ws.EventNewTell, func(ev ws.Event) {
		p, err := ev.DecodeNewTell()
		if err != nil {
			log.Printf("[feed] %v", err)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.findInbox(p.Tell.ID) >= 0 {
			return
		}
		s.inbox = append([]models.Tell{p.Tell}, s.inbox...)
		s.badge++
	})

	d.Subscribe(ws.EventTellAnswered, func(ev ws.Event) {
		p, err := ev.DecodeTellAnswered()
		if err != nil {
			log.Printf("[feed] %v", err)
			return
		}
		tell := p.Tell
		tell.Answer = &p.Answer
		// Feed'de görünüyorsa yerinde güncelle, görünmüyorsa dokunma —
		// feed offset pagination'lıdır, araya eleman sokmak sırayı bozar
		s.feed.Upsert(tell)
	})

	d.Subscribe(ws.EventNewReply, func(ev ws.Event) {
		p, err := ev.DecodeNewReply()
		if err != nil {
			log.Printf("[feed] %v", err)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if a := s.findAnswer(p.TellID, p.Reply.AnswerID); a != nil {
			if !a.HasReply(p.Reply.ID) {
				a.Replies = append(a.Replies, p.Reply)
			}
		}
	})
}

// findInbox, tellID'nin gelen kutusundaki index'ini döner. Lock çağıranda.
func (s *feedService) findInbox(tellID string) int {
	for i := range s.inbox {
		if s.inbox[i].ID == tellID {
			return i
		}
	}
	return -1
}

// findAnswer, gelen kutusundaki tell'in answer'ını döner. Lock çağıranda.
func (s *feedService) findAnswer(tellID, answerID string) *models.Answer {
	i := s.findInbox(tellID)
	if i < 0 || s.inbox[i].Answer == nil {
		return nil
	}
	if s.inbox[i].Answer.ID != answerID {
		return nil
	}
	return s.inbox[i].Answer
}
