// Package main — Service katmanı başlatma.
//
// initServices, tüm service implementasyonlarını oluşturur.
// Her service, ihtiyaç duyduğu API interface'lerini ve diğer dependency'leri
// constructor injection ile alır.
//
// Sıralama: MutationService önce — Feed, Chat ve User service'leri
// optimistic yazmalar için ona bağımlıdır.
package main

import (
	"time"

	"github.com/ihsandara/PemBlle/config"
	"github.com/ihsandara/PemBlle/pkg/ratelimit"
	"github.com/ihsandara/PemBlle/services"
	"github.com/ihsandara/PemBlle/session"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Mutation services.MutationService
	Feed     services.FeedService
	Chat     services.ChatService
	User     services.UserService

	// Submit limiter'lar: client-side spam koruması.
	// Sunucunun kendi limitleri var ama client tarafında kesmek hem
	// kullanıcıya anında geri bildirim verir hem boş istek tasarrufudur.
	TellLimiter    *ratelimit.SubmitLimiter
	MessageLimiter *ratelimit.SubmitLimiter
}

// initServices, constructor.
func initServices(cfg *config.Config, apis *APIs, sessions session.Store) *Services {
	mutation := services.NewMutationService()

	// Tell: aynı alıcıya dakikada en fazla 5 gönderim
	tellLimiter := ratelimit.NewSubmitLimiter(5, time.Minute)
	// Mesaj: aynı sohbete 10 saniyede en fazla 10 gönderim
	messageLimiter := ratelimit.NewSubmitLimiter(10, 10*time.Second)

	return &Services{
		Mutation:       mutation,
		Feed:           services.NewFeedService(apis.Tell, sessions, mutation, tellLimiter, cfg.Feed.PageSize),
		Chat:           services.NewChatService(apis.Chat, sessions, mutation, messageLimiter),
		User:           services.NewUserService(apis.User, mutation, cfg.Feed.UsersPageSize),
		TellLimiter:    tellLimiter,
		MessageLimiter: messageLimiter,
	}
}

// Close, service'lerin arka plan goroutine'lerini durdurur.
func (s *Services) Close() {
	s.User.Close()
	s.TellLimiter.Close()
	s.MessageLimiter.Close()
}
