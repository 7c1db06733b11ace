// Package services, client'ın iş mantığı katmanıdır.
//
// Her service bir interface + unexported implementasyon + NewX constructor'dan
// oluşur. Service'ler API katmanını (typed endpoint'ler), lokal state'i
// (pager, cache, unread sayaçları) ve canlı event kanalını birleştirir —
// UI sadece service'lerle konuşur.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/ihsandara/PemBlle/pkg"
)

// Mutation, optimistic uygulanan tek bir yazma işlemi.
//
// Akış:
// 1. Apply: Lokal state'i HEMEN güncelle (kullanıcı beklemeden sonucu görür)
// 2. Commit: Sunucuya gönder
// 3. Commit başarısızsa Rollback: lokal state Apply öncesi haline döner
//
// Apply ve Rollback simetrik olmalıdır — Rollback, Apply'ın yaptığı HER
// değişikliği geri almalıdır, yoksa lokal state sunucudan sapar.
type Mutation struct {
	Apply    func()
	Rollback func()
	Commit   func(ctx context.Context) error
}

// MutationService, optimistic mutation'ları çalıştırır ve aynı hedefe
// eşzamanlı ikinci mutation'ı engeller (double-click koruması).
//
// key, mutation'ın hedefini tanımlar — ör. "answer:<tellID>",
// "follow:<userID>". Aynı key'li bir mutation devam ederken gelen ikinci
// çağrı ErrMutationInFlight ile reddedilir; farklı key'ler paralel çalışır.
type MutationService interface {
	Run(ctx context.Context, key string, m Mutation) error
	InFlight(key string) bool
}

type mutationService struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewMutationService, constructor.
func NewMutationService() MutationService {
	return &mutationService{
		inflight: make(map[string]struct{}),
	}
}

// Run, mutation'ı çalıştırır.
//
// Apply çağrıldıktan sonra Commit hatası ne olursa olsun ya Commit başarılı
// biter ya da Rollback çalışır — lokal state asla "yarım" kalmaz.
func (s *mutationService) Run(ctx context.Context, key string, m Mutation) error {
	if m.Commit == nil {
		return fmt.Errorf("%w: mutation has no commit step", pkg.ErrValidation)
	}

	s.mu.Lock()
	if _, busy := s.inflight[key]; busy {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", pkg.ErrMutationInFlight, key)
	}
	s.inflight[key] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}()

	if m.Apply != nil {
		m.Apply()
	}

	if err := m.Commit(ctx); err != nil {
		if m.Rollback != nil {
			m.Rollback()
		}
		return err
	}

	return nil
}

// InFlight, key'li bir mutation'ın devam edip etmediğini döner.
// UI gönder butonunu disable etmek için kullanır.
func (s *mutationService) InFlight(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inflight[key]
	return busy
}
