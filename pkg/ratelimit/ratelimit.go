// Package ratelimit — SubmitLimiter: hızlı tekrarlanan gönderimlere karşı
// client tarafı sliding-window limitleme.
//
// Tasarım:
// - Her aksiyon anahtarı (örn. "tell:<receiverID>", "message:<chatID>") için
//   sliding window ile gönderim sayısı takip edilir.
// - Window süresi içinde maxSubmits aşılırsa gönderim reddedilir.
// - Background goroutine ile süresi dolmuş bucket'lar temizlenir (memory leak engeli).
//
// Neden client tarafında?
// Sunucu kendi limitini zaten uygular; buradaki limit kullanıcıyı
// gereksiz 429/400 round-trip'lerinden korur ve yanlışlıkla basılı tutulan
// enter tuşunun aynı tell'i arka arkaya göndermesini engeller.
//
// pkg/ratelimit hiçbir proje içi pakete bağımlı değildir (leaf dependency).
package ratelimit

import (
	"sync"
	"time"
)

// bucket, bir anahtar için gönderim sayacı ve window başlangıç zamanı tutar.
//
// Sliding window algoritması:
// - İlk gönderim geldiğinde windowStart = now, count = 1.
// - Sonraki gönderimler: windowStart + window süresi geçmemişse count++.
// - Süre geçmişse window sıfırlanır (yeni pencere başlar).
type bucket struct {
	count       int
	windowStart time.Time
}

// SubmitLimiter, aksiyon anahtarı bazlı gönderim limitleme.
//
// Kullanım:
//
//	limiter := NewSubmitLimiter(5, 30*time.Second)
//	if !limiter.Allow("message:" + chatID) {
//	    // kullanıcıya "yavaşla" mesajı göster
//	}
type SubmitLimiter struct {
	mu          sync.RWMutex
	buckets     map[string]*bucket
	maxSubmits  int
	window      time.Duration
	stopCleanup chan struct{}
}

// NewSubmitLimiter, yeni limiter oluşturur ve arka plan temizleme
// goroutine'ini başlatır.
//
// maxSubmits: Pencere başına izin verilen gönderim (ör: 5).
// window: Pencere süresi (ör: 30*time.Second → 30 saniyede 5 gönderim).
func NewSubmitLimiter(maxSubmits int, window time.Duration) *SubmitLimiter {
	rl := &SubmitLimiter{
		buckets:     make(map[string]*bucket),
		maxSubmits:  maxSubmits,
		window:      window,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow, verilen anahtar için bir gönderime izin verilip verilmediğini döner.
// İzin veriliyorsa sayaç arttırılır (check-and-increment atomiktir).
func (rl *SubmitLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[key]
	if !ok || now.Sub(b.windowStart) >= rl.window {
		// Yeni pencere başlat
		rl.buckets[key] = &bucket{count: 1, windowStart: now}
		return true
	}

	if b.count >= rl.maxSubmits {
		return false
	}
	b.count++
	return true
}

// Reset, bir anahtarın sayacını sıfırlar.
// Örn. sohbet değiştirildiğinde eski sohbetin limiti taşınmaz.
func (rl *SubmitLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	delete(rl.buckets, key)
}

// Close, arka plan temizleme goroutine'ini durdurur.
func (rl *SubmitLimiter) Close() {
	close(rl.stopCleanup)
}

// cleanupLoop, her dakika süresi dolmuş bucket'ları siler.
// Uzun süre açık kalan client'larda bellek sızıntısını önler.
func (rl *SubmitLimiter) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictExpired()
		case <-rl.stopCleanup:
			return
		}
	}
}

// evictExpired, penceresi kapanmış bucket'ları map'ten siler.
func (rl *SubmitLimiter) evictExpired() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, b := range rl.buckets {
		if now.Sub(b.windowStart) >= rl.window {
			delete(rl.buckets, key)
		}
	}
}
