package models

import "time"

// Session, client tarafındaki authenticated kimliği temsil eder.
//
// Sahiplik tamamen client'tadır: login/register başarısında oluşturulur,
// logout veya token geçersizleşince yok edilir.
//
// Invariant: nil olmayan bir Session, backend'den alınmış ve süresi
// HENÜZ dolmamış bir bearer token taşır. Süre kontrolü session.Store
// tarafından JWT exp claim'i üzerinden yapılır.
type Session struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Avatar    string    `json:"avatar"`
	Token     string    `json:"-"` // bearer token — loglanmaz, JSON'a yazılmaz
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired, token süresinin geçip geçmediğini döner.
// ExpiresAt sıfır değerse (exp claim'i parse edilememiş) süresiz kabul edilir.
func (s *Session) Expired() bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(s.ExpiresAt)
}

// LoginResponse, backend'in login yanıtı: token + user snapshot.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
