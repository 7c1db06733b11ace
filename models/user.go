// Package models, uygulamanın domain modellerini (veri yapıları) tanımlar.
//
// Model nedir?
// Uzak API'den gelen/giden verilerin Go karşılığıdır.
// Bu client SDK'sında modeller sunucunun JSON sözleşmesini birebir yansıtır —
// authoritative veri her zaman sunucudadır, buradaki struct'lar snapshot'tır.
//
// Go'da `json:"username"` gibi tag'ler, struct field'larının JSON'a
// nasıl serialize/deserialize edileceğini belirler.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ihsandara/PemBlle/pkg"
)

// User, bir kullanıcının tam profilini temsil eder.
// Sadece profil sayfası gibi tam veriye ihtiyaç duyan yerlerde kullanılır,
// diğer her yerde hafif UserRef yeterlidir.
type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email,omitempty"`
	Avatar     string    `json:"avatar"`
	Bio        string    `json:"bio"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ItemID, pager dedupe'u için User'ın kimliğini döner.
func (u User) ItemID() string { return u.ID }

// UserRef, bir kullanıcının hafif, denormalize snapshot'ıdır.
// Feed item'ları, chat katılımcıları gibi tam profile ihtiyaç duymayan
// yerlerde taşınır. ASLA authoritative kabul edilmez — güncel profil
// her zaman sunucudan çekilir.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// DisplayName, gösterilecek ismi döner — FullName boşsa Username.
func (u *UserRef) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// Ref, tam User'dan hafif UserRef üretir.
func (u *User) Ref() UserRef {
	return UserRef{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Avatar:   u.Avatar,
	}
}

// RegisterRequest, kayıt olurken sunucuya gönderilen veri.
type RegisterRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate, RegisterRequest'in geçerli olup olmadığını kontrol eder.
// Validation hataları LOKAL çözülür — istek sunucuya hiç gönderilmez.
//
// Kurallar:
//   - Username: 3-32 karakter, alfanumerik + alt çizgi
//   - Email: kabaca geçerli format (tam doğrulama sunucunun işi)
//   - Password: minimum 8 karakter
func (r *RegisterRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	usernameLen := utf8.RuneCountInString(r.Username)
	if usernameLen < 3 || usernameLen > 32 {
		return fmt.Errorf("%w: username must be between 3 and 32 characters", pkg.ErrValidation)
	}
	for _, ch := range r.Username {
		if !isValidUsernameChar(ch) {
			return fmt.Errorf("%w: username can only contain letters, numbers, and underscores", pkg.ErrValidation)
		}
	}

	r.Email = strings.TrimSpace(r.Email)
	if !looksLikeEmail(r.Email) {
		return fmt.Errorf("%w: invalid email address", pkg.ErrValidation)
	}

	if utf8.RuneCountInString(r.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", pkg.ErrValidation)
	}

	r.FullName = strings.TrimSpace(r.FullName)
	if utf8.RuneCountInString(r.FullName) > 64 {
		return fmt.Errorf("%w: full name must be at most 64 characters", pkg.ErrValidation)
	}

	return nil
}

// LoginRequest, giriş yaparken sunucuya gönderilen veri.
// PemBlle backend'i email + password ile login yapar.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate, LoginRequest'in geçerli olup olmadığını kontrol eder.
func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if r.Email == "" {
		return fmt.Errorf("%w: email is required", pkg.ErrValidation)
	}
	if r.Password == "" {
		return fmt.Errorf("%w: password is required", pkg.ErrValidation)
	}
	return nil
}

// UpdateProfileRequest, profil güncellemesi için.
// Avatar alanı URL taşır — dosya yükleme ayrı multipart endpoint'tir.
type UpdateProfileRequest struct {
	FullName string `json:"full_name"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
}

// Validate, UpdateProfileRequest'in geçerli olup olmadığını kontrol eder.
func (r *UpdateProfileRequest) Validate() error {
	r.FullName = strings.TrimSpace(r.FullName)
	if utf8.RuneCountInString(r.FullName) > 64 {
		return fmt.Errorf("%w: full name must be at most 64 characters", pkg.ErrValidation)
	}
	if utf8.RuneCountInString(r.Bio) > 280 {
		return fmt.Errorf("%w: bio must be at most 280 characters", pkg.ErrValidation)
	}
	return nil
}

// isValidUsernameChar, username'de izin verilen karakterleri kontrol eder.
func isValidUsernameChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '_'
}

// looksLikeEmail, kabaca "x@y.z" formatını kontrol eder.
// Tam RFC validation client'ın işi değil — asıl doğrulama sunucuda.
func looksLikeEmail(s string) bool {
	at := strings.Index(s, "@")
	if at < 1 {
		return false
	}
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
