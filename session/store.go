// Package session, aktif oturumun yaşam döngüsünü yönetir.
//
// Oturum iki yerde yaşar:
//   - Bellekte: Current() ile senkron erişim — UI her frame'de sorabilir.
//   - Lokal SQLite store'da: uygulama yeniden başlatıldığında Restore()
//     ile geri yüklenir. Token düz metin olarak DEĞİL, cihaz secret'ından
//     türetilen anahtarla AES-GCM şifreli saklanır.
//
// Token'ın exp claim'i client tarafında imza DOĞRULAMADAN okunur —
// client'ta signing key yoktur ve olmamalıdır. Amaç güvenlik değil,
// süresi geçmiş token ile boşuna istek atıp 401 yememektir.
package session

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ihsandara/PemBlle/api"
	"github.com/ihsandara/PemBlle/database"
	"github.com/ihsandara/PemBlle/models"
	"github.com/ihsandara/PemBlle/pkg"
	"github.com/ihsandara/PemBlle/pkg/crypto"
)

// Store, oturum yaşam döngüsü interface'i.
//
// Oturum:
//   - SignIn: Email + şifre ile giriş — başarılıysa oturum kalıcı yazılır
//   - SignOut: Bellekteki ve store'daki oturumu temizle
//   - Current: Bellekteki aktif oturum (yoksa nil) — lock'lı, goroutine-safe
//   - Restore: Uygulama açılışında store'dan oturumu geri yükle
//   - Token: Aktif bearer token (api.TokenFunc olarak Client'a verilir)
//
// Hesap:
//   - Register: Yeni hesap oluştur
//   - VerifyEmail: Mail token'ı ile doğrula
//   - ResendVerification: Doğrulama mailini tekrar iste
//   - ChangePassword: Şifre değiştir (aktif oturum gerekir)
type Store interface {
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context) error
	Current() *models.Session
	Restore(ctx context.Context) (*models.Session, error)
	Token() string

	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
}

type store struct {
	mu      sync.RWMutex
	db      *database.DB
	auth    api.AuthAPI
	secret  string
	current *models.Session
}

// NewStore, constructor.
// secret, token-at-rest şifreleme anahtarının türetildiği cihaz secret'ıdır.
func NewStore(db *database.DB, auth api.AuthAPI, secret string) Store {
	return &store{
		db:     db,
		auth:   auth,
		secret: secret,
	}
}

// SignIn, login isteği atar, başarılıysa oturumu belleğe ve store'a yazar.
//
// Hata ayrımı çağıranın sorumluluğundadır:
//   - errors.Is(err, pkg.ErrInvalidCredentials) → "email veya şifre yanlış"
//   - errors.Is(err, pkg.ErrUnverifiedAccount) → doğrulama maili akışına yönlendir
func (s *store) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := s.auth.Login(ctx, &models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	sess := &models.Session{
		UserID:    resp.User.ID,
		Username:  resp.User.Username,
		FullName:  resp.User.FullName,
		Avatar:    resp.User.Avatar,
		Token:     resp.Token,
		ExpiresAt: tokenExpiry(resp.Token),
		CreatedAt: time.Now(),
	}

	if err := s.persist(ctx, sess); err != nil {
		// Kalıcı yazma başarısız olsa da login geçerlidir — oturum bellekte
		// yaşamaya devam eder, sadece restart sonrası tekrar login gerekir.
		log.Printf("[session] failed to persist session: %v", err)
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	log.Printf("[session] signed in as %s", sess.Username)
	return sess, nil
}

// SignOut, oturumu hem bellekten hem store'dan siler.
// Store silme hatası yutulmaz ama bellek her durumda temizlenir.
func (s *store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	_, err := s.db.Conn.ExecContext(ctx, "DELETE FROM sessions WHERE id = 1")
	if err != nil {
		return fmt.Errorf("failed to clear stored session: %w", err)
	}

	log.Println("[session] signed out")
	return nil
}

// Current, bellekteki aktif oturumu döner. Oturum yoksa nil.
// Dönen pointer'ın kopyası dönülür — çağıran üzerinde oynama yapamaz.
func (s *store) Current() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

// Token, aktif bearer token'ı döner. Oturum yoksa boş string.
// api.TokenFunc imzasına uyar — Client'a doğrudan verilir.
func (s *store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.Token
}

// Restore, store'daki oturumu geri yükler.
//
// Davranış:
//   - Kayıt yoksa → pkg.ErrNoSession
//   - Token decrypt edilemiyorsa (secret değişmiş olabilir) → kayıt silinir, ErrNoSession
//   - Token süresi geçmişse → kayıt silinir, ErrNoSession
//   - Geçerliyse → belleğe alınır ve dönülür
func (s *store) Restore(ctx context.Context) (*models.Session, error) {
	row := s.db.Conn.QueryRowContext(ctx, `
		SELECT user_id, username, full_name, avatar, token_cipher, token_salt, expires_at, created_at
		FROM sessions WHERE id = 1
	`)

	var (
		sess        models.Session
		tokenCipher string
		tokenSalt   string
		expiresAt   sql.NullTime
	)
	err := row.Scan(&sess.UserID, &sess.Username, &sess.FullName, &sess.Avatar,
		&tokenCipher, &tokenSalt, &expiresAt, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stored session: %w", err)
	}
	if expiresAt.Valid {
		sess.ExpiresAt = expiresAt.Time
	}

	token, err := s.decryptToken(tokenCipher, tokenSalt)
	if err != nil {
		log.Printf("[session] stored token unreadable, clearing: %v", err)
		s.drop(ctx)
		return nil, pkg.ErrNoSession
	}
	sess.Token = token

	if sess.Expired() {
		log.Printf("[session] stored session for %s expired, clearing", sess.Username)
		s.drop(ctx)
		return nil, pkg.ErrNoSession
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()

	log.Printf("[session] restored session for %s", sess.Username)
	cp := sess
	return &cp, nil
}

func (s *store) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	return s.auth.Register(ctx, req)
}

func (s *store) VerifyEmail(ctx context.Context, token string) error {
	return s.auth.VerifyEmail(ctx, token)
}

func (s *store) ResendVerification(ctx context.Context, email string) error {
	return s.auth.ResendVerification(ctx, email)
}

// ChangePassword, aktif oturum gerektirir — token zaten Client'a
// TokenFunc üzerinden gider, burada sadece oturum varlığı kontrol edilir.
func (s *store) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	if s.Current() == nil {
		return pkg.ErrNoSession
	}
	return s.auth.ChangePassword(ctx, currentPassword, newPassword)
}

// persist, oturumu tek satırlık sessions tablosuna yazar.
// Silme + ekleme tek transaction'da yapılır — yarım yazılmış oturum kalmaz.
func (s *store) persist(ctx context.Context, sess *models.Session) error {
	salt, err := crypto.NewSalt()
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	key, err := crypto.DeriveKey(s.secret, salt)
	if err != nil {
		return fmt.Errorf("failed to derive key: %w", err)
	}
	cipher, err := crypto.Encrypt(sess.Token, key)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	var expires any
	if !sess.ExpiresAt.IsZero() {
		expires = sess.ExpiresAt
	}

	return database.WithTx(ctx, s.db.Conn, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE id = 1"); err != nil {
			return fmt.Errorf("failed to clear previous session: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sessions (id, user_id, username, full_name, avatar, token_cipher, token_salt, expires_at, created_at)
			VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		`, sess.UserID, sess.Username, sess.FullName, sess.Avatar,
			cipher, base64.StdEncoding.EncodeToString(salt), expires, sess.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		return nil
	})
}

// decryptToken, store'daki şifreli token'ı çözer.
func (s *store) decryptToken(cipherText, saltB64 string) (string, error) {
	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return "", fmt.Errorf("invalid salt encoding: %w", err)
	}
	key, err := crypto.DeriveKey(s.secret, salt)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}
	plain, err := crypto.Decrypt(cipherText, key)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt token: %w", err)
	}
	return plain, nil
}

// drop, store'daki oturum kaydını best-effort siler.
func (s *store) drop(ctx context.Context) {
	if _, err := s.db.Conn.ExecContext(ctx, "DELETE FROM sessions WHERE id = 1"); err != nil {
		log.Printf("[session] failed to drop stored session: %v", err)
	}
}

// tokenExpiry, JWT'nin exp claim'ini imza doğrulamadan okur.
// Token JWT değilse veya exp yoksa zero time döner — Session.Expired()
// zero time'ı "süresiz" sayar, oturum restart'ta korunur.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
