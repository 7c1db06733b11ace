package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/ihsandara/PemBlle/models"
	"github.com/ihsandara/PemBlle/pkg"
)

// AuthAPI, kimlik doğrulama endpoint'lerinin typed interface'i.
//
//   - Register: Yeni hesap oluştur (doğrulama maili tetikler)
//   - Login: Email + şifre ile giriş — token ve kullanıcı döner
//   - VerifyEmail: Mail'deki token ile hesabı doğrula
//   - ResendVerification: Doğrulama mailini tekrar gönder
//   - ChangePassword: Mevcut şifre ile yeni şifre belirle (auth gerekli)
type AuthAPI interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	VerifyEmail(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
}

type authAPI struct {
	client *Client
}

// NewAuthAPI, constructor.
func NewAuthAPI(client *Client) AuthAPI {
	return &authAPI{client: client}
}

func (a *authAPI) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var user models.User
	if err := a.client.post(ctx, "/api/auth/register", req, &user); err != nil {
		return nil, fmt.Errorf("register failed: %w", err)
	}
	return &user, nil
}

// Login, backend'in generic 401'ini ErrInvalidCredentials'a çevirir.
// 401 normalde "token geçersiz/eksik" demektir ama login endpoint'inde
// anlamı "email veya şifre yanlış"tır — UI bu ikisini farklı gösterir.
// 403 + "unverified" code'u mapStatusError zaten ErrUnverifiedAccount yapar,
// o olduğu gibi geçer (UI doğrulama mailini tekrar gönderme akışına girer).
func (a *authAPI) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var resp models.LoginResponse
	err := a.client.post(ctx, "/api/auth/login", req, &resp)
	if err != nil {
		if errors.Is(err, pkg.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: invalid email or password", pkg.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return &resp, nil
}

func (a *authAPI) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: verification token is required", pkg.ErrValidation)
	}
	if err := a.client.get(ctx, "/api/auth/verify/"+url.PathEscape(token), nil, nil); err != nil {
		return fmt.Errorf("email verification failed: %w", err)
	}
	return nil
}

func (a *authAPI) ResendVerification(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", pkg.ErrValidation)
	}
	body := map[string]string{"email": email}
	if err := a.client.post(ctx, "/api/auth/resend-verification", body, nil); err != nil {
		return fmt.Errorf("resend verification failed: %w", err)
	}
	return nil
}

func (a *authAPI) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: both current and new password are required", pkg.ErrValidation)
	}
	if len(newPassword) < 6 {
		return fmt.Errorf("%w: new password must be at least 6 characters", pkg.ErrValidation)
	}
	// Backend body'de "old_password" bekler
	body := map[string]string{
		"old_password": currentPassword,
		"new_password": newPassword,
	}
	if err := a.client.put(ctx, "/api/auth/password", body, nil); err != nil {
		return fmt.Errorf("password change failed: %w", err)
	}
	return nil
}
