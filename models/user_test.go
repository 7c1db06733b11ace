package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ihsandara/PemBlle/pkg"
)

func TestRegisterRequestValidate(t *testing.T) {
	valid := func() RegisterRequest {
		return RegisterRequest{
			Username: "kim_42",
			FullName: "Kim Demir",
			Email:    "kim@example.com",
			Password: "hunter22!",
		}
	}

	cases := []struct {
		name   string
		mutate func(*RegisterRequest)
		ok     bool
	}{
		{"valid", func(r *RegisterRequest) {}, true},
		{"username too short", func(r *RegisterRequest) { r.Username = "ab" }, false},
		{"username too long", func(r *RegisterRequest) { r.Username = strings.Repeat("a", 33) }, false},
		{"username with spaces", func(r *RegisterRequest) { r.Username = "kim demir" }, false},
		{"username with symbols", func(r *RegisterRequest) { r.Username = "kim!42" }, false},
		{"email without at", func(r *RegisterRequest) { r.Email = "kimexample.com" }, false},
		{"email without domain dot", func(r *RegisterRequest) { r.Email = "kim@example" }, false},
		{"email trailing dot domain", func(r *RegisterRequest) { r.Email = "kim@example." }, false},
		{"short password", func(r *RegisterRequest) { r.Password = "1234567" }, false},
		{"long full name", func(r *RegisterRequest) { r.FullName = strings.Repeat("a", 65) }, false},
		{"empty full name ok", func(r *RegisterRequest) { r.FullName = "" }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid()
			tc.mutate(&req)
			err := req.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, pkg.ErrValidation)
			}
		})
	}
}

func TestLoginRequestValidate(t *testing.T) {
	req := LoginRequest{Email: " kim@example.com ", Password: "x"}
	assert.NoError(t, req.Validate())
	assert.Equal(t, "kim@example.com", req.Email)

	assert.ErrorIs(t, (&LoginRequest{Password: "x"}).Validate(), pkg.ErrValidation)
	assert.ErrorIs(t, (&LoginRequest{Email: "kim@example.com"}).Validate(), pkg.ErrValidation)
}

func TestUpdateProfileRequestValidate(t *testing.T) {
	req := UpdateProfileRequest{FullName: "Kim", Bio: "merhaba"}
	assert.NoError(t, req.Validate())

	req = UpdateProfileRequest{Bio: strings.Repeat("a", 281)}
	assert.ErrorIs(t, req.Validate(), pkg.ErrValidation)
}

func TestDisplayName(t *testing.T) {
	ref := UserRef{Username: "kim", FullName: "Kim Demir"}
	assert.Equal(t, "Kim Demir", ref.DisplayName())

	ref.FullName = ""
	assert.Equal(t, "kim", ref.DisplayName())
}

func TestSessionExpired(t *testing.T) {
	var s Session
	assert.False(t, s.Expired(), "zero expiry means no expiry")

	s.ExpiresAt = time.Now().Add(time.Hour)
	assert.False(t, s.Expired())

	s.ExpiresAt = time.Now().Add(-time.Minute)
	assert.True(t, s.Expired())
}
