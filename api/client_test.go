package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihsandara/PemBlle/models"
	"github.com/ihsandara/PemBlle/pkg"
)

// newTestClient, verilen handler'a bağlı bir Client kurar.
func newTestClient(t *testing.T, handler http.HandlerFunc, token TokenFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, token)
}

func writeError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]string{"error": msg}
	if code != "" {
		body["code"] = code
	}
	_ = json.NewEncoder(w).Encode(body)
}

func TestBearerTokenInjected(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}, func() string { return "tok-123" })

	err := client.get(context.Background(), "/api/tells/", nil, &struct{}{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestNoBearerWhenTokenEmpty(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}, func() string { return "" })

	err := client.get(context.Background(), "/api/public/feed", nil, &struct{}{})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestStatusErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		code     string
		sentinel error
	}{
		{"unauthorized", http.StatusUnauthorized, "", pkg.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, "", pkg.ErrForbidden},
		{"unverified", http.StatusForbidden, "unverified", pkg.ErrUnverifiedAccount},
		{"not found", http.StatusNotFound, "", pkg.ErrNotFound},
		{"bad request", http.StatusBadRequest, "", pkg.ErrBadRequest},
		{"server error", http.StatusInternalServerError, "", pkg.ErrInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeError(w, tc.status, "boom", tc.code)
			}, nil)

			err := client.get(context.Background(), "/api/anything", nil, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.sentinel)
			assert.Contains(t, err.Error(), "boom", "server message preserved")
		})
	}
}

func TestTransportErrorWrapsErrNetwork(t *testing.T) {
	// Kapalı bir server'a istek → transport hatası
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	client := NewClient(srv.URL, time.Second, nil)

	err := client.get(context.Background(), "/api/users", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkg.ErrNetwork)
}

func TestContextCancellationIsNotNetworkError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := client.get(ctx, "/api/public/feed", nil, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, pkg.ErrNetwork)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoginMapsUnauthorizedToInvalidCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", "")
	}, nil)
	auth := NewAuthAPI(client)

	_, err := auth.Login(context.Background(), &models.LoginRequest{
		Email:    "kim@example.com",
		Password: "hunter22",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkg.ErrInvalidCredentials)
}

func TestLoginPassesThroughUnverified(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusForbidden, "Account not verified", "unverified")
	}, nil)
	auth := NewAuthAPI(client)

	_, err := auth.Login(context.Background(), &models.LoginRequest{
		Email:    "kim@example.com",
		Password: "hunter22",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkg.ErrUnverifiedAccount)
	assert.NotErrorIs(t, err, pkg.ErrInvalidCredentials)
}

func TestLoginSuccessDecodesResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(models.LoginResponse{
			Token: "jwt-abc",
			User:  models.User{ID: "u1", Username: "kim"},
		})
	}, nil)
	auth := NewAuthAPI(client)

	resp, err := auth.Login(context.Background(), &models.LoginRequest{
		Email:    "kim@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", resp.Token)
	assert.Equal(t, "kim", resp.User.Username)
}

func TestChangePasswordSendsOldPasswordKey(t *testing.T) {
	var body map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/password", r.URL.Path)
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}, func() string { return "tok" })
	auth := NewAuthAPI(client)

	err := auth.ChangePassword(context.Background(), "oldpw", "newpw123")
	require.NoError(t, err)
	assert.Equal(t, "oldpw", body["old_password"], "backend binds old_password")
	assert.Equal(t, "newpw123", body["new_password"])
	assert.NotContains(t, body, "current_password")
}

func TestValidationFailsLocally(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, nil)
	tells := NewTellAPI(client)

	_, err := tells.Create(context.Background(), &models.CreateTellRequest{
		ReceiverID: "u1",
		Content:    "",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkg.ErrValidation)
	assert.False(t, called, "invalid request must never reach the server")
}

func TestGetPublicFeedQueryParams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/public/feed", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "20", r.URL.Query().Get("offset"))
		assert.Equal(t, "u1", r.URL.Query().Get("user_id"))
		_ = json.NewEncoder(w).Encode([]models.Tell{{ID: "t1"}})
	}, nil)
	tells := NewTellAPI(client)

	feed, err := tells.GetPublicFeed(context.Background(), 10, 20, "u1")
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "t1", feed[0].ID)
}

func TestFollowListWireDecodesBothKeys(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/u1/followers":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"followers":       []models.FollowEntry{{ID: "f1"}},
				"anonymous_count": 2,
				"total_count":     3,
			})
		case "/api/users/u1/following":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"following":       []models.FollowEntry{{ID: "f2"}},
				"anonymous_count": 0,
				"total_count":     1,
			})
		default:
			writeError(w, http.StatusNotFound, "no route", "")
		}
	}, nil)
	users := NewUserAPI(client)

	followers, err := users.GetFollowers(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, followers.Entries, 1)
	assert.Equal(t, 2, followers.AnonymousCount)
	assert.Equal(t, 3, followers.TotalCount)

	following, err := users.GetFollowing(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, following.Entries, 1)
	assert.Equal(t, "f2", following.Entries[0].ID)
}
