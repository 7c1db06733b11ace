package session

import (
	"context"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihsandara/PemBlle/database"
	"github.com/ihsandara/PemBlle/models"
	"github.com/ihsandara/PemBlle/pkg"
)

// fakeAuthAPI, func alanları set edilmemişse başarı döner.
type fakeAuthAPI struct {
	login          func(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	changePassword func(ctx context.Context, cur, next string) error
}

func (f *fakeAuthAPI) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	return &models.User{Username: req.Username}, nil
}
func (f *fakeAuthAPI) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if f.login == nil {
		return &models.LoginResponse{Token: "tok", User: models.User{ID: "u1", Username: "kim"}}, nil
	}
	return f.login(ctx, req)
}
func (f *fakeAuthAPI) VerifyEmail(ctx context.Context, token string) error        { return nil }
func (f *fakeAuthAPI) ResendVerification(ctx context.Context, email string) error { return nil }
func (f *fakeAuthAPI) ChangePassword(ctx context.Context, cur, next string) error {
	if f.changePassword == nil {
		return nil
	}
	return f.changePassword(ctx, cur, next)
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	migrations, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)
	db, err := database.New(filepath.Join(t.TempDir(), "pemblle.db"), migrations)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// signedToken, verilen exp ile HS256 imzalı bir JWT üretir.
// Store imza doğrulamaz — herhangi bir key yeterlidir.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"exp":     exp.Unix(),
	})
	s, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func TestSignInPersistsAndRestores(t *testing.T) {
	db := newTestDB(t)
	token := signedToken(t, time.Now().Add(time.Hour))
	auth := &fakeAuthAPI{
		login: func(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
			return &models.LoginResponse{
				Token: token,
				User:  models.User{ID: "u1", Username: "kim", FullName: "Kim Demir"},
			}, nil
		},
	}
	ctx := context.Background()

	st := NewStore(db, auth, "device-secret")
	sess, err := st.SignIn(ctx, "kim@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, token, sess.Token)
	assert.False(t, sess.ExpiresAt.IsZero(), "exp claim must be read from the JWT")
	assert.Equal(t, token, st.Token())

	// Yeni bir Store — restart simülasyonu
	st2 := NewStore(db, auth, "device-secret")
	restored, err := st2.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, "kim", restored.Username)
	assert.Equal(t, token, restored.Token, "token survives the encrypt/decrypt round trip")
	assert.WithinDuration(t, sess.ExpiresAt, restored.ExpiresAt, time.Second)
}

func TestRestoreWithoutStoredSession(t *testing.T) {
	st := NewStore(newTestDB(t), &fakeAuthAPI{}, "device-secret")

	_, err := st.Restore(context.Background())
	assert.ErrorIs(t, err, pkg.ErrNoSession)
	assert.Nil(t, st.Current())
}

func TestRestoreDropsExpiredSession(t *testing.T) {
	db := newTestDB(t)
	expired := signedToken(t, time.Now().Add(-time.Hour))
	auth := &fakeAuthAPI{
		login: func(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
			return &models.LoginResponse{Token: expired, User: models.User{ID: "u1", Username: "kim"}}, nil
		},
	}
	ctx := context.Background()

	st := NewStore(db, auth, "device-secret")
	_, err := st.SignIn(ctx, "kim@example.com", "hunter22")
	require.NoError(t, err)

	st2 := NewStore(db, auth, "device-secret")
	_, err = st2.Restore(ctx)
	assert.ErrorIs(t, err, pkg.ErrNoSession)

	// Kayıt silinmiş olmalı — üçüncü deneme de aynı hatayı verir
	_, err = st2.Restore(ctx)
	assert.ErrorIs(t, err, pkg.ErrNoSession)
}

func TestRestoreDropsUndecryptableToken(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	st := NewStore(db, &fakeAuthAPI{}, "device-secret")
	_, err := st.SignIn(ctx, "kim@example.com", "hunter22")
	require.NoError(t, err)

	// Farklı secret ile restore — token çözülemez, kayıt temizlenir
	st2 := NewStore(db, &fakeAuthAPI{}, "another-secret")
	_, err = st2.Restore(ctx)
	assert.ErrorIs(t, err, pkg.ErrNoSession)
	assert.Nil(t, st2.Current())
}

func TestSignOutClearsMemoryAndStore(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	st := NewStore(db, &fakeAuthAPI{}, "device-secret")
	_, err := st.SignIn(ctx, "kim@example.com", "hunter22")
	require.NoError(t, err)
	require.NotNil(t, st.Current())

	require.NoError(t, st.SignOut(ctx))
	assert.Nil(t, st.Current())
	assert.Empty(t, st.Token())

	_, err = st.Restore(ctx)
	assert.ErrorIs(t, err, pkg.ErrNoSession)
}

func TestSignInErrorPassthrough(t *testing.T) {
	auth := &fakeAuthAPI{
		login: func(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
			return nil, pkg.ErrInvalidCredentials
		},
	}
	st := NewStore(newTestDB(t), auth, "device-secret")

	_, err := st.SignIn(context.Background(), "kim@example.com", "wrong")
	assert.ErrorIs(t, err, pkg.ErrInvalidCredentials)
	assert.Nil(t, st.Current())
}

func TestNonJWTTokenHasNoExpiry(t *testing.T) {
	db := newTestDB(t)
	auth := &fakeAuthAPI{
		login: func(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
			return &models.LoginResponse{Token: "opaque-token", User: models.User{ID: "u1", Username: "kim"}}, nil
		},
	}
	ctx := context.Background()

	st := NewStore(db, auth, "device-secret")
	sess, err := st.SignIn(ctx, "kim@example.com", "hunter22")
	require.NoError(t, err)
	assert.True(t, sess.ExpiresAt.IsZero())

	// Süresiz oturum restart'ta korunur
	st2 := NewStore(db, auth, "device-secret")
	restored, err := st2.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", restored.Token)
}

func TestChangePasswordRequiresSession(t *testing.T) {
	st := NewStore(newTestDB(t), &fakeAuthAPI{}, "device-secret")

	err := st.ChangePassword(context.Background(), "old", "new")
	assert.ErrorIs(t, err, pkg.ErrNoSession)
}

func TestCurrentReturnsCopy(t *testing.T) {
	st := NewStore(newTestDB(t), &fakeAuthAPI{}, "device-secret")
	_, err := st.SignIn(context.Background(), "kim@example.com", "hunter22")
	require.NoError(t, err)

	cur := st.Current()
	require.NotNil(t, cur)
	cur.Username = "tampered"
	assert.Equal(t, "kim", st.Current().Username)
}

func TestRestoreSecondStoreSharesDB(t *testing.T) {
	// İki store aynı DB'yi kullanabilir — tek satır invariant'ı bozulmaz
	db := newTestDB(t)
	ctx := context.Background()

	st := NewStore(db, &fakeAuthAPI{}, "device-secret")
	_, err := st.SignIn(ctx, "kim@example.com", "hunter22")
	require.NoError(t, err)
	_, err = st.SignIn(ctx, "kim@example.com", "hunter22")
	require.NoError(t, err)

	var count int
	err = db.Conn.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "sessions table holds at most one row")
}
