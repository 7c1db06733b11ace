package api

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/ihsandara/PemBlle/models"
	"github.com/ihsandara/PemBlle/pkg"
)

// UserAPI, kullanıcı ve takip endpoint'lerinin typed interface'i.
//
// Kullanıcı:
//   - ListUsers: Arama + offset pagination ile kullanıcı dizini
//   - GetByUsername: Public profil
//   - UpdateProfile: Kendi profilini güncelle
//   - UploadAvatar: Multipart avatar yükleme — yeni avatar URL'i döner
//
// Takip:
//   - Follow / Unfollow: is_anonymous bayrağı ile anonim takip desteklenir
//   - GetFollowers / GetFollowing: Public liste + anonim sayaç
//   - GetFollowStatus: Current user bu kullanıcıyı takip ediyor mu
//   - GetFollowCounts: Profildeki takipçi/takip sayıları
type UserAPI interface {
	ListUsers(ctx context.Context, search, excludeID string, limit, offset int) ([]models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, req *models.UpdateProfileRequest) (*models.User, error)
	UploadAvatar(ctx context.Context, filename string, file io.Reader) (string, error)

	Follow(ctx context.Context, userID string, anonymous bool) error
	Unfollow(ctx context.Context, userID string) error
	GetFollowers(ctx context.Context, userID string) (*models.FollowList, error)
	GetFollowing(ctx context.Context, userID string) (*models.FollowList, error)
	GetFollowStatus(ctx context.Context, userID string) (*models.FollowStatus, error)
	GetFollowCounts(ctx context.Context, userID string) (*models.FollowCounts, error)
}

type userAPI struct {
	client *Client
}

// NewUserAPI, constructor.
func NewUserAPI(client *Client) UserAPI {
	return &userAPI{client: client}
}

func (u *userAPI) ListUsers(ctx context.Context, search, excludeID string, limit, offset int) ([]models.User, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if excludeID != "" {
		q.Set("exclude", excludeID)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	var users []models.User
	if err := u.client.get(ctx, "/api/users", q, &users); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (u *userAPI) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", pkg.ErrValidation)
	}
	var user models.User
	if err := u.client.get(ctx, "/api/users/"+url.PathEscape(username), nil, &user); err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}
	return &user, nil
}

func (u *userAPI) UpdateProfile(ctx context.Context, req *models.UpdateProfileRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var user models.User
	if err := u.client.put(ctx, "/api/users/profile", req, &user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &user, nil
}

func (u *userAPI) UploadAvatar(ctx context.Context, filename string, file io.Reader) (string, error) {
	var resp struct {
		AvatarURL string `json:"avatar_url"`
	}
	if err := u.client.upload(ctx, "/api/users/avatar", "avatar", filename, file, &resp); err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	return resp.AvatarURL, nil
}

func (u *userAPI) Follow(ctx context.Context, userID string, anonymous bool) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", pkg.ErrValidation)
	}
	req := models.FollowRequest{IsAnonymous: anonymous}
	if err := u.client.post(ctx, "/api/users/"+url.PathEscape(userID)+"/follow", req, nil); err != nil {
		return fmt.Errorf("failed to follow user: %w", err)
	}
	return nil
}

func (u *userAPI) Unfollow(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", pkg.ErrValidation)
	}
	if err := u.client.del(ctx, "/api/users/"+url.PathEscape(userID)+"/follow", nil); err != nil {
		return fmt.Errorf("failed to unfollow user: %w", err)
	}
	return nil
}

// followListWire, takip listesi yanıtının wire formatı.
// Backend followers için "followers", following için "following" key'i kullanır —
// ikisi de aynı FollowList modeline map edilir.
type followListWire struct {
	Followers      []models.FollowEntry `json:"followers"`
	Following      []models.FollowEntry `json:"following"`
	AnonymousCount int                  `json:"anonymous_count"`
	TotalCount     int                  `json:"total_count"`
}

func (w *followListWire) toList() *models.FollowList {
	entries := w.Followers
	if entries == nil {
		entries = w.Following
	}
	return &models.FollowList{
		Entries:        entries,
		AnonymousCount: w.AnonymousCount,
		TotalCount:     w.TotalCount,
	}
}

func (u *userAPI) GetFollowers(ctx context.Context, userID string) (*models.FollowList, error) {
	var wire followListWire
	if err := u.client.get(ctx, "/api/users/"+url.PathEscape(userID)+"/followers", nil, &wire); err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return wire.toList(), nil
}

func (u *userAPI) GetFollowing(ctx context.Context, userID string) (*models.FollowList, error) {
	var wire followListWire
	if err := u.client.get(ctx, "/api/users/"+url.PathEscape(userID)+"/following", nil, &wire); err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	return wire.toList(), nil
}

func (u *userAPI) GetFollowStatus(ctx context.Context, userID string) (*models.FollowStatus, error) {
	var status models.FollowStatus
	if err := u.client.get(ctx, "/api/users/"+url.PathEscape(userID)+"/follow-status", nil, &status); err != nil {
		return nil, fmt.Errorf("failed to get follow status: %w", err)
	}
	return &status, nil
}

func (u *userAPI) GetFollowCounts(ctx context.Context, userID string) (*models.FollowCounts, error) {
	var counts models.FollowCounts
	if err := u.client.get(ctx, "/api/users/"+url.PathEscape(userID)+"/follow-counts", nil, &counts); err != nil {
		return nil, fmt.Errorf("failed to get follow counts: %w", err)
	}
	return &counts, nil
}
