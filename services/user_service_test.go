package services

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ihsandara/PemBlle/models"
	"github.com/ihsandara/PemBlle/pkg"
)

// fakeUserAPI, çağrı sayaçları tutan test impl'i.
type fakeUserAPI struct {
	mu             sync.Mutex
	profileCalls   int
	follows        []string
	unfollows      []string
	listUsers      func(ctx context.Context, search, excludeID string, limit, offset int) ([]models.User, error)
	getByUsername  func(ctx context.Context, username string) (*models.User, error)
	updateProfile  func(ctx context.Context, req *models.UpdateProfileRequest) (*models.User, error)
	followFn       func(ctx context.Context, userID string, anonymous bool) error
}

func (f *fakeUserAPI) ListUsers(ctx context.Context, search, excludeID string, limit, offset int) ([]models.User, error) {
	if f.listUsers == nil {
		return nil, nil
	}
	return f.listUsers(ctx, search, excludeID, limit, offset)
}
func (f *fakeUserAPI) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	f.profileCalls++
	f.mu.Unlock()
	if f.getByUsername == nil {
		return &models.User{ID: "u-" + username, Username: username}, nil
	}
	return f.getByUsername(ctx, username)
}
func (f *fakeUserAPI) UpdateProfile(ctx context.Context, req *models.UpdateProfileRequest) (*models.User, error) {
	if f.updateProfile == nil {
		return &models.User{Username: "kim", FullName: req.FullName}, nil
	}
	return f.updateProfile(ctx, req)
}
func (f *fakeUserAPI) UploadAvatar(ctx context.Context, filename string, file io.Reader) (string, error) {
	return "/uploads/" + filename, nil
}
func (f *fakeUserAPI) Follow(ctx context.Context, userID string, anonymous bool) error {
	f.mu.Lock()
	f.follows = append(f.follows, userID)
	f.mu.Unlock()
	if f.followFn == nil {
		return nil
	}
	return f.followFn(ctx, userID, anonymous)
}
func (f *fakeUserAPI) Unfollow(ctx context.Context, userID string) error {
	f.mu.Lock()
	f.unfollows = append(f.unfollows, userID)
	f.mu.Unlock()
	return nil
}
func (f *fakeUserAPI) GetFollowers(ctx context.Context, userID string) (*models.FollowList, error) {
	return &models.FollowList{TotalCount: 1}, nil
}
func (f *fakeUserAPI) GetFollowing(ctx context.Context, userID string) (*models.FollowList, error) {
	return &models.FollowList{}, nil
}
func (f *fakeUserAPI) GetFollowStatus(ctx context.Context, userID string) (*models.FollowStatus, error) {
	return &models.FollowStatus{IsFollowing: true}, nil
}
func (f *fakeUserAPI) GetFollowCounts(ctx context.Context, userID string) (*models.FollowCounts, error) {
	return &models.FollowCounts{FollowersCount: 3}, nil
}

func newUserFixture(t *testing.T, api *fakeUserAPI) UserService {
	t.Helper()
	svc := NewUserService(api, NewMutationService(), 12)
	t.Cleanup(svc.Close)
	return svc
}

func TestProfileIsCached(t *testing.T) {
	api := &fakeUserAPI{}
	svc := newUserFixture(t, api)
	ctx := context.Background()

	first, err := svc.Profile(ctx, "kim")
	require.NoError(t, err)
	assert.Equal(t, "kim", first.Username)

	_, err = svc.Profile(ctx, "kim")
	require.NoError(t, err)
	assert.Equal(t, 1, api.profileCalls, "second lookup served from cache")

	_, err = svc.Profile(ctx, "eda")
	require.NoError(t, err)
	assert.Equal(t, 2, api.profileCalls, "different username misses")
}

func TestProfileErrorIsNotCached(t *testing.T) {
	api := &fakeUserAPI{
		getByUsername: func(ctx context.Context, username string) (*models.User, error) {
			return nil, pkg.ErrNotFound
		},
	}
	svc := newUserFixture(t, api)
	ctx := context.Background()

	_, err := svc.Profile(ctx, "ghost")
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	_, err = svc.Profile(ctx, "ghost")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	assert.Equal(t, 2, api.profileCalls, "failures hit the server again")
}

func TestUpdateProfileRefreshesCache(t *testing.T) {
	api := &fakeUserAPI{}
	svc := newUserFixture(t, api)
	ctx := context.Background()

	_, err := svc.Profile(ctx, "kim")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, &models.UpdateProfileRequest{FullName: "Kim Demir"})
	require.NoError(t, err)
	assert.Equal(t, "Kim Demir", updated.FullName)

	cached, err := svc.Profile(ctx, "kim")
	require.NoError(t, err)
	assert.Equal(t, "Kim Demir", cached.FullName, "cache holds the updated profile")
	assert.Equal(t, 1, api.profileCalls)
}

func TestUploadAvatarClearsCache(t *testing.T) {
	api := &fakeUserAPI{}
	svc := newUserFixture(t, api)
	ctx := context.Background()

	_, err := svc.Profile(ctx, "kim")
	require.NoError(t, err)

	url, err := svc.UploadAvatar(ctx, "me.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/me.png", url)

	_, err = svc.Profile(ctx, "kim")
	require.NoError(t, err)
	assert.Equal(t, 2, api.profileCalls, "avatar change invalidates cached profiles")
}

func TestFollowGuardsAgainstDoubleClick(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	api := &fakeUserAPI{
		followFn: func(ctx context.Context, userID string, anonymous bool) error {
			close(started)
			<-release
			return nil
		},
	}
	svc := newUserFixture(t, api)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = svc.Follow(ctx, "u2", false)
	}()

	<-started
	// Aynı kullanıcıya follow VE unfollow aynı key'i paylaşır
	err := svc.Unfollow(ctx, "u2")
	assert.ErrorIs(t, err, pkg.ErrMutationInFlight)

	close(release)
	wg.Wait()

	assert.Equal(t, []string{"u2"}, api.follows)
	assert.Empty(t, api.unfollows)
}

func TestDirectoryPagerPassesSearch(t *testing.T) {
	var gotSearch, gotExclude string
	api := &fakeUserAPI{
		listUsers: func(ctx context.Context, search, excludeID string, limit, offset int) ([]models.User, error) {
			gotSearch, gotExclude = search, excludeID
			assert.Equal(t, 12, limit)
			return []models.User{{ID: "u1"}}, nil
		},
	}
	svc := newUserFixture(t, api)

	p := svc.Directory("kim", "me")
	_, err := p.LoadFirstPage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "kim", gotSearch)
	assert.Equal(t, "me", gotExclude)
	assert.Equal(t, 1, p.Len())
}
