package services

import (
	"context"
	"io"
	"time"

	"github.com/ihsandara/PemBlle/api"
	"github.com/ihsandara/PemBlle/models"
	"github.com/ihsandara/PemBlle/pkg/cache"
	"github.com/ihsandara/PemBlle/pkg/pager"
)

// UserService, kullanıcı profilleri ve takip işlemlerinin iş mantığı interface'i.
//
// Profil:
//   - Profile: Username ile profil — TTL cache'li, tekrarlanan bakışlar
//     (feed'de aynı kullanıcının birden çok tell'i) sunucuya gitmez
//   - Directory: Arama destekli, offset pagination'lı kullanıcı dizini
//   - UpdateProfile / UploadAvatar: Kendi profilini değiştir — cache düşürülür
//
// Takip:
//   - Follow / Unfollow: Anonim takip bayrağı desteklenir
//   - FollowStatus / FollowCounts / Followers / Following
type UserService interface {
	Profile(ctx context.Context, username string) (*models.User, error)
	Directory(search, excludeID string) *pager.Pager[models.User]
	UpdateProfile(ctx context.Context, req *models.UpdateProfileRequest) (*models.User, error)
	UploadAvatar(ctx context.Context, filename string, file io.Reader) (string, error)

	Follow(ctx context.Context, userID string, anonymous bool) error
	Unfollow(ctx context.Context, userID string) error
	FollowStatus(ctx context.Context, userID string) (*models.FollowStatus, error)
	FollowCounts(ctx context.Context, userID string) (*models.FollowCounts, error)
	Followers(ctx context.Context, userID string) (*models.FollowList, error)
	Following(ctx context.Context, userID string) (*models.FollowList, error)

	Close()
}

type userService struct {
	users     api.UserAPI
	mutations MutationService
	profiles  *cache.TTLCache[string, *models.User]
	pageSize  int
}

// NewUserService, constructor.
// pageSize kullanıcı dizininin sayfa boyutudur (config'ten gelir).
func NewUserService(users api.UserAPI, mutations MutationService, pageSize int) UserService {
	return &userService{
		users:     users,
		mutations: mutations,
		// Profil cache: 5dk TTL, 1dk temizlik — profil verisi nadiren değişir,
		// feed scroll'unda aynı profile onlarca bakış olur
		profiles: cache.New[string, *models.User](5*time.Minute, time.Minute),
		pageSize: pageSize,
	}
}

func (s *userService) Profile(ctx context.Context, username string) (*models.User, error) {
	if user, ok := s.profiles.Get(username); ok {
		return user, nil
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	s.profiles.Set(username, user)
	return user, nil
}

// Directory, verilen arama için yeni bir pager kurar.
// Her arama terimi kendi pager'ını alır — arama değişince eskisi atılır,
// offset'ler karışmaz.
func (s *userService) Directory(search, excludeID string) *pager.Pager[models.User] {
	return pager.New(func(ctx context.Context, limit, offset int) ([]models.User, error) {
		return s.users.ListUsers(ctx, search, excludeID, limit, offset)
	}, s.pageSize)
}

func (s *userService) UpdateProfile(ctx context.Context, req *models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.users.UpdateProfile(ctx, req)
	if err != nil {
		return nil, err
	}
	// Eski profil cache'te kalmasın
	s.profiles.Set(user.Username, user)
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, filename string, file io.Reader) (string, error) {
	url, err := s.users.UploadAvatar(ctx, filename, file)
	if err != nil {
		return "", err
	}
	// Avatar değişti — cache'teki tüm kopyalar bayatladı, hepsini düşürmek
	// tek kullanıcıyı aramaktan ucuz
	s.profiles.Clear()
	return url, nil
}

// Follow, optimistic değildir ama double-click koruması mutation key'i ile sağlanır:
// aynı kullanıcıya eşzamanlı ikinci follow/unfollow ErrMutationInFlight alır.
func (s *userService) Follow(ctx context.Context, userID string, anonymous bool) error {
	return s.mutations.Run(ctx, "follow:"+userID, Mutation{
		Commit: func(ctx context.Context) error {
			return s.users.Follow(ctx, userID, anonymous)
		},
	})
}

func (s *userService) Unfollow(ctx context.Context, userID string) error {
	return s.mutations.Run(ctx, "follow:"+userID, Mutation{
		Commit: func(ctx context.Context) error {
			return s.users.Unfollow(ctx, userID)
		},
	})
}

func (s *userService) FollowStatus(ctx context.Context, userID string) (*models.FollowStatus, error) {
	return s.users.GetFollowStatus(ctx, userID)
}

func (s *userService) FollowCounts(ctx context.Context, userID string) (*models.FollowCounts, error) {
	return s.users.GetFollowCounts(ctx, userID)
}

func (s *userService) Followers(ctx context.Context, userID string) (*models.FollowList, error) {
	return s.users.GetFollowers(ctx, userID)
}

func (s *userService) Following(ctx context.Context, userID string) (*models.FollowList, error) {
	return s.users.GetFollowing(ctx, userID)
}

// Close, cache'in temizlik goroutine'ini durdurur.
func (s *userService) Close() {
	s.profiles.Close()
}
