package models

import "time"

// FollowStatus, current user'ın belirli bir kullanıcıyı takip durumu.
// IsAnonymous: anonim takip — takip edilen kullanıcı takipçinin
// kimliğini göremez, sadece anonim sayaçta görünür.
type FollowStatus struct {
	IsFollowing bool `json:"is_following"`
	IsAnonymous bool `json:"is_anonymous,omitempty"`
}

// FollowCounts, bir kullanıcının takipçi/takip sayıları.
type FollowCounts struct {
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}

// FollowEntry, takipçi/takip listesindeki tek bir public kayıt.
// Anonim takipler listeye girmez — sadece AnonymousCount'ta sayılır.
type FollowEntry struct {
	ID        string    `json:"id"`
	User      UserRef   `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// FollowList, takipçi veya takip listesi yanıtı.
// TotalCount = len(Entries) + AnonymousCount.
type FollowList struct {
	Entries        []FollowEntry `json:"entries"`
	AnonymousCount int           `json:"anonymous_count"`
	TotalCount     int           `json:"total_count"`
}

// FollowRequest, takip isteği — anonim takip bayrağı taşır.
type FollowRequest struct {
	IsAnonymous bool `json:"is_anonymous"`
}
