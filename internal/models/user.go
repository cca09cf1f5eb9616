package models

import "time"

// User represents a reader of the daily topics
type User struct {
	ID                string     `json:"id" bson:"_id"`
	Name              string     `json:"name" bson:"name"`
	Email             string     `json:"email" bson:"email"`
	PasswordHash      string     `json:"-" bson:"password,omitempty"` // Not serialized
	ReadTopics        []string   `json:"readTopics" bson:"readTopics"`
	FavoriteTopics    []string   `json:"favoriteTopics" bson:"favoriteTopics"`
	LastReadDate      *time.Time `json:"lastReadDate" bson:"lastReadDate"`
	DailyReadCount    int        `json:"dailyReadCount" bson:"dailyReadCount"`
	LastFavoriteAdded *time.Time `json:"lastFavoriteAdded" bson:"lastFavoriteAdded"`
	CreatedAt         time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// HasRead reports whether topicID is in the user's read history
func (u *User) HasRead(topicID string) bool {
	return contains(u.ReadTopics, topicID)
}

// HasFavorite reports whether topicID is in the user's favorites
func (u *User) HasFavorite(topicID string) bool {
	return contains(u.FavoriteTopics, topicID)
}

// UserProfile is the field-limited view returned by user lookups
type UserProfile struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	FavoriteTopics []string   `json:"favoriteTopics"`
	LastReadDate   *time.Time `json:"lastReadDate"`
	DailyReadCount int        `json:"dailyReadCount"`
}

// Profile projects the user onto UserProfile
func (u *User) Profile() UserProfile {
	return UserProfile{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		FavoriteTopics: u.FavoriteTopics,
		LastReadDate:   u.LastReadDate,
		DailyReadCount: u.DailyReadCount,
	}
}

// UserUpdate holds the owner-editable user fields. Nil fields are left as is.
type UserUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
