package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Dan9191/daily-learning/internal/models"
)

var (
	// ErrNotFound is returned when the referenced document does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique field is already taken
	ErrDuplicate = errors.New("duplicate key")
)

// UserRepository provides user document operations.
//
// Methods that return a bool perform a conditional single-document update and
// report whether the condition held and the document was changed.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, upd models.UserUpdate, at time.Time) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error

	// MarkTopicRead appends topicID to readTopics, sets lastReadDate and
	// increments dailyReadCount, only if topicID was not read before.
	MarkTopicRead(ctx context.Context, userID, topicID string, at time.Time) (bool, error)
	// ClaimDailyRead sets dailyReadCount to 1 and lastReadDate to at, only if
	// lastReadDate is unset or before dayStart, or dailyReadCount is zero.
	ClaimDailyRead(ctx context.Context, userID string, dayStart, at time.Time) (bool, error)
	// AddFavorite adds topicID to favoriteTopics if absent and sets lastFavoriteAdded.
	AddFavorite(ctx context.Context, userID, topicID string, at time.Time) (bool, error)
	// RemoveFavorite removes topicID from favoriteTopics if present.
	RemoveFavorite(ctx context.Context, userID, topicID string, at time.Time) (bool, error)
	// BackfillReadTopics sets an empty readTopics on users that lack it.
	BackfillReadTopics(ctx context.Context) (int64, error)
}

// TopicRepository provides topic document operations
type TopicRepository interface {
	CreateTopic(ctx context.Context, topic *models.Topic) error
	GetTopic(ctx context.Context, id string) (*models.Topic, error)
	LatestTopic(ctx context.Context) (*models.Topic, error)
	LatestTopics(ctx context.Context, limit int) ([]models.TopicDetails, error)
	TopicsByCreator(ctx context.Context, userID string) ([]models.Topic, error)
	TopicsByIDs(ctx context.Context, ids []string) ([]models.Topic, error)
	ListTopics(ctx context.Context) ([]models.Topic, error)
	CountTopics(ctx context.Context) (int64, error)
	// TopicAt returns the topic at the given ordinal position in creation order
	TopicAt(ctx context.Context, offset int64) (*models.Topic, error)

	IncrementFavoriteCount(ctx context.Context, id string) error
	// DecrementFavoriteCount never takes the counter below zero
	DecrementFavoriteCount(ctx context.Context, id string) error
	SetFavoriteCount(ctx context.Context, id string, count int) error
	SetTopicCategory(ctx context.Context, id, categoryID string) error
}

// CategoryRepository provides category document operations
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	FindCategoryByName(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// Store is the document store used by the services
type Store interface {
	UserRepository
	TopicRepository
	CategoryRepository
	Close(ctx context.Context) error
}
