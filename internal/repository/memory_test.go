package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Dan9191/daily-learning/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CopiesDocuments(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	u := &models.User{ID: "u1", Email: "ada@example.com", FavoriteTopics: []string{"t1"}}
	require.NoError(t, s.CreateUser(ctx, u))

	u.FavoriteTopics[0] = "changed"
	got, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, got.FavoriteTopics)

	got.FavoriteTopics = append(got.FavoriteTopics, "t2")
	again, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, again.FavoriteTopics)
}

func TestMemoryStore_UniqueEmail(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &models.User{ID: "u1", Email: "ada@example.com"}))
	require.NoError(t, s.CreateUser(ctx, &models.User{ID: "u2", Email: "bob@example.com"}))

	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{ID: "u3", Email: "ada@example.com"}), ErrDuplicate)

	email := "ada@example.com"
	_, err := s.UpdateUser(ctx, "u2", models.UserUpdate{Email: &email}, time.Now())
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryStore_ClaimDailyRead(t *testing.T) {
	ctx := context.Background()
	dayStart := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	at := dayStart.Add(9 * time.Hour)
	yesterday := dayStart.Add(-time.Hour)
	earlierToday := dayStart.Add(time.Hour)

	tests := []struct {
		name  string
		user  models.User
		want  bool
		count int
	}{
		{"never read", models.User{}, true, 1},
		{"read yesterday", models.User{LastReadDate: &yesterday, DailyReadCount: 3}, true, 1},
		{"read today", models.User{LastReadDate: &earlierToday, DailyReadCount: 1}, false, 1},
		{"today with zero count", models.User{LastReadDate: &earlierToday}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewMemoryStore()
			tt.user.ID = "u1"
			require.NoError(t, s.CreateUser(ctx, &tt.user))

			ok, err := s.ClaimDailyRead(ctx, "u1", dayStart, at)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)

			got, err := s.GetUser(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.count, got.DailyReadCount)
			if tt.want {
				assert.True(t, got.LastReadDate.Equal(at))
			}
		})
	}

	s := NewMemoryStore()
	ok, err := s.ClaimDailyRead(ctx, "ghost", dayStart, at)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_FavoritesAreASet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	at := time.Now()
	require.NoError(t, s.CreateUser(ctx, &models.User{ID: "u1", FavoriteTopics: []string{}}))

	added, err := s.AddFavorite(ctx, "u1", "t1", at)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = s.AddFavorite(ctx, "u1", "t1", at)
	require.NoError(t, err)
	assert.False(t, added)

	removed, err := s.RemoveFavorite(ctx, "u1", "t1", at)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.RemoveFavorite(ctx, "u1", "t1", at)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMemoryStore_TopicAtFollowsCreationTime(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateTopic(ctx, &models.Topic{ID: "late", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, s.CreateTopic(ctx, &models.Topic{ID: "early", CreatedAt: base}))
	require.NoError(t, s.CreateTopic(ctx, &models.Topic{ID: "tie", CreatedAt: base.Add(time.Hour)}))

	var order []string
	for i := int64(0); i < 3; i++ {
		topic, err := s.TopicAt(ctx, i)
		require.NoError(t, err)
		order = append(order, topic.ID)
	}
	assert.Equal(t, []string{"early", "late", "tie"}, order)

	_, err := s.TopicAt(ctx, 3)
	assert.ErrorIs(t, err, ErrNotFound)

	latest, err := s.LatestTopic(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tie", latest.ID)
}

func TestMemoryStore_DecrementFloorsAtZero(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.CreateTopic(ctx, &models.Topic{ID: "t1", FavoriteCount: 1}))

	require.NoError(t, s.DecrementFavoriteCount(ctx, "t1"))
	require.NoError(t, s.DecrementFavoriteCount(ctx, "t1"))

	topic, err := s.GetTopic(ctx, "t1")
	require.NoError(t, err)
	assert.Zero(t, topic.FavoriteCount)

	assert.ErrorIs(t, s.IncrementFavoriteCount(ctx, "ghost"), ErrNotFound)
}

func TestMemoryStore_CategoryNamesAreUnique(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.CreateCategory(ctx, &models.Category{ID: "c1", Name: "Science"}))

	assert.ErrorIs(t, s.CreateCategory(ctx, &models.Category{ID: "c2", Name: "Science"}), ErrDuplicate)

	c, err := s.FindCategoryByName(ctx, "Science")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
}
