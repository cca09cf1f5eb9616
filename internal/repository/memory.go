package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Dan9191/daily-learning/internal/models"
)

// MemoryStore is a Store kept in process memory. Documents are copied on the
// way in and out, so callers never share state with the store.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]*models.User
	userOrder  []string
	topics     map[string]*models.Topic
	topicOrder []string
	categories map[string]*models.Category
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]*models.User),
		topics:     make(map[string]*models.Topic),
		categories: make(map[string]*models.Category),
	}
}

// Close is a no-op
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.ReadTopics = cloneStrings(u.ReadTopics)
	c.FavoriteTopics = cloneStrings(u.FavoriteTopics)
	c.LastReadDate = cloneTime(u.LastReadDate)
	c.LastFavoriteAdded = cloneTime(u.LastFavoriteAdded)
	return &c
}

func removeString(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// CreateUser stores a copy of user
func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	if _, exists := s.users[user.ID]; exists {
		return ErrDuplicate
	}
	s.users[user.ID] = cloneUser(user)
	s.userOrder = append(s.userOrder, user.ID)
	return nil
}

// GetUser retrieves a user by id
func (s *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

// FindUserByEmail retrieves a user by email
func (s *MemoryStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.userOrder {
		if u := s.users[id]; u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

// ListUsers returns all users in insertion order
func (s *MemoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		users = append(users, *cloneUser(s.users[id]))
	}
	return users, nil
}

// UpdateUser applies the non-nil fields of upd
func (s *MemoryStore) UpdateUser(ctx context.Context, id string, upd models.UserUpdate, at time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Email != nil {
		for otherID, other := range s.users {
			if otherID != id && other.Email == *upd.Email {
				return nil, ErrDuplicate
			}
		}
		u.Email = *upd.Email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	u.UpdatedAt = at
	return cloneUser(u), nil
}

// DeleteUser removes a user
func (s *MemoryStore) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	s.userOrder = removeString(s.userOrder, id)
	return nil
}

// MarkTopicRead records a first read of topicID
func (s *MemoryStore) MarkTopicRead(ctx context.Context, userID, topicID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || u.HasRead(topicID) {
		return false, nil
	}
	u.ReadTopics = append(u.ReadTopics, topicID)
	u.LastReadDate = cloneTime(&at)
	u.DailyReadCount++
	u.UpdatedAt = at
	return true, nil
}

// ClaimDailyRead consumes the daily quota if it is still available
func (s *MemoryStore) ClaimDailyRead(ctx context.Context, userID string, dayStart, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	if u.LastReadDate != nil && !u.LastReadDate.Before(dayStart) && u.DailyReadCount != 0 {
		return false, nil
	}
	u.DailyReadCount = 1
	u.LastReadDate = cloneTime(&at)
	u.UpdatedAt = at
	return true, nil
}

// AddFavorite adds topicID to the user's favorites if absent
func (s *MemoryStore) AddFavorite(ctx context.Context, userID, topicID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || u.HasFavorite(topicID) {
		return false, nil
	}
	u.FavoriteTopics = append(u.FavoriteTopics, topicID)
	u.LastFavoriteAdded = cloneTime(&at)
	u.UpdatedAt = at
	return true, nil
}

// RemoveFavorite removes topicID from the user's favorites if present
func (s *MemoryStore) RemoveFavorite(ctx context.Context, userID, topicID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok || !u.HasFavorite(topicID) {
		return false, nil
	}
	u.FavoriteTopics = removeString(u.FavoriteTopics, topicID)
	u.UpdatedAt = at
	return true, nil
}

// BackfillReadTopics sets an empty read history where it is missing
func (s *MemoryStore) BackfillReadTopics(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, u := range s.users {
		if u.ReadTopics == nil {
			u.ReadTopics = []string{}
			n++
		}
	}
	return n, nil
}

// CreateTopic stores a copy of topic
func (s *MemoryStore) CreateTopic(ctx context.Context, topic *models.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.topics[topic.ID]; exists {
		return ErrDuplicate
	}
	t := *topic
	s.topics[t.ID] = &t
	s.topicOrder = append(s.topicOrder, t.ID)
	return nil
}

// GetTopic retrieves a topic by id
func (s *MemoryStore) GetTopic(ctx context.Context, id string) (*models.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.topics[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *t
	return &c, nil
}

// creationOrder returns topics sorted by creation time, ties in insertion order
func (s *MemoryStore) creationOrder() []models.Topic {
	topics := make([]models.Topic, 0, len(s.topicOrder))
	for _, id := range s.topicOrder {
		topics = append(topics, *s.topics[id])
	}
	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].CreatedAt.Before(topics[j].CreatedAt)
	})
	return topics
}

// LatestTopic retrieves the most recently created topic
func (s *MemoryStore) LatestTopic(ctx context.Context) (*models.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	topics := s.creationOrder()
	if len(topics) == 0 {
		return nil, ErrNotFound
	}
	return &topics[len(topics)-1], nil
}

// LatestTopics retrieves the newest topics with category and creator names
func (s *MemoryStore) LatestTopics(ctx context.Context, limit int) ([]models.TopicDetails, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	topics := s.creationOrder()
	details := []models.TopicDetails{}
	for i := len(topics) - 1; i >= 0 && len(details) < limit; i-- {
		d := models.TopicDetails{Topic: topics[i]}
		if c, ok := s.categories[d.CategoryID]; ok {
			d.CategoryName = c.Name
		}
		if u, ok := s.users[d.CreatedBy]; ok {
			d.CreatorName = u.Name
		}
		details = append(details, d)
	}
	return details, nil
}

func (s *MemoryStore) filterTopics(keep func(*models.Topic) bool) []models.Topic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	topics := []models.Topic{}
	for _, id := range s.topicOrder {
		if t := s.topics[id]; keep(t) {
			topics = append(topics, *t)
		}
	}
	return topics
}

// TopicsByCreator retrieves the topics created by a user
func (s *MemoryStore) TopicsByCreator(ctx context.Context, userID string) ([]models.Topic, error) {
	return s.filterTopics(func(t *models.Topic) bool { return t.CreatedBy == userID }), nil
}

// TopicsByIDs retrieves the topics with the given ids in insertion order
func (s *MemoryStore) TopicsByIDs(ctx context.Context, ids []string) ([]models.Topic, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	return s.filterTopics(func(t *models.Topic) bool {
		_, ok := want[t.ID]
		return ok
	}), nil
}

// ListTopics retrieves all topics in insertion order
func (s *MemoryStore) ListTopics(ctx context.Context) ([]models.Topic, error) {
	return s.filterTopics(func(*models.Topic) bool { return true }), nil
}

// CountTopics returns the number of topics
func (s *MemoryStore) CountTopics(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.topics)), nil
}

// TopicAt retrieves the topic at the given position in creation order
func (s *MemoryStore) TopicAt(ctx context.Context, offset int64) (*models.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	topics := s.creationOrder()
	if offset < 0 || offset >= int64(len(topics)) {
		return nil, ErrNotFound
	}
	return &topics[offset], nil
}

func (s *MemoryStore) updateTopic(id string, fn func(*models.Topic)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.topics[id]
	if !ok {
		return ErrNotFound
	}
	fn(t)
	t.UpdatedAt = time.Now()
	return nil
}

// IncrementFavoriteCount adds one to the topic's favorite counter
func (s *MemoryStore) IncrementFavoriteCount(ctx context.Context, id string) error {
	return s.updateTopic(id, func(t *models.Topic) { t.FavoriteCount++ })
}

// DecrementFavoriteCount subtracts one from the topic's favorite counter, floored at zero
func (s *MemoryStore) DecrementFavoriteCount(ctx context.Context, id string) error {
	return s.updateTopic(id, func(t *models.Topic) {
		if t.FavoriteCount > 0 {
			t.FavoriteCount--
		}
	})
}

// SetFavoriteCount overwrites the topic's favorite counter
func (s *MemoryStore) SetFavoriteCount(ctx context.Context, id string, count int) error {
	return s.updateTopic(id, func(t *models.Topic) { t.FavoriteCount = count })
}

// SetTopicCategory points the topic at another category
func (s *MemoryStore) SetTopicCategory(ctx context.Context, id, categoryID string) error {
	return s.updateTopic(id, func(t *models.Topic) { t.CategoryID = categoryID })
}

// CreateCategory stores a copy of category
func (s *MemoryStore) CreateCategory(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Name == category.Name {
			return ErrDuplicate
		}
	}
	c := *category
	s.categories[c.ID] = &c
	return nil
}

// GetCategory retrieves a category by id
func (s *MemoryStore) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *c
	return &out, nil
}

// FindCategoryByName retrieves a category by its unique name
func (s *MemoryStore) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.Name == name {
			out := *c
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// ListCategories returns all categories sorted by name
func (s *MemoryStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	categories := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, *c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}
