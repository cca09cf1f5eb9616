package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dan9191/daily-learning/internal/models"
	"github.com/Dan9191/daily-learning/internal/repository"
)

// ReconcileReport summarizes a favorite count reconciliation run
type ReconcileReport struct {
	TopicsScanned   int `json:"topicsScanned"`
	TopicsCorrected int `json:"topicsCorrected"`
}

// AddFavorite adds a topic to the user's favorites and bumps the topic's
// favorite count. Favoriting an already favorited topic changes nothing.
// Returns the user's favorites after the call.
func (s *Service) AddFavorite(ctx context.Context, userID, topicID string) ([]string, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	topic, err := s.loadTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if user.HasFavorite(topic.ID) {
		return user.FavoriteTopics, nil
	}

	added, err := s.store.AddFavorite(ctx, user.ID, topic.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to add favorite: %w", err)
	}
	if !added {
		return s.favoritesOf(ctx, user.ID)
	}

	// The user document is already updated; a failure here leaves the counter
	// behind until ReconcileFavoriteCounts runs.
	if err := s.store.IncrementFavoriteCount(ctx, topic.ID); err != nil {
		s.log.Errorf("Favorite count of topic %s not incremented: %v", topic.ID, err)
		return nil, fmt.Errorf("failed to increment favorite count: %w", err)
	}

	s.log.Infof("User %s added favorite topic %s", user.ID, topic.ID)
	return append(user.FavoriteTopics, topic.ID), nil
}

// RemoveFavorite removes a topic from the user's favorites and lowers the
// topic's favorite count, never below zero. Removing a topic that is not a
// favorite changes nothing. Returns the user's favorites after the call.
func (s *Service) RemoveFavorite(ctx context.Context, userID, topicID string) ([]string, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	topic, err := s.loadTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if !user.HasFavorite(topic.ID) {
		return user.FavoriteTopics, nil
	}

	removed, err := s.store.RemoveFavorite(ctx, user.ID, topic.ID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to remove favorite: %w", err)
	}
	if !removed {
		return s.favoritesOf(ctx, user.ID)
	}

	if err := s.store.DecrementFavoriteCount(ctx, topic.ID); err != nil {
		s.log.Errorf("Favorite count of topic %s not decremented: %v", topic.ID, err)
		return nil, fmt.Errorf("failed to decrement favorite count: %w", err)
	}

	s.log.Infof("User %s removed favorite topic %s", user.ID, topic.ID)
	favorites := make([]string, 0, len(user.FavoriteTopics))
	for _, id := range user.FavoriteTopics {
		if id != topic.ID {
			favorites = append(favorites, id)
		}
	}
	return favorites, nil
}

// ListFavorites returns the full topics the user has favorited, in store order
func (s *Service) ListFavorites(ctx context.Context, userID string) ([]models.Topic, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	topics, err := s.store.TopicsByIDs(ctx, user.FavoriteTopics)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch favorite topics: %w", err)
	}
	return topics, nil
}

func (s *Service) favoritesOf(ctx context.Context, userID string) ([]string, error) {
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, err
	}
	return user.FavoriteTopics, nil
}

// ReconcileFavoriteCounts recomputes every topic's favorite count from the
// users' favorite lists and rewrites the counts that drifted.
func (s *Service) ReconcileFavoriteCounts(ctx context.Context) (*ReconcileReport, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	counts := make(map[string]int)
	for _, u := range users {
		seen := make(map[string]struct{}, len(u.FavoriteTopics))
		for _, id := range u.FavoriteTopics {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			counts[id]++
		}
	}

	topics, err := s.store.ListTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	report := &ReconcileReport{TopicsScanned: len(topics)}
	for _, t := range topics {
		want := counts[t.ID]
		if t.FavoriteCount == want {
			continue
		}
		if err := s.store.SetFavoriteCount(ctx, t.ID, want); err != nil {
			return report, fmt.Errorf("failed to set favorite count of topic %s: %w", t.ID, err)
		}
		s.log.Infof("Topic %s favorite count corrected from %d to %d", t.ID, t.FavoriteCount, want)
		report.TopicsCorrected++
	}
	return report, nil
}
