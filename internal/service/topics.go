package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dan9191/daily-learning/internal/models"
	"github.com/Dan9191/daily-learning/internal/repository"
)

// DefaultTopicLimit is the number of topics returned by ListTopics when no limit is given
const DefaultTopicLimit = 10

// TopicInput carries the fields of a new topic
type TopicInput struct {
	Title      string
	Content    string
	CategoryID string
}

// BulkTopicsResult holds the created topics and the per-item failures of a bulk create
type BulkTopicsResult struct {
	Created []models.Topic
	Errors  []string
}

// ListTopics returns the newest topics with category and creator names
func (s *Service) ListTopics(ctx context.Context, limit int) ([]models.TopicDetails, error) {
	if limit <= 0 {
		limit = DefaultTopicLimit
	}
	topics, err := s.store.LatestTopics(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch topics: %w", err)
	}
	return topics, nil
}

// GetDailyTopic returns the most recently created topic
func (s *Service) GetDailyTopic(ctx context.Context) (*models.Topic, error) {
	topic, err := s.store.LatestTopic(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrNotFound, "No topic found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch daily topic: %w", err)
	}
	return topic, nil
}

// TopicsByCreator returns the topics created by a user
func (s *Service) TopicsByCreator(ctx context.Context, userID string) ([]models.Topic, error) {
	topics, err := s.store.TopicsByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user topics: %w", err)
	}
	return topics, nil
}

// CreateTopic creates a topic in an existing category
func (s *Service) CreateTopic(ctx context.Context, in TopicInput, creatorID string) (*models.Topic, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, newError(ErrInvalidInput, "Title and content are required")
	}
	category, err := s.loadCategory(ctx, strings.TrimSpace(in.CategoryID))
	if err != nil {
		return nil, err
	}

	now := s.now()
	topic := &models.Topic{
		ID:         newID(),
		Title:      title,
		Content:    content,
		CategoryID: category.ID,
		CreatedBy:  creatorID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreateTopic(ctx, topic); err != nil {
		return nil, err
	}

	s.log.Infof("Topic created: %s by %s", topic.ID, creatorID)
	return topic, nil
}

// CreateTopicsBulk creates each topic independently. A failing item is
// reported in the result and does not stop the batch.
func (s *Service) CreateTopicsBulk(ctx context.Context, items []TopicInput, creatorID string) *BulkTopicsResult {
	result := &BulkTopicsResult{Created: []models.Topic{}}
	for i, item := range items {
		topic, err := s.CreateTopic(ctx, item, creatorID)
		if err != nil {
			msg := Message(err, "Error creating topic")
			var e *Error
			if !errors.As(err, &e) {
				s.log.Errorf("Bulk topic %d failed: %v", i, err)
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Error creating topic %q: %s", item.Title, msg))
			continue
		}
		result.Created = append(result.Created, *topic)
	}
	return result
}
