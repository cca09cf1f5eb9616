package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/daily-learning/internal/models"
	"github.com/Dan9191/daily-learning/internal/repository"
)

// DrawResult is the outcome of a daily draw. Topic is nil when LimitReached.
type DrawResult struct {
	Topic        *models.Topic
	LimitReached bool
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// quotaAvailable reports whether the user may draw a topic on the day that
// starts at dayStart. A user who never read, last read before today, or has
// no reads counted is granted the quota.
func quotaAvailable(u *models.User, dayStart time.Time) bool {
	return u.LastReadDate == nil || u.LastReadDate.Before(dayStart) || u.DailyReadCount == 0
}

// MarkRead credits the user with reading a topic. Repeated reads of the same
// topic are no-ops.
func (s *Service) MarkRead(ctx context.Context, userID, topicID string) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	topic, err := s.loadTopic(ctx, topicID)
	if err != nil {
		return err
	}
	if user.HasRead(topic.ID) {
		return nil
	}

	marked, err := s.store.MarkTopicRead(ctx, user.ID, topic.ID, s.now())
	if err != nil {
		return fmt.Errorf("failed to mark topic read: %w", err)
	}
	if marked {
		s.log.Infof("User %s read topic %s", user.ID, topic.ID)
	}
	return nil
}

// DailyDraw hands out one random topic per user per calendar day
func (s *Service) DailyDraw(ctx context.Context, userID string) (*DrawResult, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dayStart := startOfDay(now, s.location())
	if !quotaAvailable(user, dayStart) {
		return &DrawResult{LimitReached: true}, nil
	}

	count, err := s.store.CountTopics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count topics: %w", err)
	}
	if count == 0 {
		return nil, newError(ErrNoTopics, "No topics available")
	}

	topic, err := s.store.TopicAt(ctx, s.randIntN(count))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrNoTopics, "No topics available")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to draw topic: %w", err)
	}

	claimed, err := s.store.ClaimDailyRead(ctx, user.ID, dayStart, now)
	if err != nil {
		return nil, fmt.Errorf("failed to record daily read: %w", err)
	}
	if !claimed {
		// A concurrent draw for the same user consumed the quota first.
		return &DrawResult{LimitReached: true}, nil
	}

	s.log.Infof("User %s drew daily topic %s", user.ID, topic.ID)
	return &DrawResult{Topic: topic}, nil
}
