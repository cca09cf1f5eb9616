package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/Dan9191/daily-learning/internal/auth"
	"github.com/Dan9191/daily-learning/internal/config"
	"github.com/Dan9191/daily-learning/internal/models"
	"github.com/Dan9191/daily-learning/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Mailer sends account notifications
type Mailer interface {
	SendWelcome(to, name string) error
}

// Service handles business logic
type Service struct {
	store    repository.Store
	log      *logrus.Logger
	config   *config.Config
	mailer   Mailer
	now      func() time.Time
	randIntN func(n int64) int64
}

// Option customizes a Service
type Option func(*Service)

// WithClock replaces the wall clock
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRandom replaces the source used to draw daily topics.
// randIntN must return a value in [0, n).
func WithRandom(randIntN func(n int64) int64) Option {
	return func(s *Service) { s.randIntN = randIntN }
}

// WithMailer enables account notifications
func WithMailer(m Mailer) Option {
	return func(s *Service) { s.mailer = m }
}

// NewService initializes a new service
func NewService(store repository.Store, log *logrus.Logger, cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		store:    store,
		log:      log,
		config:   cfg,
		now:      time.Now,
		randIntN: rand.Int63n,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) location() *time.Location {
	if s.config.Location != nil {
		return s.config.Location
	}
	return time.Local
}

func (s *Service) issueToken(userID string) (string, error) {
	token, err := auth.GenerateToken(userID, []byte(s.config.JWTSecret), s.config.TokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

func newID() string {
	return uuid.NewString()
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *Service) loadUser(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, newError(ErrNotFound, "User not found")
	}
	user, err := s.store.GetUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrNotFound, "User not found")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) loadTopic(ctx context.Context, id string) (*models.Topic, error) {
	if !validID(id) {
		return nil, newError(ErrNotFound, "Topic not found")
	}
	topic, err := s.store.GetTopic(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrNotFound, "Topic not found")
	}
	if err != nil {
		return nil, err
	}
	return topic, nil
}

func (s *Service) loadCategory(ctx context.Context, id string) (*models.Category, error) {
	if !validID(id) {
		return nil, newError(ErrNotFound, "Category not found")
	}
	category, err := s.store.GetCategory(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrNotFound, "Category not found")
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}
