package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Dan9191/daily-learning/internal/config"
	"github.com/Dan9191/daily-learning/internal/models"
	"github.com/Dan9191/daily-learning/internal/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *fakeMailer) SendWelcome(to, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return m.err
}

// fixture is a service over a memory store with a controllable clock and draw
type fixture struct {
	t     *testing.T
	ctx   context.Context
	svc   *Service
	store *repository.MemoryStore
	cfg   *config.Config
	mail  *fakeMailer
	now   time.Time
	pick  int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		store: repository.NewMemoryStore(),
		cfg:   &config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour, Location: time.UTC},
		mail:  &fakeMailer{},
		now:   baseTime,
	}
	f.svc = NewService(f.store, logger, f.cfg,
		WithClock(func() time.Time { return f.now }),
		WithRandom(func(n int64) int64 { return f.pick % n }),
		WithMailer(f.mail),
	)
	return f
}

func (f *fixture) user(name string) *models.User {
	f.t.Helper()
	session, err := f.svc.CreateUser(f.ctx, UserInput{Name: name, Email: name + "@example.com"})
	require.NoError(f.t, err)
	return session.User
}

func (f *fixture) category(name string) *models.Category {
	f.t.Helper()
	c, err := f.svc.CreateCategory(f.ctx, CategoryInput{Name: name})
	require.NoError(f.t, err)
	return c
}

// topic creates a topic one second after the previous one
func (f *fixture) topic(title, categoryID, creatorID string) *models.Topic {
	f.t.Helper()
	f.now = f.now.Add(time.Second)
	topic, err := f.svc.CreateTopic(f.ctx, TopicInput{Title: title, Content: title + " content", CategoryID: categoryID}, creatorID)
	require.NoError(f.t, err)
	return topic
}

func (f *fixture) reloadUser(id string) *models.User {
	f.t.Helper()
	u, err := f.store.GetUser(f.ctx, id)
	require.NoError(f.t, err)
	return u
}

func (f *fixture) reloadTopic(id string) *models.Topic {
	f.t.Helper()
	topic, err := f.store.GetTopic(f.ctx, id)
	require.NoError(f.t, err)
	return topic
}

func requireKind(t *testing.T, err error, kind error, message string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.Is(err, kind), "expected %v, got %v", kind, err)
	if message != "" {
		require.Equal(t, message, Message(err, ""))
	}
}
