package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dan9191/daily-learning/internal/config"
	"github.com/Dan9191/daily-learning/internal/models"
	"github.com/Dan9191/daily-learning/internal/repository"
	"github.com/Dan9191/daily-learning/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	t      *testing.T
	router http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := &config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour, Location: time.UTC}

	svc := service.NewService(repository.NewMemoryStore(), logger, cfg)
	return &testAPI{t: t, router: NewRouter(NewHandler(svc, logger), cfg, logger)}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type account struct {
	ID    string
	Token string
}

func (a *testAPI) register(name string) account {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/api/users", "", map[string]string{"name": name, "email": name + "@example.com"})
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	resp := decode[struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}](a.t, rr)
	return account{ID: resp.User.ID, Token: resp.Token}
}

func (a *testAPI) category(token, name string) models.Category {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/api/categories", token, map[string]string{"name": name})
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[struct {
		Category models.Category `json:"category"`
	}](a.t, rr).Category
}

func (a *testAPI) topic(token, title, categoryID string) models.Topic {
	a.t.Helper()
	rr := a.do(http.MethodPost, "/api/topics", token, map[string]string{
		"title": title, "content": title + " content", "categoryId": categoryID,
	})
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[struct {
		Topic models.Topic `json:"topic"`
	}](a.t, rr).Topic
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	rr := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/topics"},
		{http.MethodPost, "/api/topics"},
		{http.MethodPost, "/api/topics/bulk"},
		{http.MethodGet, "/api/topics/daily"},
		{http.MethodPost, "/api/categories"},
		{http.MethodPost, "/api/users/abc/read-topic"},
		{http.MethodPost, "/api/users/abc/favorites"},
		{http.MethodDelete, "/api/users/abc"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rr := api.do(rt.method, rt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, "No token, authorization denied", decode[errorResponse](t, rr).Message)
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)

	rr := api.do(http.MethodPost, "/api/users", "", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "s3cret",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), "s3cret")
	assert.NotContains(t, rr.Body.String(), "password")

	rr = api.do(http.MethodPost, "/api/users", "", map[string]string{"name": "Ada", "email": "ada@example.com"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "User already exists", decode[errorResponse](t, rr).Message)

	rr = api.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "ada@example.com", "password": "s3cret"})
	require.Equal(t, http.StatusOK, rr.Code)
	login := decode[map[string]string](t, rr)
	assert.NotEmpty(t, login["token"])
	assert.NotEmpty(t, login["userId"])

	rr = api.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "ada@example.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid credentials", decode[errorResponse](t, rr).Message)

	rr = api.do(http.MethodPost, "/api/users", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetUser(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register("ada")

	rr := api.do(http.MethodGet, "/api/users/"+ada.ID, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	profile := decode[models.UserProfile](t, rr)
	assert.Equal(t, "ada@example.com", profile.Email)

	rr = api.do(http.MethodGet, "/api/users/not-an-id", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, errorResponse{Message: "User not found"}, decode[errorResponse](t, rr))
}

func TestUserMutationsAreSelfOnly(t *testing.T) {
	api := newTestAPI(t)
	ada, bob := api.register("ada"), api.register("bob")
	topic := api.topic(ada.Token, "Go", api.category(ada.Token, "Science").ID)

	forbidden := []struct {
		method, path string
		body         any
	}{
		{http.MethodPut, "/api/users/" + bob.ID, map[string]string{"name": "Mallory"}},
		{http.MethodDelete, "/api/users/" + bob.ID, nil},
		{http.MethodPost, "/api/users/" + bob.ID + "/read-topic", nil},
		{http.MethodPost, "/api/users/" + bob.ID + "/favorites", map[string]string{"topicId": topic.ID}},
		{http.MethodPost, "/api/users/" + bob.ID + "/favorites/" + topic.ID, nil},
		{http.MethodDelete, "/api/users/" + bob.ID + "/favorites/" + topic.ID, nil},
	}
	for _, f := range forbidden {
		rr := api.do(f.method, f.path, ada.Token, f.body)
		assert.Equal(t, http.StatusForbidden, rr.Code, "%s %s", f.method, f.path)
	}

	rr := api.do(http.MethodPut, "/api/users/"+ada.ID, ada.Token, map[string]string{"name": "Ada L."})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Ada L.", decode[models.User](t, rr).Name)

	rr = api.do(http.MethodDelete, "/api/users/"+ada.ID, ada.Token, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = api.do(http.MethodGet, "/api/users/"+ada.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDailyDraw(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register("ada")
	path := "/api/users/" + ada.ID + "/read-topic"

	rr := api.do(http.MethodPost, path, ada.Token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "No topics available", decode[errorResponse](t, rr).Message)

	topic := api.topic(ada.Token, "Go", api.category(ada.Token, "Science").ID)

	rr = api.do(http.MethodPost, path, ada.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	first := decode[struct {
		Message string       `json:"message"`
		Topic   models.Topic `json:"topic"`
	}](t, rr)
	assert.Equal(t, "Daily topic retrieved successfully", first.Message)
	assert.Equal(t, topic.ID, first.Topic.ID)

	rr = api.do(http.MethodPost, path, ada.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	second := decode[map[string]any](t, rr)
	assert.Equal(t, true, second["limitReached"])
	assert.Equal(t, "You have reached your daily limit. Come back tomorrow for more!", second["message"])
	assert.NotContains(t, second, "topic")
}

func TestFavorites(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register("ada")
	cat := api.category(ada.Token, "Science")
	first := api.topic(ada.Token, "first", cat.ID)
	second := api.topic(ada.Token, "second", cat.ID)
	base := "/api/users/" + ada.ID + "/favorites"

	rr := api.do(http.MethodPost, base, ada.Token, map[string]string{"topicId": first.ID})
	require.Equal(t, http.StatusOK, rr.Code)
	added := decode[favoritesResponse](t, rr)
	assert.Equal(t, "Favorite topic added successfully", added.Message)
	assert.Equal(t, []string{first.ID}, added.FavoriteTopics)

	rr = api.do(http.MethodPost, base+"/"+second.ID, ada.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{first.ID, second.ID}, decode[favoritesResponse](t, rr).FavoriteTopics)

	rr = api.do(http.MethodPost, base+"/"+second.ID, ada.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[favoritesResponse](t, rr).FavoriteTopics, 2)

	rr = api.do(http.MethodGet, base, ada.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	topics := decode[[]models.Topic](t, rr)
	require.Len(t, topics, 2)
	for _, topic := range topics {
		assert.Equal(t, 1, topic.FavoriteCount)
	}

	rr = api.do(http.MethodDelete, base+"/"+first.ID, ada.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	removed := decode[favoritesResponse](t, rr)
	assert.Equal(t, "Favorite topic removed successfully", removed.Message)
	assert.Equal(t, []string{second.ID}, removed.FavoriteTopics)

	rr = api.do(http.MethodPost, base, ada.Token, map[string]string{"topicId": "missing"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Topic not found", decode[errorResponse](t, rr).Message)
}

func TestMarkTopicRead(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register("ada")
	topic := api.topic(ada.Token, "Go", api.category(ada.Token, "Science").ID)

	for i := 0; i < 2; i++ {
		rr := api.do(http.MethodPost, "/api/topics/"+topic.ID+"/read", ada.Token, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Topic marked as read successfully", decode[messageResponse](t, rr).Message)
	}

	rr := api.do(http.MethodGet, "/api/users/"+ada.ID, "", nil)
	assert.Equal(t, 1, decode[models.UserProfile](t, rr).DailyReadCount)
}

func TestTopics(t *testing.T) {
	api := newTestAPI(t)
	ada, bob := api.register("ada"), api.register("bob")
	cat := api.category(ada.Token, "Science")
	api.topic(ada.Token, "old", cat.ID)
	latest := api.topic(bob.Token, "new", cat.ID)

	rr := api.do(http.MethodGet, "/api/topics?limit=1", ada.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	details := decode[[]models.TopicDetails](t, rr)
	require.Len(t, details, 1)
	assert.Equal(t, latest.ID, details[0].ID)
	assert.Equal(t, "Science", details[0].CategoryName)
	assert.Equal(t, "bob", details[0].CreatorName)

	rr = api.do(http.MethodGet, "/api/topics?limit=0", ada.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(http.MethodGet, "/api/topics/daily", ada.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, latest.ID, decode[struct {
		Topic models.Topic `json:"topic"`
	}](t, rr).Topic.ID)

	rr = api.do(http.MethodGet, "/api/topics/user", ada.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	mine := decode[[]models.Topic](t, rr)
	require.Len(t, mine, 1)
	assert.Equal(t, "old", mine[0].Title)

	rr = api.do(http.MethodPost, "/api/topics", ada.Token, map[string]string{"title": "x", "categoryId": cat.ID})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Title and content are required", decode[errorResponse](t, rr).Message)
}

func TestCreateTopicsBulk(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register("ada")
	cat := api.category(ada.Token, "Science")

	rr := api.do(http.MethodPost, "/api/topics/bulk", ada.Token, map[string]string{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Input should be an array of topics", decode[errorResponse](t, rr).Message)

	rr = api.do(http.MethodPost, "/api/topics/bulk", ada.Token, []any{
		map[string]string{"title": "Go", "content": "Goroutines", "category": cat.ID},
		map[string]string{"title": "Empty", "category": cat.ID},
		"not an object",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	resp := decode[bulkTopicsResponse](t, rr)
	require.Len(t, resp.CreatedTopics, 1)
	assert.Equal(t, ada.ID, resp.CreatedTopics[0].CreatedBy)
	assert.Equal(t, []string{
		"Topic 3: invalid topic object",
		`Error creating topic "Empty": Title and content are required`,
	}, resp.Errors)
}

func TestCategories(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register("ada")
	api.category(ada.Token, "Science")

	rr := api.do(http.MethodPost, "/api/categories", ada.Token, map[string]string{"name": "Science"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "A category with this name already exists", decode[errorResponse](t, rr).Message)

	rr = api.do(http.MethodPost, "/api/categories/bulk", ada.Token, "{}")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid input. Expected an array of categories.", decode[errorResponse](t, rr).Message)

	rr = api.do(http.MethodPost, "/api/categories/bulk", ada.Token, []map[string]string{
		{"name": "Art"}, {"name": "Art"},
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	resp := decode[bulkCategoriesResponse](t, rr)
	require.Len(t, resp.CreatedCategories, 1)
	assert.Equal(t, []string{`A category with the name "Art" already exists.`}, resp.Errors)

	rr = api.do(http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	categories := decode[[]models.Category](t, rr)
	require.Len(t, categories, 2)
	assert.Equal(t, "Art", categories[0].Name)
}

func TestTopicFeed(t *testing.T) {
	api := newTestAPI(t)
	ada := api.register("ada")
	cat := api.category(ada.Token, "Science")
	api.topic(ada.Token, "old", cat.ID)
	latest := api.topic(ada.Token, "new", cat.ID)

	rr := api.do(http.MethodGet, "/api/topics/feed?limit=1", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), `<guid isPermaLink="false">`+latest.ID+`</guid>`)
	assert.Contains(t, rr.Body.String(), "<category>Science</category>")
	assert.NotContains(t, rr.Body.String(), "<title>old</title>")

	rr = api.do(http.MethodGet, "/api/topics/feed?limit=500", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
