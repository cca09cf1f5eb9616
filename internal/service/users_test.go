package service

import (
	"errors"
	"testing"

	"github.com/Dan9191/daily-learning/internal/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateUser(t *testing.T) {
	f := newFixture(t)

	session, err := f.svc.CreateUser(f.ctx, UserInput{Name: " Ada ", Email: "ada@example.com", Password: "s3cret"})
	require.NoError(t, err)

	u := session.User
	assert.Equal(t, "Ada", u.Name)
	assert.NotEmpty(t, u.PasswordHash)
	assert.NotEqual(t, "s3cret", u.PasswordHash)
	assert.Equal(t, []string{}, u.ReadTopics)
	assert.Equal(t, []string{}, u.FavoriteTopics)
	assert.Nil(t, u.LastReadDate)
	assert.Zero(t, u.DailyReadCount)

	userID, err := auth.ParseToken(session.Token, []byte(f.cfg.JWTSecret))
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.Equal(t, []string{"ada@example.com"}, f.mail.sent)
}

func TestCreateUser_Validation(t *testing.T) {
	f := newFixture(t)
	f.user("ada")

	_, err := f.svc.CreateUser(f.ctx, UserInput{Name: "Ada", Email: "ada@example.com"})
	requireKind(t, err, ErrConflict, "User already exists")

	_, err = f.svc.CreateUser(f.ctx, UserInput{Name: "", Email: "x@example.com"})
	requireKind(t, err, ErrInvalidInput, "Name and email are required")

	_, err = f.svc.CreateUser(f.ctx, UserInput{Name: "X", Email: "  "})
	requireKind(t, err, ErrInvalidInput, "Name and email are required")
}

func TestCreateUser_MailFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.mail.err = errors.New("smtp down")

	session, err := f.svc.CreateUser(f.ctx, UserInput{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateUser(f.ctx, UserInput{Name: "Ada", Email: "ada@example.com", Password: "s3cret"})
	require.NoError(t, err)

	session, err := f.svc.Login(f.ctx, "ada@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", session.User.Email)

	_, err = f.svc.Login(f.ctx, "ada@example.com", "wrong")
	requireKind(t, err, ErrInvalidCredentials, "Invalid credentials")

	_, err = f.svc.Login(f.ctx, "nobody@example.com", "s3cret")
	requireKind(t, err, ErrInvalidCredentials, "Invalid credentials")
}

func TestLogin_AccountWithoutPassword(t *testing.T) {
	f := newFixture(t)
	u := f.user("ada")

	session, err := f.svc.Login(f.ctx, "ada@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, u.ID, session.User.ID)
}

func TestGetUser(t *testing.T) {
	f := newFixture(t)
	u := f.user("ada")

	profile, err := f.svc.GetUser(f.ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, profile.ID)
	assert.Equal(t, "ada@example.com", profile.Email)

	_, err = f.svc.GetUser(f.ctx, uuid.NewString())
	requireKind(t, err, ErrNotFound, "User not found")
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t)
	u := f.user("ada")
	f.user("bob")

	updated, err := f.svc.UpdateUser(f.ctx, u.ID, UserPatch{Name: strPtr("Ada L."), Password: strPtr("n3w")})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.Name)
	assert.Equal(t, "ada@example.com", updated.Email)

	_, err = f.svc.Login(f.ctx, "ada@example.com", "n3w")
	require.NoError(t, err)

	_, err = f.svc.UpdateUser(f.ctx, u.ID, UserPatch{Email: strPtr("bob@example.com")})
	requireKind(t, err, ErrConflict, "User already exists")

	_, err = f.svc.UpdateUser(f.ctx, u.ID, UserPatch{Name: strPtr(" ")})
	requireKind(t, err, ErrInvalidInput, "Name must not be empty")

	_, err = f.svc.UpdateUser(f.ctx, uuid.NewString(), UserPatch{Name: strPtr("x")})
	requireKind(t, err, ErrNotFound, "User not found")
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	u := f.user("ada")

	require.NoError(t, f.svc.DeleteUser(f.ctx, u.ID))

	_, err := f.svc.GetUser(f.ctx, u.ID)
	requireKind(t, err, ErrNotFound, "User not found")

	err = f.svc.DeleteUser(f.ctx, u.ID)
	requireKind(t, err, ErrNotFound, "User not found")
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	f.user("ada")
	f.user("bob")

	users, err := f.svc.ListUsers(f.ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "ada", users[0].Name)
}
