package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dan9191/daily-learning/internal/models"
	"github.com/Dan9191/daily-learning/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// UserInput carries the fields of a new user. Password is optional.
type UserInput struct {
	Name     string
	Email    string
	Password string
}

// UserPatch carries the owner-editable fields. Nil fields are left unchanged.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
}

// Session is the result of a successful registration or login
type Session struct {
	User  *models.User
	Token string
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CreateUser registers a user with a unique email and returns a session for it
func (s *Service) CreateUser(ctx context.Context, in UserInput) (*Session, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" {
		return nil, newError(ErrInvalidInput, "Name and email are required")
	}

	_, err := s.store.FindUserByEmail(ctx, email)
	if err == nil {
		return nil, newError(ErrConflict, "User already exists")
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	user := &models.User{
		ID:             newID(),
		Name:           name,
		Email:          email,
		ReadTopics:     []string{},
		FavoriteTopics: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.Password != "" {
		if user.PasswordHash, err = hashPassword(in.Password); err != nil {
			return nil, err
		}
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, newError(ErrConflict, "User already exists")
		}
		return nil, err
	}
	s.log.Infof("User registered: %s", user.Email)

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcome(user.Email, user.Name); err != nil {
			s.log.Warnf("Welcome email to %s not sent: %v", user.Email, err)
		}
	}
	return &Session{User: user, Token: token}, nil
}

// Login authenticates a user by email. Accounts with a stored password hash
// must present the matching password; accounts created without one are
// admitted on email alone.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.store.FindUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(ErrInvalidCredentials, "Invalid credentials")
	}
	if err != nil {
		return nil, err
	}

	if user.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			return nil, newError(ErrInvalidCredentials, "Invalid credentials")
		}
	} else {
		s.log.Warnf("User %s logged in without a password", user.ID)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, err
	}
	s.log.Infof("User logged in: %s", user.Email)
	return &Session{User: user, Token: token}, nil
}

// ListUsers returns all users
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	return users, nil
}

// GetUser returns the public profile of a user
func (s *Service) GetUser(ctx context.Context, id string) (*models.UserProfile, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

// UpdateUser changes the owner-editable fields of a user
func (s *Service) UpdateUser(ctx context.Context, id string, patch UserPatch) (*models.User, error) {
	if !validID(id) {
		return nil, newError(ErrNotFound, "User not found")
	}

	var upd models.UserUpdate
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, newError(ErrInvalidInput, "Name must not be empty")
		}
		upd.Name = &name
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email == "" {
			return nil, newError(ErrInvalidInput, "Email must not be empty")
		}
		upd.Email = &email
	}
	if patch.Password != nil {
		hashed, err := hashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		upd.PasswordHash = &hashed
	}

	user, err := s.store.UpdateUser(ctx, id, upd, s.now())
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, newError(ErrNotFound, "User not found")
	case errors.Is(err, repository.ErrDuplicate):
		return nil, newError(ErrConflict, "User already exists")
	case err != nil:
		return nil, err
	}

	s.log.Infof("User updated: %s", user.ID)
	return user, nil
}

// DeleteUser removes a user
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if !validID(id) {
		return newError(ErrNotFound, "User not found")
	}
	err := s.store.DeleteUser(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return newError(ErrNotFound, "User not found")
	}
	if err != nil {
		return err
	}
	s.log.Infof("User deleted: %s", id)
	return nil
}
