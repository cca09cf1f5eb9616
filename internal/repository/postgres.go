package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dan9191/daily-learning/internal/models"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const userColumns = `id, name, email, password_hash, read_topics, favorite_topics,
		last_read_date, daily_read_count, last_favorite_added, created_at, updated_at`

// PostgresStore keeps documents in PostgreSQL, with set fields stored as arrays
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore initializes a new PostgreSQL store
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close closes the underlying connection pool
func (r *PostgresStore) Close(ctx context.Context) error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	var lastRead, lastFavorite sql.NullTime
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		pq.Array(&user.ReadTopics), pq.Array(&user.FavoriteTopics),
		&lastRead, &user.DailyReadCount, &lastFavorite, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastRead.Valid {
		user.LastReadDate = &lastRead.Time
	}
	if lastFavorite.Valid {
		user.LastFavoriteAdded = &lastFavorite.Time
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateUser creates a new user in the database
func (r *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, read_topics, favorite_topics,
			daily_read_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash,
		pq.Array(user.ReadTopics), pq.Array(user.FavoriteTopics), user.DailyReadCount,
		user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by id
func (r *PostgresStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByEmail retrieves a user by email
func (r *PostgresStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// ListUsers returns all users
func (r *PostgresStore) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUser applies the non-nil fields of upd
func (r *PostgresStore) UpdateUser(ctx context.Context, id string, upd models.UserUpdate, at time.Time) (*models.User, error) {
	args := []any{id}
	var sets []string
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Name != nil {
		set("name", *upd.Name)
	}
	if upd.Email != nil {
		set("email", *upd.Email)
	}
	if upd.PasswordHash != nil {
		set("password_hash", *upd.PasswordHash)
	}
	set("updated_at", at)

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if isUniqueViolation(err) {
		return nil, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user
func (r *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	ok, err := affected(res)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// MarkTopicRead records a first read of topicID
func (r *PostgresStore) MarkTopicRead(ctx context.Context, userID, topicID string, at time.Time) (bool, error) {
	query := `
		UPDATE users
		SET read_topics = array_append(COALESCE(read_topics, '{}'), $2),
			last_read_date = $3,
			daily_read_count = daily_read_count + 1,
			updated_at = $3
		WHERE id = $1 AND NOT ($2 = ANY(COALESCE(read_topics, '{}')))`
	res, err := r.db.ExecContext(ctx, query, userID, topicID, at)
	if err != nil {
		return false, fmt.Errorf("failed to mark topic read: %w", err)
	}
	return affected(res)
}

// ClaimDailyRead consumes the daily quota if it is still available
func (r *PostgresStore) ClaimDailyRead(ctx context.Context, userID string, dayStart, at time.Time) (bool, error) {
	query := `
		UPDATE users
		SET daily_read_count = 1, last_read_date = $3, updated_at = $3
		WHERE id = $1
			AND (last_read_date IS NULL OR last_read_date < $2 OR daily_read_count = 0)`
	res, err := r.db.ExecContext(ctx, query, userID, dayStart, at)
	if err != nil {
		return false, fmt.Errorf("failed to claim daily read: %w", err)
	}
	return affected(res)
}

// AddFavorite adds topicID to the user's favorites if absent
func (r *PostgresStore) AddFavorite(ctx context.Context, userID, topicID string, at time.Time) (bool, error) {
	query := `
		UPDATE users
		SET favorite_topics = array_append(favorite_topics, $2),
			last_favorite_added = $3,
			updated_at = $3
		WHERE id = $1 AND NOT ($2 = ANY(favorite_topics))`
	res, err := r.db.ExecContext(ctx, query, userID, topicID, at)
	if err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}
	return affected(res)
}

// RemoveFavorite removes topicID from the user's favorites if present
func (r *PostgresStore) RemoveFavorite(ctx context.Context, userID, topicID string, at time.Time) (bool, error) {
	query := `
		UPDATE users
		SET favorite_topics = array_remove(favorite_topics, $2), updated_at = $3
		WHERE id = $1 AND $2 = ANY(favorite_topics)`
	res, err := r.db.ExecContext(ctx, query, userID, topicID, at)
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	return affected(res)
}

// BackfillReadTopics sets an empty read history where it is missing
func (r *PostgresStore) BackfillReadTopics(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET read_topics = '{}' WHERE read_topics IS NULL`)
	if err != nil {
		return 0, fmt.Errorf("failed to backfill read topics: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to backfill read topics: %w", err)
	}
	return n, nil
}
