package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/daily-learning/internal/models"
	"github.com/lib/pq"
)

const topicColumns = `id, title, content, category_id, favorite_count, created_by, created_at, updated_at`

func scanTopic(row rowScanner) (*models.Topic, error) {
	topic := &models.Topic{}
	err := row.Scan(&topic.ID, &topic.Title, &topic.Content, &topic.CategoryID,
		&topic.FavoriteCount, &topic.CreatedBy, &topic.CreatedAt, &topic.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return topic, nil
}

func (r *PostgresStore) queryTopic(ctx context.Context, query string, args ...any) (*models.Topic, error) {
	topic, err := scanTopic(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find topic: %w", err)
	}
	return topic, nil
}

func (r *PostgresStore) queryTopics(ctx context.Context, query string, args ...any) ([]models.Topic, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	defer rows.Close()

	topics := []models.Topic{}
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, *topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list topics: %w", err)
	}
	return topics, nil
}

// CreateTopic creates a new topic in the database
func (r *PostgresStore) CreateTopic(ctx context.Context, topic *models.Topic) error {
	query := `
		INSERT INTO topics (id, title, content, category_id, favorite_count, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query, topic.ID, topic.Title, topic.Content, topic.CategoryID,
		topic.FavoriteCount, topic.CreatedBy, topic.CreatedAt, topic.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

// GetTopic retrieves a topic by id
func (r *PostgresStore) GetTopic(ctx context.Context, id string) (*models.Topic, error) {
	return r.queryTopic(ctx, `SELECT `+topicColumns+` FROM topics WHERE id = $1`, id)
}

// LatestTopic retrieves the most recently created topic
func (r *PostgresStore) LatestTopic(ctx context.Context) (*models.Topic, error) {
	return r.queryTopic(ctx, `SELECT `+topicColumns+` FROM topics ORDER BY created_at DESC, id DESC LIMIT 1`)
}

// LatestTopics retrieves the newest topics with category and creator names
func (r *PostgresStore) LatestTopics(ctx context.Context, limit int) ([]models.TopicDetails, error) {
	query := `
		SELECT t.id, t.title, t.content, t.category_id, t.favorite_count, t.created_by,
			t.created_at, t.updated_at, COALESCE(c.name, ''), COALESCE(u.name, '')
		FROM topics t
		LEFT JOIN categories c ON c.id = t.category_id
		LEFT JOIN users u ON u.id = t.created_by
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list latest topics: %w", err)
	}
	defer rows.Close()

	topics := []models.TopicDetails{}
	for rows.Next() {
		var d models.TopicDetails
		err := rows.Scan(&d.ID, &d.Title, &d.Content, &d.CategoryID, &d.FavoriteCount, &d.CreatedBy,
			&d.CreatedAt, &d.UpdatedAt, &d.CategoryName, &d.CreatorName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list latest topics: %w", err)
	}
	return topics, nil
}

// TopicsByCreator retrieves the topics created by a user
func (r *PostgresStore) TopicsByCreator(ctx context.Context, userID string) ([]models.Topic, error) {
	return r.queryTopics(ctx, `SELECT `+topicColumns+` FROM topics WHERE created_by = $1 ORDER BY created_at`, userID)
}

// TopicsByIDs retrieves the topics with the given ids in table order
func (r *PostgresStore) TopicsByIDs(ctx context.Context, ids []string) ([]models.Topic, error) {
	if len(ids) == 0 {
		return []models.Topic{}, nil
	}
	return r.queryTopics(ctx, `SELECT `+topicColumns+` FROM topics WHERE id = ANY($1)`, pq.Array(ids))
}

// ListTopics retrieves all topics in creation order
func (r *PostgresStore) ListTopics(ctx context.Context) ([]models.Topic, error) {
	return r.queryTopics(ctx, `SELECT `+topicColumns+` FROM topics ORDER BY created_at, id`)
}

// CountTopics returns the number of topics
func (r *PostgresStore) CountTopics(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM topics`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count topics: %w", err)
	}
	return n, nil
}

// TopicAt retrieves the topic at the given position in creation order
func (r *PostgresStore) TopicAt(ctx context.Context, offset int64) (*models.Topic, error) {
	return r.queryTopic(ctx, `SELECT `+topicColumns+` FROM topics ORDER BY created_at, id OFFSET $1 LIMIT 1`, offset)
}

func (r *PostgresStore) execTopic(ctx context.Context, action, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	ok, err := affected(res)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// IncrementFavoriteCount adds one to the topic's favorite counter
func (r *PostgresStore) IncrementFavoriteCount(ctx context.Context, id string) error {
	return r.execTopic(ctx, "increment favorite count",
		`UPDATE topics SET favorite_count = favorite_count + 1, updated_at = CURRENT_TIMESTAMP WHERE id = $1`, id)
}

// DecrementFavoriteCount subtracts one from the topic's favorite counter, floored at zero
func (r *PostgresStore) DecrementFavoriteCount(ctx context.Context, id string) error {
	return r.execTopic(ctx, "decrement favorite count",
		`UPDATE topics SET favorite_count = GREATEST(favorite_count - 1, 0), updated_at = CURRENT_TIMESTAMP WHERE id = $1`, id)
}

// SetFavoriteCount overwrites the topic's favorite counter
func (r *PostgresStore) SetFavoriteCount(ctx context.Context, id string, count int) error {
	return r.execTopic(ctx, "set favorite count",
		`UPDATE topics SET favorite_count = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`, id, count)
}

// SetTopicCategory points the topic at another category
func (r *PostgresStore) SetTopicCategory(ctx context.Context, id, categoryID string) error {
	return r.execTopic(ctx, "set topic category",
		`UPDATE topics SET category_id = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`, id, categoryID)
}
