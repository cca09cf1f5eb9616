package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/daily-learning/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps documents in MongoDB collections
type MongoStore struct {
	client     *mongo.Client
	users      *mongo.Collection
	topics     *mongo.Collection
	categories *mongo.Collection
}

// NewMongoStore connects to MongoDB and ensures the unique indexes exist
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client:     client,
		users:      db.Collection("users"),
		topics:     db.Collection("topics"),
		categories: db.Collection("categories"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		{s.categories, mongo.IndexModel{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique}},
		{s.topics, mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}},
		{s.topics, mongo.IndexModel{Keys: bson.D{{Key: "createdBy", Value: 1}}}},
	}
	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

// Close disconnects the client
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func byID(id string) bson.M {
	return bson.M{"_id": id}
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOneOptions) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, filter, opts...).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find in %s: %w", coll.Name(), err)
	}
	return &doc, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", coll.Name(), err)
	}
	return docs, nil
}

func modified(res *mongo.UpdateResult, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// CreateUser inserts a user document
func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by id
func (s *MongoStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, s.users, byID(id))
}

// FindUserByEmail retrieves a user by email
func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, s.users, bson.M{"email": email})
}

// ListUsers returns all users
func (s *MongoStore) ListUsers(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, s.users, bson.M{})
}

// UpdateUser applies the non-nil fields of upd
func (s *MongoStore) UpdateUser(ctx context.Context, id string, upd models.UserUpdate, at time.Time) (*models.User, error) {
	set := bson.M{"updatedAt": at}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.PasswordHash != nil {
		set["password"] = *upd.PasswordHash
	}

	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.users.FindOneAndUpdate(ctx, byID(id), bson.M{"$set": set}, opts).Decode(&user)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, ErrDuplicate
	case err != nil:
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}

// DeleteUser removes a user document
func (s *MongoStore) DeleteUser(ctx context.Context, id string) error {
	res, err := s.users.DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkTopicRead records a first read of topicID
func (s *MongoStore) MarkTopicRead(ctx context.Context, userID, topicID string, at time.Time) (bool, error) {
	filter := bson.M{"_id": userID, "readTopics": bson.M{"$ne": topicID}}
	update := bson.M{
		"$push": bson.M{"readTopics": topicID},
		"$set":  bson.M{"lastReadDate": at, "updatedAt": at},
		"$inc":  bson.M{"dailyReadCount": 1},
	}
	ok, err := modified(s.users.UpdateOne(ctx, filter, update))
	if err != nil {
		return false, fmt.Errorf("failed to mark topic read: %w", err)
	}
	return ok, nil
}

// ClaimDailyRead consumes the daily quota if it is still available
func (s *MongoStore) ClaimDailyRead(ctx context.Context, userID string, dayStart, at time.Time) (bool, error) {
	filter := bson.M{
		"_id": userID,
		"$or": bson.A{
			bson.M{"lastReadDate": nil},
			bson.M{"lastReadDate": bson.M{"$lt": dayStart}},
			bson.M{"dailyReadCount": 0},
		},
	}
	update := bson.M{"$set": bson.M{"dailyReadCount": 1, "lastReadDate": at, "updatedAt": at}}
	ok, err := modified(s.users.UpdateOne(ctx, filter, update))
	if err != nil {
		return false, fmt.Errorf("failed to claim daily read: %w", err)
	}
	return ok, nil
}

// AddFavorite adds topicID to the user's favorites if absent
func (s *MongoStore) AddFavorite(ctx context.Context, userID, topicID string, at time.Time) (bool, error) {
	filter := bson.M{"_id": userID, "favoriteTopics": bson.M{"$ne": topicID}}
	update := bson.M{
		"$addToSet": bson.M{"favoriteTopics": topicID},
		"$set":      bson.M{"lastFavoriteAdded": at, "updatedAt": at},
	}
	ok, err := modified(s.users.UpdateOne(ctx, filter, update))
	if err != nil {
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}
	return ok, nil
}

// RemoveFavorite removes topicID from the user's favorites if present
func (s *MongoStore) RemoveFavorite(ctx context.Context, userID, topicID string, at time.Time) (bool, error) {
	filter := bson.M{"_id": userID, "favoriteTopics": topicID}
	update := bson.M{
		"$pull": bson.M{"favoriteTopics": topicID},
		"$set":  bson.M{"updatedAt": at},
	}
	ok, err := modified(s.users.UpdateOne(ctx, filter, update))
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	return ok, nil
}

// BackfillReadTopics sets an empty read history where it is missing or null
func (s *MongoStore) BackfillReadTopics(ctx context.Context) (int64, error) {
	res, err := s.users.UpdateMany(ctx, bson.M{"readTopics": nil}, bson.M{"$set": bson.M{"readTopics": bson.A{}}})
	if err != nil {
		return 0, fmt.Errorf("failed to backfill read topics: %w", err)
	}
	return res.ModifiedCount, nil
}

// CreateTopic inserts a topic document
func (s *MongoStore) CreateTopic(ctx context.Context, topic *models.Topic) error {
	if _, err := s.topics.InsertOne(ctx, topic); err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	return nil
}

// GetTopic retrieves a topic by id
func (s *MongoStore) GetTopic(ctx context.Context, id string) (*models.Topic, error) {
	return findOne[models.Topic](ctx, s.topics, byID(id))
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// LatestTopic retrieves the most recently created topic
func (s *MongoStore) LatestTopic(ctx context.Context) (*models.Topic, error) {
	return findOne[models.Topic](ctx, s.topics, bson.M{}, options.FindOne().SetSort(newestFirst))
}

// LatestTopics retrieves the newest topics and resolves category and creator names
func (s *MongoStore) LatestTopics(ctx context.Context, limit int) ([]models.TopicDetails, error) {
	opts := options.Find().SetSort(newestFirst).SetLimit(int64(limit))
	topics, err := findAll[models.Topic](ctx, s.topics, bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	categoryIDs := make([]string, 0, len(topics))
	userIDs := make([]string, 0, len(topics))
	for _, t := range topics {
		categoryIDs = append(categoryIDs, t.CategoryID)
		userIDs = append(userIDs, t.CreatedBy)
	}
	categories, err := findAll[models.Category](ctx, s.categories, bson.M{"_id": bson.M{"$in": categoryIDs}})
	if err != nil {
		return nil, err
	}
	users, err := findAll[models.User](ctx, s.users, bson.M{"_id": bson.M{"$in": userIDs}},
		options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}

	categoryNames := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}
	userNames := make(map[string]string, len(users))
	for _, u := range users {
		userNames[u.ID] = u.Name
	}

	details := make([]models.TopicDetails, 0, len(topics))
	for _, t := range topics {
		details = append(details, models.TopicDetails{
			Topic:        t,
			CategoryName: categoryNames[t.CategoryID],
			CreatorName:  userNames[t.CreatedBy],
		})
	}
	return details, nil
}

// TopicsByCreator retrieves the topics created by a user
func (s *MongoStore) TopicsByCreator(ctx context.Context, userID string) ([]models.Topic, error) {
	return findAll[models.Topic](ctx, s.topics, bson.M{"createdBy": userID})
}

// TopicsByIDs retrieves the topics with the given ids in natural order
func (s *MongoStore) TopicsByIDs(ctx context.Context, ids []string) ([]models.Topic, error) {
	if len(ids) == 0 {
		return []models.Topic{}, nil
	}
	return findAll[models.Topic](ctx, s.topics, bson.M{"_id": bson.M{"$in": ids}})
}

// ListTopics retrieves all topics
func (s *MongoStore) ListTopics(ctx context.Context) ([]models.Topic, error) {
	return findAll[models.Topic](ctx, s.topics, bson.M{})
}

// CountTopics returns the number of topics
func (s *MongoStore) CountTopics(ctx context.Context) (int64, error) {
	n, err := s.topics.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count topics: %w", err)
	}
	return n, nil
}

// TopicAt retrieves the topic at the given position in creation order
func (s *MongoStore) TopicAt(ctx context.Context, offset int64) (*models.Topic, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(offset)
	return findOne[models.Topic](ctx, s.topics, bson.M{}, opts)
}

func (s *MongoStore) updateTopic(ctx context.Context, action string, id string, update bson.M) error {
	res, err := s.topics.UpdateOne(ctx, byID(id), update)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementFavoriteCount adds one to the topic's favorite counter
func (s *MongoStore) IncrementFavoriteCount(ctx context.Context, id string) error {
	return s.updateTopic(ctx, "increment favorite count", id, bson.M{"$inc": bson.M{"favoriteCount": 1}})
}

// DecrementFavoriteCount subtracts one from the topic's favorite counter, floored at zero
func (s *MongoStore) DecrementFavoriteCount(ctx context.Context, id string) error {
	filter := bson.M{"_id": id, "favoriteCount": bson.M{"$gt": 0}}
	res, err := s.topics.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"favoriteCount": -1}})
	if err != nil {
		return fmt.Errorf("failed to decrement favorite count: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either already at zero or missing.
		if _, err := s.GetTopic(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// SetFavoriteCount overwrites the topic's favorite counter
func (s *MongoStore) SetFavoriteCount(ctx context.Context, id string, count int) error {
	return s.updateTopic(ctx, "set favorite count", id, bson.M{"$set": bson.M{"favoriteCount": count}})
}

// SetTopicCategory points the topic at another category
func (s *MongoStore) SetTopicCategory(ctx context.Context, id, categoryID string) error {
	return s.updateTopic(ctx, "set topic category", id, bson.M{"$set": bson.M{"category": categoryID}})
}

// CreateCategory inserts a category document
func (s *MongoStore) CreateCategory(ctx context.Context, category *models.Category) error {
	_, err := s.categories.InsertOne(ctx, category)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetCategory retrieves a category by id
func (s *MongoStore) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return findOne[models.Category](ctx, s.categories, byID(id))
}

// FindCategoryByName retrieves a category by its unique name
func (s *MongoStore) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	return findOne[models.Category](ctx, s.categories, bson.M{"name": name})
}

// ListCategories returns all categories sorted by name
func (s *MongoStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	return findAll[models.Category](ctx, s.categories, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}
