package models

import "time"

// Topic is a short article served to readers
type Topic struct {
	ID            string    `json:"id" bson:"_id"`
	Title         string    `json:"title" bson:"title"`
	Content       string    `json:"content" bson:"content"`
	CategoryID    string    `json:"category" bson:"category"`
	FavoriteCount int       `json:"favoriteCount" bson:"favoriteCount"`
	CreatedBy     string    `json:"createdBy" bson:"createdBy"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// TopicDetails is a topic with its category and creator names resolved
type TopicDetails struct {
	Topic
	CategoryName string `json:"categoryName"`
	CreatorName  string `json:"creatorName"`
}
