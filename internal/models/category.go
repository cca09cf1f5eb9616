package models

import "time"

// UncategorizedName is the category assigned to topics with a broken category reference
const UncategorizedName = "Uncategorized"

// Category groups topics
type Category struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}
