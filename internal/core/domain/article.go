package domain

import "time"

// Article is a blog post authored by an approved therapist.
type Article struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	AuthorID  string    `json:"author_id" bson:"author_id"`
	Title     string    `json:"title" bson:"title"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	// Joined author projection for public listings.
	Author *PartySummary `json:"author,omitempty" bson:"author,omitempty"`
}
