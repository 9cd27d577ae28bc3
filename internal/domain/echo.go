package domain

import "time"

// Echo is a feed post from the surrounding CRUD surface. The relay never
// touches echoes; they live here because the store and the HTTP adapter
// share the shape.
type Echo struct {
	ID         string    `json:"id"`
	AuthorID   UserID    `json:"authorId"`
	AuthorName string    `json:"authorName,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
}
