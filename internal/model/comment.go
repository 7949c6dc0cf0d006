package model

import "time"

// Comment belongs to exactly one post and one author. Comments are only
// ever created: there is no edit or delete route for them; they disappear
// when their parent post is deleted.
type Comment struct {
	ID         int64     `json:"id"`
	PostID     int64     `json:"postId"`
	AuthorID   int64     `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}
