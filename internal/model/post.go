package model

import "time"

// Post is a blog post. Date is the human-readable publication date shown
// on the page (e.g. "August 31, 2026"); it is stamped once at creation
// and is not a queryable timestamp; CreatedAt/UpdatedAt serve that role.
//
// AuthorName is populated by queries that join the users table; it is not
// a column on the posts table itself.
type Post struct {
	ID         int64     `json:"id"`
	AuthorID   int64     `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Title      string    `json:"title"`
	Subtitle   string    `json:"subtitle"`
	Body       string    `json:"body"`
	ImgURL     string    `json:"imgUrl"`
	Date       string    `json:"date"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PostDateLayout is the display format posts are stamped with on creation.
const PostDateLayout = "January 2, 2006"
