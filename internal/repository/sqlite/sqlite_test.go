package sqlite

import (
	"context"
	"testing"

	"github.com/silenci4/flask-template-blog/internal/model"
)

// newTestDB returns a fresh in-memory database with the full schema. Each
// test gets its own; t.Cleanup closes it when the test (or subtest) ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser inserts a user and fails the test on error.
func createTestUser(t *testing.T, db *DB, email, name string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "$2a$04$fakehashforrepositorytestsonly",
		Name:         name,
		Role:         model.RoleUser,
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// createTestPost inserts a post authored by the given user.
func createTestPost(t *testing.T, db *DB, author *model.User, title string) *model.Post {
	t.Helper()
	post := &model.Post{
		AuthorID: author.ID,
		Title:    title,
		Subtitle: "A subtitle",
		Body:     "<p>Some body text.</p>",
		ImgURL:   "https://example.com/header.jpg",
		Date:     "August 31, 2026",
	}
	if err := db.CreatePost(context.Background(), post); err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return post
}

// createTestComment inserts a comment on the given post.
func createTestComment(t *testing.T, db *DB, post *model.Post, author *model.User, text string) *model.Comment {
	t.Helper()
	comment := &model.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Text:     text,
	}
	if err := db.CreateComment(context.Background(), comment); err != nil {
		t.Fatalf("failed to create test comment: %v", err)
	}
	return comment
}
