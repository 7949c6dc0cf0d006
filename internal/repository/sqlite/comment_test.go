package sqlite

import (
	"context"
	"testing"

	"github.com/silenci4/flask-template-blog/internal/model"
)

// =========================================================================
// CreateComment TESTS
// =========================================================================

func TestCreateComment(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", "Author")
	reader := createTestUser(t, db, "reader@example.com", "Reader")
	post := createTestPost(t, db, author, "A Post")

	comment := &model.Comment{
		PostID:   post.ID,
		AuthorID: reader.ID,
		Text:     "Nice post.",
	}

	if err := db.CreateComment(context.Background(), comment); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	if comment.ID == 0 {
		t.Error("CreateComment() did not set comment.ID")
	}
	if comment.CreatedAt.IsZero() {
		t.Error("CreateComment() did not set comment.CreatedAt")
	}
}

// =========================================================================
// ListCommentsByPost TESTS
// =========================================================================

func TestListCommentsByPost_Empty(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", "Author")
	post := createTestPost(t, db, author, "Quiet Post")

	comments, err := db.ListCommentsByPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("ListCommentsByPost() error = %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("ListCommentsByPost() on a fresh post returned %d comments", len(comments))
	}
}

func TestListCommentsByPost_OldestFirst(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", "Author")
	reader := createTestUser(t, db, "reader@example.com", "A Reader")
	post := createTestPost(t, db, author, "Busy Post")

	createTestComment(t, db, post, reader, "first")
	createTestComment(t, db, post, reader, "second")
	createTestComment(t, db, post, reader, "third")

	comments, err := db.ListCommentsByPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("ListCommentsByPost() error = %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("got %d comments, want 3", len(comments))
	}

	want := []string{"first", "second", "third"}
	for i, text := range want {
		if comments[i].Text != text {
			t.Errorf("comments[%d].Text = %q, want %q", i, comments[i].Text, text)
		}
	}

	// Author names ride along from the join.
	if comments[0].AuthorName != "A Reader" {
		t.Errorf("AuthorName = %q, want A Reader", comments[0].AuthorName)
	}
}

func TestListCommentsByPost_ScopedToPost(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", "Author")
	reader := createTestUser(t, db, "reader@example.com", "Reader")
	postA := createTestPost(t, db, author, "Post A")
	postB := createTestPost(t, db, author, "Post B")

	createTestComment(t, db, postA, reader, "about A")
	createTestComment(t, db, postB, reader, "about B")

	comments, err := db.ListCommentsByPost(context.Background(), postA.ID)
	if err != nil {
		t.Fatalf("ListCommentsByPost() error = %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("got %d comments for post A, want 1", len(comments))
	}
	if comments[0].Text != "about A" {
		t.Errorf("Text = %q, want about A", comments[0].Text)
	}
}
