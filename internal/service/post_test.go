package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/silenci4/flask-template-blog/internal/apperror"
	"github.com/silenci4/flask-template-blog/internal/model"
)

// =========================================================================
// MOCK POST AND COMMENT REPOSITORIES
// =========================================================================

type mockPostRepo struct {
	posts  map[int64]*model.Post
	nextID int64
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: make(map[int64]*model.Post)}
}

func (m *mockPostRepo) CreatePost(_ context.Context, post *model.Post) error {
	for _, p := range m.posts {
		if p.Title == post.Title {
			return apperror.Conflict(fmt.Sprintf("a post titled %q already exists", post.Title))
		}
	}
	m.nextID++
	post.ID = m.nextID
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	stored := *post
	m.posts[post.ID] = &stored
	return nil
}

func (m *mockPostRepo) GetPostByID(_ context.Context, id int64) (*model.Post, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	result := *p
	return &result, nil
}

func (m *mockPostRepo) GetPostByTitle(_ context.Context, title string) (*model.Post, error) {
	for _, p := range m.posts {
		if p.Title == title {
			result := *p
			return &result, nil
		}
	}
	return nil, apperror.NotFound("post", 0)
}

func (m *mockPostRepo) ListPosts(_ context.Context) ([]model.Post, error) {
	result := make([]model.Post, 0, len(m.posts))
	// Maps don't iterate in order; walk ids ascending like the real query.
	for id := int64(1); id <= m.nextID; id++ {
		if p, ok := m.posts[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPostRepo) UpdatePost(_ context.Context, post *model.Post) error {
	if _, ok := m.posts[post.ID]; !ok {
		return apperror.NotFound("post", post.ID)
	}
	for id, p := range m.posts {
		if id != post.ID && p.Title == post.Title {
			return apperror.Conflict(fmt.Sprintf("a post titled %q already exists", post.Title))
		}
	}
	stored := *post
	m.posts[post.ID] = &stored
	return nil
}

func (m *mockPostRepo) DeletePost(_ context.Context, id int64) error {
	if _, ok := m.posts[id]; !ok {
		return apperror.NotFound("post", id)
	}
	delete(m.posts, id)
	return nil
}

type mockCommentRepo struct {
	comments []model.Comment
	nextID   int64
	failNext error
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{}
}

func (m *mockCommentRepo) CreateComment(_ context.Context, comment *model.Comment) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.nextID++
	comment.ID = m.nextID
	comment.CreatedAt = time.Now()
	m.comments = append(m.comments, *comment)
	return nil
}

func (m *mockCommentRepo) ListCommentsByPost(_ context.Context, postID int64) ([]model.Comment, error) {
	result := []model.Comment{}
	for _, c := range m.comments {
		if c.PostID == postID {
			result = append(result, c)
		}
	}
	return result, nil
}

// =========================================================================
// TEST HELPERS
// =========================================================================

func newTestPostService(t *testing.T) (*PostService, *mockPostRepo, *mockCommentRepo) {
	t.Helper()
	posts := newMockPostRepo()
	comments := newMockCommentRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewPostService(posts, comments, logger)
	return svc, posts, comments
}

func testAdmin() *model.User {
	return &model.User{ID: 1, Email: "admin@example.com", Name: "Admin", Role: model.RoleAdmin}
}

func testReader() *model.User {
	return &model.User{ID: 2, Email: "reader@example.com", Name: "Reader", Role: model.RoleUser}
}

func validInput(title string) PostInput {
	return PostInput{
		Title:    title,
		Subtitle: "A subtitle",
		Body:     "<p>Body.</p>",
		ImgURL:   "https://example.com/img.jpg",
	}
}

// =========================================================================
// Create TESTS
// =========================================================================

func TestPostCreate(t *testing.T) {
	svc, _, _ := newTestPostService(t)

	post, err := svc.Create(context.Background(), testAdmin(), validInput("Hello"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if post.ID == 0 {
		t.Error("Create() did not assign an ID")
	}
	if post.AuthorID != 1 {
		t.Errorf("AuthorID = %d, want 1", post.AuthorID)
	}
	if post.Date == "" {
		t.Error("Create() did not stamp the display date")
	}
	// The stamp uses the long month-name layout.
	if _, err := time.Parse(model.PostDateLayout, post.Date); err != nil {
		t.Errorf("Date %q does not parse with the post layout: %v", post.Date, err)
	}
}

func TestPostCreate_TrimsFields(t *testing.T) {
	svc, _, _ := newTestPostService(t)

	in := PostInput{
		Title:    "  Padded  ",
		Subtitle: " sub ",
		Body:     "<p>kept as-is</p>",
		ImgURL:   " https://example.com/x.jpg ",
	}
	post, err := svc.Create(context.Background(), testAdmin(), in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if post.Title != "Padded" || post.Subtitle != "sub" || post.ImgURL != "https://example.com/x.jpg" {
		t.Errorf("fields not trimmed: %+v", post)
	}
}

func TestPostCreate_DuplicateTitle(t *testing.T) {
	svc, _, _ := newTestPostService(t)

	if _, err := svc.Create(context.Background(), testAdmin(), validInput("Same")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err := svc.Create(context.Background(), testAdmin(), validInput("Same"))
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() with duplicate title error = %v, want ErrConflict", err)
	}
}

func TestPostCreate_TitleTooLong(t *testing.T) {
	svc, _, _ := newTestPostService(t)

	in := validInput(strings.Repeat("x", MaxTitleLength+1))
	_, err := svc.Create(context.Background(), testAdmin(), in)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Create() with overlong title error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// Update TESTS
// =========================================================================

func TestPostUpdate(t *testing.T) {
	svc, _, _ := newTestPostService(t)

	created, err := svc.Create(context.Background(), testAdmin(), validInput("Draft"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, validInput("Published"))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Title != "Published" {
		t.Errorf("Title = %q, want Published", updated.Title)
	}
	// Author and date stamp are immutable through edits.
	if updated.AuthorID != created.AuthorID {
		t.Errorf("AuthorID changed: %d -> %d", created.AuthorID, updated.AuthorID)
	}
	if updated.Date != created.Date {
		t.Errorf("Date changed: %q -> %q", created.Date, updated.Date)
	}
}

func TestPostUpdate_NotFound(t *testing.T) {
	svc, _, _ := newTestPostService(t)

	_, err := svc.Update(context.Background(), 9999, validInput("Ghost"))
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() on missing post error = %v, want ErrNotFound", err)
	}
}

func TestPostUpdate_DuplicateTitle(t *testing.T) {
	svc, _, _ := newTestPostService(t)

	if _, err := svc.Create(context.Background(), testAdmin(), validInput("Taken")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := svc.Create(context.Background(), testAdmin(), validInput("Mine"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.Update(context.Background(), second.ID, validInput("Taken"))
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Update() to a taken title error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// Delete TESTS
// =========================================================================

func TestPostDelete(t *testing.T) {
	svc, posts, _ := newTestPostService(t)

	created, err := svc.Create(context.Background(), testAdmin(), validInput("Doomed"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(posts.posts) != 0 {
		t.Errorf("%d posts remain after delete", len(posts.posts))
	}
}

func TestPostDelete_NotFound(t *testing.T) {
	svc, _, _ := newTestPostService(t)

	err := svc.Delete(context.Background(), 9999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() on missing post error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// AddComment TESTS
// =========================================================================

func TestAddComment(t *testing.T) {
	svc, _, _ := newTestPostService(t)

	post, err := svc.Create(context.Background(), testAdmin(), validInput("Commentable"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	comment, err := svc.AddComment(context.Background(), post.ID, testReader(), "Great read!")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}

	if comment.AuthorID != 2 {
		t.Errorf("AuthorID = %d, want 2", comment.AuthorID)
	}
	if comment.AuthorName != "Reader" {
		t.Errorf("AuthorName = %q, want Reader", comment.AuthorName)
	}

	got, err := svc.Comments(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("Comments() error = %v", err)
	}
	if len(got) != 1 || got[0].Text != "Great read!" {
		t.Errorf("Comments() = %+v, want the one comment back", got)
	}
}

func TestAddComment_Anonymous(t *testing.T) {
	svc, _, _ := newTestPostService(t)

	post, err := svc.Create(context.Background(), testAdmin(), validInput("Guarded"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.AddComment(context.Background(), post.ID, nil, "drive-by")
	if !errors.Is(err, apperror.ErrUnauthenticated) {
		t.Errorf("AddComment() with nil author error = %v, want ErrUnauthenticated", err)
	}
}

func TestAddComment_EmptyText(t *testing.T) {
	svc, _, _ := newTestPostService(t)

	post, err := svc.Create(context.Background(), testAdmin(), validInput("Empty"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.AddComment(context.Background(), post.ID, testReader(), "   ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("AddComment() with blank text error = %v, want ErrValidation", err)
	}
}

func TestAddComment_MissingPost(t *testing.T) {
	svc, _, comments := newTestPostService(t)

	_, err := svc.AddComment(context.Background(), 9999, testReader(), "where am I")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("AddComment() on missing post error = %v, want ErrNotFound", err)
	}
	if len(comments.comments) != 0 {
		t.Error("a comment was stored for a missing post")
	}
}

// =========================================================================
// List / Get TESTS
// =========================================================================

func TestPostList_OldestFirst(t *testing.T) {
	svc, _, _ := newTestPostService(t)

	for _, title := range []string{"One", "Two", "Three"} {
		if _, err := svc.Create(context.Background(), testAdmin(), validInput(title)); err != nil {
			t.Fatalf("Create(%q) error = %v", title, err)
		}
	}

	posts, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("List() returned %d posts, want 3", len(posts))
	}
	if posts[0].Title != "One" || posts[2].Title != "Three" {
		t.Errorf("List() order wrong: %q ... %q", posts[0].Title, posts[2].Title)
	}
}

func TestPostGet_NotFound(t *testing.T) {
	svc, _, _ := newTestPostService(t)

	_, err := svc.Get(context.Background(), 42)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() on empty repo error = %v, want ErrNotFound", err)
	}
}
