package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/silenci4/flask-template-blog/internal/apperror"
	"github.com/silenci4/flask-template-blog/internal/model"
	"github.com/silenci4/flask-template-blog/internal/repository"
)

const (
	MaxTitleLength    = 250
	MaxSubtitleLength = 250
	MaxImgURLLength   = 250
)

// PostInput carries the validated fields of the post form.
type PostInput struct {
	Title    string
	Subtitle string
	Body     string
	ImgURL   string
}

// PostService implements the post and comment rules. Field-shape checks
// live in the form package; this layer enforces lengths, uniqueness, and
// referential rules that hold for every caller.
type PostService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	logger   *slog.Logger
}

// NewPostService creates a PostService with its dependencies injected.
func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		logger:   logger,
	}
}

// List returns every post, oldest first.
func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		s.logger.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// Get returns one post by id, or ErrNotFound.
func (s *PostService) Get(ctx context.Context, id int64) (*model.Post, error) {
	return s.posts.GetPostByID(ctx, id)
}

// Comments returns a post's comments, oldest first.
func (s *PostService) Comments(ctx context.Context, postID int64) ([]model.Comment, error) {
	comments, err := s.comments.ListCommentsByPost(ctx, postID)
	if err != nil {
		s.logger.Error("failed to list comments",
			slog.Int64("postID", postID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing comments for post %d: %w", postID, err)
	}
	return comments, nil
}

// Create authors a new post for the given user, stamped with today's
// display date. A duplicate title returns ErrConflict.
func (s *PostService) Create(ctx context.Context, author *model.User, in PostInput) (*model.Post, error) {
	if err := s.checkInput(in); err != nil {
		return nil, err
	}

	post := &model.Post{
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Title:      strings.TrimSpace(in.Title),
		Subtitle:   strings.TrimSpace(in.Subtitle),
		Body:       in.Body,
		ImgURL:     strings.TrimSpace(in.ImgURL),
		Date:       time.Now().Format(model.PostDateLayout),
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create post",
			slog.String("title", post.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.Int64("postID", post.ID),
		slog.Int64("authorID", author.ID),
		slog.String("title", post.Title),
	)

	return post, nil
}

// Update overwrites an existing post's fields. The author and the creation
// date stamp are untouched; last write wins, there is no revision check.
func (s *PostService) Update(ctx context.Context, id int64, in PostInput) (*model.Post, error) {
	if err := s.checkInput(in); err != nil {
		return nil, err
	}

	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(in.Title)
	post.Subtitle = strings.TrimSpace(in.Subtitle)
	post.Body = in.Body
	post.ImgURL = strings.TrimSpace(in.ImgURL)

	if err := s.posts.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, apperror.ErrConflict) || errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to update post",
			slog.Int64("postID", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating post %d: %w", id, err)
	}

	s.logger.Info("post updated", slog.Int64("postID", id))
	return post, nil
}

// Delete removes a post together with its comments.
func (s *PostService) Delete(ctx context.Context, id int64) error {
	if err := s.posts.DeletePost(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete post",
			slog.Int64("postID", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting post %d: %w", id, err)
	}

	s.logger.Info("post deleted", slog.Int64("postID", id))
	return nil
}

// AddComment attaches a comment by the given user to a post. The post
// must exist (ErrNotFound otherwise) and the author must be a logged-in
// user; anonymous submissions never reach this method, but it fails
// closed anyway.
func (s *PostService) AddComment(ctx context.Context, postID int64, author *model.User, text string) (*model.Comment, error) {
	if author == nil {
		return nil, apperror.Unauthenticated("you need to log in to comment")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("text", "comment text is required")
	}

	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:     postID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Text:       text,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.Int64("postID", postID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("commenting on post %d: %w", postID, err)
	}

	s.logger.Info("comment created",
		slog.Int64("commentID", comment.ID),
		slog.Int64("postID", postID),
		slog.Int64("authorID", author.ID),
	)

	return comment, nil
}

func (s *PostService) checkInput(in PostInput) error {
	if len(in.Title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if len(in.Subtitle) > MaxSubtitleLength {
		return apperror.ValidationFailed("subtitle",
			fmt.Sprintf("subtitle must be %d characters or less", MaxSubtitleLength))
	}
	if len(in.ImgURL) > MaxImgURLLength {
		return apperror.ValidationFailed("img_url",
			fmt.Sprintf("image URL must be %d characters or less", MaxImgURLLength))
	}
	return nil
}
