package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/silenci4/flask-template-blog/internal/apperror"
	"github.com/silenci4/flask-template-blog/internal/model"
	"github.com/silenci4/flask-template-blog/internal/repository"
)

var _ repository.PostRepository = (*DB)(nil)

// postColumns joins the author's display name so list and detail views
// never need a second query per post.
const postColumns = `p.id, p.author_id, u.name, p.title, p.subtitle, p.body,
	p.img_url, p.date, p.created_at, p.updated_at`

// CreatePost inserts a new post and fills in the generated ID and timestamps.
// A duplicate title surfaces as apperror.ErrConflict.
func (db *DB) CreatePost(ctx context.Context, post *model.Post) error {
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (author_id, title, subtitle, body, img_url, date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		post.AuthorID,
		post.Title,
		post.Subtitle,
		post.Body,
		post.ImgURL,
		post.Date,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "posts.title") {
			return apperror.Conflict(fmt.Sprintf("a post titled %q already exists", post.Title))
		}
		return fmt.Errorf("sqlite: inserting post %q: %w", post.Title, err)
	}

	post.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading post insert id: %w", err)
	}

	return nil
}

// GetPostByID retrieves a single post with its author name.
// Returns apperror.ErrNotFound if the id does not exist.
func (db *DB) GetPostByID(ctx context.Context, id int64) (*model.Post, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+`
		 FROM posts p JOIN users u ON u.id = p.author_id
		 WHERE p.id = ?`, id)

	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %d: %w", id, err)
	}
	return post, nil
}

// GetPostByTitle retrieves a post by its (unique) title. Used by the service
// layer to report duplicate titles before hitting the UNIQUE index.
func (db *DB) GetPostByTitle(ctx context.Context, title string) (*model.Post, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+`
		 FROM posts p JOIN users u ON u.id = p.author_id
		 WHERE p.title = ?`, title)

	post, err := scanPost(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Message: fmt.Sprintf("no post titled %q", title),
			}
		}
		return nil, fmt.Errorf("sqlite: getting post %q: %w", title, err)
	}
	return post, nil
}

// ListPosts returns all posts in insertion order.
func (db *DB) ListPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+postColumns+`
		 FROM posts p JOIN users u ON u.id = p.author_id
		 ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// UpdatePost overwrites a post's editable fields. ID, author, creation date,
// and the display date string are immutable after creation.
func (db *DB) UpdatePost(ctx context.Context, post *model.Post) error {
	post.UpdatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE posts
		 SET title = ?, subtitle = ?, body = ?, img_url = ?, updated_at = ?
		 WHERE id = ?`,
		post.Title,
		post.Subtitle,
		post.Body,
		post.ImgURL,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "posts.title") {
			return apperror.Conflict(fmt.Sprintf("a post titled %q already exists", post.Title))
		}
		return fmt.Errorf("sqlite: updating post %d: %w", post.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("post", post.ID)
	}

	return nil
}

// DeletePost removes a post and its comments inside a single transaction, so
// a failure partway through never leaves orphaned comments visible.
func (db *DB) DeletePost(ctx context.Context, id int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning delete tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting comments for post %d: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("post", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing delete of post %d: %w", id, err)
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*model.Post, error) {
	var p model.Post
	err := s.Scan(
		&p.ID,
		&p.AuthorID,
		&p.AuthorName,
		&p.Title,
		&p.Subtitle,
		&p.Body,
		&p.ImgURL,
		&p.Date,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
