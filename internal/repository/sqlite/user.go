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

var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, password_hash, name, role, github_id, created_at`

// CreateUser inserts a new user and fills in the generated ID and CreatedAt.
// A duplicate email surfaces as apperror.ErrConflict: the UNIQUE index is
// the authority even if the caller's pre-check raced another registration.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.CreatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, name, role, github_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Role,
		user.GitHubID,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "users.email") {
			return apperror.Conflict(fmt.Sprintf("an account with email %s already exists", user.Email))
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}

	user.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading user insert id: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by primary key.
// Returns apperror.ErrNotFound if no such user exists.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return db.scanUser(
		db.conn.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = ?`, id),
		func() error { return apperror.NotFound("user", id) },
	)
}

// GetUserByEmail retrieves a user by email address. Login and the
// registration pre-check both go through here.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.scanUser(
		db.conn.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = ?`, email),
		func() error {
			return &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Message: fmt.Sprintf("no account registered for %s", email),
			}
		},
	)
}

// GetUserByGitHubID retrieves a user by their GitHub numeric id.
func (db *DB) GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	return db.scanUser(
		db.conn.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE github_id = ? AND github_id != 0`, githubID),
		func() error { return apperror.NotFound("user", githubID) },
	)
}

// CountUsers returns the number of registered users. The auth service uses it
// to grant the admin role to the very first account.
func (db *DB) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting users: %w", err)
	}
	return n, nil
}

func (db *DB) scanUser(row *sql.Row, notFound func() error) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Role,
		&u.GitHubID,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, notFound()
		}
		return nil, fmt.Errorf("sqlite: scanning user: %w", err)
	}
	return &u, nil
}
