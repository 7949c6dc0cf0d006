// Package service contains the business rules, between the HTTP handlers
// and the repositories. Services accept plain values, return domain
// errors from apperror, and know nothing about cookies or templates.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/silenci4/flask-template-blog/internal/apperror"
	"github.com/silenci4/flask-template-blog/internal/auth"
	"github.com/silenci4/flask-template-blog/internal/model"
	"github.com/silenci4/flask-template-blog/internal/repository"
)

// AuthService implements registration and login.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with its dependencies injected.
func NewAuthService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a new account and returns it ready to be logged in.
//
// An email that already has an account returns ErrConflict so the handler
// can flash "already registered" and send the visitor to the login page.
// The very first account ever created gets the admin role; every later
// account is a regular user. Privilege is carried by the role column, not
// by the row's id.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict(fmt.Sprintf("an account with email %s already exists", email))
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking email %s: %w", email, err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	role := model.RoleUser
	count, err := s.users.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/auth: counting users: %w", err)
	}
	if count == 0 {
		role = model.RoleAdmin
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user %s: %w", email, err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}

// Login verifies credentials and returns the matching user.
//
// The two failure modes stay distinguishable for the UI: an unknown email
// returns ErrNotFound ("you're not registered"), a known email with the
// wrong password returns ErrUnauthenticated ("wrong password").
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Info("login rejected", slog.String("email", email))
		return nil, apperror.Unauthenticated("wrong password")
	}

	s.logger.Info("user logged in", slog.Int64("userID", user.ID))
	return user, nil
}

// LoginOrRegisterGitHub resolves a GitHub profile to a local account,
// creating one on first sign-in. GitHub accounts have no local password;
// their password hash stays empty and form login always rejects them.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*model.User, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user, err := s.users.GetUserByGitHubID(ctx, ghUser.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: looking up github id %d: %w", ghUser.ID, err)
	}

	name := ghUser.Name
	if name == "" {
		name = ghUser.Login
	}
	email := strings.ToLower(ghUser.Email)
	if email == "" {
		// GitHub may hide the email; synthesize a stable placeholder so
		// the unique email column stays satisfied.
		email = fmt.Sprintf("%d+%s@users.noreply.github.com", ghUser.ID, ghUser.Login)
	}

	user = &model.User{
		Email:    email,
		Name:     name,
		Role:     model.RoleUser,
		GitHubID: ghUser.ID,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: creating user for github id %d: %w", ghUser.ID, err)
	}

	s.logger.Info("user registered via GitHub",
		slog.Int64("userID", user.ID),
		slog.String("login", ghUser.Login),
	)

	return user, nil
}
