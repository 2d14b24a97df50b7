package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/iliyamo/tg-marketplace/internal/apperr"
	"github.com/iliyamo/tg-marketplace/internal/auth"
	"github.com/iliyamo/tg-marketplace/internal/model"
	"github.com/iliyamo/tg-marketplace/internal/repository"
)

// AuthService registers users and trades passwords and refresh tokens for
// access tokens.
type AuthService struct {
	users      *repository.UserRepo
	issuer     *auth.Issuer
	bcryptCost int
}

func NewAuthService(users *repository.UserRepo, issuer *auth.Issuer, bcryptCost int) *AuthService {
	return &AuthService{users: users, issuer: issuer, bcryptCost: bcryptCost}
}

// Register creates an account with an empty wallet.
func (s *AuthService) Register(ctx context.Context, nickname, email, password, confirm string) (model.User, error) {
	nickname = strings.TrimSpace(nickname)
	email = strings.TrimSpace(email)
	switch {
	case nickname == "" || email == "" || password == "":
		return model.User{}, apperr.Validation("nickname, email and password are required")
	case strings.ContainsAny(nickname, "@ ,"):
		return model.User{}, apperr.Validation("nickname must not contain spaces, commas or @")
	case len(password) < 6:
		return model.User{}, apperr.Validation("password must be at least 6 characters")
	case password != confirm:
		return model.User{}, ErrPasswordMismatch
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return model.User{}, apperr.Validation("invalid email")
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.users.Create(ctx, nickname, email, hash)
	if errors.Is(err, repository.ErrDuplicate) {
		return model.User{}, ErrAccountExists
	}
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, fmt.Errorf("reload user: %w", err)
	}
	return u, nil
}

// Login accepts either the nickname or the email as login.
func (s *AuthService) Login(ctx context.Context, login, password string) (model.User, auth.Pair, error) {
	u, err := s.users.GetByLogin(ctx, login)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, auth.Pair{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, auth.Pair{}, fmt.Errorf("load user: %w", err)
	}
	if !auth.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, auth.Pair{}, ErrInvalidCredentials
	}
	pair, err := s.issuer.Issue(u.ID)
	if err != nil {
		return model.User{}, auth.Pair{}, fmt.Errorf("issue tokens: %w", err)
	}
	return u, pair, nil
}

// Refresh mints a new access token. Earlier access tokens stay valid until
// they expire.
func (s *AuthService) Refresh(refresh string) (auth.Token, error) {
	tok, err := s.issuer.Refresh(refresh)
	switch {
	case err == nil:
		return tok, nil
	case errors.Is(err, auth.ErrExpired):
		return auth.Token{}, apperr.Wrap(apperr.KindAuth, "refresh token expired", err)
	case errors.Is(err, auth.ErrInvalid):
		return auth.Token{}, apperr.Wrap(apperr.KindAuth, "invalid refresh token", err)
	default:
		return auth.Token{}, fmt.Errorf("refresh: %w", err)
	}
}
