package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/zknotes/zknotes-go/internal/crypto"
	"github.com/zknotes/zknotes-go/internal/model"
	"github.com/zknotes/zknotes-go/internal/repository"
	"github.com/zknotes/zknotes-go/internal/session"
)

var (
	ErrInvalidCredentials = errors.New("invalid user name or password")
	ErrNotRegistered      = errors.New("account is not registered")
)

// AuthService resolves session cookies to identities and drives the
// login/logout flows.
type AuthService struct {
	users    *repository.UserRepository
	tokens   *repository.TokenRepository
	lifetime time.Duration
}

// NewAuthService creates a new AuthService. lifetime is the configured
// session token lifetime.
func NewAuthService(users *repository.UserRepository, tokens *repository.TokenRepository, lifetime time.Duration) *AuthService {
	return &AuthService{users: users, tokens: tokens, lifetime: lifetime}
}

// LoginData resolves the request's session to a login identity. A missing
// or malformed cookie, or an unknown or expired token, yields (nil, nil):
// the caller is anonymous, which is not an error. Only a storage fault
// returns a non-nil error.
func (s *AuthService) LoginData(ctx context.Context, sess *session.Session) (*model.LoginData, error) {
	tokenID, ok := sess.TokenID()
	if !ok {
		return nil, nil
	}

	user, err := s.tokens.GetUserByToken(ctx, tokenID, s.lifetime)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &model.LoginData{UserID: user.ID, Name: user.Name, Email: user.Email}, nil
}

// Login verifies credentials, issues a session token, and sets the session
// cookie. Unknown users and wrong passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, sess *session.Session, name, pwd string) (*model.LoginData, error) {
	user, err := s.users.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.Registered() {
		return nil, ErrNotRegistered
	}

	match, err := crypto.VerifyPassword(pwd, user.HashedPwd)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	tok := model.SessionToken{
		Token:    uuid.NewString(),
		UserID:   user.ID,
		IssuedAt: time.Now().UTC(),
	}
	if err := s.tokens.Create(ctx, tok); err != nil {
		return nil, err
	}
	if err := sess.Set(tok.Token); err != nil {
		return nil, err
	}

	return &model.LoginData{UserID: user.ID, Name: user.Name, Email: user.Email}, nil
}

// Logout deletes the session's token row and clears the cookie. A session
// without a token still gets its cookie cleared.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) error {
	if tokenID, ok := sess.TokenID(); ok {
		if err := s.tokens.Delete(ctx, tokenID); err != nil {
			return err
		}
	}
	sess.Clear()
	return nil
}
