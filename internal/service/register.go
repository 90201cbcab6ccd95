package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zknotes/zknotes-go/internal/crypto"
	"github.com/zknotes/zknotes-go/internal/email"
	"github.com/zknotes/zknotes-go/internal/model"
	"github.com/zknotes/zknotes-go/internal/repository"
)

var (
	ErrNameRequired     = errors.New("user name is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrNameTaken        = errors.New("user name already taken")

	// ErrRegistrationFailed covers every way the registration handshake can
	// fail — unknown user, wrong key, already-consumed key. One error for
	// all branches keeps the reply free of account-enumeration hints.
	ErrRegistrationFailed = errors.New("registration key or user doesn't match")
)

// RegistrationService creates pending accounts and consumes their one-time
// registration keys.
type RegistrationService struct {
	users    *repository.UserRepository
	mailer   email.Mailer
	mainSite string
}

// NewRegistrationService creates a new RegistrationService. mainSite is the
// base URL embedded in activation links.
func NewRegistrationService(users *repository.UserRepository, mailer email.Mailer, mainSite string) *RegistrationService {
	return &RegistrationService{users: users, mailer: mailer, mainSite: strings.TrimRight(mainSite, "/")}
}

// Signup creates an unregistered account with a fresh one-time key and
// mails the activation link. The account cannot log in until the link is
// followed.
func (s *RegistrationService) Signup(ctx context.Context, name, addr, pwd string) error {
	if name == "" {
		return ErrNameRequired
	}
	if addr == "" {
		return ErrEmailRequired
	}
	if pwd == "" {
		return ErrPasswordRequired
	}

	hash, err := crypto.HashPassword(pwd)
	if err != nil {
		return err
	}

	key := uuid.NewString()
	user := &model.User{
		Name:            name,
		HashedPwd:       hash,
		Email:           addr,
		RegistrationKey: &key,
		CreateDate:      time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateName) {
			return ErrNameTaken
		}
		return err
	}

	link := fmt.Sprintf("%s/register/%s/%s", s.mainSite, url.PathEscape(name), key)
	if err := s.mailer.SendRegistration(ctx, addr, name, link); err != nil {
		// The account exists and the key is valid; delivery can be retried
		// out of band.
		slog.Error("registration mail delivery failed", "name", name, "error", err)
	}

	return nil
}

// Register consumes the one-time key for uid. The compare-and-clear is a
// single atomic statement, so concurrent attempts with the same valid key
// produce exactly one success.
func (s *RegistrationService) Register(ctx context.Context, uid, key string) error {
	if uid == "" || key == "" {
		return ErrRegistrationFailed
	}

	err := s.users.ConsumeRegistrationKey(ctx, uid, key)
	if err != nil {
		if errors.Is(err, repository.ErrKeyMismatch) {
			return ErrRegistrationFailed
		}
		return err
	}
	return nil
}
