package service

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zknotes/zknotes-go/internal/repository"
	"github.com/zknotes/zknotes-go/internal/session"
)

const testLifetime = 7 * 24 * time.Hour

type fixture struct {
	db      *sql.DB
	users   *repository.UserRepository
	tokens  *repository.TokenRepository
	cookies *session.Store
	auth    *AuthService
	reg     *RegistrationService
	mailer  *stubMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repository.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.InitSchema(context.Background(), db))

	f := &fixture{
		db:      db,
		users:   repository.NewUserRepository(db),
		tokens:  repository.NewTokenRepository(db),
		cookies: session.NewStore("test-secret", testLifetime),
		mailer:  &stubMailer{},
	}
	f.auth = NewAuthService(f.users, f.tokens, testLifetime)
	f.reg = NewRegistrationService(f.users, f.mailer, "https://notes.example.com/")
	return f
}

// newSession binds the cookie store to a fresh recorder/request pair,
// carrying over any cookies set on prior.
func (f *fixture) newSession(prior ...*httptest.ResponseRecorder) (*session.Session, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/user", nil)
	for _, p := range prior {
		for _, c := range p.Result().Cookies() {
			req.AddCookie(c)
		}
	}
	return f.cookies.Bind(rec, req), rec
}

type sentMail struct {
	To, Name, Link string
}

type stubMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *stubMailer) SendRegistration(_ context.Context, to, name, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Name: name, Link: link})
	return nil
}

func (m *stubMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}
