package handler

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zknotes/zknotes-go/internal/model"
	"github.com/zknotes/zknotes-go/internal/repository"
	"github.com/zknotes/zknotes-go/internal/service"
)

var loginAlice = model.LoginData{UserID: 1, Name: "alice", Email: "alice@example.com"}

type handlerFixture struct {
	users *repository.UserRepository
	reg   *service.RegistrationService
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	db, err := repository.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.InitSchema(context.Background(), db))

	users := repository.NewUserRepository(db)
	return &handlerFixture{
		users: users,
		reg:   service.NewRegistrationService(users, nopMailer{}, "https://notes.example.com"),
	}
}

type nopMailer struct{}

func (nopMailer) SendRegistration(context.Context, string, string, string) error { return nil }

func writeIndexPage(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(body), 0o600))
}
