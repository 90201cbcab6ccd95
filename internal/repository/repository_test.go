package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zknotes/zknotes-go/internal/model"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, InitSchema(context.Background(), db))
	return db
}

func strptr(s string) *string { return &s }

func newUser(t *testing.T, db *sql.DB, name string, regkey *string) *model.User {
	t.Helper()
	u := &model.User{
		Name:            name,
		HashedPwd:       "hash",
		Email:           name + "@example.com",
		RegistrationKey: regkey,
		CreateDate:      time.Now().UTC(),
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func TestUserRepository_CreateAndGetByName(t *testing.T) {
	db := setupDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	u := newUser(t, db, "alice", strptr("abc123"))
	require.NotZero(t, u.ID)

	got, err := r.GetByName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "alice", got.Name)
	require.NotNil(t, got.RegistrationKey)
	assert.Equal(t, "abc123", *got.RegistrationKey)
	assert.False(t, got.Registered())
}

func TestUserRepository_GetByName_NotFound(t *testing.T) {
	db := setupDB(t)

	_, err := NewUserRepository(db).GetByName(context.Background(), "nobody")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_Create_DuplicateName(t *testing.T) {
	db := setupDB(t)
	newUser(t, db, "alice", nil)

	err := NewUserRepository(db).Create(context.Background(), &model.User{
		Name:       "alice",
		HashedPwd:  "other",
		Email:      "other@example.com",
		CreateDate: time.Now(),
	})
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestUserRepository_Update(t *testing.T) {
	db := setupDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	u := newUser(t, db, "alice", strptr("abc123"))
	u.RegistrationKey = nil
	u.Email = "new@example.com"
	require.NoError(t, r.Update(ctx, u))

	got, err := r.GetByName(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got.RegistrationKey)
	assert.True(t, got.Registered())
	assert.Equal(t, "new@example.com", got.Email)
}

func TestConsumeRegistrationKey_MatchClearsKey(t *testing.T) {
	db := setupDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	newUser(t, db, "alice", strptr("abc123"))

	require.NoError(t, r.ConsumeRegistrationKey(ctx, "alice", "abc123"))

	got, err := r.GetByName(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, got.RegistrationKey)

	// Second attempt with the same key fails: the key is one-time-use.
	require.ErrorIs(t, r.ConsumeRegistrationKey(ctx, "alice", "abc123"), ErrKeyMismatch)
}

func TestConsumeRegistrationKey_MismatchAndMissingUser(t *testing.T) {
	db := setupDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	newUser(t, db, "alice", strptr("abc123"))

	wrongKey := r.ConsumeRegistrationKey(ctx, "alice", "wrong")
	noUser := r.ConsumeRegistrationKey(ctx, "bob", "abc123")

	// Both failure modes collapse into the same error.
	require.ErrorIs(t, wrongKey, ErrKeyMismatch)
	require.ErrorIs(t, noUser, ErrKeyMismatch)
}

func TestConsumeRegistrationKey_ConcurrentSingleWinner(t *testing.T) {
	db := setupDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	newUser(t, db, "alice", strptr("abc123"))

	const attempts = 8
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			errs <- r.ConsumeRegistrationKey(ctx, "alice", "abc123")
		}()
	}

	var wins int
	for i := 0; i < attempts; i++ {
		err := <-errs
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, ErrKeyMismatch)
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent attempt may consume the key")
}

func TestTokenRepository_ResolveWithinLifetime(t *testing.T) {
	db := setupDB(t)
	tokens := NewTokenRepository(db)
	ctx := context.Background()

	u := newUser(t, db, "alice", nil)
	lifetime := 7 * 24 * time.Hour

	// Issued six days ago: still valid.
	require.NoError(t, tokens.Create(ctx, model.SessionToken{
		Token:    "tok-6d",
		UserID:   u.ID,
		IssuedAt: time.Now().Add(-6 * 24 * time.Hour),
	}))

	got, err := tokens.GetUserByToken(ctx, "tok-6d", lifetime)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
}

func TestTokenRepository_ExpiredTokenIsInertBeforePurge(t *testing.T) {
	db := setupDB(t)
	tokens := NewTokenRepository(db)
	ctx := context.Background()

	u := newUser(t, db, "alice", nil)
	lifetime := 7 * 24 * time.Hour

	require.NoError(t, tokens.Create(ctx, model.SessionToken{
		Token:    "tok-8d",
		UserID:   u.ID,
		IssuedAt: time.Now().Add(-8 * 24 * time.Hour),
	}))

	_, err := tokens.GetUserByToken(ctx, "tok-8d", lifetime)
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenRepository_PurgeExpired(t *testing.T) {
	db := setupDB(t)
	tokens := NewTokenRepository(db)
	ctx := context.Background()

	u := newUser(t, db, "alice", nil)
	lifetime := 7 * 24 * time.Hour

	require.NoError(t, tokens.Create(ctx, model.SessionToken{
		Token: "expired", UserID: u.ID, IssuedAt: time.Now().Add(-8 * 24 * time.Hour),
	}))
	require.NoError(t, tokens.Create(ctx, model.SessionToken{
		Token: "fresh", UserID: u.ID, IssuedAt: time.Now(),
	}))

	n, err := tokens.PurgeExpired(ctx, lifetime)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// The fresh token survives the purge.
	_, err = tokens.GetUserByToken(ctx, "fresh", lifetime)
	require.NoError(t, err)

	_, err = tokens.GetUserByToken(ctx, "expired", lifetime)
	require.ErrorIs(t, err, ErrTokenNotFound)

	// A second purge with no new expirations is a no-op.
	n, err = tokens.PurgeExpired(ctx, lifetime)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestTokenRepository_Delete(t *testing.T) {
	db := setupDB(t)
	tokens := NewTokenRepository(db)
	ctx := context.Background()

	u := newUser(t, db, "alice", nil)
	lifetime := time.Hour

	require.NoError(t, tokens.Create(ctx, model.SessionToken{
		Token: "tok", UserID: u.ID, IssuedAt: time.Now(),
	}))
	require.NoError(t, tokens.Delete(ctx, "tok"))

	_, err := tokens.GetUserByToken(ctx, "tok", lifetime)
	require.ErrorIs(t, err, ErrTokenNotFound)

	// Deleting an absent token is not an error.
	require.NoError(t, tokens.Delete(ctx, "tok"))
}
