package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/zknotes/zknotes-go/internal/model"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateName = errors.New("user name already exists")
	ErrKeyMismatch   = errors.New("registration key or user doesn't match")
)

// UserRepository handles user persistence operations.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and sets the generated ID on the user struct.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (name, hashwd, email, registration_key, createdate) VALUES (?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		user.Name, user.HashedPwd, user.Email, user.RegistrationKey, user.CreateDate.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	user.ID = id
	return nil
}

// GetByName retrieves a user by their unique name.
func (r *UserRepository) GetByName(ctx context.Context, name string) (*model.User, error) {
	query := `SELECT id, name, hashwd, email, registration_key, createdate FROM users WHERE name = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, name))
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT id, name, hashwd, email, registration_key, createdate FROM users WHERE id = ?`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// Update persists the mutable fields of an existing user record.
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `UPDATE users SET hashwd = ?, email = ?, registration_key = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		user.HashedPwd, user.Email, user.RegistrationKey, user.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ConsumeRegistrationKey clears the stored registration key iff it matches
// key, as a single compare-and-clear statement. Under concurrent attempts
// with the same key exactly one caller succeeds; the loser, a wrong key,
// an already-consumed key, and an unknown user all return ErrKeyMismatch.
func (r *UserRepository) ConsumeRegistrationKey(ctx context.Context, name, key string) error {
	query := `UPDATE users SET registration_key = NULL WHERE name = ? AND registration_key = ?`

	result, err := r.db.ExecContext(ctx, query, name, key)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrKeyMismatch
	}
	return nil
}

func (r *UserRepository) scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var createdate int64

	err := row.Scan(&user.ID, &user.Name, &user.HashedPwd, &user.Email, &user.RegistrationKey, &createdate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.CreateDate = time.UnixMilli(createdate).UTC()
	return user, nil
}

// isUniqueViolation checks if a SQLite error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
