package model

import "time"

// User represents an account record in the database. RegistrationKey is
// non-nil until the account is activated through the registration link;
// activation clears it permanently.
type User struct {
	ID              int64
	Name            string
	HashedPwd       string
	Email           string
	RegistrationKey *string
	CreateDate      time.Time
}

// Registered reports whether the account has completed the registration
// handshake.
func (u *User) Registered() bool {
	return u.RegistrationKey == nil
}

// SessionToken represents one issued login token. A token authenticates a
// session while IssuedAt + the configured lifetime is in the future; expired
// rows are ignored by lookups even before the purge task deletes them.
type SessionToken struct {
	Token    string
	UserID   int64
	IssuedAt time.Time
}

// LoginData is the client-visible identity attached to a resolved session.
type LoginData struct {
	UserID int64  `json:"userid"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}
