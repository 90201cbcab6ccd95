package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie presented on each request.
const CookieName = "zknotes-session"

var errBadCookie = errors.New("invalid session cookie")

// Store signs and verifies the session cookie. The cookie value is an
// HS256-signed claim set carrying the opaque token id; the token row in the
// database stays authoritative, so a validly signed cookie whose token was
// purged still resolves to anonymous.
type Store struct {
	secret []byte
	maxAge time.Duration
}

// NewStore creates a cookie store signing with secret. maxAge bounds the
// cookie itself; token expiry is enforced separately by the database.
func NewStore(secret string, maxAge time.Duration) *Store {
	return &Store{secret: []byte(secret), maxAge: maxAge}
}

// Set writes the session cookie for a freshly issued token id.
func (s *Store) Set(w http.ResponseWriter, tokenID string) error {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   tokenID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Get extracts the token id from the request's session cookie. A missing,
// malformed, tampered or expired cookie yields ("", false) — never an
// error, since an unauthenticated request is a normal condition.
func (s *Store) Get(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errBadCookie
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid || claims.Subject == "" {
		return "", false
	}

	return claims.Subject, true
}

// Clear expires the session cookie (logout).
func (s *Store) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
