package session

import "net/http"

// Session binds the cookie store to one in-flight request/response pair.
// It is the narrow surface handed to the domain dispatch: read the current
// token id, issue a new cookie, or drop it.
type Session struct {
	store *Store
	w     http.ResponseWriter
	r     *http.Request
}

// Bind creates the Session for a request.
func (s *Store) Bind(w http.ResponseWriter, r *http.Request) *Session {
	return &Session{store: s, w: w, r: r}
}

// TokenID returns the token id carried by the request's cookie, if any.
func (s *Session) TokenID() (string, bool) {
	return s.store.Get(s.r)
}

// Set issues the session cookie for a freshly created token.
func (s *Session) Set(tokenID string) error {
	return s.store.Set(s.w, tokenID)
}

// Clear drops the session cookie.
func (s *Session) Clear() {
	s.store.Clear(s.w)
}
