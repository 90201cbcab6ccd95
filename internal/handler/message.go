package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/zknotes/zknotes-go/internal/model"
	"github.com/zknotes/zknotes-go/internal/session"
)

var errNotLoggedIn = errors.New("not logged in")

// MessageHandler is the transport-facing dispatcher for the /public and
// /user endpoints. Every outcome — success, domain failure, decode failure
// — is converted into exactly one ServerResponse over HTTP 200.
type MessageHandler struct {
	domain   Domain
	resolver IdentityResolver
	sessions *session.Store
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(domain Domain, resolver IdentityResolver, sessions *session.Store) *MessageHandler {
	return &MessageHandler{domain: domain, resolver: resolver, sessions: sessions}
}

// HandlePublic handles POST /public requests. No identity is consulted.
func (h *MessageHandler) HandlePublic(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var msg model.PublicMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		slog.Error("'public' decode failed", "error", err)
		writeServerError(w, fmt.Errorf("decoding message: %w", err))
		return
	}

	slog.Info("public msg", "what", msg.What)

	sess := h.sessions.Bind(w, r)
	resp, err := h.domain.HandlePublic(r.Context(), sess, msg)
	if err != nil {
		slog.Error("'public' err", "what", msg.What, "error", err)
		writeServerError(w, err)
		return
	}

	writeResponse(w, resp)
}

// HandleUser handles POST /user requests. The session cookie is resolved
// to an identity first; anonymous callers get the same uniform error
// envelope as any other failure.
func (h *MessageHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var msg model.UserMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		slog.Error("'user' decode failed", "error", err)
		writeServerError(w, fmt.Errorf("decoding message: %w", err))
		return
	}

	slog.Info("user msg", "what", msg.What)

	sess := h.sessions.Bind(w, r)
	login, err := h.resolver.LoginData(r.Context(), sess)
	if err != nil {
		slog.Error("'user' identity resolution failed", "error", err)
		writeServerError(w, err)
		return
	}
	if login == nil {
		writeServerError(w, errNotLoggedIn)
		return
	}

	resp, err := h.domain.HandleUser(r.Context(), sess, *login, msg)
	if err != nil {
		slog.Error("'user' err", "what", msg.What, "user", login.Name, "error", err)
		writeServerError(w, err)
		return
	}

	writeResponse(w, resp)
}
