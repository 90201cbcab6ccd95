package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zknotes/zknotes-go/internal/service"
)

// Registrar consumes one-time registration keys.
type Registrar interface {
	Register(ctx context.Context, uid, key string) error
}

// RegisterHandler serves the GET /register/{uid}/{key} handshake. Replies
// are short human-facing HTML fragments; every failure mode renders the
// same generic page so the endpoint leaks nothing about which accounts or
// keys exist.
type RegisterHandler struct {
	registrar Registrar
	mainSite  string
}

// NewRegisterHandler creates a new RegisterHandler. mainSite is linked
// from the success page.
func NewRegisterHandler(registrar Registrar, mainSite string) *RegisterHandler {
	return &RegisterHandler{registrar: registrar, mainSite: mainSite}
}

// HandleRegister handles GET /register/{uid}/{key} requests.
func (h *RegisterHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	key := chi.URLParam(r, "key")

	slog.Info("registration attempt", "uid", uid)

	if err := h.registrar.Register(r.Context(), uid, key); err != nil {
		if !errors.Is(err, service.ErrRegistrationFailed) {
			// Storage faults are logged but rendered identically to a
			// mismatch: no internal detail reaches the client.
			slog.Error("registration update failed", "uid", uid, "error", err)
		}
		writeHTML(w, "<h1>registration failed</h1>")
		return
	}

	writeHTML(w, fmt.Sprintf(
		`<h1>You are registered!</h1> <a href=%q>Proceed to the main site</a>`,
		h.mainSite,
	))
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, body)
}
