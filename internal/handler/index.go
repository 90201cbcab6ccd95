package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/zknotes/zknotes-go/internal/session"
)

// IndexHandler serves the single-page app shell, substituting the resolved
// login identity into the {{logindata}} placeholder so the client renders
// a logged-in view without an extra round trip.
type IndexHandler struct {
	resolver  IdentityResolver
	sessions  *session.Store
	staticDir string
}

// NewIndexHandler creates a new IndexHandler reading index.html from
// staticDir.
func NewIndexHandler(resolver IdentityResolver, sessions *session.Store, staticDir string) *IndexHandler {
	return &IndexHandler{resolver: resolver, sessions: sessions, staticDir: staticDir}
}

// HandleIndex serves the catch-all page route.
func (h *IndexHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	logindata := "null"

	sess := h.sessions.Bind(w, r)
	if login, err := h.resolver.LoginData(r.Context(), sess); err == nil && login != nil {
		if b, err := json.Marshal(login); err == nil {
			logindata = string(b)
		}
	}

	page, err := os.ReadFile(filepath.Join(h.staticDir, "index.html"))
	if err != nil {
		slog.Error("index page unavailable", "error", err)
		http.Error(w, "index page unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(strings.Replace(string(page), "{{logindata}}", logindata, 1)))
}
