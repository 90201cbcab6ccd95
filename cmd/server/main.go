// Command server runs the zknotes session and message dispatch server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/zknotes/zknotes-go/internal/config"
	"github.com/zknotes/zknotes-go/internal/email"
	"github.com/zknotes/zknotes-go/internal/handler"
	"github.com/zknotes/zknotes-go/internal/middleware"
	"github.com/zknotes/zknotes-go/internal/repository"
	"github.com/zknotes/zknotes-go/internal/service"
	"github.com/zknotes/zknotes-go/internal/session"
)

const staticDir = "static"

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()
	slog.Info("server init", "app", cfg.AppName, "addr", cfg.ListenAddr(), "db", cfg.DB)

	if cfg.CreateDirs {
		if err := os.MkdirAll(filepath.Dir(cfg.DB), 0o755); err != nil {
			slog.Error("creating database directory", "error", err)
			os.Exit(1)
		}
	}

	db, err := repository.Open(cfg.DB)
	if err != nil {
		slog.Error("opening database", "path", cfg.DB, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Schema must exist before any traffic is accepted.
	if err := repository.InitSchema(ctx, db); err != nil {
		slog.Error("initializing schema", "error", err)
		os.Exit(1)
	}

	users := repository.NewUserRepository(db)
	tokens := repository.NewTokenRepository(db)
	sessions := session.NewStore(cfg.CookieSecret, cfg.TokenLifetime)

	var mailer email.Mailer = email.LogMailer{}
	if cfg.SMTPAddr != "" {
		mailer = email.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPFrom, cfg.AppName)
	}

	auth := service.NewAuthService(users, tokens, cfg.TokenLifetime)
	reg := service.NewRegistrationService(users, mailer, cfg.MainSite)
	domain := service.NewDomainService(auth, reg)

	// The purge scheduler starts before the listener so expired tokens are
	// swept even on an otherwise idle server.
	purge := service.NewPurgeScheduler(tokens, cfg.TokenLifetime, service.DefaultPurgeInterval)
	go purge.Run(ctx)

	msgHandler := handler.NewMessageHandler(domain, auth, sessions)
	regHandler := handler.NewRegisterHandler(reg, cfg.MainSite)
	idxHandler := handler.NewIndexHandler(auth, sessions, staticDir)

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post("/public", msgHandler.HandlePublic)
	r.Post("/user", msgHandler.HandleUser)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(5, 10))
		r.Get("/register/{uid}/{key}", regHandler.HandleRegister)
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	r.Get("/*", idxHandler.HandleIndex)

	srv := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
