// Package main is the entry point for the CrimsonCollab shared data API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/crimsoncollab/backend/internal/auth"
	"github.com/pkordes/crimsoncollab/backend/internal/calendar"
	"github.com/pkordes/crimsoncollab/backend/internal/config"
	"github.com/pkordes/crimsoncollab/backend/internal/handler"
	"github.com/pkordes/crimsoncollab/backend/internal/middleware"
	"github.com/pkordes/crimsoncollab/backend/internal/realtime"
	"github.com/pkordes/crimsoncollab/backend/internal/repo"
	"github.com/pkordes/crimsoncollab/backend/internal/service"
	"github.com/pkordes/crimsoncollab/backend/internal/store"
	"github.com/pkordes/crimsoncollab/backend/internal/syncq"
	"github.com/pkordes/crimsoncollab/backend/spec"
)

func main() {
	// --- Config -----------------------------------------------------------
	// A .env file is optional; real environment variables take precedence.
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Store ------------------------------------------------------------
	backend, err := store.OpenBackend(context.Background(), store.Options{
		Kind:          cfg.StoreBackend,
		DatabaseURL:   cfg.DatabaseURL,
		SQLitePath:    cfg.SQLitePath,
		RedisURL:      cfg.RedisURL,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
	}, logger)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	st := store.New(backend, logger)
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("store close", "error", err)
		}
	}()
	slog.Info("store ready", "backend", cfg.StoreBackend)

	// Every saved document is announced to WebSocket subscribers.
	hub := realtime.NewHub(logger, func(origin string) bool {
		return slices.Contains(cfg.CORSOrigins, origin)
	})
	st.OnChange(hub.Publish)

	// --- Sync -------------------------------------------------------------
	// Without SYNC_REMOTE_URL operations are still queued, just never drained.
	var remote syncq.Remote
	if cfg.SyncRemoteURL != "" {
		remote = syncq.NewHTTPRemote(cfg.SyncRemoteURL)
	}
	queue := syncq.NewQueue(st, remote, logger)

	// --- Repos and services -----------------------------------------------
	profileRepo := repo.NewProfileRepo(st)
	tripRepo := repo.NewTripRepo(st)
	groupRepo := repo.NewGroupRepo(st)
	tripMsgRepo := repo.NewTripMessageRepo(st)
	groupMsgRepo := repo.NewGroupMessageRepo(st)
	inviteRepo := repo.NewInviteRepo(st)
	calendarRepo := repo.NewCalendarRepo(st)

	bridge := calendar.NewBridge(calendarRepo, logger)
	opts := []service.Option{
		service.WithSync(queue),
		service.WithCalendar(bridge),
		service.WithLogger(logger),
	}
	profiles := service.NewProfileService(profileRepo, opts...)
	trips := service.NewTripService(tripRepo, opts...)
	groups := service.NewGroupService(groupRepo, opts...)
	messages := service.NewMessageService(tripMsgRepo, groupMsgRepo, opts...)
	invites := service.NewInviteService(inviteRepo, groupRepo, opts...)
	shared := service.NewSharedData(service.SharedRepos{
		Profiles:      profileRepo,
		Trips:         tripRepo,
		Groups:        groupRepo,
		TripMessages:  tripMsgRepo,
		GroupMessages: groupMsgRepo,
		Invites:       inviteRepo,
		Calendar:      calendarRepo,
	}, queue)
	ledger := syncq.NewLedger(st, shared)

	deps := handler.Deps{
		Profiles:      profiles,
		Trips:         trips,
		Groups:        groups,
		Messages:      messages,
		Invites:       invites,
		Calendar:      bridge,
		Shared:        shared,
		Queue:         queue,
		Ledger:        ledger,
		Store:         st,
		Realtime:      hub,
		DashboardURL:  cfg.DashboardURL,
		SecureCookies: strings.HasPrefix(cfg.OAuthRedirectBaseURL, "https://"),
		Log:           logger,
	}
	if flow := newAuthFlow(cfg, profiles, logger); flow != nil {
		deps.Auth = flow
		deps.Sessions = flow.Sessions()
		slog.Info("oauth login enabled", "providers", flow.Providers())
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request, tagged with
	// the session subject when login is enabled.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	var logOpts []middleware.LogOption
	if deps.Sessions != nil {
		logOpts = append(logOpts, middleware.WithSubject(handler.SessionSubject(deps.Sessions)))
	}
	r.Use(middleware.NewSlogLogger(logger, logOpts...))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Get("/healthz", handler.Liveness)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec.OpenAPI)
	})

	authLimiter := middleware.NewIPRateLimiter(cfg.AuthRatePerMinute, 5, 10*time.Minute)
	srvHandler := handler.NewServer(deps)
	r.Route("/api", func(r chi.Router) {
		srvHandler.Routes(r, middleware.NewRateLimitHandler(authLimiter))
	})

	// --- Background sync worker -------------------------------------------
	// Stop cancels a push in flight, so a hung remote cannot stall shutdown.
	var worker *syncq.Worker
	if queue.HasRemote() {
		worker = syncq.NewWorker(queue, cfg.SyncInterval, logger)
		worker.Start(context.Background())
		slog.Info("sync worker started", "remote", cfg.SyncRemoteURL, "interval", cfg.SyncInterval)
	}

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// WebSocket connections manage their own deadlines after the upgrade.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	if worker != nil {
		worker.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		return
	}
	slog.Info("server stopped")
}

// newAuthFlow builds the OAuth flow for every configured provider, or
// returns nil when none is configured.
func newAuthFlow(cfg config.Config, users auth.UserSaver, log *slog.Logger) *auth.Flow {
	callback := func(name string) string {
		return cfg.OAuthRedirectBaseURL + "/api/auth/" + name + "/callback"
	}

	var providers []*auth.Provider
	if c := cfg.Google; c.Configured() {
		providers = append(providers, auth.Google(auth.Credentials{
			ClientID: c.ID, ClientSecret: c.Secret, RedirectURL: callback(auth.ProviderGoogle),
		}))
	}
	if c := cfg.GitHub; c.Configured() {
		providers = append(providers, auth.GitHub(auth.Credentials{
			ClientID: c.ID, ClientSecret: c.Secret, RedirectURL: callback(auth.ProviderGitHub),
		}))
	}
	if c := cfg.Microsoft; c.Configured() {
		providers = append(providers, auth.Microsoft(auth.Credentials{
			ClientID: c.ID, ClientSecret: c.Secret, RedirectURL: callback(auth.ProviderMicrosoft),
		}))
	}
	if len(providers) == 0 {
		return nil
	}
	return auth.NewFlow(providers, auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL), users, log)
}
