// notepads backend server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/simpliv/notepads/internal/api"
	"github.com/simpliv/notepads/internal/auth"
	"github.com/simpliv/notepads/internal/config"
	"github.com/simpliv/notepads/internal/ledger"
	"github.com/simpliv/notepads/internal/notepads"
	"github.com/simpliv/notepads/internal/obs"
	"github.com/simpliv/notepads/internal/ratelimit"
	"github.com/simpliv/notepads/internal/store"
)

func main() {
	obs.Init()
	log := obs.Pkg("main")

	noMongo, noOIDC, addr := config.ParseFlags()
	cfg, err := config.LoadConfig(noMongo, noOIDC, addr)
	if err != nil {
		log.Error("config_invalid", "error", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store.Store
	if cfg.NoMongo {
		log.Warn("using in-memory store, data will not survive a restart")
		st = store.NewMemoryStore()
	} else {
		mongoStore, err := store.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Error("mongo_connect_failed", "error", err.Error())
			os.Exit(1)
		}
		st = mongoStore
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.Warn("store_close_failed", "error", err.Error())
		}
	}()

	svc := notepads.NewService(
		ledger.NewUserLedger(st.Users()),
		ledger.NewCategoryLedger(st.Categories()),
		ledger.NewNotepadLedger(st.Notepads()))

	var verifier auth.Verifier
	if cfg.NoOIDC {
		log.Warn("using static token verifier, do not expose this listener")
		verifier = auth.StaticVerifier{}
	} else {
		oidcVerifier, err := auth.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			log.Error("oidc_setup_failed", "error", err.Error())
			os.Exit(1)
		}
		verifier = oidcVerifier
	}

	mux := http.NewServeMux()
	api.NewHandler(svc).RegisterRoutes(mux)

	limiter := ratelimit.NewRateLimiter(cfg.RateLimitConfig)
	defer limiter.Stop()

	var handler http.Handler = mux
	handler = ratelimit.Middleware(limiter, func(r *http.Request) string {
		if id := auth.UserID(r.Context()); id != "" {
			return id
		}
		return r.RemoteAddr
	})(handler)
	handler = auth.NewMiddleware(verifier, svc).RequireAuth(handler)

	root := http.NewServeMux()
	if !cfg.NoOIDC && cfg.OIDCClientSecret != "" && cfg.OIDCRedirectURL != "" {
		codeFlow, err := auth.NewCodeFlow(ctx, cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCClientSecret, cfg.OIDCRedirectURL)
		if err != nil {
			log.Error("oidc_setup_failed", "error", err.Error())
			os.Exit(1)
		}
		codeFlow.RegisterRoutes(root)
	}
	root.Handle("/", handler)

	handler = obs.RequestLoggingMiddleware(root)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown_failed", "error", err.Error())
		}
	}()

	log.Info("listening", "addr", cfg.ListenAddr, "no_mongo", cfg.NoMongo, "no_oidc", cfg.NoOIDC)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server_failed", "error", err.Error())
		os.Exit(1)
	}
	log.Info("shutdown_complete")
}
