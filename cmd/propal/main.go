package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	adapthttp "propal/internal/adapter/http"
	"propal/internal/adapter/postgres"
	"propal/internal/app"
	"propal/internal/config"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("db open", "err", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	catalogSvc, err := app.NewCatalogService(cfg.STTConfigPath)
	if err != nil {
		log.Error("catalog", "err", err)
		os.Exit(1)
	}

	authSvc := app.NewAuthService(db, []byte(cfg.JWTSecret), cfg.TokenTTL)

	var oidcProvider *adapthttp.OIDCProvider
	if cfg.OIDC.Enabled() {
		oidcProvider, err = adapthttp.NewOIDCProvider(context.Background(), cfg.OIDC)
		if err != nil {
			log.Error("oidc discovery", "err", err)
			os.Exit(1)
		}
	}

	h := adapthttp.New(authSvc, catalogSvc, adapthttp.Options{
		WebDir:         cfg.WebDir,
		AllowedOrigins: cfg.AllowedOrigins,
		CookieTTL:      cfg.TokenTTL,
		OIDC:           oidcProvider,
		Logger:         log,
	}).Handler()

	log.Info("listening", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server", "err", err)
		os.Exit(1)
	}
}
