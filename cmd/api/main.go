// Package main is the entry point for the Staybook front-end server.
// Its sole responsibility is wiring dependencies together and starting the
// server. No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"staybook/internal/cache"
	"staybook/internal/cart"
	"staybook/internal/config"
	"staybook/internal/favorite"
	"staybook/internal/handler"
	"staybook/internal/middleware"
	"staybook/internal/repo"
	"staybook/internal/service"
	"staybook/internal/upstream"
	"staybook/internal/ws"
	"staybook/migrations"
	"staybook/spec"
)

// maxBodyBytes caps request bodies. The largest legitimate payload is an
// activity added to a cart, well under this.
const maxBodyBytes = 1 << 20

// cacheTTL is how long anonymous upstream responses stay cached.
const cacheTTL = 30 * time.Second

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately — the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if err := migrate(cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// --- Dependencies -----------------------------------------------------
	responseCache := cache.New(cfg.RedisAddr, cacheTTL, logger)
	defer responseCache.Close()

	client := upstream.New(cfg.BackendAPIURL, upstream.WithLogger(logger))

	houseService := service.NewHouseService(client, responseCache, logger)
	authService := service.NewAuthService(client)
	toggler := favorite.NewToggler(client)

	cartRepo := repo.NewCartRepo(pool)
	hub := ws.NewHub(logger)

	// Every cart mutation is pushed to the scope's room so all open views of
	// a listing converge on the same snapshot.
	carts := cart.NewManager(cartRepo, logger, func(key cart.Key, store *cart.Store) {
		store.Subscribe(func() {
			payload, err := json.Marshal(map[string]any{
				"activities": store.Activities(),
				"count":      store.Len(),
			})
			if err != nil {
				return
			}
			hub.Broadcast(ws.CartRoom(key.Visitor, key.HouseID), payload)
		})
	})

	janitor := newCartJanitor(cartRepo, logger, carts, toggler)
	janitor.Start()
	defer janitor.Stop()

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))

	server := handler.NewServer(houseService, authService, toggler, carts, hub,
		handler.WithLogger(logger),
		handler.WithSecureCookies(cfg.Production()),
		handler.WithAllowedOrigins(cfg.CORSOrigins),
	)
	r.Mount("/", server.Routes())

	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec.OpenAPI)
	})

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// WriteTimeout is generous because the cart events socket writes for the
	// lifetime of the page view.
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies pending schema migrations from the embedded files.
// goose needs database/sql, so a short-lived connection is opened for it.
func migrate(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(context.Background())
	if err != nil {
		return err
	}
	if len(results) > 0 {
		slog.Info("migrations applied", "count", len(results))
	}
	return nil
}
