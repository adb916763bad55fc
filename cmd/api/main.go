package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendor-notices/internal/adapters/auth/dbtoken"
	"vendor-notices/internal/adapters/auth/jwttoken"
	"vendor-notices/internal/adapters/auth/odin"
	"vendor-notices/internal/adapters/auth/session"
	"vendor-notices/internal/adapters/capabilities/plansfeatures"
	"vendor-notices/internal/adapters/capabilities/static"
	pg "vendor-notices/internal/adapters/storage/postgres"
	"vendor-notices/internal/config"
	"vendor-notices/internal/domain/targets"
	"vendor-notices/internal/platform/logger"
	"vendor-notices/internal/ports/auth"
	"vendor-notices/internal/ports/capabilities"
	"vendor-notices/internal/router"
)

// @title Vendor Notices API
// @version 1.0
// @description Mantenimientos y outages de proveedores, impacts sobre inventario y feed iCalendar.
// @BasePath /
func main() {
	cfgPath := flag.String("config", "config.yaml", "archivo de configuración YAML")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	lg := logger.NewFromStrings(cfg.Log.Level, cfg.Log.Format, cfg.Log.App)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, *cfgPath, lg)
	stop()
	if err != nil {
		lg.Error("server failed", logger.Err(err))
		os.Exit(1)
	}
}

// run arma las dependencias y sirve hasta que ctx se cancela. Devuelve el error
// en vez de salir para que los defers (db, reloader) corran siempre.
func run(ctx context.Context, cfg *config.Config, cfgPath string, lg logger.Logger) error {
	var db *sql.DB
	if cfg.Database.DSN != "" {
		var err error
		db, err = pg.Open(ctx, cfg.Database.DSN, pg.PoolOptions{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return fmt.Errorf("postgres open: %w", err)
		}
		defer db.Close()
		if err := pg.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("postgres schema: %w", err)
		}
	} else {
		lg.Warn("no database configured, using in-memory storage", nil)
	}

	var sessions auth.SessionStore
	if cfg.Redis.Addr != "" {
		store := session.NewRedisStore(session.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB))
		if err := store.Ping(ctx); err != nil {
			lg.Warn("redis not reachable, sessions will fail until it is", logger.Err(err))
		}
		sessions = store
	}

	tokens, err := buildTokenVerifier(cfg, db, lg)
	if err != nil {
		return fmt.Errorf("token backend: %w", err)
	}
	caps, err := buildCapabilities(cfg)
	if err != nil {
		return fmt.Errorf("capabilities backend: %w", err)
	}

	allow := targets.NewAllowList(cfg.Impacts.AllowedTargetKinds)
	reloader, err := config.NewReloader(cfgPath, cfg.Reload.AllowlistSchedule, allow, lg.With(map[string]any{"module": "config"}))
	if err != nil {
		return fmt.Errorf("reload schedule: %w", err)
	}
	reloader.Start()
	defer reloader.Stop()

	r := router.NewRouter(router.Options{
		Config:    cfg,
		Log:       lg,
		DB:        db,
		Tokens:    tokens,
		Sessions:  sessions,
		Caps:      caps,
		AllowList: allow,
	})

	srv := &http.Server{
		Addr:         cfg.Listen,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	lg.Info("starting server", map[string]any{"addr": cfg.Listen, "token_backend": cfg.Auth.TokenBackend})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	lg.Info("server stopped", nil)
	return nil
}

// errTokensNeedDatabase: sin DSN, un repo en memoria nunca tendría los tokens
// que emite cmd/feedtoken.
var errTokensNeedDatabase = errors.New("token_backend db requires database.dsn")

func buildTokenVerifier(cfg *config.Config, db *sql.DB, lg logger.Logger) (auth.TokenVerifier, error) {
	switch cfg.Auth.TokenBackend {
	case "db":
		if db == nil {
			return nil, errTokensNeedDatabase
		}
		return dbtoken.NewVerifier(pg.NewTokensRepo(db)), nil
	case "odin":
		client, err := odin.NewClient(odin.Config{
			BaseURL: cfg.Auth.Odin.BaseURL,
			APIKey:  cfg.Auth.Odin.APIKey,
		})
		if err != nil {
			return nil, err
		}
		return odin.NewVerifier(client).WithCache(cfg.Auth.Odin.CacheTTL), nil
	default:
		if cfg.Auth.JWTSecret == "" {
			lg.Warn("jwt secret empty, every feed token will be rejected", nil)
		}
		return jwttoken.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer), nil
	}
}

func buildCapabilities(cfg *config.Config) (capabilities.CapabilitiesResolver, error) {
	if cfg.Capabilities.Backend != "plansfeatures" {
		return static.NewResolver(cfg.Auth.AnonymousCapabilities).WithAllowAll(cfg.Capabilities.AllowAll), nil
	}
	client, err := plansfeatures.NewClient(plansfeatures.Config{
		BaseURL: cfg.Capabilities.PlansFeatures.BaseURL,
		APIKey:  cfg.Capabilities.PlansFeatures.APIKey,
	})
	if err != nil {
		return nil, err
	}
	return plansfeatures.NewResolver(client, cfg.Capabilities.AllowAll, cfg.Auth.AnonymousCapabilities).
		WithCache(cfg.Capabilities.PlansFeatures.CacheTTL), nil
}
