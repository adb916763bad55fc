package router

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "vendor-notices/docs"
	"vendor-notices/internal/adapters/capabilities/static"
	mem "vendor-notices/internal/adapters/storage/memory"
	pg "vendor-notices/internal/adapters/storage/postgres"
	"vendor-notices/internal/config"
	"vendor-notices/internal/domain/events"
	"vendor-notices/internal/domain/impacts"
	"vendor-notices/internal/domain/providers"
	"vendor-notices/internal/domain/targets"
	"vendor-notices/internal/feed"
	"vendor-notices/internal/middleware"
	"vendor-notices/internal/platform/logger"
	"vendor-notices/internal/ports/auth"
	"vendor-notices/internal/ports/capabilities"
)

type Options struct {
	Config *config.Config // nil => config.Default()
	Log    logger.Logger

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Tokens   auth.TokenVerifier // nil => sin tokens (solo sesión / anónimo)
	Sessions auth.SessionStore  // nil => sin sesiones por cookie
	Caps     capabilities.CapabilitiesResolver

	// AllowList compartida con el reloader de config.
	AllowList *targets.AllowList

	// Inventory de targets para el modo in-memory (dev/tests).
	Inventory *mem.Inventory
}

func NewRouter(opts Options) http.Handler {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)

	r.Use(middleware.SessionContext(middleware.SessionOptions{
		Store:   opts.Sessions,
		Cookie:  cfg.Auth.SessionCookie,
		DevMode: cfg.Auth.DevMode,
		Log:     log,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	allow := opts.AllowList
	if allow == nil {
		allow = targets.NewAllowList(cfg.Impacts.AllowedTargetKinds)
	}
	registry := targets.NewRegistry(allow)

	var (
		providerRepo providers.Repository
		eventRepo    events.Repository
		impactRepo   impacts.Repository
	)

	if opts.DB != nil {
		providerRepo = pg.NewProvidersRepo(opts.DB)
		eventRepo = pg.NewEventsRepo(opts.DB)
		impactRepo = pg.NewImpactsRepo(opts.DB)
		pg.RegisterTargetResolvers(registry, opts.DB, pg.DefaultTargetTables)
	} else {
		providerRepo = mem.NewProviderRepo()
		eventRepo = mem.NewEventRepo()
		impactRepo = mem.NewImpactRepo()

		inv := opts.Inventory
		if inv == nil {
			inv = mem.NewInventory()
		}
		inv.RegisterAll(registry, targets.InventoryKinds...)
	}

	caps := opts.Caps
	if caps == nil {
		caps = static.NewResolver(cfg.Auth.AnonymousCapabilities).WithAllowAll(cfg.Capabilities.AllowAll)
	}

	// Services por módulo
	providersSvc := providers.NewService(providerRepo)
	eventsSvc := events.NewService(eventRepo, providersSvc)
	impactsSvc := impacts.NewService(impactRepo, eventsSvc, registry, log.With(map[string]any{"module": "impacts"}))

	// API JSON: token de header o sesión.
	r.Group(func(api chi.Router) {
		api.Use(middleware.TokenContext(opts.Tokens))

		providers.RegisterRoutes(api, providersSvc, caps)
		events.RegisterRoutes(api, eventsSvc, caps)
		impacts.RegisterRoutes(api, impactsSvc, caps)
	})

	// El feed resuelve su propia credencial (?token= primero).
	r.Get("/ical/events.ics", feed.NewHandler(feed.Options{
		Auth:    feed.NewAuthenticator(opts.Tokens, cfg.Auth.LoginRequired),
		Caps:    caps,
		Filters: feed.NewFilterResolver(providersSvc, cfg.ICal.PastDaysDefault),
		Store:   feed.NewEventStore(eventsSvc, impactsSvc, providersSvc),
		Renderer: feed.NewSerializer(feed.SerializerOptions{
			Domain:       cfg.ICal.Domain,
			CalendarName: cfg.ICal.CalendarName,
			TTL:          time.Duration(cfg.ICal.CacheMaxAge) * time.Second,
			Targets:      impactsSvc,
		}),
		CacheMaxAge: cfg.ICal.CacheMaxAge,
		Log:         log.With(map[string]any{"module": "feed"}),
	}))

	return r
}
