package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/EduNet2023/NovoApkPesca/config"
	"github.com/EduNet2023/NovoApkPesca/internal/db"
	"github.com/EduNet2023/NovoApkPesca/internal/events"
	"github.com/EduNet2023/NovoApkPesca/internal/handlers"
	"github.com/EduNet2023/NovoApkPesca/internal/metrics"
	"github.com/EduNet2023/NovoApkPesca/internal/mq"
	"github.com/EduNet2023/NovoApkPesca/internal/services"
	"github.com/EduNet2023/NovoApkPesca/internal/storage"
	"github.com/EduNet2023/NovoApkPesca/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     mq.Backend
	logger     *slog.Logger
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	jwtSecret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	objectStorage, err := newObjectStorage(ctx, cfg, logger)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	broker, err := newEventBackend(ctx, cfg, logger)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	var publisher *events.Publisher
	if broker != nil {
		publisher = events.NewPublisher(broker, cfg.Events.Channel, logger)
	}

	userRepo := store.NewUserRepository(dbConn)
	locationRepo := store.NewLocationRepository(dbConn)
	sessionRepo := store.NewSessionRepository(dbConn)
	catchRepo := store.NewCatchRepository(dbConn)
	statsRepo := store.NewStatsRepository(dbConn)

	userService := services.NewUserService(userRepo, publisher)
	locationService := services.NewLocationService(locationRepo, publisher)
	sessionService := services.NewSessionService(sessionRepo, locationRepo, catchRepo, publisher)
	catchService := services.NewCatchService(catchRepo, sessionRepo, objectStorage, publisher, logger)
	statsService := services.NewStatsService(statsRepo, sessionRepo, catchRepo)

	authMiddleware := handlers.RequireAuth(jwtSecret)
	healthHandler := handlers.NewHealthHandler(dbConn)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
		metrics.InstrumentHandler,
	)
	router.Method(http.MethodGet, "/metrics", metrics.Handler())
	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.Route("/auth", func(r chi.Router) {
			handlers.AuthRouter(r, userService, jwtSecret, cfg.Auth.TokenTTLDays)
		})
		r.Route("/locations", func(r chi.Router) {
			handlers.LocationRouter(r, locationService, authMiddleware)
		})
		r.Route("/sessions", func(r chi.Router) {
			handlers.SessionRouter(r, sessionService, authMiddleware)
		})
		r.Route("/catches", func(r chi.Router) {
			handlers.CatchRouter(r, catchService, authMiddleware)
		})
		r.Route("/stats", func(r chi.Router) {
			handlers.StatsRouter(r, statsService, authMiddleware)
		})
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server configured", "port", port,
		"storage_backend", cfg.Storage.Backend, "events_backend", cfg.Events.Backend)

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		broker:     broker,
		logger:     logger,
	}, nil
}

// newObjectStorage builds the configured photo storage backend, or nil when
// photo storage is disabled.
func newObjectStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.ObjectStorage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Backend)) {
	case "":
		return nil, nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Storage.Minio)
		if err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("minio: %w", err)
		}
		logger.Info("photo storage ready", "backend", "minio", "bucket", client.Bucket())
		return client, nil
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.Storage.GCS)
		if err != nil {
			return nil, fmt.Errorf("gcs: %w", err)
		}
		if err := client.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("gcs: %w", err)
		}
		logger.Info("photo storage ready", "backend", "gcs", "bucket", client.Bucket())
		return client, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// newEventBackend builds the configured event broker, or nil when event
// publishing is disabled.
func newEventBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (mq.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Events.Backend)) {
	case "":
		return nil, nil
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.Events.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		logger.Info("event broker ready", "backend", "rabbitmq", "channel", cfg.Events.Channel)
		return client, nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.Events.PubSub)
		if err != nil {
			return nil, fmt.Errorf("pubsub: %w", err)
		}
		logger.Info("event broker ready", "backend", "pubsub", "channel", cfg.Events.Channel)
		return client, nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Events.Backend)
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.broker != nil {
		_ = s.broker.Close()
	}
	return s.httpServer.Close()
}
