package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"health-intake/internal/config"
	"health-intake/internal/platform/database"
	"health-intake/internal/platform/logger"
	"health-intake/internal/platform/storage"
	"health-intake/internal/report"
	"health-intake/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "intake-server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 1. Infrastructure
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	repo, closeRepo, err := openRepository(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatal("session store unavailable", zap.String("store", cfg.SessionStore), zap.Error(err))
	}
	defer closeRepo()

	// 2. Clients
	if cfg.StorageEndpointURL == "" {
		log.Warn("STORAGE_ENDPOINT_URL is not set, submissions will fail")
	}
	store := storage.NewClient(cfg.StorageEndpointURL, cfg.StorageTimeout, log)
	renderer := report.NewRenderer(cfg.ReportFontPath, log)

	// 3. Services
	svc := session.NewService(repo, renderer, store, log)
	handler := session.NewHandler(svc, log)

	// 4. Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	if cfg.RateLimitRPS > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimitRPS, time.Second))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Route("/api", func(r chi.Router) {
		session.RegisterRoutes(r, handler)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info("server starting", zap.String("port", cfg.Port), zap.String("store", cfg.SessionStore))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func openRepository(ctx context.Context, cfg *config.Config, log *zap.Logger) (session.Repository, func(), error) {
	switch cfg.SessionStore {
	case config.SessionStorePostgres:
		db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, 10, log)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(cfg.MigrationsDir, cfg.DatabaseURL, log); err != nil {
			db.Close()
			return nil, nil, err
		}
		return session.NewPostgresRepository(db), func() { db.Close() }, nil
	case config.SessionStoreRedis:
		client, err := database.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to redis", zap.String("addr", cfg.RedisAddr))
		return session.NewRedisRepository(client, cfg.SessionTTL), func() { client.Close() }, nil
	default:
		return session.NewMemoryRepository(), func() {}, nil
	}
}
