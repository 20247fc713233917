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
	"go.uber.org/zap"

	"health-intake/internal/bridge"
	"health-intake/internal/config"
	"health-intake/internal/platform/blobstore"
	"health-intake/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "storage-bridge")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	blobs, err := openBlobStore(cfg.BridgeConfig, log)
	if err != nil {
		log.Fatal("blob store unavailable", zap.Error(err))
	}

	ledger := bridge.NewLedger(cfg.LedgerPath)
	handler := bridge.NewHandler(ledger, blobs, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Browsers post with text/plain so no preflight is needed; GETs still
	// need the allow-origin header.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST"},
	}))
	bridge.RegisterRoutes(r, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.BridgePort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info("storage bridge starting",
		zap.String("port", cfg.BridgePort),
		zap.String("ledger", ledger.Path()),
		zap.Bool("minio", cfg.MinioEnabled()),
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("storage bridge stopped", zap.Error(err))
	}
}

func openBlobStore(cfg config.BridgeConfig, log *zap.Logger) (blobstore.Store, error) {
	if !cfg.MinioEnabled() {
		base := cfg.PublicBaseURL
		if base == "" {
			base = "http://localhost:" + cfg.BridgePort
		}
		return blobstore.NewDirStore(cfg.PDFDir, base)
	}

	store, err := blobstore.NewMinioStore(blobstore.MinioConfig{
		Endpoint:    cfg.MinioEndpoint,
		AccessKey:   cfg.MinioAccessKey,
		SecretKey:   cfg.MinioSecretKey,
		Bucket:      cfg.MinioBucket,
		UseSSL:      cfg.MinioUseSSL,
		LinkExpires: cfg.MinioLinkExpires,
	}, log)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
