package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/caseflow/casepipe/internal/artifact"
	"github.com/caseflow/casepipe/internal/cache"
	"github.com/caseflow/casepipe/internal/common"
	"github.com/caseflow/casepipe/internal/extract"
	"github.com/caseflow/casepipe/internal/ingest"
	"github.com/caseflow/casepipe/internal/model"
	"github.com/caseflow/casepipe/internal/repository"
	"github.com/caseflow/casepipe/internal/server"
	"github.com/caseflow/casepipe/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}

	var primary, secondary storage.ObjectStore
	if ms, err := storage.NewMinioStore(storage.MinioConfig{
		Endpoint:  cfg.Storage.MinioEndpoint,
		AccessKey: cfg.Storage.MinioAccessKey,
		SecretKey: cfg.Storage.MinioSecretKey,
		Bucket:    cfg.Storage.MinioBucket,
		UseSSL:    cfg.Storage.MinioUseSSL,
	}); err != nil {
		logger.Error("minio client init failed", "error", err)
		os.Exit(1)
	} else if ms != nil {
		primary = ms
	}
	if ss := storage.NewSupabaseStore(storage.SupabaseConfig{
		URL:        cfg.Storage.SupabaseURL,
		ServiceKey: cfg.Storage.SupabaseServiceKey,
		Bucket:     cfg.Storage.SupabaseBucket,
	}); ss != nil {
		secondary = ss
	}
	uploader := storage.NewChain(primary, secondary, cfg.IsDevelopment(), logger)

	cascade := extract.NewCascade(extract.Config{
		Pdftoppm:      cfg.Extract.Pdftoppm,
		Tesseract:     cfg.Extract.Tesseract,
		Antiword:      cfg.Extract.Antiword,
		TesseractLang: cfg.Extract.TesseractLang,
		DPI:           cfg.Extract.DPI,
	}, nil, logger)

	coordinator := ingest.NewCoordinator(cascade, uploader, resty.New(), ingest.Config{
		AllowedHostSuffix: cfg.Storage.AllowedHostSuffix,
		TokenSecret:       cfg.Storage.TokenSecret,
	}, logger)

	documents := repository.NewPGDocumentRepository(pool)
	docCache := cache.NewDocumentCache(cache.DefaultTTL)
	generator := artifact.NewGenerator(
		model.NewClient(cfg.Model, logger),
		&server.DocumentStore{Repo: documents, Cache: docCache},
		logger,
	)

	srv := server.New(coordinator, generator, documents, docCache, logger)
	httpSrv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("stopped")
}
