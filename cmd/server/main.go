package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ocrfields/extract-json-service/api"
	"github.com/ocrfields/extract-json-service/internal/config"
	"github.com/ocrfields/extract-json-service/internal/db"
	"github.com/ocrfields/extract-json-service/internal/logging"
	"github.com/ocrfields/extract-json-service/internal/models"
	"github.com/ocrfields/extract-json-service/internal/ocr"
	"github.com/ocrfields/extract-json-service/internal/ocr/tesseract"
	"github.com/ocrfields/extract-json-service/internal/storage"
)

const engineProbeTimeout = 5 * time.Second

func main() {
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	closeLog, err := logging.Init(cfg.Log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logging")
	}
	defer closeLog()

	engine, err := newEngine(cfg.OCR)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize OCR engine")
	}
	probeCtx, cancelProbe := context.WithTimeout(context.Background(), engineProbeTimeout)
	if version, err := engine.Version(probeCtx); err != nil {
		log.Warn().Err(err).Str("engine", engine.Name()).Msg("OCR engine not usable, requests will fail")
	} else {
		log.Info().Str("engine", engine.Name()).Str("version", version).Msg("OCR engine ready")
	}
	cancelProbe()

	opts := ocr.Options{
		Language:      cfg.OCR.Language,
		Timeout:       cfg.OCR.Timeout,
		MaxConcurrent: cfg.OCR.MaxConcurrent,
	}
	if cfg.OCR.Preprocess {
		opts.Preprocessor = ocr.NewPreprocessor()
	}
	handler := api.NewHandler(cfg, ocr.NewService(engine, opts))

	ctx := context.Background()

	// Initialize database connection pool
	store, err := db.Open(ctx, cfg.Database.URL)
	switch {
	case errors.Is(err, db.ErrNoDatabase):
		log.Info().Msg("No database configured, extraction log disabled")
	case err != nil:
		log.Warn().Err(err).Msg("Database not available, extraction log disabled")
	default:
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to prepare extraction log")
		} else {
			handler.WithStore(store)
		}
	}

	// Initialize MinIO storage
	archive, err := storage.New(ctx, cfg.Storage)
	switch {
	case errors.Is(err, storage.ErrDisabled):
		log.Info().Msg("Image archive disabled")
	case err != nil:
		log.Warn().Err(err).Msg("MinIO storage not available, images will not be stored")
	default:
		log.Info().Str("bucket", archive.Bucket()).Msg("MinIO storage initialized")
		handler.WithArchive(archive)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().
		Str("addr", addr).
		Str("version", api.Version).
		Str("ocr_engine", engine.Name()).
		Str("ocr_language", cfg.OCR.Language).
		Bool("auth", cfg.Auth.JWTSecret != "").
		Msg("Starting extract-json service")
	log.Info().Msgf("  POST http://%s/extract-json  - Extract labeled fields from an image", addr)
	log.Info().Msgf("  GET  http://%s/              - Liveness", addr)
	log.Info().Msgf("  GET  http://%s/health        - Health check", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), models.DefaultShutdownPeriod)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	// Let in-flight archive uploads and log inserts land before the pool closes
	handler.Wait()
}

// newEngine selects the OCR engine named in the configuration
func newEngine(cfg models.OCRConfig) (ocr.Engine, error) {
	switch cfg.Engine {
	case tesseract.Name, "":
		return tesseract.New(), nil
	case ocr.CLIEngineName:
		return ocr.NewCLIEngine(cfg.BinaryPath), nil
	default:
		return nil, fmt.Errorf("unknown OCR engine %q", cfg.Engine)
	}
}
