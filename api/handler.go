package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/ocrfields/extract-json-service/internal/auth"
	"github.com/ocrfields/extract-json-service/internal/db"
	"github.com/ocrfields/extract-json-service/internal/fields"
	"github.com/ocrfields/extract-json-service/internal/models"
	"github.com/ocrfields/extract-json-service/internal/ocr"
)

const (
	Version = "1.0.0"

	// sideEffectTimeout bounds archive uploads and log inserts
	sideEffectTimeout = 5 * time.Second
)

// Recognizer runs OCR over decoded image bytes
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (*ocr.Result, error)
	EngineName() string
	EngineVersion(ctx context.Context) (string, error)
}

// ExtractionStore records extraction attempts
type ExtractionStore interface {
	RecordExtraction(ctx context.Context, e *db.Extraction) error
	RecentExtractions(ctx context.Context, limit int) ([]db.Extraction, error)
	Ping(ctx context.Context) error
}

// ImageArchive keeps a copy of submitted images
type ImageArchive interface {
	UploadImage(ctx context.Context, id uuid.UUID, image []byte) (string, error)
	Available(ctx context.Context) error
}

// Handler handles HTTP requests for field extraction
type Handler struct {
	config  *models.Config
	ocr     Recognizer
	store   ExtractionStore
	archive ImageArchive

	// pending tracks archive uploads and log inserts still running after
	// their response was sent
	pending sync.WaitGroup
}

// NewHandler creates a new API handler
func NewHandler(config *models.Config, recognizer Recognizer) *Handler {
	return &Handler{
		config: config,
		ocr:    recognizer,
	}
}

// WithStore enables the extraction log
func (h *Handler) WithStore(store ExtractionStore) *Handler {
	h.store = store
	return h
}

// WithArchive enables image archiving
func (h *Handler) WithArchive(archive ImageArchive) *Handler {
	h.archive = archive
	return h
}

// Wait blocks until every background archive upload and log insert has
// finished
func (h *Handler) Wait() {
	h.pending.Wait()
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/extract-json", h.ExtractJSON).Methods(http.MethodPost, http.MethodOptions)
	router.HandleFunc("/", h.Root).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/extractions", h.ListExtractions).Methods(http.MethodGet, http.MethodOptions)

	router.Use(
		hlog.NewHandler(log.Logger),
		hlog.RequestIDHandler("req_id", "X-Request-Id"),
		hlog.AccessHandler(accessLog),
		mux.CORSMethodMiddleware(router),
		corsMiddleware,
	)
	if h.config.Auth.JWTSecret != "" {
		router.Use(auth.Middleware(h.config.Auth.JWTSecret, "/", "/health"))
	}

	return router
}

// Root is the liveness endpoint
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, models.MessageRootLiveness)
}

// ExtractJSON runs OCR over the submitted image and extracts the labeled
// fields from the recognized text
func (h *Handler) ExtractJSON(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger := hlog.FromRequest(r)

	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes)

	var req models.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn().Int64("limit", tooLarge.Limit).Msg("request body too large")
			h.sendFailure(w, http.StatusRequestEntityTooLarge, models.MessageBodyTooLarge)
			return
		}
		logger.Warn().Err(err).Msg("invalid request body")
		h.sendFailure(w, http.StatusBadRequest, models.MessageInvalidBody)
		return
	}

	if req.ImageBase64 == nil || *req.ImageBase64 == "" {
		h.sendFailure(w, http.StatusBadRequest, models.MessageMissingImage)
		return
	}

	id := uuid.New()
	rec := &db.Extraction{ID: id, OCREngine: h.ocr.EngineName()}
	l := logger.With().Str("extraction_id", id.String()).Logger()

	image, err := ocr.DecodeImageBase64(*req.ImageBase64)
	if err != nil {
		h.serverError(w, r, &l, rec, start, err)
		h.finish(r.Context(), l, rec, nil)
		return
	}
	rec.ImageBytes = len(image)
	archived := h.archiveImage(r.Context(), l, id, image)

	res, err := h.ocr.Recognize(r.Context(), image)
	if err != nil {
		h.serverError(w, r, &l, rec, start, err)
		h.finish(r.Context(), l, rec, archived)
		return
	}
	rec.OCRMillis = res.Duration.Milliseconds()

	extracted := fields.Extract(fields.Normalize(res.Text))
	result := extracted.Result()

	rec.Success = result.Success
	for _, label := range extracted.Missing() {
		rec.MissingFields = append(rec.MissingFields, string(label))
	}
	rec.TotalMillis = time.Since(start).Milliseconds()

	l.Info().
		Bool("success", result.Success).
		Strs("missing", rec.MissingFields).
		Int("image_bytes", rec.ImageBytes).
		Dur("ocr", res.Duration).
		Msg("extraction finished")

	h.sendResult(w, http.StatusOK, result)
	h.finish(r.Context(), l, rec, archived)
}

// serverError logs err, marks rec as failed and responds with a generic 500
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, l *zerolog.Logger, rec *db.Extraction, start time.Time, err error) {
	l.Error().Err(err).Msg("OCR or processing error")

	rec.Success = false
	rec.Error = err.Error()
	rec.TotalMillis = time.Since(start).Milliseconds()

	h.sendFailure(w, http.StatusInternalServerError, models.MessageServerError)
}

// archiveImage starts uploading the image when an archive is configured and
// returns a channel that yields the object path, or "" on failure. The
// upload runs alongside OCR and never delays or fails the response. Nil
// means archiving is off.
func (h *Handler) archiveImage(ctx context.Context, l zerolog.Logger, id uuid.UUID, image []byte) <-chan string {
	if h.archive == nil {
		return nil
	}

	out := make(chan string, 1)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		defer cancel()

		path, err := h.archive.UploadImage(ctx, id, image)
		if err != nil {
			l.Warn().Err(err).Msg("failed to archive image")
		}
		out <- path
	}()
	return out
}

// finish waits for the archive upload in the background, then writes the
// extraction log row when a store is configured
func (h *Handler) finish(ctx context.Context, l zerolog.Logger, rec *db.Extraction, archived <-chan string) {
	if h.store == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	h.pending.Add(1)
	go func() {
		defer h.pending.Done()

		if archived != nil {
			rec.ImageObject = <-archived
		}

		ctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
		defer cancel()
		if err := h.store.RecordExtraction(ctx, rec); err != nil {
			l.Warn().Err(err).Msg("failed to record extraction")
		}
	}()
}

// sendFailure sends a failure result with empty data
func (h *Handler) sendFailure(w http.ResponseWriter, statusCode int, message string) {
	h.sendResult(w, statusCode, models.ExtractionResult{
		Success: false,
		Message: message,
	})
}

// sendResult writes result as JSON
func (h *Handler) sendResult(w http.ResponseWriter, statusCode int, result models.ExtractionResult) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(result)
}
