package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ppiankov/clausula/internal/decode"
	"github.com/ppiankov/clausula/internal/logger"
	"github.com/ppiankov/clausula/internal/model"
	"github.com/ppiankov/clausula/internal/pipeline"
)

// multipartOverhead is allowed on top of the file limit for form framing
const multipartOverhead = 1 << 20

// Extractor defines the interface for extracting an uploaded file
type Extractor interface {
	ExtractFile(ctx context.Context, data []byte, filename string) (*model.Extraction, error)
}

// Server is the HTTP extraction service
type Server struct {
	extractor Extractor
	config    model.ServerConfig
	maxBytes  int64
	limiter   *ClientLimiter
	log       logger.Logger
	router    chi.Router
}

// extractResponse is the body of a successful POST /extract
type extractResponse struct {
	Extracted   model.Record `json:"extracted"`
	TextPreview string       `json:"textPreview"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// New builds a server around extractor
func New(extractor Extractor, cfg *model.Config, log logger.Logger) *Server {
	if log == nil {
		log = logger.GetDefault()
	}
	s := &Server{
		extractor: extractor,
		config:    cfg.Server,
		maxBytes:  cfg.Extraction.MaxFileBytes,
		limiter:   NewClientLimiter(cfg.Server.RequestsPerSecond, cfg.Server.Burst),
		log:       log,
	}
	s.router = s.routes()
	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.Middleware)
		if s.config.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.config.RequestTimeout))
		}
		r.Post("/extract", s.handleExtract)
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server starting", "address", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		s.log.Info("Server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if s.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		log.Warn("Failed to parse multipart form or request too large", "error", err)
		writeError(w, http.StatusBadRequest, "invalid multipart body or file too large")
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Warn("Failed to retrieve file from request", "error", err)
		writeError(w, http.StatusBadRequest, "missing 'file' field")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	ext, err := s.extractor.ExtractFile(r.Context(), data, header.Filename)
	if err != nil {
		status := statusFor(err)
		log.Warn("Extraction failed", "file", header.Filename, "status", status, "error", err)
		writeError(w, status, err.Error())
		return
	}

	log.Info("Extraction served", "file", header.Filename, "bytes", len(data), "warnings", len(ext.Warnings))
	writeJSON(w, http.StatusOK, extractResponse{
		Extracted:   ext.Extracted,
		TextPreview: ext.TextPreview,
	})
}

// statusFor maps extraction errors to HTTP status codes
func statusFor(err error) int {
	var decodeErr *decode.DecodeError
	switch {
	case errors.Is(err, decode.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, pipeline.ErrFileTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &decodeErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// requestLogger attaches a request-scoped logger to the context and logs
// each response
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := s.log.With("request_id", middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(logger.ContextWithLogger(r.Context(), log)))

		log.Debug("Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
