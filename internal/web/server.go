package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"

	"github.com/vbonduro/closet/internal/gateway"
	"github.com/vbonduro/closet/internal/imageprep"
	"github.com/vbonduro/closet/internal/inventory"
	"github.com/vbonduro/closet/internal/photostore"
	"github.com/vbonduro/closet/internal/service"
)

type Server struct {
	closet     *service.ClosetService
	outfits    *service.OutfitService
	photoStore photostore.PhotoStore
	validate   *validator.Validate
	mux        *http.ServeMux
	maxVisible int
	logger     *slog.Logger
}

type Option func(*Server)

// WithMaxVisible sets how many closet items are listed before "show all".
func WithMaxVisible(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxVisible = n
		}
	}
}

func NewServer(closet *service.ClosetService, outfits *service.OutfitService, ps photostore.PhotoStore, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		closet:     closet,
		outfits:    outfits,
		photoStore: ps,
		validate:   validator.New(),
		mux:        http.NewServeMux(),
		maxVisible: inventory.DefaultVisible,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/closet", s.handleListCloset)
	s.mux.HandleFunc("POST /api/closet/uploads", s.handleUploads)
	s.mux.HandleFunc("POST /api/closet/capture", s.handleCapture)
	s.mux.HandleFunc("POST /api/closet/surprise", s.handleSurprise)
	s.mux.HandleFunc("DELETE /api/closet/{id}", s.handleRemoveItem)
	s.mux.HandleFunc("GET /api/outfit", s.handleGetOutfit)
	s.mux.HandleFunc("POST /api/outfit", s.handleGenerateOutfit)
	s.mux.HandleFunc("POST /api/outfit/stream", s.handleStreamOutfit)
	s.mux.HandleFunc("GET /api/theme", s.handleTheme)
	s.mux.HandleFunc("GET /assets/{key...}", s.handleAsset)
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'self'; img-src 'self' data:; connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:        addr,
		Handler:     s,
		ReadTimeout: 60 * time.Second,
		// Illustration can take a while, and each rate-limit retry adds more.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

// User-facing messages. Details stay in the logs.
const (
	msgEmptyCloset    = "Your closet is empty. Add a few items first!"
	msgClosetFull     = "Your closet is full. Remove some items to make room."
	msgStylingFailed  = "We couldn't put an outfit together. Please try again."
	msgClassifyFailed = "We couldn't recognise that item. Please try another photo."
	msgImageLoad      = "We couldn't read that image. Please try a different file."
	msgBusy           = "The stylist is busy right now. Please try again in a moment."
	msgSuperseded     = "A newer outfit request replaced this one."
	msgBadCategory    = "Please pick one of the listed categories."
	msgInternal       = "Something went wrong. Please try again."
)

// errorResponse maps a service error to a status code and a static message.
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrEmptyCloset):
		return http.StatusConflict, msgEmptyCloset
	case errors.Is(err, service.ErrSuperseded):
		return http.StatusConflict, msgSuperseded
	case errors.Is(err, inventory.ErrClosetFull):
		return http.StatusInsufficientStorage, msgClosetFull
	case errors.Is(err, service.ErrInvalidCategory):
		return http.StatusBadRequest, msgBadCategory
	case errors.Is(err, imageprep.ErrImageLoad):
		return http.StatusBadRequest, msgImageLoad
	case errors.Is(err, gateway.ErrRateLimited):
		return http.StatusServiceUnavailable, msgBusy
	case errors.Is(err, gateway.ErrClassification):
		return http.StatusBadGateway, msgClassifyFailed
	case errors.Is(err, gateway.ErrSelection), errors.Is(err, gateway.ErrIllustration):
		return http.StatusBadGateway, msgStylingFailed
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorResponse(err)
	if status >= http.StatusInternalServerError && status != http.StatusInsufficientStorage {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
		if status == http.StatusInternalServerError {
			sentry.CaptureException(err)
		}
	} else {
		s.logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response failed", "error", err)
	}
}

// decodeJSON reads an optional JSON body into dst and validates it. An empty
// body leaves dst at its zero value.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return s.validate.Struct(dst)
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
