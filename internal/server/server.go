// Package server implements the HTTP surface that exposes summarization,
// document upload, document Q&A, and learning-path generation as JSON
// endpoints. The server is started by the `aimicro serve` CLI command.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/54b3r/aimicro-go/internal/apperr"
	"github.com/54b3r/aimicro-go/internal/logging"
)

// maxMultipartMemory is the portion of an upload held in memory while
// parsing; the remainder spills to temporary files.
const maxMultipartMemory = 32 << 20

// Root status message returned by GET /.
const rootStatus = "API is running. Visit /docs for documentation."

// uploadFailurePrefix precedes the cause in upload processing failures.
const uploadFailurePrefix = "Failed to process document: "

// New constructs a Server from the provided services and config.
func New(svc *Services, cfg *Config) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("server: services must not be nil")
	}
	if svc.Summarizer == nil || svc.Ingester == nil || svc.Answerer == nil || svc.Paths == nil {
		return nil, fmt.Errorf("server: every service must be set")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 60 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// Uploads embed every page before responding.
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MetricsRegistry == nil {
		cfg.MetricsRegistry = prometheus.DefaultRegisterer
	}
	if cfg.MetricsGatherer == nil {
		cfg.MetricsGatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		svc:     svc,
		cfg:     cfg,
		pingers: cfg.Pingers,
		index:   cfg.Index,
		metrics: newServerMetrics(cfg.MetricsRegistry),
		log:     cfg.Logger,
	}
	if s.index != nil {
		s.metrics.indexPassages.Set(float64(s.index.Len()))
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      requestLogger(s.log, s.routes()),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// routes registers every endpoint on a fresh ServeMux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	s.handle(mux, "POST /api/summarize", "summarize", s.handleSummarize)
	s.handle(mux, "POST /api/upload-document", "upload_document", s.handleUpload)
	s.handle(mux, "POST /api/ask-document", "ask_document", s.handleAsk)
	s.handle(mux, "POST /api/generate-learning-path", "generate_learning_path", s.handleLearningPath)
	s.handle(mux, "GET /api/health", "health", s.handleHealth)
	s.handle(mux, "GET /api/ready", "ready", s.handleReady)
	s.handle(mux, "GET /{$}", "root", s.handleRoot)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.cfg.MetricsGatherer, promhttp.HandlerOpts{}))
	return mux
}

// Handler returns the server's root handler, including request logging.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server listening", slog.String("addr", "http://"+s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// handleSummarize handles POST /api/summarize.
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}

	start := time.Now()
	summary, err := s.svc.Summarizer.Summarize(r.Context(), req.Text)
	s.metrics.observe("summarize", start, err)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusOK, summarizeResponse{Summary: summary})
}

// handleUpload handles POST /api/upload-document. The PDF arrives in the
// multipart field "file"; a successful upload replaces the similarity index.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		s.writeError(w, r, apperr.InvalidInput("invalid multipart form"), "")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warn("multipart cleanup failed", slog.Any("error", err))
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, apperr.InvalidInput("file is required"), "")
		return
	}
	defer file.Close()

	start := time.Now()
	res, err := s.svc.Ingester.Ingest(r.Context(), header.Filename, file, func(msg string) {
		log.Debug("ingest progress", slog.String("step", msg))
	})
	s.metrics.observe("upload_document", start, err)
	if err != nil {
		s.writeError(w, r, err, uploadFailurePrefix)
		return
	}

	s.metrics.indexPassages.Set(float64(res.Passages))
	log.Info("document ingested",
		slog.String("document", res.Document.Name),
		slog.Int("pages", res.Pages),
		slog.Int("passages", res.Passages),
		slog.Duration("duration", res.Duration),
	)
	writeJSON(w, r, http.StatusOK, uploadResponse{Message: res.Message()})
}

// handleAsk handles POST /api/ask-document.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}

	start := time.Now()
	answer, err := s.svc.Answerer.Answer(r.Context(), req.Query)
	s.metrics.observe("ask_document", start, err)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusOK, askResponse{Answer: answer})
}

// handleLearningPath handles POST /api/generate-learning-path.
func (s *Server) handleLearningPath(w http.ResponseWriter, r *http.Request) {
	var req learningPathRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err, "")
		return
	}

	start := time.Now()
	path, err := s.svc.Paths.Generate(r.Context(), req.Topic, req.Level)
	s.metrics.observe("generate_learning_path", start, err)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusOK, learningPathResponse{LearningPath: path})
}

// handleRoot handles GET / with a static status message.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": rootStatus})
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeJSON decodes the request body into v. Malformed bodies are
// reported as invalid input.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.InvalidInput("invalid request body")
	}
	return nil
}

// statusFor maps an error to its HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrInvalidInput), errors.Is(err, apperr.ErrPrecondition):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err once with the request logger and writes it as a
// {"detail": ...} body. failurePrefix, when set, precedes the detail of
// server-side failures.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, failurePrefix string) {
	log := logging.FromContext(r.Context())
	status := statusFor(err)
	detail := apperr.Detail(err)

	if status >= http.StatusInternalServerError {
		detail = failurePrefix + detail
		log.Error("request failed", slog.Int("status", status), slog.Any("error", err))
	} else {
		log.Warn("request rejected", slog.Int("status", status), slog.String("detail", detail))
	}

	writeJSON(w, r, status, errorResponse{Detail: detail})
}

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("response encode error", slog.Any("error", err))
	}
}
