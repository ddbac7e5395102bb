package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/54b3r/aimicro-go/internal/ingestion"
)

// Summarizer condenses free text. *summarize.Service satisfies it.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Ingester stores an uploaded document and rebuilds the similarity index
// from it. *ingestion.Pipeline satisfies it.
type Ingester interface {
	Ingest(ctx context.Context, filename string, r io.Reader, progress func(msg string)) (*ingestion.Result, error)
}

// Answerer answers a question from the most recently ingested document.
// *qa.Answerer satisfies it.
type Answerer interface {
	Answer(ctx context.Context, query string) (string, error)
}

// PathGenerator produces a structured learning curriculum.
// *learnpath.Service satisfies it.
type PathGenerator interface {
	Generate(ctx context.Context, topic, level string) (string, error)
}

// Services bundles the service implementations behind each endpoint.
// Every field is required.
type Services struct {
	// Summarizer backs POST /api/summarize.
	Summarizer Summarizer

	// Ingester backs POST /api/upload-document.
	Ingester Ingester

	// Answerer backs POST /api/ask-document.
	Answerer Answerer

	// Paths backs POST /api/generate-learning-path.
	Paths PathGenerator
}

// Server is the HTTP server that exposes the micro-services as JSON endpoints.
type Server struct {
	// svc holds the service implementations invoked by the handlers.
	svc *Services

	// cfg holds the server configuration.
	cfg *Config

	// httpServer is the underlying net/http server.
	httpServer *http.Server

	// pingers are the dependency probes run by GET /api/ready.
	pingers []Pinger

	// index is the live similarity index, nil when not reported.
	index IndexStatus

	// metrics holds all Prometheus metrics owned by this server.
	metrics *serverMetrics

	// log is the server's base logger.
	log *slog.Logger
}

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (e.g. "127.0.0.1").
	Host string

	// Port is the TCP port to listen on.
	Port int

	// ReadTimeout is the maximum duration for reading the entire request,
	// including a multipart upload body.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Must cover the slowest model call.
	WriteTimeout time.Duration

	// ShutdownTimeout is the maximum time to wait for in-flight requests to
	// complete during graceful shutdown.
	ShutdownTimeout time.Duration

	// Logger is the base structured logger. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Pingers are the dependency probes run by GET /api/ready. May be empty.
	Pingers []Pinger

	// Index is the live similarity index. When set, GET /api/ready reports
	// its state and the index size gauge starts from its passage count.
	Index IndexStatus

	// MetricsRegistry is the registerer the server metrics are created in.
	// Defaults to prometheus.DefaultRegisterer.
	MetricsRegistry prometheus.Registerer

	// MetricsGatherer backs GET /metrics. Defaults to
	// prometheus.DefaultGatherer.
	MetricsGatherer prometheus.Gatherer
}

// summarizeRequest is the JSON body for POST /api/summarize.
type summarizeRequest struct {
	// Text is the input to summarize.
	Text string `json:"text"`
}

// summarizeResponse is the JSON body returned by POST /api/summarize.
type summarizeResponse struct {
	Summary string `json:"summary"`
}

// uploadResponse is the JSON body returned by POST /api/upload-document.
type uploadResponse struct {
	Message string `json:"message"`
}

// askRequest is the JSON body for POST /api/ask-document.
type askRequest struct {
	// Query is the question about the ingested document.
	Query string `json:"query"`
}

// askResponse is the JSON body returned by POST /api/ask-document.
type askResponse struct {
	Answer string `json:"answer"`
}

// learningPathRequest is the JSON body for POST /api/generate-learning-path.
type learningPathRequest struct {
	// Topic is the subject of the curriculum.
	Topic string `json:"topic"`
	// Level is the learner's proficiency; defaults to Beginner when empty.
	Level string `json:"level"`
}

// learningPathResponse is the JSON body returned by
// POST /api/generate-learning-path.
type learningPathResponse struct {
	LearningPath string `json:"learning_path"`
}

// errorResponse is the JSON body for every non-2xx response.
type errorResponse struct {
	Detail string `json:"detail"`
}
