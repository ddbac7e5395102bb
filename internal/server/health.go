package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/54b3r/aimicro-go/internal/logging"
)

// probeTimeout bounds each dependency probe run by GET /api/ready.
const probeTimeout = 5 * time.Second

// Pinger reports whether one backend the services depend on (chat model,
// embedder, Qdrant) is reachable. Implementations must be safe for
// concurrent use.
type Pinger interface {
	// Ping returns nil when the dependency answered within ctx.
	Ping(ctx context.Context) error

	// Name labels the dependency in readiness output, e.g. "llm:ollama".
	Name() string
}

// IndexStatus is the read side of the similarity index slot. *rag.Slot
// satisfies it.
type IndexStatus interface {
	// Ready reports whether a document has been indexed.
	Ready() bool

	// Len returns the number of passages in the live index.
	Len() int
}

// MultiPinger runs several pingers in order and fails on the first error.
type MultiPinger struct {
	pingers []Pinger
}

// NewMultiPinger returns a MultiPinger over pingers.
func NewMultiPinger(pingers ...Pinger) *MultiPinger {
	return &MultiPinger{pingers: pingers}
}

// Ping returns the first failing probe's error, prefixed with its name.
func (m *MultiPinger) Ping(ctx context.Context) error {
	for _, p := range m.pingers {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", p.Name(), err)
		}
	}
	return nil
}

// Name implements Pinger.
func (m *MultiPinger) Name() string { return "multi" }

// readyCheck is one dependency's probe result.
type readyCheck struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// indexReport describes the document index. It is informational: an empty
// index still accepts uploads, so it never makes the server unready.
type indexReport struct {
	Ready    bool `json:"ready"`
	Passages int  `json:"passages"`
}

// readyResponse is the JSON body returned by GET /api/ready.
type readyResponse struct {
	Ready  bool         `json:"ready"`
	Checks []readyCheck `json:"checks"`
	Index  *indexReport `json:"index,omitempty"`
}

// probe runs p under probeTimeout.
func probe(ctx context.Context, p Pinger) readyCheck {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		return readyCheck{Name: p.Name(), Error: err.Error()}
	}
	return readyCheck{Name: p.Name(), OK: true}
}

// handleReady handles GET /api/ready. It answers 200 when every dependency
// probe passes and 503 otherwise, and reports the state of the document
// index alongside.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	resp := readyResponse{Ready: true, Checks: make([]readyCheck, 0, len(s.pingers))}
	for _, p := range s.pingers {
		check := probe(r.Context(), p)
		if !check.OK {
			resp.Ready = false
			log.Warn("readiness probe failed",
				slog.String("dependency", check.Name),
				slog.String("error", check.Error),
			)
		}
		resp.Checks = append(resp.Checks, check)
	}

	if s.index != nil {
		resp.Index = &indexReport{Ready: s.index.Ready(), Passages: s.index.Len()}
	}

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, r, status, resp)
}
