package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewHealthChecker_OpenRouter(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/models" {
			t.Errorf("path = %s, want /api/v1/models", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-or" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("X-Title") != DefaultOpenRouterTitle {
			t.Errorf("X-Title = %q", r.Header.Get("X-Title"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	hc := NewHealthChecker(&Config{
		Backend: BackendOpenRouter,
		OpenRouter: ProviderOpenRouter{
			APIKey:  "sk-or",
			BaseURL: srv.URL + "/api/v1/",
			Title:   DefaultOpenRouterTitle,
		},
	})
	if err := hc.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestNewHealthChecker_Ollama(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"ok", http.StatusOK, false},
		{"server error", http.StatusInternalServerError, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/tags" {
					t.Errorf("path = %s", r.URL.Path)
				}
				w.WriteHeader(tc.status)
			}))
			t.Cleanup(srv.Close)

			hc := NewHealthChecker(&Config{Backend: BackendOllama, Ollama: ProviderOllama{Host: srv.URL}})
			err := hc.HealthCheck(context.Background())
			if (err != nil) != tc.wantErr {
				t.Fatalf("HealthCheck err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestNewHealthChecker_Ark(t *testing.T) {
	t.Parallel()

	if hc := NewHealthChecker(&Config{Backend: BackendArk}); hc != nil {
		t.Errorf("ark has no health endpoint, got %T", hc)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	if _, err := New(context.Background(), &Config{Backend: BackendOpenRouter}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNew_OpenRouter(t *testing.T) {
	t.Parallel()

	m, err := New(context.Background(), &Config{
		Backend: BackendOpenRouter,
		OpenRouter: ProviderOpenRouter{
			APIKey:  "sk-or",
			Model:   DefaultOpenRouterModel,
			BaseURL: DefaultOpenRouterBaseURL,
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m == nil {
		t.Fatal("New returned nil model")
	}
}
