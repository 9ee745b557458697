package ollama

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ryclabs/docpilot/internal/core/domain"
	"github.com/ryclabs/docpilot/internal/infrastructure/resilience"
)

func testExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Policy{
		Attempts:       3,
		BaseDelay:      time.Millisecond,
		MaxDelay:       2 * time.Millisecond,
		Growth:         2,
		BreakerEnabled: false,
	}, slog.New(slog.DiscardHandler))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:        srv.URL,
		GenModel:       "llama3.2",
		VisionModel:    "llava",
		EmbedModel:     "nomic-embed-text",
		RequestsPerSec: 1000,
	}, testExecutor(), slog.New(slog.DiscardHandler))
}

func TestGenerateSendsPromptAndTrimsReply(t *testing.T) {
	var got generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "  invoice\n"})
	})

	reply, err := client.Generate(context.Background(), "What category?")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if reply != "invoice" {
		t.Fatalf("Generate() = %q", reply)
	}
	if got.Model != "llama3.2" || got.Prompt != "What category?" || got.Stream {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestGenerateWithImageUsesVisionModel(t *testing.T) {
	image := []byte{0x89, 0x50, 0x4e, 0x47}
	var got generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "2024-03-01"})
	})

	reply, err := client.GenerateWithImage(context.Background(), "Find the date.", image)
	if err != nil {
		t.Fatalf("GenerateWithImage() error = %v", err)
	}
	if reply != "2024-03-01" {
		t.Fatalf("reply = %q", reply)
	}
	if got.Model != "llava" {
		t.Fatalf("model = %q, want vision model", got.Model)
	}
	if len(got.Images) != 1 || got.Images[0] != base64.StdEncoding.EncodeToString(image) {
		t.Fatalf("image payload not base64-encoded: %v", got.Images)
	}
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "loading model", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "other"})
	})

	reply, err := client.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if reply != "other" {
		t.Fatalf("reply = %q", reply)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestGenerateDoesNotRetryBadRequest(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "unknown model", http.StatusBadRequest)
	})

	_, err := client.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("bad request must not be marked temporary: %v", err)
	}
}

func TestEmbedRejectsVectorCountMismatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{0.1}}})
	})

	if _, err := client.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestEmbedQueryReturnsSingleVector(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if len(req.Input) != 1 || req.Input[0] != "facture" {
			t.Errorf("input = %v", req.Input)
		}
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{0.5, 0.25}}})
	})

	vec, err := client.EmbedQuery(context.Background(), "facture")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.5 {
		t.Fatalf("vector = %v", vec)
	}
}
