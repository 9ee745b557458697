package ollama

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ryclabs/docpilot/internal/infrastructure/resilience"
)

// Client talks to a local Ollama server. It backs both text generation
// (classification and date prompts) and embedding of reference chunks.
// One shared limiter paces all calls so a large inbox cannot flood the
// inference service.
type Client struct {
	baseURL     string
	genModel    string
	visionModel string
	embedModel  string

	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
	logger     *slog.Logger
}

type Config struct {
	BaseURL        string
	GenModel       string
	VisionModel    string
	EmbedModel     string
	RequestsPerSec float64
	Timeout        time.Duration
}

func NewClient(cfg Config, executor *resilience.Executor, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		genModel:    cfg.GenModel,
		visionModel: cfg.VisionModel,
		embedModel:  cfg.EmbedModel,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		executor:    executor,
		logger:      logger,
	}
}

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Stream bool     `json:"stream"`
	Images []string `json:"images,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, c.genModel, prompt, nil)
}

func (c *Client) GenerateWithImage(ctx context.Context, prompt string, image []byte) (string, error) {
	model := c.visionModel
	if model == "" {
		model = c.genModel
	}
	encoded := base64.StdEncoding.EncodeToString(image)
	return c.generate(ctx, model, prompt, []string{encoded})
}

func (c *Client) generate(ctx context.Context, model, prompt string, images []string) (string, error) {
	payload := generateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
		Images: images,
	}

	var out generateResponse
	err := c.executor.Do(ctx, "ollama_generate", classifyTransportError, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		return c.postJSON(ctx, "/api/generate", payload, &out, "generate")
	})
	if err != nil {
		return "", wrapTemporaryIfNeeded("ollama.generate", err)
	}
	return strings.TrimSpace(out.Response), nil
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	payload := embedRequest{Model: c.embedModel, Input: texts}

	var out embedResponse
	err := c.executor.Do(ctx, "ollama_embed", classifyTransportError, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		return c.postJSON(ctx, "/api/embed", payload, &out, "embed")
	})
	if err != nil {
		return nil, wrapTemporaryIfNeeded("ollama.embed", err)
	}
	if len(out.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed: got %d vectors for %d inputs", len(out.Embeddings), len(texts))
	}
	return out.Embeddings, nil
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("ollama embed: empty response")
	}
	return vectors[0], nil
}
