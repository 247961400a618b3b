package articulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiConfig configures the Gemini narrative generator.
type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	Timeout         time.Duration
}

// modelClient is the slice of *genai.Models the generator uses.
type modelClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator explains reactions with Google Gemini.
type GeminiGenerator struct {
	models          modelClient
	model           string
	temperature     float32
	maxOutputTokens int32
	timeout         time.Duration
	logger          *zap.Logger
}

// NewGeminiGenerator creates a generator backed by the Gemini API.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGeminiGenerator(client.Models, cfg, logger), nil
}

func newGeminiGenerator(models modelClient, cfg GeminiConfig, logger *zap.Logger) *GeminiGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiGenerator{
		models:          models,
		model:           model,
		temperature:     cfg.Temperature,
		maxOutputTokens: cfg.MaxOutputTokens,
		timeout:         cfg.Timeout,
		logger:          logger,
	}
}

// Explain implements Generator. Errors cover transport failures, deadlines
// and responses without a parseable JSON object.
func (g *GeminiGenerator) Explain(ctx context.Context, req Request) (*Content, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	temperature := g.temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  g.maxOutputTokens,
		ResponseMIMEType: "application/json",
	}

	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(buildPrompt(req)), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates: %w", ErrUnparseable)
	}

	text := resp.Text()
	content, err := parseContent(text)
	if err != nil {
		g.logger.Warn("Unparseable narrative response",
			zap.String("model", g.model),
			zap.Int("bytes", len(text)))
		return nil, err
	}

	g.logger.Debug("Narrative generated",
		zap.String("model", g.model),
		zap.Duration("elapsed", time.Since(start)))
	return content, nil
}

// Model returns the configured model name.
func (g *GeminiGenerator) Model() string {
	return g.model
}
