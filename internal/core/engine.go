// Package core runs a beaker simulation: it cascades reactions through the
// chemistry knowledge base, asks the narrative layer for an explanation, and
// composes the final result.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"chemlab/internal/articulation"
	"chemlab/internal/chemistry"
	"chemlab/internal/logging"
)

var (
	// ErrNoIngredients is returned when a request names no substances.
	ErrNoIngredients = errors.New("no ingredients")
	// ErrInvalidCondition is returned for an unknown temperature or concentration.
	ErrInvalidCondition = errors.New("invalid reaction condition")
)

// IsInputError reports whether err was caused by a bad request rather than
// an engine failure.
func IsInputError(err error) bool {
	return errors.Is(err, ErrNoIngredients) || errors.Is(err, ErrInvalidCondition)
}

// Request is one simulation request.
type Request struct {
	Ingredients   []string `json:"ingredients"`
	Temperature   string   `json:"temperature,omitempty"`
	Concentration string   `json:"concentration,omitempty"`
}

// Engine is safe for concurrent use. It holds no per-request state.
type Engine struct {
	resolver *chemistry.Resolver
	narrator articulation.Generator
	logger   *zap.Logger
}

// NewEngine wires an engine. A nil narrator falls back to the static
// explanations; a nil logger discards output.
func NewEngine(kb *chemistry.KnowledgeBase, narrator articulation.Generator, logger *zap.Logger) *Engine {
	if narrator == nil {
		narrator = articulation.Static{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		resolver: chemistry.NewResolver(kb),
		narrator: narrator,
		logger:   logger,
	}
}

// KnowledgeBase returns the table the engine resolves against.
func (e *Engine) KnowledgeBase() *chemistry.KnowledgeBase {
	return e.resolver.KnowledgeBase()
}

// InitialColor returns the display color of a single substance.
func (e *Engine) InitialColor(name string) string {
	return e.KnowledgeBase().InitialColor(name)
}

// Simulate runs one request to completion. The only errors returned are
// input errors; narrative failures degrade to the static explanations.
func (e *Engine) Simulate(ctx context.Context, req Request) (*Result, error) {
	ingredients := make([]string, 0, len(req.Ingredients))
	for _, in := range req.Ingredients {
		if in = strings.TrimSpace(in); in != "" {
			ingredients = append(ingredients, in)
		}
	}
	if len(ingredients) == 0 {
		return nil, ErrNoIngredients
	}

	cond, err := chemistry.ParseCondition(req.Temperature, req.Concentration)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCondition, err)
	}

	cascade := RunCascade(e.resolver, ingredients, cond, e.logger)

	primary := cascade.Primary()
	history := cascade.Equations()
	if primary == nil {
		primary = chemistry.DefaultMixture(ingredients)
		history = []string{primary.Equation}
	}

	e.logger.Info("Simulated reaction",
		zap.Strings("ingredients", ingredients),
		zap.String("condition", cond.Key()),
		zap.String("type", string(primary.Type)),
		zap.Int("steps", len(cascade.Steps)))

	content := e.explain(ctx, articulation.Request{
		Outcome:     primary,
		Ingredients: ingredients,
		Condition:   cond,
		History:     history,
	})

	res := Compose(primary, cascade.Steps, cascade.Final, content)
	return &res, nil
}

// narrativeSlowThreshold is when a narrative call is logged at warn level.
const narrativeSlowThreshold = 5 * time.Second

func (e *Engine) explain(ctx context.Context, req articulation.Request) *articulation.Content {
	timer := logging.StartTimer(e.logger, "narrative")
	content, err := e.narrator.Explain(ctx, req)
	timer.StopWithThreshold(narrativeSlowThreshold)
	if err != nil {
		e.logger.Warn("Narrative generation failed, using fallback",
			zap.String("type", string(req.Outcome.Type)),
			zap.Error(err))
		return articulation.Fallback(req.Outcome.Type)
	}
	if content == nil {
		return articulation.Fallback(req.Outcome.Type)
	}
	return content
}
