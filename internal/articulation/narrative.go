// Package articulation turns a resolved reaction into educational prose.
//
// The reaction engine decides what happens in the beaker; a Generator only
// describes it. Generators may fail (network, quota, malformed output) and
// callers are expected to fall back to Fallback for the reaction type.
package articulation

import (
	"context"
	"errors"

	"chemlab/internal/chemistry"
)

// ErrUnparseable is returned when a model response holds no usable JSON object.
var ErrUnparseable = errors.New("narrative response is not valid JSON")

// Request is everything a Generator needs to explain one simulation.
type Request struct {
	Outcome     *chemistry.Outcome
	Ingredients []string
	Condition   chemistry.Condition
	// History holds the equations of every cascade step, in order.
	History []string
}

// Visual is the visual metadata a generator proposes. Nil fields mean the
// generator said nothing about them.
type Visual struct {
	Bubbles     *bool
	Precipitate *bool
	Heat        *bool
	ColorChange *string
	GasSmoke    *bool
	Equation    string
}

// Content is the narrative block attached to a simulation result.
type Content struct {
	Explanation      string
	SafetyTips       string
	Concept          string
	RealWorldExample string
	Visual           Visual
}

// Generator produces narrative content for a reaction.
type Generator interface {
	Explain(ctx context.Context, req Request) (*Content, error)
}

// Static is a Generator that always answers with the fallback block. It is
// used when no model is configured.
type Static struct{}

// Explain implements Generator.
func (Static) Explain(_ context.Context, req Request) (*Content, error) {
	var t chemistry.ReactionType
	if req.Outcome != nil {
		t = req.Outcome.Type
	}
	return Fallback(t), nil
}
