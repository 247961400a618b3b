package core

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"chemlab/internal/articulation"
	"chemlab/internal/chemistry"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type stubNarrator struct {
	content *articulation.Content
	err     error
	calls   int
	last    articulation.Request
}

func (s *stubNarrator) Explain(_ context.Context, req articulation.Request) (*articulation.Content, error) {
	s.calls++
	s.last = req
	return s.content, s.err
}

func newTestEngine(t *testing.T, narrator articulation.Generator) *Engine {
	t.Helper()
	kb, err := chemistry.DefaultKnowledgeBase()
	require.NoError(t, err)
	return NewEngine(kb, narrator, zap.NewNop())
}

func TestEngine_Neutralization(t *testing.T) {
	narrator := &stubNarrator{content: &articulation.Content{
		Explanation: "Neutralization",
		SafetyTips:  "Goggles",
		Visual:      articulation.Visual{Bubbles: boolPtr(true)},
	}}
	e := newTestEngine(t, narrator)

	r, err := e.Simulate(context.Background(), Request{Ingredients: []string{"Hydrochloric acid", "Sodium hydroxide"}})
	require.NoError(t, err)

	assert.Equal(t, chemistry.TypeNeutralization, r.ReactionType)
	assert.Equal(t, 7.0, r.PH)
	assert.Contains(t, r.Equation, "NaCl")
	assert.Contains(t, r.Equation, "H₂O")
	assert.True(t, r.AnimationTriggers.Heat)
	assert.False(t, r.AnimationTriggers.Bubbles, "table says no bubbles")
	assert.Equal(t, chemistry.ParticleNone, r.ParticleType)
	assert.ElementsMatch(t, []string{"nacl", "h2o"}, r.Products)
	assert.Len(t, r.VisualSteps, 1)
	assert.Equal(t, "Neutralization", r.Explanation)
	assert.Equal(t, "Goggles", r.SafetyTips)

	require.Equal(t, 1, narrator.calls)
	assert.Equal(t, []string{"Hydrochloric acid", "Sodium hydroxide"}, narrator.last.Ingredients)
	assert.Equal(t, chemistry.DefaultCondition(), narrator.last.Condition)
	assert.Len(t, narrator.last.History, 1)
}

func TestEngine_ResultsDoNotShareTableMemory(t *testing.T) {
	e := newTestEngine(t, nil)
	req := Request{Ingredients: []string{"Hydrochloric acid", "Sodium hydroxide"}}

	first, err := e.Simulate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first.VisualSteps, 1)
	step := first.VisualSteps[0]
	*step.AnimationTriggers.Heat = false
	*step.AnimationTriggers.ColorChange = "#000000"
	step.Symptoms[0] = "changed"
	*first.AnimationTriggers.ColorChange = "#000000"
	first.Products[0] = "changed"

	second, err := e.Simulate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.AnimationTriggers.Heat)
	assert.Equal(t, "#FFFFFF22", second.LiquidColor)
	assert.True(t, *second.VisualSteps[0].AnimationTriggers.Heat)
	assert.Equal(t, "#FFFFFF22", *second.VisualSteps[0].AnimationTriggers.ColorChange)
	assert.Equal(t, "no_visible_change", second.VisualSteps[0].Symptoms[0])
	assert.Equal(t, []string{"nacl", "h2o"}, second.Products)
}

func TestEngine_ConcurrentSimulations(t *testing.T) {
	e := newTestEngine(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := e.Simulate(context.Background(), Request{Ingredients: []string{"sodium", "water"}})
			if assert.NoError(t, err) {
				*r.VisualSteps[0].AnimationTriggers.Bubbles = false
			}
		}()
	}
	wg.Wait()

	r, err := e.Simulate(context.Background(), Request{Ingredients: []string{"sodium", "water"}})
	require.NoError(t, err)
	assert.True(t, r.AnimationTriggers.Bubbles)
}

func TestEngine_Displacement(t *testing.T) {
	e := newTestEngine(t, nil)

	r, err := e.Simulate(context.Background(), Request{Ingredients: []string{"Iron", "Copper sulfate"}})
	require.NoError(t, err)

	assert.Equal(t, chemistry.TypeSingleDisplacement, r.ReactionType)
	assert.True(t, r.AnimationTriggers.Precipitate)
	assert.Equal(t, chemistry.ParticlePrecipitate, r.ParticleType)
	assert.Equal(t, "#B87333", r.ParticleColor)
	assert.Equal(t, "#90EE9077", r.LiquidColor)
	assert.ElementsMatch(t, []string{"iron sulfate", "copper"}, r.Products)
	assert.Equal(t, articulation.Fallback(chemistry.TypeSingleDisplacement).Concept, r.Concept)
}

func TestEngine_DefaultMixture(t *testing.T) {
	narrator := &stubNarrator{content: &articulation.Content{}}
	e := newTestEngine(t, narrator)

	r, err := e.Simulate(context.Background(), Request{Ingredients: []string{"Gold", "Silver"}})
	require.NoError(t, err)

	assert.Equal(t, chemistry.TypeMixture, r.ReactionType)
	assert.Equal(t, 7.0, r.PH)
	assert.Equal(t, "Mixture of Gold, Silver", r.Equation)
	assert.Empty(t, r.VisualSteps)
	assert.Nil(t, narrator.last.Outcome.Triggers, "mixture defers visuals to the narrative")
	assert.Equal(t, []string{"Mixture of Gold, Silver"}, narrator.last.History)
}

func TestEngine_NarrativeFailureFallsBack(t *testing.T) {
	narrator := &stubNarrator{err: errors.New("service unavailable")}
	e := newTestEngine(t, narrator)

	r, err := e.Simulate(context.Background(), Request{Ingredients: []string{"lead nitrate", "potassium iodide"}})
	require.NoError(t, err)

	fb := articulation.Fallback(chemistry.TypePrecipitation)
	assert.Equal(t, fb.Explanation, r.Explanation)
	assert.Equal(t, fb.SafetyTips, r.SafetyTips)
	assert.Equal(t, chemistry.ParticlePrecipitate, r.ParticleType)
}

func TestEngine_Conditions(t *testing.T) {
	e := newTestEngine(t, nil)

	r, err := e.Simulate(context.Background(), Request{
		Ingredients:   []string{"sodium", "nitric acid"},
		Temperature:   "HOT",
		Concentration: "concentrated",
	})
	require.NoError(t, err)
	assert.Equal(t, "#654321AA", r.LiquidColor)
	assert.Equal(t, chemistry.ParticleSmoke, r.ParticleType)
}

func TestEngine_InputErrors(t *testing.T) {
	e := newTestEngine(t, nil)

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{"nil ingredients", Request{}, ErrNoIngredients},
		{"blank ingredients", Request{Ingredients: []string{" ", ""}}, ErrNoIngredients},
		{"bad temperature", Request{Ingredients: []string{"water"}, Temperature: "boiling"}, ErrInvalidCondition},
		{"bad concentration", Request{Ingredients: []string{"water"}, Concentration: "thick"}, ErrInvalidCondition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := e.Simulate(context.Background(), tt.req)
			assert.Nil(t, r)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsInputError(err))
		})
	}
	assert.False(t, IsInputError(errors.New("other")))
}

func TestEngine_ResultJSON(t *testing.T) {
	e := newTestEngine(t, nil)
	r, err := e.Simulate(context.Background(), Request{Ingredients: []string{"acetic acid", "sodium bicarbonate"}})
	require.NoError(t, err)

	raw, err := json.Marshal(r)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, k := range []string{
		"equation", "products", "ph", "symptoms", "reaction_type", "animation_triggers",
		"liquidColor", "particleType", "particleColor", "visual_steps", "explanation",
		"safety_tips", "concept", "real_world_example",
	} {
		assert.Contains(t, m, k)
	}
	triggers := m["animation_triggers"].(map[string]any)
	for _, k := range []string{"bubbles", "precipitate", "heat", "color_change"} {
		assert.Contains(t, triggers, k)
	}
	step := m["visual_steps"].([]any)[0].(map[string]any)
	for _, k := range []string{"equation", "animation_triggers", "liquidColor", "particleType", "particleColor", "symptoms"} {
		assert.Contains(t, step, k)
	}
}

func TestEngine_InitialColor(t *testing.T) {
	e := newTestEngine(t, nil)
	assert.Equal(t, "#800080AA", e.InitialColor("Potassium Permanganate"))
	assert.Equal(t, chemistry.DefaultInitialColor, e.InitialColor("water"))
	assert.Equal(t, 13, e.KnowledgeBase().Len())
}
