package core

import (
	"chemlab/internal/articulation"
	"chemlab/internal/chemistry"
)

const (
	defaultLiquidColor   = "#FFFFFF33"
	defaultParticleColor = "#FFFFFF"
)

// AnimationTriggers is the merged trigger bundle sent to the beaker.
type AnimationTriggers struct {
	Bubbles     bool    `json:"bubbles"`
	Precipitate bool    `json:"precipitate"`
	Heat        bool    `json:"heat"`
	ColorChange *string `json:"color_change"`
}

// Result is the outward-facing simulation result.
type Result struct {
	Equation          string                 `json:"equation"`
	Products          []string               `json:"products"`
	PH                float64                `json:"ph"`
	Symptoms          []string               `json:"symptoms"`
	ReactionType      chemistry.ReactionType `json:"reaction_type"`
	AnimationTriggers AnimationTriggers      `json:"animation_triggers"`
	LiquidColor       string                 `json:"liquidColor"`
	ParticleType      chemistry.ParticleType `json:"particleType"`
	ParticleColor     string                 `json:"particleColor"`
	VisualSteps       []Step                 `json:"visual_steps"`
	Explanation       string                 `json:"explanation"`
	SafetyTips        string                 `json:"safety_tips"`
	Concept           string                 `json:"concept"`
	RealWorldExample  string                 `json:"real_world_example"`
}

// Compose merges the primary outcome with narrative content. Deterministic
// table data always wins; narrative visuals only fill entries the table
// leaves empty. Compose does no I/O.
func Compose(primary *chemistry.Outcome, steps []Step, final []string, content *articulation.Content) Result {
	if primary == nil {
		primary = chemistry.DefaultMixture(final)
	}
	if content == nil {
		content = &articulation.Content{}
	}

	triggers := mergeTriggers(primary.Triggers, content.Visual)

	particle := primary.ParticleType
	if particle == "" || particle == chemistry.ParticleNone {
		switch {
		case triggers.Bubbles:
			particle = chemistry.ParticleBubble
		case triggers.Precipitate:
			particle = chemistry.ParticlePrecipitate
		default:
			particle = chemistry.ParticleNone
		}
	}

	equation := content.Visual.Equation
	if equation == "" {
		equation = primary.Equation
	}

	liquid := primary.LiquidColor
	if triggers.ColorChange != nil && *triggers.ColorChange != "" {
		liquid = *triggers.ColorChange
	}
	if liquid == "" {
		liquid = defaultLiquidColor
	}

	particleColor := primary.ParticleColor
	if particleColor == "" {
		particleColor = defaultParticleColor
	}

	reactionType := primary.Type
	if reactionType == "" {
		reactionType = chemistry.TypeMixture
	}

	symptoms := make([]string, len(primary.Effects))
	copy(symptoms, primary.Effects)

	visualSteps := make([]Step, len(steps))
	copy(visualSteps, steps)

	return Result{
		Equation:          equation,
		Products:          dedupe(final),
		PH:                primary.PH,
		Symptoms:          symptoms,
		ReactionType:      reactionType,
		AnimationTriggers: triggers,
		LiquidColor:       liquid,
		ParticleType:      particle,
		ParticleColor:     particleColor,
		VisualSteps:       visualSteps,
		Explanation:       content.Explanation,
		SafetyTips:        content.SafetyTips,
		Concept:           content.Concept,
		RealWorldExample:  content.RealWorldExample,
	}
}

func mergeTriggers(det *chemistry.Triggers, ext articulation.Visual) AnimationTriggers {
	if det == nil {
		det = &chemistry.Triggers{}
	}
	t := AnimationTriggers{
		Bubbles:     pickBool(det.Bubbles, ext.Bubbles),
		Precipitate: pickBool(det.Precipitate, ext.Precipitate),
		Heat:        pickBool(det.Heat, ext.Heat),
	}
	switch {
	case det.ColorChange != nil:
		c := *det.ColorChange
		t.ColorChange = &c
	case ext.ColorChange != nil:
		c := *ext.ColorChange
		t.ColorChange = &c
	}
	return t
}

func pickBool(det, ext *bool) bool {
	if det != nil {
		return *det
	}
	if ext != nil {
		return *ext
	}
	return false
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
