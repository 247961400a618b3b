package core

import (
	"go.uber.org/zap"

	"chemlab/internal/chemistry"
)

// MaxIterations bounds the cascade. Tables where products regenerate a
// reactant set would otherwise loop forever.
const MaxIterations = 5

// Step is one fired reaction as the beaker animates it.
type Step struct {
	Equation          string                 `json:"equation"`
	AnimationTriggers *chemistry.Triggers    `json:"animation_triggers"`
	LiquidColor       string                 `json:"liquidColor"`
	ParticleType      chemistry.ParticleType `json:"particleType"`
	ParticleColor     string                 `json:"particleColor"`
	Symptoms          []string               `json:"symptoms"`
}

func newStep(o *chemistry.Outcome) Step {
	symptoms := make([]string, len(o.Effects))
	copy(symptoms, o.Effects)
	return Step{
		Equation:          o.Equation,
		AnimationTriggers: o.Triggers.Clone(),
		LiquidColor:       o.LiquidColor,
		ParticleType:      o.ParticleType,
		ParticleColor:     o.ParticleColor,
		Symptoms:          symptoms,
	}
}

// Cascade is the record of one simulation's chain of reactions.
type Cascade struct {
	// History holds every fired outcome in order. The last one is primary.
	History []*chemistry.Outcome
	Steps   []Step
	// Final is the working set after the last step, in insertion order.
	Final []string
}

// Primary returns the most recent outcome, or nil when nothing fired.
func (c *Cascade) Primary() *chemistry.Outcome {
	if len(c.History) == 0 {
		return nil
	}
	return c.History[len(c.History)-1]
}

// Equations returns the equation of every fired outcome, in order.
func (c *Cascade) Equations() []string {
	eqs := make([]string, len(c.History))
	for i, o := range c.History {
		eqs[i] = o.Equation
	}
	return eqs
}

// RunCascade reacts ingredients until nothing more matches, a no_reaction
// outcome comes back, a step changes nothing, or MaxIterations is reached.
// Each fired step consumes its reactant key and adds its products.
func RunCascade(resolver *chemistry.Resolver, ingredients []string, cond chemistry.Condition, logger *zap.Logger) Cascade {
	if logger == nil {
		logger = zap.NewNop()
	}

	working := newSubstanceSet(ingredients)
	var c Cascade

	for i := 1; i <= MaxIterations; i++ {
		res, ok := resolver.Resolve(working.names(), cond)
		if !ok {
			logger.Debug("No reaction matched", zap.Int("iteration", i), zap.Strings("substances", working.names()))
			break
		}
		if res.Outcome.Type == chemistry.TypeNoReaction {
			logger.Debug("Reactants do not react under these conditions",
				zap.Int("iteration", i),
				zap.Stringer("reactants", res.Key),
				zap.String("condition", cond.Key()))
			break
		}

		// Unreachable today: Lookup only matches keys that are subsets of the
		// working set. Kept so a step that consumes nothing is never recorded.
		consumed := 0
		for _, n := range res.Key {
			if working.has(n) {
				consumed++
			}
		}
		if consumed == 0 {
			logger.Debug("Matched key not present in beaker, stopping", zap.Stringer("reactants", res.Key))
			break
		}

		before := working.names()
		c.History = append(c.History, res.Outcome)
		c.Steps = append(c.Steps, newStep(res.Outcome))

		for _, n := range res.Key {
			working.remove(n)
		}
		for _, p := range res.Outcome.Products {
			working.add(p)
		}

		logger.Debug("Cascade step",
			zap.Int("iteration", i),
			zap.Stringer("reactants", res.Key),
			zap.String("type", string(res.Outcome.Type)),
			zap.Strings("substances", working.names()))

		if working.sameMembers(before) {
			break
		}
	}

	c.Final = working.names()
	return c
}
