// Package chemistry holds the reaction knowledge base and the resolver that
// matches a beaker's contents against it.
//
// The knowledge base is built once and never mutated afterwards. Every method
// on KnowledgeBase and Resolver is safe for concurrent use.
package chemistry

import (
	"fmt"
	"sort"
	"strings"
)

// ReactionType tags the kind of chemistry an outcome describes.
type ReactionType string

const (
	TypeNeutralization     ReactionType = "neutralization"
	TypeRedox              ReactionType = "redox"
	TypeSingleDisplacement ReactionType = "single_displacement"
	TypePrecipitation      ReactionType = "precipitation"
	TypeAcidCarbonate      ReactionType = "acid_carbonate"
	TypeIndicator          ReactionType = "indicator"
	TypeNoReaction         ReactionType = "no_reaction"
	TypeMixture            ReactionType = "mixture"
)

// ParticleType selects the particle effect drawn in the beaker.
type ParticleType string

const (
	ParticleNone        ParticleType = "none"
	ParticleBubble      ParticleType = "bubble"
	ParticlePrecipitate ParticleType = "precipitate"
	ParticleSmoke       ParticleType = "smoke"
)

// Valid reports whether p is one of the known particle types.
func (p ParticleType) Valid() bool {
	switch p {
	case ParticleNone, ParticleBubble, ParticlePrecipitate, ParticleSmoke:
		return true
	}
	return false
}

// Triggers is the deterministic animation bundle of an outcome.
// A nil field means the table has no entry for it.
type Triggers struct {
	Bubbles     *bool   `yaml:"bubbles" json:"bubbles,omitempty"`
	Precipitate *bool   `yaml:"precipitate" json:"precipitate,omitempty"`
	Heat        *bool   `yaml:"heat" json:"heat,omitempty"`
	ColorChange *string `yaml:"color_change" json:"color_change,omitempty"`
	GasSmoke    *bool   `yaml:"gas_smoke" json:"gas_smoke,omitempty"`
}

// Clone returns a deep copy of t. A nil receiver yields nil.
func (t *Triggers) Clone() *Triggers {
	if t == nil {
		return nil
	}
	return &Triggers{
		Bubbles:     cloneBool(t.Bubbles),
		Precipitate: cloneBool(t.Precipitate),
		Heat:        cloneBool(t.Heat),
		ColorChange: cloneString(t.ColorChange),
		GasSmoke:    cloneBool(t.GasSmoke),
	}
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Outcome is a concrete (unconditional) reaction result.
type Outcome struct {
	Equation      string       `yaml:"equation"`
	Products      []string     `yaml:"products"`
	PH            float64      `yaml:"ph"`
	PHChange      string       `yaml:"ph_change,omitempty"`
	Effects       []string     `yaml:"effects"`
	Type          ReactionType `yaml:"type"`
	Triggers      *Triggers    `yaml:"triggers,omitempty"`
	LiquidColor   string       `yaml:"liquid_color"`
	ParticleType  ParticleType `yaml:"particle_type"`
	ParticleColor string       `yaml:"particle_color,omitempty"`
}

// Clone returns a deep copy of o, sharing no memory with the receiver.
func (o *Outcome) Clone() *Outcome {
	if o == nil {
		return nil
	}
	c := *o
	c.Products = append([]string(nil), o.Products...)
	c.Effects = append([]string(nil), o.Effects...)
	c.Triggers = o.Triggers.Clone()
	return &c
}

// DefaultMixture is the outcome used when nothing in the base matched.
// Triggers are left nil so the narrative layer decides the visuals.
func DefaultMixture(ingredients []string) *Outcome {
	products := make([]string, len(ingredients))
	copy(products, ingredients)
	return &Outcome{
		Equation:     "Mixture of " + strings.Join(ingredients, ", "),
		Products:     products,
		PH:           7,
		PHChange:     "neutral",
		Effects:      []string{"mixing_observed"},
		Type:         TypeMixture,
		LiquidColor:  "#FFFFFF33",
		ParticleType: ParticleNone,
	}
}

// Temperature selector of a condition key.
type Temperature string

const (
	TempRoom Temperature = "room"
	TempHot  Temperature = "hot"
	TempCold Temperature = "cold"
)

// Concentration selector of a condition key.
type Concentration string

const (
	Dilute       Concentration = "dilute"
	Concentrated Concentration = "concentrated"
)

// DefaultConditionKey is the branch every conditional entry must define.
const DefaultConditionKey = "room_dilute"

// Condition selects a branch of a conditional entry.
type Condition struct {
	Temperature   Temperature
	Concentration Concentration
}

// DefaultCondition is room temperature, dilute.
func DefaultCondition() Condition {
	return Condition{Temperature: TempRoom, Concentration: Dilute}
}

// Key renders the condition as "{temperature}_{concentration}".
func (c Condition) Key() string {
	return string(c.Temperature) + "_" + string(c.Concentration)
}

// ParseCondition normalizes and validates the two selectors. Empty values take
// the defaults.
func ParseCondition(temperature, concentration string) (Condition, error) {
	cond := DefaultCondition()
	if t := Normalize(temperature); t != "" {
		switch Temperature(t) {
		case TempRoom, TempHot, TempCold:
			cond.Temperature = Temperature(t)
		default:
			return cond, fmt.Errorf("unknown temperature %q (want room, hot or cold)", temperature)
		}
	}
	if c := Normalize(concentration); c != "" {
		switch Concentration(c) {
		case Dilute, Concentrated:
			cond.Concentration = Concentration(c)
		default:
			return cond, fmt.Errorf("unknown concentration %q (want dilute or concentrated)", concentration)
		}
	}
	return cond, nil
}

func validConditionKey(key string) bool {
	t, c, ok := strings.Cut(key, "_")
	if !ok {
		return false
	}
	_, err := ParseCondition(t, c)
	return err == nil && t != "" && c != ""
}

// Normalize lower-cases and trims a substance name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Key is a normalized, sorted set of reactant names.
type Key []string

// NewKey normalizes names, drops blanks and duplicates, and sorts the result.
func NewKey(names ...string) Key {
	seen := make(map[string]struct{}, len(names))
	k := make(Key, 0, len(names))
	for _, n := range names {
		n = Normalize(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		k = append(k, n)
	}
	sort.Strings(k)
	return k
}

// String joins the names with " + ".
func (k Key) String() string {
	return strings.Join(k, " + ")
}

// SubsetOf reports whether every name of k is in set.
func (k Key) SubsetOf(set map[string]struct{}) bool {
	for _, n := range k {
		if _, ok := set[n]; !ok {
			return false
		}
	}
	return true
}
