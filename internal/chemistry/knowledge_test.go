package chemistry

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func simpleOutcome(eq string) *Outcome {
	return &Outcome{
		Equation:     eq,
		Type:         TypeRedox,
		ParticleType: ParticleNone,
	}
}

func TestDefaultKnowledgeBase_Loads(t *testing.T) {
	kb, err := DefaultKnowledgeBase()
	require.NoError(t, err)
	assert.Equal(t, 13, kb.Len())

	for _, e := range kb.Entries() {
		if e.Conditional() {
			assert.Contains(t, e.Conditions, DefaultConditionKey, "entry %s", e.Reactants)
		} else {
			require.NotNil(t, e.Outcome, "entry %s", e.Reactants)
		}
	}
}

func TestNewKnowledgeBase_RejectsSetEqualKeys(t *testing.T) {
	entries := []Entry{
		{Reactants: Key{"Sodium", "Water"}, Outcome: simpleOutcome("a")},
		{Reactants: Key{" water ", "SODIUM"}, Outcome: simpleOutcome("b")},
	}
	_, err := NewKnowledgeBase(entries, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKey))
}

func TestNewKnowledgeBase_Validation(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  string
	}{
		{
			name:  "no reactants",
			entry: Entry{Reactants: Key{"  "}, Outcome: simpleOutcome("x")},
			want:  "no reactants",
		},
		{
			name:  "missing room_dilute",
			entry: Entry{Reactants: Key{"a", "b"}, Conditions: map[string]*Outcome{"hot_dilute": simpleOutcome("x")}},
			want:  "room_dilute",
		},
		{
			name: "bad condition key",
			entry: Entry{Reactants: Key{"a", "b"}, Conditions: map[string]*Outcome{
				DefaultConditionKey: simpleOutcome("x"),
				"warm_dilute":       simpleOutcome("y"),
			}},
			want: "invalid condition key",
		},
		{
			name:  "both shapes",
			entry: Entry{Reactants: Key{"a"}, Outcome: simpleOutcome("x"), Conditions: map[string]*Outcome{DefaultConditionKey: simpleOutcome("y")}},
			want:  "both outcome and conditions",
		},
		{
			name:  "neither shape",
			entry: Entry{Reactants: Key{"a"}},
			want:  "neither outcome nor conditions",
		},
		{
			name:  "unknown particle",
			entry: Entry{Reactants: Key{"a"}, Outcome: &Outcome{Equation: "x", Type: TypeRedox, ParticleType: "sparkle"}},
			want:  "unknown particle type",
		},
		{
			name:  "missing equation",
			entry: Entry{Reactants: Key{"a"}, Outcome: &Outcome{Type: TypeRedox}},
			want:  "missing equation",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKnowledgeBase([]Entry{tt.entry}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLookup_ExactBeforeSubset(t *testing.T) {
	entries := []Entry{
		{Reactants: Key{"a", "b"}, Outcome: simpleOutcome("ab")},
		{Reactants: Key{"a", "b", "c"}, Outcome: simpleOutcome("abc")},
	}
	kb, err := NewKnowledgeBase(entries, nil)
	require.NoError(t, err)

	m, ok := kb.Lookup([]string{"c", "b", "a"})
	require.True(t, ok)
	assert.Equal(t, "abc", m.Entry.Outcome.Equation)
	assert.Equal(t, Key{"a", "b", "c"}, m.Key)

	m, ok = kb.Lookup([]string{"a", "b", "d"})
	require.True(t, ok)
	assert.Equal(t, "ab", m.Entry.Outcome.Equation)
}

func TestLookup_SubsetTieBreakFollowsDeclarationOrder(t *testing.T) {
	entries := []Entry{
		{Reactants: Key{"x", "y"}, Outcome: simpleOutcome("first")},
		{Reactants: Key{"p", "q"}, Outcome: simpleOutcome("second")},
	}
	kb, err := NewKnowledgeBase(entries, nil)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		m, ok := kb.Lookup([]string{"q", "p", "y", "x"})
		require.True(t, ok)
		assert.Equal(t, "first", m.Entry.Outcome.Equation)
	}
}

func TestLookup_Miss(t *testing.T) {
	kb, err := DefaultKnowledgeBase()
	require.NoError(t, err)

	_, ok := kb.Lookup([]string{"gold", "water"})
	assert.False(t, ok)
	_, ok = kb.Lookup(nil)
	assert.False(t, ok)
}

func TestInitialColor(t *testing.T) {
	kb, err := DefaultKnowledgeBase()
	require.NoError(t, err)

	assert.Equal(t, "#800080AA", kb.InitialColor("Potassium Permanganate"))
	assert.Equal(t, "#0000FFAA", kb.InitialColor("  copper sulfate "))
	assert.Equal(t, DefaultInitialColor, kb.InitialColor("water"))
}

func TestLoadKnowledgeBase_UnknownField(t *testing.T) {
	table := `
reactions:
  - reactants: [a, b]
    outcome:
      equation: "A + B → AB"
      type: redox
      particle_type: none
      sparkles: true
`
	_, err := LoadKnowledgeBase(strings.NewReader(table))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sparkles")
}

func TestLoadKnowledgeBase_EmptyParticleDefaultsToNone(t *testing.T) {
	table := `
reactions:
  - reactants: [a, b]
    outcome:
      equation: "A + B → AB"
      type: redox
`
	kb, err := LoadKnowledgeBase(strings.NewReader(table))
	require.NoError(t, err)
	m, ok := kb.Lookup([]string{"A", "B"})
	require.True(t, ok)
	assert.Equal(t, ParticleNone, m.Entry.Outcome.ParticleType)
	assert.Nil(t, m.Entry.Outcome.Triggers)
}

func TestParseCondition(t *testing.T) {
	cond, err := ParseCondition("", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultCondition(), cond)
	assert.Equal(t, "room_dilute", cond.Key())

	cond, err = ParseCondition(" HOT ", "Concentrated")
	require.NoError(t, err)
	assert.Equal(t, "hot_concentrated", cond.Key())

	_, err = ParseCondition("lukewarm", "dilute")
	assert.Error(t, err)
	_, err = ParseCondition("room", "strong")
	assert.Error(t, err)
}

func TestDefaultMixture(t *testing.T) {
	out := DefaultMixture([]string{"Gold", "Water"})
	assert.Equal(t, "Mixture of Gold, Water", out.Equation)
	assert.Equal(t, TypeMixture, out.Type)
	assert.Equal(t, float64(7), out.PH)
	assert.Nil(t, out.Triggers)
	assert.Equal(t, ParticleNone, out.ParticleType)
	assert.Equal(t, []string{"Gold", "Water"}, out.Products)
}

func TestNewKey(t *testing.T) {
	k := NewKey(" Water", "sodium", "WATER", "")
	assert.Equal(t, Key{"sodium", "water"}, k)
	assert.Equal(t, "sodium + water", k.String())
	assert.Equal(t, k, NewKey("water", "Sodium"))
}

func TestKnowledgeBase_CallersCannotMutateTable(t *testing.T) {
	heat := true
	input := []Entry{{
		Reactants: Key{"copper", "sulfuric acid"},
		Conditions: map[string]*Outcome{
			DefaultConditionKey: {Equation: "none", Type: TypeNoReaction},
			"hot_concentrated": {
				Equation: "Cu + 2H₂SO₄ → CuSO₄ + SO₂ + 2H₂O",
				Type:     TypeRedox,
				Products: []string{"copper sulfate", "sulfur dioxide", "water"},
				Triggers: &Triggers{Heat: &heat},
			},
		},
	}}
	kb, err := NewKnowledgeBase(input, nil)
	require.NoError(t, err)
	r := NewResolver(kb)
	hot := Condition{Temperature: TempHot, Concentration: Concentrated}

	heat = false
	input[0].Conditions["hot_concentrated"].Products[0] = "changed"
	delete(input[0].Conditions, "hot_concentrated")
	assert.Equal(t, ParticleType(""), input[0].Conditions[DefaultConditionKey].ParticleType, "caller outcomes are not written to")

	entries := kb.Entries()
	delete(entries[0].Conditions, "hot_concentrated")
	entries[0].Reactants[0] = "zinc"

	m, ok := kb.Lookup([]string{"copper", "sulfuric acid"})
	require.True(t, ok)
	m.Entry.Conditions["hot_concentrated"].Type = TypeMixture

	res, ok := r.Resolve([]string{"copper", "sulfuric acid"}, hot)
	require.True(t, ok)
	*res.Outcome.Triggers.Heat = false
	res.Outcome.Effects = append(res.Outcome.Effects, "changed")

	again, ok := r.Resolve([]string{"sulfuric acid", "copper"}, hot)
	require.True(t, ok)
	assert.Equal(t, TypeRedox, again.Outcome.Type)
	assert.Equal(t, "copper sulfate", again.Outcome.Products[0])
	assert.True(t, *again.Outcome.Triggers.Heat)
	assert.Empty(t, again.Outcome.Effects)
	assert.Equal(t, Key{"copper", "sulfuric acid"}, again.Key)
}

func TestOutcome_Clone(t *testing.T) {
	color := "#FF0000"
	o := &Outcome{
		Equation: "x",
		Products: []string{"a"},
		Effects:  []string{"e"},
		Triggers: &Triggers{Bubbles: boolPtr(true), ColorChange: &color},
	}
	c := o.Clone()
	require.Equal(t, o, c)

	*c.Triggers.Bubbles = false
	*c.Triggers.ColorChange = "#000000"
	c.Products[0] = "b"
	assert.True(t, *o.Triggers.Bubbles)
	assert.Equal(t, "#FF0000", *o.Triggers.ColorChange)
	assert.Equal(t, "a", o.Products[0])

	var nilOutcome *Outcome
	assert.Nil(t, nilOutcome.Clone())
	assert.Nil(t, (&Outcome{}).Clone().Triggers)
}
