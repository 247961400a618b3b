package chemistry

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultTable is the built-in reaction table.
//
//go:embed defaults/reactions.yaml
var defaultTable string

// DefaultInitialColor is shown for a chemical with no entry in the color table.
const DefaultInitialColor = "#FFFFFF22"

var (
	// ErrDuplicateKey is returned when two entries have set-equal reactants.
	ErrDuplicateKey = errors.New("duplicate reactant set")
	// ErrMissingDefaultCondition is returned when a conditional entry has no room_dilute branch.
	ErrMissingDefaultCondition = errors.New("conditional entry without " + DefaultConditionKey + " branch")
)

// Entry maps a reactant set to either one Outcome or a set of condition
// branches. Exactly one of Outcome and Conditions is set.
type Entry struct {
	Reactants  Key
	Outcome    *Outcome
	Conditions map[string]*Outcome
}

// Conditional reports whether the entry branches on conditions.
func (e *Entry) Conditional() bool {
	return e.Conditions != nil
}

// Resolve returns the concrete outcome for cond, falling back to room_dilute.
func (e *Entry) Resolve(cond Condition) *Outcome {
	if !e.Conditional() {
		return e.Outcome
	}
	if o, ok := e.Conditions[cond.Key()]; ok {
		return o
	}
	return e.Conditions[DefaultConditionKey]
}

// clone deep-copies the entry, including every branch outcome.
func (e *Entry) clone() Entry {
	c := Entry{
		Reactants: append(Key(nil), e.Reactants...),
		Outcome:   e.Outcome.Clone(),
	}
	if e.Conditions != nil {
		c.Conditions = make(map[string]*Outcome, len(e.Conditions))
		for k, o := range e.Conditions {
			c.Conditions[k] = o.Clone()
		}
	}
	return c
}

// Match is the result of a knowledge base lookup: the literal key that fired
// and its entry.
type Match struct {
	Key   Key
	Entry *Entry
}

// KnowledgeBase is an immutable table of known reactions.
type KnowledgeBase struct {
	entries []*Entry
	exact   map[string]int
	colors  map[string]string
}

// NewKnowledgeBase validates entries and builds a knowledge base. Entry order
// is kept and decides which entry wins when several keys are subsets of a query.
// The base keeps its own copies; later changes to entries do not reach it.
func NewKnowledgeBase(entries []Entry, initialColors map[string]string) (*KnowledgeBase, error) {
	kb := &KnowledgeBase{
		entries: make([]*Entry, 0, len(entries)),
		exact:   make(map[string]int, len(entries)),
		colors:  make(map[string]string, len(initialColors)),
	}

	for i := range entries {
		e := entries[i].clone()
		key := NewKey(e.Reactants...)
		if len(key) == 0 {
			return nil, fmt.Errorf("entry %d: no reactants", i)
		}
		id := keyID(key)
		if prev, dup := kb.exact[id]; dup {
			return nil, fmt.Errorf("entry %d (%s) repeats entry %d: %w", i, key, prev, ErrDuplicateKey)
		}
		if err := validateEntry(&e); err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i, key, err)
		}

		e.Reactants = key
		kb.exact[id] = len(kb.entries)
		kb.entries = append(kb.entries, &e)
	}

	for name, color := range initialColors {
		kb.colors[Normalize(name)] = color
	}
	return kb, nil
}

func keyID(k Key) string {
	return strings.Join(k, "\x00")
}

func validateEntry(e *Entry) error {
	switch {
	case e.Outcome != nil && e.Conditions != nil:
		return errors.New("both outcome and conditions set")
	case e.Outcome == nil && e.Conditions == nil:
		return errors.New("neither outcome nor conditions set")
	case e.Outcome != nil:
		return validateOutcome(e.Outcome)
	}

	if _, ok := e.Conditions[DefaultConditionKey]; !ok {
		return ErrMissingDefaultCondition
	}
	for k, o := range e.Conditions {
		if !validConditionKey(k) {
			return fmt.Errorf("invalid condition key %q", k)
		}
		if o == nil {
			return fmt.Errorf("condition %s: empty outcome", k)
		}
		if err := validateOutcome(o); err != nil {
			return fmt.Errorf("condition %s: %w", k, err)
		}
	}
	return nil
}

func validateOutcome(o *Outcome) error {
	if o.Equation == "" {
		return errors.New("missing equation")
	}
	if o.Type == "" {
		return errors.New("missing reaction type")
	}
	if o.ParticleType == "" {
		o.ParticleType = ParticleNone
	}
	if !o.ParticleType.Valid() {
		return fmt.Errorf("unknown particle type %q", o.ParticleType)
	}
	return nil
}

// Lookup finds the entry for a set of substances. An exact set match wins;
// otherwise the first entry whose reactants are all present fires, so extra
// substances never block a known pair. The returned entry is a copy.
func (kb *KnowledgeBase) Lookup(substances []string) (Match, bool) {
	e := kb.lookup(substances)
	if e == nil {
		return Match{}, false
	}
	c := e.clone()
	return Match{Key: c.Reactants, Entry: &c}, true
}

// lookup returns the stored entry. Callers must not modify it.
func (kb *KnowledgeBase) lookup(substances []string) *Entry {
	query := NewKey(substances...)
	if len(query) == 0 {
		return nil
	}
	if i, ok := kb.exact[keyID(query)]; ok {
		return kb.entries[i]
	}

	present := make(map[string]struct{}, len(query))
	for _, n := range query {
		present[n] = struct{}{}
	}
	for _, e := range kb.entries {
		if e.Reactants.SubsetOf(present) {
			return e
		}
	}
	return nil
}

// InitialColor returns the color a chemical shows when first added to water.
func (kb *KnowledgeBase) InitialColor(name string) string {
	if c, ok := kb.colors[Normalize(name)]; ok {
		return c
	}
	return DefaultInitialColor
}

// Entries returns deep copies of the entries in declaration order.
func (kb *KnowledgeBase) Entries() []Entry {
	out := make([]Entry, len(kb.entries))
	for i, e := range kb.entries {
		out[i] = e.clone()
	}
	return out
}

// Len returns the number of entries.
func (kb *KnowledgeBase) Len() int {
	return len(kb.entries)
}

// tableFile is the YAML layout of a reaction table.
type tableFile struct {
	InitialColors map[string]string `yaml:"initial_colors"`
	Reactions     []entryFile       `yaml:"reactions"`
}

type entryFile struct {
	Reactants  []string            `yaml:"reactants"`
	Outcome    *Outcome            `yaml:"outcome,omitempty"`
	Conditions map[string]*Outcome `yaml:"conditions,omitempty"`
}

// LoadKnowledgeBase parses a YAML reaction table.
func LoadKnowledgeBase(r io.Reader) (*KnowledgeBase, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var tf tableFile
	if err := dec.Decode(&tf); err != nil {
		return nil, fmt.Errorf("failed to parse reaction table: %w", err)
	}

	entries := make([]Entry, len(tf.Reactions))
	for i, ef := range tf.Reactions {
		entries[i] = Entry{
			Reactants:  ef.Reactants,
			Outcome:    ef.Outcome,
			Conditions: ef.Conditions,
		}
	}
	return NewKnowledgeBase(entries, tf.InitialColors)
}

// LoadKnowledgeBaseFile reads a YAML reaction table from disk.
func LoadKnowledgeBaseFile(path string) (*KnowledgeBase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reaction table: %w", err)
	}
	defer f.Close()
	return LoadKnowledgeBase(f)
}

// DefaultKnowledgeBase builds the knowledge base from the embedded table.
func DefaultKnowledgeBase() (*KnowledgeBase, error) {
	return LoadKnowledgeBase(strings.NewReader(defaultTable))
}
