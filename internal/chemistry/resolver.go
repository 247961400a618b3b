package chemistry

// Resolution is a resolved reaction: the reactant set that fired and the
// concrete outcome for the requested conditions.
type Resolution struct {
	Key     Key
	Outcome *Outcome
}

// Resolver turns a set of substances plus conditions into an outcome.
// It holds no state besides the knowledge base.
type Resolver struct {
	kb *KnowledgeBase
}

// NewResolver creates a resolver over kb.
func NewResolver(kb *KnowledgeBase) *Resolver {
	return &Resolver{kb: kb}
}

// KnowledgeBase returns the underlying table.
func (r *Resolver) KnowledgeBase() *KnowledgeBase {
	return r.kb
}

// Resolve looks up substances and resolves condition branches. ok is false
// when nothing matched at all; a no_reaction outcome is still a match. The
// returned outcome is a fresh copy owned by the caller.
func (r *Resolver) Resolve(substances []string, cond Condition) (Resolution, bool) {
	e := r.kb.lookup(substances)
	if e == nil {
		return Resolution{}, false
	}
	out := e.Resolve(cond)
	if out == nil {
		return Resolution{}, false
	}
	return Resolution{Key: append(Key(nil), e.Reactants...), Outcome: out.Clone()}, true
}
