package core

import "chemlab/internal/chemistry"

// substanceSet is the beaker's working set: normalized names with set
// semantics, iterated in insertion order.
type substanceSet struct {
	order []string
	index map[string]struct{}
}

func newSubstanceSet(names []string) *substanceSet {
	s := &substanceSet{index: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.add(n)
	}
	return s
}

// add inserts a name after normalizing it. Blank and duplicate names are ignored.
func (s *substanceSet) add(name string) bool {
	name = chemistry.Normalize(name)
	if name == "" {
		return false
	}
	if _, ok := s.index[name]; ok {
		return false
	}
	s.index[name] = struct{}{}
	s.order = append(s.order, name)
	return true
}

func (s *substanceSet) remove(name string) bool {
	if _, ok := s.index[name]; !ok {
		return false
	}
	delete(s.index, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *substanceSet) has(name string) bool {
	_, ok := s.index[name]
	return ok
}

func (s *substanceSet) len() int {
	return len(s.order)
}

// names returns a copy of the members in insertion order.
func (s *substanceSet) names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// sameMembers reports whether s holds exactly the names in other.
func (s *substanceSet) sameMembers(other []string) bool {
	if len(other) != len(s.order) {
		return false
	}
	for _, n := range other {
		if !s.has(n) {
			return false
		}
	}
	return true
}
