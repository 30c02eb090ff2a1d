package domain

// SymptomKeySet is a deduplicated set of symptom keys that remembers insertion order.
// The zero value is an empty set ready to use.
type SymptomKeySet struct {
	order []SymptomKey
	index map[SymptomKey]struct{}
}

// NewSymptomKeySet builds a set from keys, keeping the first occurrence of each.
func NewSymptomKeySet(keys ...SymptomKey) SymptomKeySet {
	var s SymptomKeySet
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add inserts key and reports whether it was not already present.
func (s *SymptomKeySet) Add(key SymptomKey) bool {
	if s.index == nil {
		s.index = make(map[SymptomKey]struct{})
	}
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = struct{}{}
	s.order = append(s.order, key)
	return true
}

// Remove deletes key and reports whether it was present.
func (s *SymptomKeySet) Remove(key SymptomKey) bool {
	if _, ok := s.index[key]; !ok {
		return false
	}
	delete(s.index, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Has reports whether key is in the set.
func (s SymptomKeySet) Has(key SymptomKey) bool {
	_, ok := s.index[key]
	return ok
}

// Len returns the number of keys in the set.
func (s SymptomKeySet) Len() int {
	return len(s.order)
}

// IsEmpty reports whether the set has no keys.
func (s SymptomKeySet) IsEmpty() bool {
	return len(s.order) == 0
}

// Keys returns a copy of the keys in insertion order.
func (s SymptomKeySet) Keys() []SymptomKey {
	out := make([]SymptomKey, len(s.order))
	copy(out, s.order)
	return out
}

// Strings returns the keys as plain strings in insertion order.
func (s SymptomKeySet) Strings() []string {
	out := make([]string, len(s.order))
	for i, k := range s.order {
		out[i] = string(k)
	}
	return out
}

// Union returns a new set with the keys of s followed by the keys of other not already in s.
func (s SymptomKeySet) Union(other SymptomKeySet) SymptomKeySet {
	out := s.Clone()
	for _, k := range other.order {
		out.Add(k)
	}
	return out
}

// Without returns a new set containing the keys of s that are not in excluded.
func (s SymptomKeySet) Without(excluded SymptomKeySet) SymptomKeySet {
	var out SymptomKeySet
	for _, k := range s.order {
		if !excluded.Has(k) {
			out.Add(k)
		}
	}
	return out
}

// Clone returns an independent copy of the set.
func (s SymptomKeySet) Clone() SymptomKeySet {
	return NewSymptomKeySet(s.order...)
}
