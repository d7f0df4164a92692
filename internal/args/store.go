// Package args turns the raw invocation tokens that follow the task name
// into a read-only store of overrides.
//
// Two token shapes are recognized, both prefixed with "--":
//
//	--name              a bare flag
//	--name=v1,v2,...    a valued key with an ordered list of values
//
// Anything else is ignored. Malformed input never produces an error; it
// simply has no effect on the store.
package args

import "strings"

// Marker is the prefix every override token must carry.
const Marker = "--"

// Kind describes what an override carries.
type Kind int

const (
	// KindFlag is a bare "--name" token without any value.
	KindFlag Kind = iota + 1
	// KindValue is a "--name=value" token with exactly one value.
	KindValue
	// KindList is a "--name=v1,v2" token with two or more values.
	KindList
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindFlag:
		return "flag"
	case KindValue:
		return "value"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Override is a single parsed override. Values is nil for KindFlag.
type Override struct {
	Key    string
	Kind   Kind
	Values []string
}

// Store holds the overrides parsed from one invocation. It is built once by
// Parse and never mutated afterwards.
type Store struct {
	values map[string][]string
	flags  map[string]struct{}
}

// Parse builds a Store from invocation tokens. The caller passes only the
// tokens that follow the program and task name.
func Parse(tokens []string) *Store {
	s := &Store{
		values: make(map[string][]string),
		flags:  make(map[string]struct{}),
	}

	for _, token := range tokens {
		rest, ok := strings.CutPrefix(token, Marker)
		if !ok {
			continue
		}

		key, raw, valued := strings.Cut(rest, "=")
		if !valued {
			s.flags[key] = struct{}{}
			continue
		}

		// "--key=" deliberately yields [""], not a bare flag.
		s.values[key] = strings.Split(raw, ",")
	}

	return s
}

// Has reports whether key was given either as a bare flag or with values.
func (s *Store) Has(key string) bool {
	if _, ok := s.values[key]; ok {
		return true
	}
	_, ok := s.flags[key]
	return ok
}

// Flag reports whether key was given as a bare flag.
func (s *Store) Flag(key string) bool {
	_, ok := s.flags[key]
	return ok
}

// Get returns a copy of the values recorded for key, or def when the key has
// no values. A bare flag has no values, so Get on a flag returns def; use Has
// or Flag to test for presence.
func (s *Store) Get(key string, def []string) []string {
	vals, ok := s.values[key]
	if !ok {
		return def
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

// Value returns the first value recorded for key, or def.
func (s *Store) Value(key, def string) string {
	vals, ok := s.values[key]
	if !ok || len(vals) == 0 {
		return def
	}
	return vals[0]
}

// Lookup returns the typed override for key. Valued keys take precedence
// over a bare flag with the same name.
func (s *Store) Lookup(key string) (Override, bool) {
	if vals, ok := s.values[key]; ok {
		kind := KindList
		if len(vals) == 1 {
			kind = KindValue
		}
		return Override{Key: key, Kind: kind, Values: s.Get(key, nil)}, true
	}
	if s.Flag(key) {
		return Override{Key: key, Kind: KindFlag}, true
	}
	return Override{}, false
}
