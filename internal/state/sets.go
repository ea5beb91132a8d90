package state

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
)

// Set is a set of item ids.
type Set map[string]bool

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k, ok := range s {
		if ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Toggle flips membership of id and reports whether it is now a member.
func (s Set) Toggle(id string) bool {
	if s[id] {
		delete(s, id)
		return false
	}
	s[id] = true
	return true
}

// Add inserts ids.
func (s Set) Add(ids ...string) {
	for _, id := range ids {
		s[id] = true
	}
}

// Remove deletes ids.
func (s Set) Remove(ids ...string) {
	for _, id := range ids {
		delete(s, id)
	}
}

// Sets reads and writes Set values through a KV.
type Sets struct {
	KV *KV
}

// Load returns the set stored under key. Missing or corrupt values yield
// an empty set.
func (s Sets) Load(key string) Set {
	out := Set{}
	b, ok, err := s.KV.Get(key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("state read failed")
		return out
	}
	if !ok {
		return out
	}
	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("ignoring corrupt state")
		return out
	}
	out.Add(ids...)
	return out
}

// Save stores set under key as a sorted JSON array.
func (s Sets) Save(key string, set Set) error {
	b, err := json.Marshal(set.Sorted())
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.KV.Put(key, b); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Update loads key, applies fn and saves the result.
func (s Sets) Update(key string, fn func(Set)) (Set, error) {
	set := s.Load(key)
	fn(set)
	return set, s.Save(key, set)
}
