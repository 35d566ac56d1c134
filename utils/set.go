package utils

import "sync"

// StringSet is a thread-safe set of strings, used for URLs already queued
// and ticket identities already handled in a pass.
type StringSet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewStringSet creates an empty StringSet.
func NewStringSet() *StringSet {
	return &StringSet{seen: make(map[string]struct{})}
}

// Add returns true if s was newly added, false if already present.
func (set *StringSet) Add(s string) bool {
	set.mu.Lock()
	defer set.mu.Unlock()

	if _, exists := set.seen[s]; exists {
		return false
	}
	set.seen[s] = struct{}{}
	return true
}

// Contains returns true if s has already been added.
func (set *StringSet) Contains(s string) bool {
	set.mu.RLock()
	defer set.mu.RUnlock()
	_, exists := set.seen[s]
	return exists
}

// Size returns the number of unique strings tracked.
func (set *StringSet) Size() int {
	set.mu.RLock()
	defer set.mu.RUnlock()
	return len(set.seen)
}
