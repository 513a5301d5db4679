// Package favorites tracks per-user marked listings. Membership is a set:
// repeated adds do not duplicate and removing a non-member is a no-op.
package favorites

import (
	"sort"
	"sync"
)

// Index holds each user's favorited property ids. It is independent of the
// catalog store's lifecycle.
type Index struct {
	mu     sync.RWMutex
	byUser map[string]map[string]struct{}
}

// NewIndex creates an empty favorites index.
func NewIndex() *Index {
	return &Index{byUser: make(map[string]map[string]struct{})}
}

// Add marks the listing for the user. Returns false if it was already marked.
func (ix *Index) Add(userID, propertyID string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	set, ok := ix.byUser[userID]
	if !ok {
		set = make(map[string]struct{})
		ix.byUser[userID] = set
	}
	if _, exists := set[propertyID]; exists {
		return false
	}
	set[propertyID] = struct{}{}
	return true
}

// Remove unmarks the listing. Returns false if it was not marked.
func (ix *Index) Remove(userID, propertyID string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	set, ok := ix.byUser[userID]
	if !ok {
		return false
	}
	if _, exists := set[propertyID]; !exists {
		return false
	}
	delete(set, propertyID)
	if len(set) == 0 {
		delete(ix.byUser, userID)
	}
	return true
}

// Toggle flips membership atomically and returns the new state.
func (ix *Index) Toggle(userID, propertyID string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	set, ok := ix.byUser[userID]
	if !ok {
		set = make(map[string]struct{})
		ix.byUser[userID] = set
	}
	if _, exists := set[propertyID]; exists {
		delete(set, propertyID)
		if len(set) == 0 {
			delete(ix.byUser, userID)
		}
		return false
	}
	set[propertyID] = struct{}{}
	return true
}

// Contains reports whether the user has marked the listing.
func (ix *Index) Contains(userID, propertyID string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.byUser[userID][propertyID]
	return ok
}

// List returns the user's favorited listing ids. Membership order carries no
// meaning; ids are returned sorted for deterministic responses.
func (ix *Index) List(userID string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	set := ix.byUser[userID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
