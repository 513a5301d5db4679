package catalog

import (
	"fmt"
	"iter"
	"math/rand"
	"sync"
	"time"

	"realty-catalog/internal/models"

	"github.com/oklog/ulid/v2"
)

// NewID returns a fresh ULID for a listing, offer or viewing.
func NewID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// Store is the in-memory authoritative catalog. Listings are held behind a
// copy-on-write discipline: the pointed-to Property values are never mutated
// in place, so a pointer captured under the read lock stays a consistent
// snapshot after the lock is released.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]*models.Property
	order []string
	gen   int64
}

// NewStore creates an empty catalog store.
func NewStore() *Store {
	return &Store{
		byID: make(map[string]*models.Property),
	}
}

// Generation returns a counter that increments on every mutation. Cache
// layers key responses by it so stale entries are never served.
func (s *Store) Generation() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Len returns the number of listings currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Create assigns a fresh id and timestamps, initializes counters and ledgers,
// and inserts the listing.
func (s *Store) Create(data models.Property) (models.Property, error) {
	p := data.Clone()
	p.ID = NewID()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Views = 0
	p.Inquiries = 0
	p.Offers = nil
	p.Viewings = nil
	p.Version = 1

	if err := validateProperty(&p); err != nil {
		return models.Property{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[p.ID] = &p
	s.order = append(s.order, p.ID)
	s.gen++
	return p.Clone(), nil
}

// Get returns the listing with the given id.
func (s *Store) Get(id string) (models.Property, error) {
	s.mu.RLock()
	p, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return models.Property{}, fmt.Errorf("property %s: %w", id, models.ErrNotFound)
	}
	return p.Clone(), nil
}

// Update merges the provided fields into the existing listing and refreshes
// UpdatedAt. When expectedVersion is non-nil the write is rejected with
// a conflict unless it matches the current version.
func (s *Store) Update(id string, upd models.PropertyUpdate, expectedVersion *int64) (models.Property, error) {
	return s.apply(id, expectedVersion, func(p *models.Property) error {
		mergeUpdate(p, upd)
		return validateProperty(p)
	})
}

// Delete removes the listing and its ledgers.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("property %s: %w", id, models.ErrNotFound)
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.gen++
	return nil
}

// List returns a lazy, restartable sequence of all listings in insertion
// order. Each iteration observes the catalog state as of its first step.
func (s *Store) List() iter.Seq[models.Property] {
	return func(yield func(models.Property) bool) {
		for _, p := range s.snapshotPointers() {
			if !yield(p.Clone()) {
				return
			}
		}
	}
}

// Snapshot returns a consistent insertion-order copy of the catalog for the
// search pipeline.
func (s *Store) Snapshot() []models.Property {
	ptrs := s.snapshotPointers()
	out := make([]models.Property, len(ptrs))
	for i, p := range ptrs {
		out[i] = p.Clone()
	}
	return out
}

func (s *Store) snapshotPointers() []*models.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Property, 0, len(s.order))
	for _, id := range s.order {
		if p, ok := s.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// RecordView counts a read of the listing. Views never participate in search
// ordering or optimistic writes, so neither the listing version nor the store
// generation moves and UpdatedAt stays put.
func (s *Store) RecordView(id string) (models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[id]
	if !ok {
		return models.Property{}, fmt.Errorf("property %s: %w", id, models.ErrNotFound)
	}
	next := cur.Clone()
	next.Views++
	s.byID[id] = &next
	return next.Clone(), nil
}

// apply runs fn against a private copy of the listing and swaps it in only if
// fn succeeds, so a failed mutation leaves the catalog untouched. Writers to
// the same id are serialized under the store lock; the version check rejects
// stale optimistic writes.
func (s *Store) apply(id string, expectedVersion *int64, fn func(*models.Property) error) (models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.byID[id]
	if !ok {
		return models.Property{}, fmt.Errorf("property %s: %w", id, models.ErrNotFound)
	}
	if expectedVersion != nil && *expectedVersion != cur.Version {
		return models.Property{}, fmt.Errorf("property %s: expected version %d, have %d: %w",
			id, *expectedVersion, cur.Version, models.ErrConflict)
	}

	next := cur.Clone()
	if err := fn(&next); err != nil {
		return models.Property{}, err
	}
	next.UpdatedAt = time.Now()
	next.Version = cur.Version + 1

	s.byID[id] = &next
	s.gen++
	return next.Clone(), nil
}

func mergeUpdate(p *models.Property, upd models.PropertyUpdate) {
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.Type != nil {
		p.Type = *upd.Type
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.Location != nil {
		p.Location = *upd.Location
	}
	if upd.Details != nil {
		p.Details = *upd.Details
	}
	if upd.Amenities != nil {
		p.Amenities = append([]string(nil), upd.Amenities...)
	}
	if upd.Images != nil {
		p.Images = append([]string(nil), upd.Images...)
	}
	if upd.Agent != nil {
		p.Agent = *upd.Agent
	}
	if upd.Seller != nil {
		p.Seller = *upd.Seller
	}
}

func validateProperty(p *models.Property) error {
	if p.Price < 0 {
		return fmt.Errorf("%w: price must be non-negative", models.ErrValidation)
	}
	if !p.Type.Valid() {
		return fmt.Errorf("%w: unknown property type %q", models.ErrValidation, p.Type)
	}
	if !p.Status.Valid() {
		return fmt.Errorf("%w: unknown property status %q", models.ErrValidation, p.Status)
	}
	d := p.Details
	if d.Bedrooms < 0 || d.Bathrooms < 0 || d.Area < 0 || d.YearBuilt < 0 || d.Parking < 0 {
		return fmt.Errorf("%w: listing details must be non-negative", models.ErrValidation)
	}
	if p.Views < 0 || p.Inquiries < 0 {
		return fmt.Errorf("%w: counters must be non-negative", models.ErrValidation)
	}
	return nil
}
