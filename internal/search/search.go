package search

import (
	"fmt"
	"sort"
	"strings"

	"realty-catalog/internal/models"
)

// Filters narrows a catalog query. A dimension is inactive when its value is
// the unrestricted sentinel: empty string, empty slice, or nil pointer.
type Filters struct {
	// Location matches case-insensitively as a substring of the city.
	Location string

	// Price range, both bounds inclusive and independently optional.
	MinPrice *float64
	MaxPrice *float64

	// Types is OR within the dimension; empty matches all.
	Types []models.PropertyType

	// Minimum thresholds, not exact matches.
	Bedrooms  *int
	Bathrooms *int

	// Area bounds, inclusive and independently optional.
	MinArea *int
	MaxArea *int
}

// Validate rejects conflicting bounds. Unrestricted filters are always valid.
func (f Filters) Validate() error {
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return fmt.Errorf("%w: min price %v exceeds max price %v", models.ErrValidation, *f.MinPrice, *f.MaxPrice)
	}
	if f.MinArea != nil && f.MaxArea != nil && *f.MinArea > *f.MaxArea {
		return fmt.Errorf("%w: min area %d exceeds max area %d", models.ErrValidation, *f.MinArea, *f.MaxArea)
	}
	for _, t := range f.Types {
		if !t.Valid() {
			return fmt.Errorf("%w: unknown property type %q", models.ErrValidation, t)
		}
	}
	return nil
}

// Matches reports whether p passes every active filter dimension.
func (f Filters) Matches(p *models.Property) bool {
	if f.Location != "" &&
		!strings.Contains(strings.ToLower(p.Location.City), strings.ToLower(f.Location)) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if p.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Bedrooms != nil && p.Details.Bedrooms < *f.Bedrooms {
		return false
	}
	if f.Bathrooms != nil && p.Details.Bathrooms < *f.Bathrooms {
		return false
	}
	if f.MinArea != nil && p.Details.Area < *f.MinArea {
		return false
	}
	if f.MaxArea != nil && p.Details.Area > *f.MaxArea {
		return false
	}
	return true
}

// SortKey orders a result set.
type SortKey string

const (
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNewest    SortKey = "newest"
	SortOldest    SortKey = "oldest"
)

// Query filters and orders a catalog snapshot. It is a pure function: the
// input slice is never reordered or mutated. An empty sort key defaults to
// newest-first; the sort is stable, so equal keys keep their insertion order.
func Query(snapshot []models.Property, f Filters, sortBy SortKey) ([]models.Property, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if sortBy == "" {
		sortBy = SortNewest
	}

	var less func(a, b *models.Property) bool
	switch sortBy {
	case SortPriceAsc:
		less = func(a, b *models.Property) bool { return a.Price < b.Price }
	case SortPriceDesc:
		less = func(a, b *models.Property) bool { return a.Price > b.Price }
	case SortNewest:
		less = func(a, b *models.Property) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortOldest:
		less = func(a, b *models.Property) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return nil, fmt.Errorf("%w: unknown sort key %q", models.ErrValidation, sortBy)
	}

	results := make([]models.Property, 0, len(snapshot))
	for i := range snapshot {
		if f.Matches(&snapshot[i]) {
			results = append(results, snapshot[i])
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return less(&results[i], &results[j])
	})

	return results, nil
}
