// Package archive journals catalog mutations and daily listing snapshots to
// an external database. The in-memory catalog stays authoritative: archive
// writes are write-behind and a failure never fails a command.
package archive

import (
	"time"

	"realty-catalog/internal/models"
)

// Archive persists catalog events, snapshots and detected changes.
type Archive interface {
	RecordEvent(event *models.CatalogEvent) error
	SaveSnapshot(snapshot *models.ListingSnapshot) error
	SaveChanges(changes []models.ListingChange) error

	// LatestSnapshot returns the most recent snapshot for the listing taken
	// before the given date, or nil if none exists.
	LatestSnapshot(propertyID string, before time.Time) (*models.ListingSnapshot, error)

	RecentChanges(limit int) ([]models.ListingChange, error)

	// Stats reports row counts for the admin surface.
	Stats() (Stats, error)

	Close() error
}

// Stats summarizes archive contents.
type Stats struct {
	Events    int64 `json:"events"`
	Snapshots int64 `json:"snapshots"`
	Changes   int64 `json:"changes"`
}
