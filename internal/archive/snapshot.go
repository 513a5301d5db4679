package archive

import (
	"fmt"
	"log"
	"time"

	"realty-catalog/internal/models"
)

// Snapshotter writes daily snapshots of every listing and records the price
// and status changes detected against the previous snapshot.
type Snapshotter struct {
	archive Archive
}

// NewSnapshotter creates a snapshotter over the given archive.
func NewSnapshotter(a Archive) *Snapshotter {
	return &Snapshotter{archive: a}
}

// Run snapshots every listing in the slice. Per-listing failures are logged
// and counted but do not stop the pass.
func (s *Snapshotter) Run(listings []models.Property) (saved, failed int) {
	for i := range listings {
		if err := s.snapshotOne(&listings[i]); err != nil {
			log.Printf("Snapshot: failed for property %s: %v", listings[i].ID, err)
			failed++
			continue
		}
		saved++
	}
	return saved, failed
}

func (s *Snapshotter) snapshotOne(p *models.Property) error {
	today := time.Now().Truncate(24 * time.Hour)

	changes, err := s.detectChanges(p, today)
	if err != nil {
		return err
	}
	if len(changes) > 0 {
		if err := s.archive.SaveChanges(changes); err != nil {
			return err
		}
	}

	snapshot := &models.ListingSnapshot{
		PropertyID: p.ID,
		SnapshotAt: today,
		Price:      p.Price,
		Status:     string(p.Status),
		Views:      p.Views,
		Inquiries:  p.Inquiries,
		Offers:     len(p.Offers),
		Viewings:   len(p.Viewings),
	}
	return s.archive.SaveSnapshot(snapshot)
}

// detectChanges compares the listing with its most recent prior snapshot.
func (s *Snapshotter) detectChanges(p *models.Property, today time.Time) ([]models.ListingChange, error) {
	last, err := s.archive.LatestSnapshot(p.ID, today)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	if last == nil {
		// No previous snapshot, first sighting of this listing
		return []models.ListingChange{{
			PropertyID: p.ID,
			ChangeType: models.ChangeTypeNew,
			NewValue:   "new listing archived",
			DetectedAt: now,
		}}, nil
	}

	var changes []models.ListingChange

	if p.Price != last.Price {
		magnitude := p.Price - last.Price
		changes = append(changes, models.ListingChange{
			PropertyID:      p.ID,
			ChangeType:      models.ChangeTypePrice,
			OldValue:        fmt.Sprintf("%.2f", last.Price),
			NewValue:        fmt.Sprintf("%.2f", p.Price),
			ChangeMagnitude: &magnitude,
			DetectedAt:      now,
		})
	}

	if string(p.Status) != last.Status {
		changes = append(changes, models.ListingChange{
			PropertyID: p.ID,
			ChangeType: models.ChangeTypeStatus,
			OldValue:   last.Status,
			NewValue:   string(p.Status),
			DetectedAt: now,
		})
	}

	return changes, nil
}
