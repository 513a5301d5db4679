package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-catalog/internal/models"
)

// fakeArchive keeps everything in memory for snapshotter tests.
type fakeArchive struct {
	events    []models.CatalogEvent
	snapshots []models.ListingSnapshot
	changes   []models.ListingChange
}

func (f *fakeArchive) RecordEvent(event *models.CatalogEvent) error {
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeArchive) SaveSnapshot(snapshot *models.ListingSnapshot) error {
	f.snapshots = append(f.snapshots, *snapshot)
	return nil
}

func (f *fakeArchive) SaveChanges(changes []models.ListingChange) error {
	f.changes = append(f.changes, changes...)
	return nil
}

func (f *fakeArchive) LatestSnapshot(propertyID string, before time.Time) (*models.ListingSnapshot, error) {
	var latest *models.ListingSnapshot
	for i := range f.snapshots {
		s := &f.snapshots[i]
		if s.PropertyID != propertyID || !s.SnapshotAt.Before(before) {
			continue
		}
		if latest == nil || s.SnapshotAt.After(latest.SnapshotAt) {
			latest = s
		}
	}
	return latest, nil
}

func (f *fakeArchive) RecentChanges(limit int) ([]models.ListingChange, error) {
	if limit > len(f.changes) {
		limit = len(f.changes)
	}
	return f.changes[len(f.changes)-limit:], nil
}

func (f *fakeArchive) Stats() (Stats, error) {
	return Stats{
		Events:    int64(len(f.events)),
		Snapshots: int64(len(f.snapshots)),
		Changes:   int64(len(f.changes)),
	}, nil
}

func (f *fakeArchive) Close() error { return nil }

func snapshotListing(id string, price float64, status models.PropertyStatus) models.Property {
	return models.Property{
		ID:     id,
		Title:  "Test Listing",
		Price:  price,
		Status: status,
		Type:   models.PropertyTypeApartment,
	}
}

func TestFirstPassRecordsNewListing(t *testing.T) {
	fake := &fakeArchive{}
	snap := NewSnapshotter(fake)

	saved, failed := snap.Run([]models.Property{
		snapshotListing("prop-1", 350000, models.PropertyStatusForSale),
	})

	assert.Equal(t, 1, saved)
	assert.Equal(t, 0, failed)
	require.Len(t, fake.snapshots, 1)
	assert.Equal(t, "prop-1", fake.snapshots[0].PropertyID)
	assert.Equal(t, float64(350000), fake.snapshots[0].Price)

	require.Len(t, fake.changes, 1)
	assert.Equal(t, models.ChangeTypeNew, fake.changes[0].ChangeType)
	assert.Equal(t, "prop-1", fake.changes[0].PropertyID)
}

func TestDetectsPriceChangeAgainstPriorSnapshot(t *testing.T) {
	fake := &fakeArchive{}
	yesterday := time.Now().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	fake.snapshots = append(fake.snapshots, models.ListingSnapshot{
		PropertyID: "prop-1",
		SnapshotAt: yesterday,
		Price:      350000,
		Status:     string(models.PropertyStatusForSale),
	})

	snap := NewSnapshotter(fake)
	saved, failed := snap.Run([]models.Property{
		snapshotListing("prop-1", 340000, models.PropertyStatusForSale),
	})

	assert.Equal(t, 1, saved)
	assert.Equal(t, 0, failed)
	require.Len(t, fake.changes, 1)

	change := fake.changes[0]
	assert.Equal(t, models.ChangeTypePrice, change.ChangeType)
	assert.Equal(t, "350000.00", change.OldValue)
	assert.Equal(t, "340000.00", change.NewValue)
	require.NotNil(t, change.ChangeMagnitude)
	assert.Equal(t, float64(-10000), *change.ChangeMagnitude)
}

func TestDetectsStatusChangeAgainstPriorSnapshot(t *testing.T) {
	fake := &fakeArchive{}
	yesterday := time.Now().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	fake.snapshots = append(fake.snapshots, models.ListingSnapshot{
		PropertyID: "prop-1",
		SnapshotAt: yesterday,
		Price:      350000,
		Status:     string(models.PropertyStatusForSale),
	})

	snap := NewSnapshotter(fake)
	snap.Run([]models.Property{
		snapshotListing("prop-1", 350000, models.PropertyStatusSold),
	})

	require.Len(t, fake.changes, 1)
	change := fake.changes[0]
	assert.Equal(t, models.ChangeTypeStatus, change.ChangeType)
	assert.Equal(t, string(models.PropertyStatusForSale), change.OldValue)
	assert.Equal(t, string(models.PropertyStatusSold), change.NewValue)
}

func TestUnchangedListingRecordsNoChanges(t *testing.T) {
	fake := &fakeArchive{}
	yesterday := time.Now().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	fake.snapshots = append(fake.snapshots, models.ListingSnapshot{
		PropertyID: "prop-1",
		SnapshotAt: yesterday,
		Price:      350000,
		Status:     string(models.PropertyStatusForSale),
	})

	snap := NewSnapshotter(fake)
	snap.Run([]models.Property{
		snapshotListing("prop-1", 350000, models.PropertyStatusForSale),
	})

	assert.Empty(t, fake.changes)
	assert.Len(t, fake.snapshots, 2)
}
