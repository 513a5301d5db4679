package models

import "time"

// CatalogEvent is one journaled catalog mutation. Events are write-behind:
// the in-memory catalog stays authoritative and never waits on the archive.
type CatalogEvent struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string    `gorm:"type:varchar(32);not null;index" json:"property_id"`
	EventType  string    `gorm:"type:varchar(50);not null;index" json:"event_type"`
	Payload    string    `gorm:"type:text" json:"payload,omitempty"`
	RecordedAt time.Time `gorm:"type:datetime;not null;index" json:"recorded_at"`
}

// TableName はテーブル名を明示的に指定
func (CatalogEvent) TableName() string {
	return "catalog_events"
}

// Event types written to the journal.
const (
	EventPropertyCreated  = "property_created"
	EventPropertyUpdated  = "property_updated"
	EventPropertyDeleted  = "property_deleted"
	EventOfferSubmitted   = "offer_submitted"
	EventOfferResolved    = "offer_resolved"
	EventViewingScheduled = "viewing_scheduled"
	EventViewingCompleted = "viewing_completed"
	EventViewingCancelled = "viewing_cancelled"
)

// ListingSnapshot represents a daily snapshot of a listing's market state.
type ListingSnapshot struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID string    `gorm:"type:varchar(32);not null;index:idx_listing_date" json:"property_id"`
	SnapshotAt time.Time `gorm:"type:date;not null;index:idx_listing_date,priority:2" json:"snapshot_at"`

	// Listing state at snapshot time
	Price     float64 `gorm:"type:decimal(14,2);not null" json:"price"`
	Status    string  `gorm:"type:varchar(20);not null" json:"status"`
	Views     int64   `gorm:"type:bigint;not null" json:"views"`
	Inquiries int64   `gorm:"type:bigint;not null" json:"inquiries"`
	Offers    int     `gorm:"type:int;not null" json:"offers"`
	Viewings  int     `gorm:"type:int;not null" json:"viewings"`

	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
}

// TableName はテーブル名を明示的に指定
func (ListingSnapshot) TableName() string {
	return "listing_snapshots"
}

// ListingChange represents a detected change between daily snapshots.
type ListingChange struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PropertyID      string    `gorm:"type:varchar(32);not null;index" json:"property_id"`
	ChangeType      string    `gorm:"type:varchar(50);not null" json:"change_type"`
	OldValue        string    `gorm:"type:text" json:"old_value,omitempty"`
	NewValue        string    `gorm:"type:text" json:"new_value,omitempty"`
	ChangeMagnitude *float64  `gorm:"type:decimal(14,2)" json:"change_magnitude,omitempty"`
	DetectedAt      time.Time `gorm:"type:datetime;not null;index" json:"detected_at"`
}

// TableName はテーブル名を明示的に指定
func (ListingChange) TableName() string {
	return "listing_changes"
}

// Change types detected between snapshots.
const (
	ChangeTypeNew    = "new_listing"
	ChangeTypePrice  = "price_changed"
	ChangeTypeStatus = "status_changed"
)
