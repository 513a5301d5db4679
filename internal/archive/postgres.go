package archive

import (
	"database/sql"
	"fmt"
	"time"

	"realty-catalog/internal/models"

	_ "github.com/lib/pq"
)

// SQLArchive is the PostgreSQL archive backend.
type SQLArchive struct {
	conn *sql.DB
}

// NewSQLArchive connects to PostgreSQL and verifies the connection.
func NewSQLArchive(host, port, user, password, dbname string) (*SQLArchive, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &SQLArchive{conn: conn}, nil
}

func (a *SQLArchive) Close() error {
	return a.conn.Close()
}

// InitSchema creates the archive tables if they don't exist.
func (a *SQLArchive) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS catalog_events (
		id BIGSERIAL PRIMARY KEY,
		property_id VARCHAR(32) NOT NULL,
		event_type VARCHAR(50) NOT NULL,
		payload TEXT,
		recorded_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_catalog_events_property ON catalog_events(property_id);
	CREATE INDEX IF NOT EXISTS idx_catalog_events_type ON catalog_events(event_type);
	CREATE INDEX IF NOT EXISTS idx_catalog_events_recorded ON catalog_events(recorded_at);

	CREATE TABLE IF NOT EXISTS listing_snapshots (
		id BIGSERIAL PRIMARY KEY,
		property_id VARCHAR(32) NOT NULL,
		snapshot_at DATE NOT NULL,
		price DECIMAL(14, 2) NOT NULL,
		status VARCHAR(20) NOT NULL,
		views BIGINT NOT NULL,
		inquiries BIGINT NOT NULL,
		offers INTEGER NOT NULL,
		viewings INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE (property_id, snapshot_at)
	);

	CREATE TABLE IF NOT EXISTS listing_changes (
		id BIGSERIAL PRIMARY KEY,
		property_id VARCHAR(32) NOT NULL,
		change_type VARCHAR(50) NOT NULL,
		old_value TEXT,
		new_value TEXT,
		change_magnitude DECIMAL(14, 2),
		detected_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_listing_changes_property ON listing_changes(property_id);
	CREATE INDEX IF NOT EXISTS idx_listing_changes_detected ON listing_changes(detected_at);
	`
	_, err := a.conn.Exec(query)
	return err
}

// RecordEvent appends one event to the journal.
func (a *SQLArchive) RecordEvent(event *models.CatalogEvent) error {
	if event.RecordedAt.IsZero() {
		event.RecordedAt = time.Now()
	}
	query := `
	INSERT INTO catalog_events (property_id, event_type, payload, recorded_at)
	VALUES ($1, $2, $3, $4)
	`
	_, err := a.conn.Exec(query, event.PropertyID, event.EventType, event.Payload, event.RecordedAt)
	return err
}

// SaveSnapshot upserts the listing's snapshot for its snapshot date.
func (a *SQLArchive) SaveSnapshot(s *models.ListingSnapshot) error {
	query := `
	INSERT INTO listing_snapshots (
		property_id, snapshot_at, price, status, views, inquiries, offers, viewings, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (property_id, snapshot_at) DO UPDATE SET
		price = EXCLUDED.price,
		status = EXCLUDED.status,
		views = EXCLUDED.views,
		inquiries = EXCLUDED.inquiries,
		offers = EXCLUDED.offers,
		viewings = EXCLUDED.viewings
	`
	_, err := a.conn.Exec(query,
		s.PropertyID, s.SnapshotAt, s.Price, s.Status, s.Views, s.Inquiries,
		s.Offers, s.Viewings, time.Now())
	return err
}

func (a *SQLArchive) SaveChanges(changes []models.ListingChange) error {
	query := `
	INSERT INTO listing_changes (property_id, change_type, old_value, new_value, change_magnitude, detected_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, c := range changes {
		if _, err := a.conn.Exec(query,
			c.PropertyID, c.ChangeType, c.OldValue, c.NewValue, c.ChangeMagnitude, c.DetectedAt); err != nil {
			return err
		}
	}
	return nil
}

func (a *SQLArchive) LatestSnapshot(propertyID string, before time.Time) (*models.ListingSnapshot, error) {
	query := `
	SELECT id, property_id, snapshot_at, price, status, views, inquiries, offers, viewings, created_at
	FROM listing_snapshots
	WHERE property_id = $1 AND snapshot_at < $2
	ORDER BY snapshot_at DESC
	LIMIT 1
	`
	var s models.ListingSnapshot
	err := a.conn.QueryRow(query, propertyID, before).Scan(
		&s.ID, &s.PropertyID, &s.SnapshotAt, &s.Price, &s.Status,
		&s.Views, &s.Inquiries, &s.Offers, &s.Viewings, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (a *SQLArchive) RecentChanges(limit int) ([]models.ListingChange, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
	SELECT id, property_id, change_type, old_value, new_value, change_magnitude, detected_at
	FROM listing_changes
	ORDER BY detected_at DESC
	LIMIT $1
	`
	rows, err := a.conn.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []models.ListingChange
	for rows.Next() {
		var c models.ListingChange
		if err := rows.Scan(&c.ID, &c.PropertyID, &c.ChangeType, &c.OldValue,
			&c.NewValue, &c.ChangeMagnitude, &c.DetectedAt); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

func (a *SQLArchive) Stats() (Stats, error) {
	var stats Stats
	if err := a.conn.QueryRow(`SELECT COUNT(*) FROM catalog_events`).Scan(&stats.Events); err != nil {
		return stats, err
	}
	if err := a.conn.QueryRow(`SELECT COUNT(*) FROM listing_snapshots`).Scan(&stats.Snapshots); err != nil {
		return stats, err
	}
	if err := a.conn.QueryRow(`SELECT COUNT(*) FROM listing_changes`).Scan(&stats.Changes); err != nil {
		return stats, err
	}
	return stats, nil
}
