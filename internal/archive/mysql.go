package archive

import (
	"errors"
	"fmt"
	"time"

	"realty-catalog/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormArchive is the MySQL archive backend.
type GormArchive struct {
	db *gorm.DB
}

// NewGormArchive connects to MySQL and verifies the connection.
func NewGormArchive(host, port, user, password, dbname string) (*GormArchive, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Test connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormArchive{db: db}, nil
}

// NewGormArchiveFromDB wraps an existing gorm.DB instance.
func NewGormArchiveFromDB(db *gorm.DB) *GormArchive {
	return &GormArchive{db: db}
}

// InitSchema creates tables using GORM AutoMigrate.
func (a *GormArchive) InitSchema() error {
	return a.db.AutoMigrate(
		&models.CatalogEvent{},
		&models.ListingSnapshot{},
		&models.ListingChange{},
	)
}

func (a *GormArchive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RecordEvent appends one event to the journal.
func (a *GormArchive) RecordEvent(event *models.CatalogEvent) error {
	if event.RecordedAt.IsZero() {
		event.RecordedAt = time.Now()
	}
	return a.db.Create(event).Error
}

// SaveSnapshot upserts the listing's snapshot for its snapshot date.
func (a *GormArchive) SaveSnapshot(snapshot *models.ListingSnapshot) error {
	var existing models.ListingSnapshot
	result := a.db.Where("property_id = ? AND snapshot_at = ?",
		snapshot.PropertyID, snapshot.SnapshotAt).First(&existing)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return a.db.Create(snapshot).Error
	} else if result.Error != nil {
		return result.Error
	}

	snapshot.ID = existing.ID
	return a.db.Save(snapshot).Error
}

func (a *GormArchive) SaveChanges(changes []models.ListingChange) error {
	if len(changes) == 0 {
		return nil
	}
	return a.db.Create(&changes).Error
}

func (a *GormArchive) LatestSnapshot(propertyID string, before time.Time) (*models.ListingSnapshot, error) {
	var snap models.ListingSnapshot
	result := a.db.Where("property_id = ? AND snapshot_at < ?", propertyID, before).
		Order("snapshot_at DESC").
		First(&snap)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if result.Error != nil {
		return nil, result.Error
	}
	return &snap, nil
}

func (a *GormArchive) RecentChanges(limit int) ([]models.ListingChange, error) {
	if limit <= 0 {
		limit = 50
	}
	var changes []models.ListingChange
	err := a.db.Order("detected_at DESC").Limit(limit).Find(&changes).Error
	return changes, err
}

func (a *GormArchive) Stats() (Stats, error) {
	var stats Stats
	if err := a.db.Model(&models.CatalogEvent{}).Count(&stats.Events).Error; err != nil {
		return stats, err
	}
	if err := a.db.Model(&models.ListingSnapshot{}).Count(&stats.Snapshots).Error; err != nil {
		return stats, err
	}
	if err := a.db.Model(&models.ListingChange{}).Count(&stats.Changes).Error; err != nil {
		return stats, err
	}
	return stats, nil
}
