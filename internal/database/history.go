package database

import (
	"fmt"

	"propval/server/internal/models"
)

// AppendValuation appends one history entry for a property and truncates the
// property's history to the most recent maxEntries. Entries are never edited
// after insertion.
func (d *Database) AppendValuation(entry models.ValuationHistoryEntry, maxEntries int) error {
	if err := d.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to append valuation history: %w", err)
	}

	if maxEntries <= 0 {
		return nil
	}

	keep := d.db.Model(&models.ValuationHistoryEntry{}).
		Select("id").
		Where("property_id = ?", entry.PropertyID).
		Order("date DESC").
		Limit(maxEntries)

	err := d.db.
		Where("property_id = ? AND id NOT IN (?)", entry.PropertyID, keep).
		Delete(&models.ValuationHistoryEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to truncate valuation history: %w", err)
	}
	return nil
}

// RecentValuations returns up to limit history entries for a property,
// newest first.
func (d *Database) RecentValuations(propertyID string, limit int) ([]models.ValuationHistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	var entries []models.ValuationHistoryEntry
	err := d.db.
		Where("property_id = ?", propertyID).
		Order("date DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load valuation history: %w", err)
	}
	return entries, nil
}
