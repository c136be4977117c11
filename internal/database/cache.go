package database

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"propval/server/internal/models"
)

// comparableCacheRow is one cached sold-listings result for an area. Sales
// are stored as a JSON blob; the row is upserted whole, last write wins.
type comparableCacheRow struct {
	CacheKey     string `gorm:"primaryKey;column:cache_key"`
	Suburb       string
	State        string
	Postcode     string
	PropertyType string
	SalesJSON    []byte `gorm:"column:sales_json"`
	SourceURL    string
	ScrapedAt    time.Time
}

func (comparableCacheRow) TableName() string {
	return "comparable_cache"
}

// CachedSales is the result of a cache lookup.
type CachedSales struct {
	Cached     bool
	Sales      []models.SoldComparable
	ScrapedURL string
	CacheKey   string
}

// CacheKey builds the canonical cache key for an area and property-type
// filter.
func CacheKey(loc models.NormalizedLocation, propertyType string) string {
	postcode := ""
	if loc.Postcode != nil {
		postcode = *loc.Postcode
	}
	return strings.Join([]string{loc.Suburb, loc.State, postcode, propertyType}, "|")
}

// GetCachedSales returns the cached comparables for an area if a result
// exists and is younger than ttl.
func (d *Database) GetCachedSales(loc models.NormalizedLocation, propertyType string, ttl time.Duration) (CachedSales, error) {
	key := CacheKey(loc, propertyType)
	result := CachedSales{CacheKey: key}

	var row comparableCacheRow
	err := d.db.Where("cache_key = ?", key).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return result, nil
		}
		return result, fmt.Errorf("cache lookup failed: %w", err)
	}

	if time.Since(row.ScrapedAt) > ttl {
		return result, nil
	}

	var sales []models.SoldComparable
	if err := json.Unmarshal(row.SalesJSON, &sales); err != nil {
		// A corrupt blob is treated as a miss; the next live fetch
		// overwrites it.
		d.logger.WithError(err).WithField("cache_key", key).Warn("Discarding unreadable comparable cache entry")
		return result, nil
	}

	result.Cached = true
	result.Sales = sales
	result.ScrapedURL = row.SourceURL
	return result, nil
}

// PutCachedSales upserts the sold-listings result for an area.
func (d *Database) PutCachedSales(loc models.NormalizedLocation, propertyType string, sales []models.SoldComparable, sourceURL string) error {
	payload, err := json.Marshal(sales)
	if err != nil {
		return fmt.Errorf("failed to encode sales: %w", err)
	}

	postcode := ""
	if loc.Postcode != nil {
		postcode = *loc.Postcode
	}

	row := comparableCacheRow{
		CacheKey:     CacheKey(loc, propertyType),
		Suburb:       loc.Suburb,
		State:        loc.State,
		Postcode:     postcode,
		PropertyType: propertyType,
		SalesJSON:    payload,
		SourceURL:    sourceURL,
		ScrapedAt:    time.Now(),
	}

	return d.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error
}
