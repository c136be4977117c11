package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propval/server/internal/models"
)

func testDatabase(t *testing.T) *Database {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func strPtr(v string) *string { return &v }

func TestCacheKey(t *testing.T) {
	loc := models.NormalizedLocation{Suburb: "bondi", State: "nsw", Postcode: strPtr("2026")}
	assert.Equal(t, "bondi|nsw|2026|houses", CacheKey(loc, "houses"))

	noPostcode := models.NormalizedLocation{Suburb: "toowong", State: "qld"}
	assert.Equal(t, "toowong|qld||units", CacheKey(noPostcode, "units"))
}

func TestCachedSales_MissOnEmptyStore(t *testing.T) {
	db := testDatabase(t)

	result, err := db.GetCachedSales(models.NormalizedLocation{Suburb: "bondi", State: "nsw"}, "houses", time.Hour)

	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.Empty(t, result.Sales)
}

func TestCachedSales_RoundTrip(t *testing.T) {
	db := testDatabase(t)
	loc := models.NormalizedLocation{Suburb: "bondi", State: "nsw", Postcode: strPtr("2026")}
	sales := []models.SoldComparable{
		{ID: "a", Address: "12 Smith Street, Bondi, NSW 2026", Price: 1250000},
		{ID: "b", Address: "4 Ocean Avenue, Bondi, NSW 2026", Price: 980000},
	}

	require.NoError(t, db.PutCachedSales(loc, "houses", sales, "https://example.com/sold-listings/bondi-nsw-2026/"))

	result, err := db.GetCachedSales(loc, "houses", time.Hour)

	require.NoError(t, err)
	assert.True(t, result.Cached)
	assert.Equal(t, sales, result.Sales)
	assert.Equal(t, "https://example.com/sold-listings/bondi-nsw-2026/", result.ScrapedURL)
}

func TestCachedSales_KeyedByPropertyType(t *testing.T) {
	db := testDatabase(t)
	loc := models.NormalizedLocation{Suburb: "bondi", State: "nsw"}

	require.NoError(t, db.PutCachedSales(loc, "houses", []models.SoldComparable{{ID: "a", Price: 1}}, ""))

	result, err := db.GetCachedSales(loc, "units", time.Hour)

	require.NoError(t, err)
	assert.False(t, result.Cached)
}

func TestCachedSales_StaleEntryIsAMiss(t *testing.T) {
	db := testDatabase(t)
	loc := models.NormalizedLocation{Suburb: "bondi", State: "nsw"}

	require.NoError(t, db.PutCachedSales(loc, "houses", []models.SoldComparable{{ID: "a", Price: 1}}, ""))

	result, err := db.GetCachedSales(loc, "houses", 0)

	require.NoError(t, err)
	assert.False(t, result.Cached)
}

func TestCachedSales_UpsertReplaces(t *testing.T) {
	db := testDatabase(t)
	loc := models.NormalizedLocation{Suburb: "bondi", State: "nsw"}

	require.NoError(t, db.PutCachedSales(loc, "houses", []models.SoldComparable{{ID: "old", Price: 1}}, "old-url"))
	require.NoError(t, db.PutCachedSales(loc, "houses", []models.SoldComparable{{ID: "new", Price: 2}}, "new-url"))

	result, err := db.GetCachedSales(loc, "houses", time.Hour)

	require.NoError(t, err)
	require.True(t, result.Cached)
	require.Len(t, result.Sales, 1)
	assert.Equal(t, "new", result.Sales[0].ID)
	assert.Equal(t, "new-url", result.ScrapedURL)
}

func historyEntry(id, propertyID string, age time.Duration) models.ValuationHistoryEntry {
	return models.ValuationHistoryEntry{
		ID:             id,
		PropertyID:     propertyID,
		Date:           time.Now().Add(-age),
		EstimatedValue: 640000,
	}
}

func TestAppendValuation_NewestFirst(t *testing.T) {
	db := testDatabase(t)

	require.NoError(t, db.AppendValuation(historyEntry("older", "prop-1", 2*time.Hour), 20))
	require.NoError(t, db.AppendValuation(historyEntry("newer", "prop-1", time.Hour), 20))

	entries, err := db.RecentValuations("prop-1", 20)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "newer", entries[0].ID)
	assert.Equal(t, "older", entries[1].ID)
}

func TestAppendValuation_TruncatesOldestBeyondCap(t *testing.T) {
	db := testDatabase(t)

	for i := 0; i < 5; i++ {
		entry := historyEntry("", "prop-1", time.Duration(10-i)*time.Hour)
		entry.ID = string(rune('a' + i))
		require.NoError(t, db.AppendValuation(entry, 3))
	}

	entries, err := db.RecentValuations("prop-1", 20)

	require.NoError(t, err)
	require.Len(t, entries, 3)
	// The newest three survive, oldest first dropped.
	assert.Equal(t, "e", entries[0].ID)
	assert.Equal(t, "d", entries[1].ID)
	assert.Equal(t, "c", entries[2].ID)
}

func TestAppendValuation_CapIsPerProperty(t *testing.T) {
	db := testDatabase(t)

	require.NoError(t, db.AppendValuation(historyEntry("p1-a", "prop-1", 2*time.Hour), 1))
	require.NoError(t, db.AppendValuation(historyEntry("p2-a", "prop-2", 2*time.Hour), 1))
	require.NoError(t, db.AppendValuation(historyEntry("p1-b", "prop-1", time.Hour), 1))

	p1, err := db.RecentValuations("prop-1", 20)
	require.NoError(t, err)
	require.Len(t, p1, 1)
	assert.Equal(t, "p1-b", p1[0].ID)

	p2, err := db.RecentValuations("prop-2", 20)
	require.NoError(t, err)
	require.Len(t, p2, 1)
	assert.Equal(t, "p2-a", p2[0].ID)
}

func TestRecentValuations_Limit(t *testing.T) {
	db := testDatabase(t)

	for i := 0; i < 4; i++ {
		entry := historyEntry("", "prop-1", time.Duration(10-i)*time.Hour)
		entry.ID = string(rune('a' + i))
		require.NoError(t, db.AppendValuation(entry, 20))
	}

	entries, err := db.RecentValuations("prop-1", 2)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "d", entries[0].ID)
}
