package comparables

import (
	"context"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"

	"propval/server/internal/database"
	"propval/server/internal/models"
)

// CacheStore is the persistence capability the cached source depends on.
// *database.Database satisfies it; tests inject fakes.
type CacheStore interface {
	GetCachedSales(loc models.NormalizedLocation, propertyType string, ttl time.Duration) (database.CachedSales, error)
	PutCachedSales(loc models.NormalizedLocation, propertyType string, sales []models.SoldComparable, sourceURL string) error
}

// Geocoder resolves an address to coordinates, or nil when unknown.
type Geocoder interface {
	Geocode(address string) (*orb.Point, error)
}

// CachedSource answers area fetches from a time-bounded cache and falls back
// to the wrapped live source on a miss. Cache hits get their missing
// coordinates backfilled and written back so geocoding cost is paid once per
// comparable, not once per valuation.
type CachedSource struct {
	live     Source
	store    CacheStore
	geocoder Geocoder
	ttl      time.Duration
	logger   *logrus.Logger
}

func NewCachedSource(live Source, store CacheStore, geocoder Geocoder, ttl time.Duration, logger *logrus.Logger) *CachedSource {
	return &CachedSource{
		live:     live,
		store:    store,
		geocoder: geocoder,
		ttl:      ttl,
		logger:   logger,
	}
}

func (s *CachedSource) Fetch(ctx context.Context, loc models.NormalizedLocation, propertyType string) (FetchResult, error) {
	if loc.Suburb != "" {
		cached, err := s.store.GetCachedSales(loc, propertyType, s.ttl)
		if err != nil {
			s.logger.WithError(err).Warn("Comparable cache unavailable, falling back to live fetch")
		} else if cached.Cached {
			s.logger.WithFields(logrus.Fields{
				"cache_key": cached.CacheKey,
				"count":     len(cached.Sales),
			}).Info("Serving comparables from cache")

			if s.backfillCoordinates(ctx, cached.Sales) {
				if err := s.store.PutCachedSales(loc, propertyType, cached.Sales, cached.ScrapedURL); err != nil {
					s.logger.WithError(err).Warn("Failed to write back geocoded comparables")
				}
			}
			return FetchResult{Comparables: cached.Sales, SourceURL: cached.ScrapedURL}, nil
		}
	}

	result, err := s.live.Fetch(ctx, loc, propertyType)
	if err != nil {
		return result, err
	}

	if len(result.Comparables) > 0 {
		if err := s.store.PutCachedSales(loc, propertyType, result.Comparables, result.SourceURL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache comparables")
		}
	}
	return result, nil
}

// backfillCoordinates geocodes comparables missing coordinates, one goroutine
// per comparable. Lookups are independent; a failed lookup leaves the
// comparable without coordinates rather than failing the fetch. Reports
// whether anything changed.
func (s *CachedSource) backfillCoordinates(ctx context.Context, sales []models.SoldComparable) bool {
	if s.geocoder == nil {
		return false
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	updated := false

	for i := range sales {
		if sales[i].Coordinates != nil || sales[i].Address == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(comp *models.SoldComparable) {
			defer wg.Done()
			point, err := s.geocoder.Geocode(comp.Address)
			if err != nil || point == nil {
				return
			}
			comp.Coordinates = point
			mu.Lock()
			updated = true
			mu.Unlock()
		}(&sales[i])
	}

	wg.Wait()
	return updated
}
