package stats

import (
	"math"
	"sort"

	"propval/server/internal/models"
)

// Compute derives price-range statistics over a comparable set. Comparables
// without a positive price are ignored; if none remain, every field is nil.
//
// The median is the element at index n/2 of the ascending price list. For
// even-sized sets this is the upper-middle value, not an average of the two
// middle values. Keep this exact policy: valuation estimates must reproduce
// byte-for-byte across runs.
func Compute(comparables []models.SoldComparable) models.PriceStatistics {
	prices := make([]int, 0, len(comparables))
	for _, c := range comparables {
		if c.Price > 0 {
			prices = append(prices, c.Price)
		}
	}

	if len(prices) == 0 {
		return models.PriceStatistics{}
	}

	sort.Ints(prices)

	min := prices[0]
	max := prices[len(prices)-1]
	median := prices[len(prices)/2]

	sum := 0
	for _, p := range prices {
		sum += p
	}
	avg := int(math.Round(float64(sum) / float64(len(prices))))

	return models.PriceStatistics{
		Min:    &min,
		Max:    &max,
		Avg:    &avg,
		Median: &median,
	}
}
