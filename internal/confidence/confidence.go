package confidence

import (
	"math"

	"propval/server/internal/models"
)

// Factor names.
const (
	FactorComparablesCount   = "comparables_count"
	FactorDataRecency        = "data_recency"
	FactorLocationMatch      = "location_match"
	FactorPropertySimilarity = "property_similarity"
	FactorPriceConsistency   = "price_consistency"
)

// Factor weights. These always sum to 100.
const (
	weightComparablesCount   = 25
	weightDataRecency        = 20
	weightLocationMatch      = 20
	weightPropertySimilarity = 20
	weightPriceConsistency   = 15
)

// data_recency and location_match are fixed heuristics rather than values
// computed from sale dates or geographic distance. This is a known
// approximation carried over from the product design; do not replace the
// constants with real computation without a product decision.
const (
	dataRecencyScore   = 80.0
	locationMatchScore = 85.0
)

// Level thresholds on the overall score.
const (
	highThreshold   = 70
	mediumThreshold = 45
)

// factorResult is one scored factor plus any recommendations its trigger
// produced. New triggers can add recommendations without touching the
// scoring contract.
type factorResult struct {
	factor          models.ConfidenceFactor
	recommendations []string
}

// Score combines comparable count, similarity, price consistency and two
// fixed heuristic factors into a weighted confidence rating for a valuation.
func Score(comparables []models.SoldComparable, subject models.Property) models.ConfidenceScoring {
	results := map[string]factorResult{
		FactorComparablesCount:   scoreComparablesCount(comparables),
		FactorDataRecency:        fixedFactor(dataRecencyScore, weightDataRecency, "Assumed recency of sold listings data"),
		FactorLocationMatch:      fixedFactor(locationMatchScore, weightLocationMatch, "Comparables drawn from the subject's suburb"),
		FactorPropertySimilarity: scoreSimilarity(comparables),
		FactorPriceConsistency:   scorePriceConsistency(comparables),
	}

	weightedSum := 0.0
	totalWeight := 0
	factors := make(map[string]models.ConfidenceFactor, len(results))
	var recommendations []string

	// Iterate in a fixed order so recommendation ordering is stable.
	for _, name := range []string{
		FactorComparablesCount,
		FactorDataRecency,
		FactorLocationMatch,
		FactorPropertySimilarity,
		FactorPriceConsistency,
	} {
		r := results[name]
		factors[name] = r.factor
		weightedSum += r.factor.Score * float64(r.factor.Weight)
		totalWeight += r.factor.Weight
		recommendations = append(recommendations, r.recommendations...)
	}

	overall := int(math.Round(weightedSum / float64(totalWeight)))

	return models.ConfidenceScoring{
		OverallScore:    overall,
		Level:           levelFor(overall),
		Factors:         factors,
		Recommendations: recommendations,
	}
}

func levelFor(overall int) string {
	switch {
	case overall >= highThreshold:
		return models.ConfidenceHigh
	case overall >= mediumThreshold:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

func fixedFactor(score float64, weight int, description string) factorResult {
	return factorResult{
		factor: models.ConfidenceFactor{
			Score:       score,
			Weight:      weight,
			Description: description,
		},
	}
}

func scoreComparablesCount(comparables []models.SoldComparable) factorResult {
	n := len(comparables)

	var score float64
	var recommendations []string
	switch {
	case n == 0:
		score = 10
		recommendations = append(recommendations,
			"Limited comparable sales data available for this area; treat the estimate as indicative only")
	case n <= 2:
		score = 40
	case n <= 4:
		score = 60
	case n <= 7:
		score = 80
	default:
		score = 100
	}

	return factorResult{
		factor: models.ConfidenceFactor{
			Score:       score,
			Weight:      weightComparablesCount,
			Description: "Number of comparable sales found",
		},
		recommendations: recommendations,
	}
}

func scoreSimilarity(comparables []models.SoldComparable) factorResult {
	score := 0.0
	if len(comparables) > 0 {
		sum := 0.0
		for _, c := range comparables {
			sum += c.SimilarityScore
		}
		score = math.Round(sum / float64(len(comparables)))
	}

	return factorResult{
		factor: models.ConfidenceFactor{
			Score:       score,
			Weight:      weightPropertySimilarity,
			Description: "Average similarity of comparables to the subject property",
		},
	}
}

func scorePriceConsistency(comparables []models.SoldComparable) factorResult {
	// The coefficient of variation needs at least two prices to mean
	// anything; below that the factor stays at zero.
	score := 0.0
	if len(comparables) >= 2 {
		min, max, sum := comparables[0].Price, comparables[0].Price, 0
		for _, c := range comparables {
			if c.Price < min {
				min = c.Price
			}
			if c.Price > max {
				max = c.Price
			}
			sum += c.Price
		}
		mean := float64(sum) / float64(len(comparables))
		cv := float64(max-min) / mean * 100

		switch {
		case cv < 20:
			score = 95
		case cv < 40:
			score = 75
		case cv < 60:
			score = 55
		default:
			score = 35
		}
	}

	return factorResult{
		factor: models.ConfidenceFactor{
			Score:       score,
			Weight:      weightPriceConsistency,
			Description: "Spread of comparable sale prices relative to their mean",
		},
	}
}
