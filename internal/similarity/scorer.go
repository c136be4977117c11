package similarity

import (
	"math"

	"propval/server/internal/models"
)

// Defaults assumed when the subject profile is incomplete.
const (
	defaultBeds  = 3
	defaultBaths = 2
)

// Penalty weights. Land-area penalty is capped so a wildly different block
// size cannot dominate the bed/bath profile.
const (
	bedPenalty     = 15.0
	bathPenalty    = 10.0
	landScale      = 50.0
	landPenaltyCap = 30.0
	maxScore       = 100.0
)

// Score rates how comparable a sold property is to the subject's
// bed/bath/land profile. The result is always within [0, 100]; a higher score
// means a closer match.
func Score(subject models.Property, candidate models.SoldComparable) float64 {
	score := maxScore

	beds := subject.Beds
	if beds <= 0 {
		beds = defaultBeds
	}
	baths := subject.Baths
	if baths <= 0 {
		baths = defaultBaths
	}

	if candidate.Beds != nil {
		score -= bedPenalty * math.Abs(float64(beds-*candidate.Beds))
	}
	if candidate.Baths != nil {
		score -= bathPenalty * math.Abs(float64(baths-*candidate.Baths))
	}

	if subject.LandArea != nil && *subject.LandArea > 0 && candidate.LandArea != nil {
		relDiff := math.Abs(*subject.LandArea-*candidate.LandArea) / *subject.LandArea
		penalty := math.Min(relDiff*landScale, landPenaltyCap)
		score -= penalty
	}

	return math.Max(score, 0)
}
