package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"propval/server/internal/models"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestScore_ExactMatch(t *testing.T) {
	subject := models.Property{Beds: 3, Baths: 2}
	candidate := models.SoldComparable{Beds: intPtr(3), Baths: intPtr(2)}

	assert.Equal(t, 100.0, Score(subject, candidate))
}

func TestScore_BedAndBathPenalties(t *testing.T) {
	subject := models.Property{Beds: 3, Baths: 2}

	oneBedOff := models.SoldComparable{Beds: intPtr(4), Baths: intPtr(2)}
	assert.Equal(t, 85.0, Score(subject, oneBedOff))

	oneBathOff := models.SoldComparable{Beds: intPtr(3), Baths: intPtr(3)}
	assert.Equal(t, 90.0, Score(subject, oneBathOff))
}

func TestScore_DefaultsWhenSubjectIncomplete(t *testing.T) {
	// A subject with no bed/bath profile is scored as 3 bed, 2 bath.
	subject := models.Property{}
	candidate := models.SoldComparable{Beds: intPtr(3), Baths: intPtr(2)}

	assert.Equal(t, 100.0, Score(subject, candidate))
}

func TestScore_LandAreaPenaltyIsCapped(t *testing.T) {
	subject := models.Property{Beds: 3, Baths: 2, LandArea: floatPtr(500)}

	// 10x the subject's land area; the raw penalty would far exceed the cap.
	candidate := models.SoldComparable{
		Beds:     intPtr(3),
		Baths:    intPtr(2),
		LandArea: floatPtr(5000),
	}

	assert.Equal(t, 70.0, Score(subject, candidate))
}

func TestScore_MonotonicInBedDifference(t *testing.T) {
	subject := models.Property{Beds: 3, Baths: 2}

	prev := 101.0
	for beds := 3; beds <= 9; beds++ {
		score := Score(subject, models.SoldComparable{Beds: intPtr(beds), Baths: intPtr(2)})
		assert.LessOrEqual(t, score, prev, "beds=%d", beds)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 100.0)
		prev = score
	}
}

func TestScore_MonotonicInLandAreaDifference(t *testing.T) {
	subject := models.Property{Beds: 3, Baths: 2, LandArea: floatPtr(600)}

	prev := 101.0
	for _, area := range []float64{600, 550, 450, 300, 100} {
		score := Score(subject, models.SoldComparable{
			Beds:     intPtr(3),
			Baths:    intPtr(2),
			LandArea: floatPtr(area),
		})
		assert.LessOrEqual(t, score, prev, "area=%.0f", area)
		prev = score
	}
}

func TestScore_NeverNegative(t *testing.T) {
	subject := models.Property{Beds: 1, Baths: 1, LandArea: floatPtr(100)}
	candidate := models.SoldComparable{
		Beds:     intPtr(9),
		Baths:    intPtr(8),
		LandArea: floatPtr(10000),
	}

	assert.Equal(t, 0.0, Score(subject, candidate))
}

func TestScore_MissingCandidateFieldsNotPenalized(t *testing.T) {
	subject := models.Property{Beds: 3, Baths: 2, LandArea: floatPtr(500)}
	candidate := models.SoldComparable{}

	assert.Equal(t, 100.0, Score(subject, candidate))
}
