package models

import (
	"time"

	"github.com/paulmach/orb"
)

// Property is a snapshot of the subject property as held by the external
// property store. The valuation core only reads it.
type Property struct {
	ID           string   `json:"id"`
	Location     string   `json:"location"`
	PropertyType string   `json:"property_type"`
	Beds         int      `json:"beds"`
	Baths        int      `json:"baths"`
	Carpark      *int     `json:"carpark"`
	LandArea     *float64 `json:"land_area"`

	RPDataReport     string `json:"rp_data_report,omitempty"`
	AdditionalReport string `json:"additional_report,omitempty"`

	NeighbouringSuburb   string `json:"neighbouring_suburb,omitempty"`
	NeighbouringState    string `json:"neighbouring_state,omitempty"`
	NeighbouringPostcode string `json:"neighbouring_postcode,omitempty"`
}

// NormalizedLocation is the canonical lookup key derived from a free-text
// address. Suburb is lowercase and hyphen-joined, State is a lowercase
// abbreviation, Postcode is nil when the address carries none.
type NormalizedLocation struct {
	Suburb   string  `json:"suburb"`
	State    string  `json:"state"`
	Postcode *string `json:"postcode"`
}

// SoldComparable is one recently sold property used as pricing evidence.
// Optional fields are nil when the upstream listing omits them; zero is a
// valid value for car spaces, so Cars is a pointer rather than an int.
type SoldComparable struct {
	ID              string     `json:"id"`
	Address         string     `json:"address"`
	Price           int        `json:"price"`
	Beds            *int       `json:"beds"`
	Baths           *int       `json:"baths"`
	Cars            *int       `json:"cars"`
	LandArea        *float64   `json:"land_area"`
	PropertyType    string     `json:"property_type"`
	SoldDate        string     `json:"sold_date"`
	SoldDateRaw     *time.Time `json:"sold_date_raw"`
	Source          string     `json:"source"`
	SimilarityScore float64    `json:"similarity_score"`
	SourceArea      string     `json:"source_area"`
	IsNeighbouring  bool       `json:"is_neighbouring"`
	Coordinates     *orb.Point `json:"coordinates,omitempty"`
}

// PriceStatistics summarises prices over a comparable set. All fields are nil
// when no comparable carries a positive price.
type PriceStatistics struct {
	Min    *int `json:"min"`
	Max    *int `json:"max"`
	Avg    *int `json:"avg"`
	Median *int `json:"median"`
}

// ConfidenceFactor is one weighted component of a confidence score.
type ConfidenceFactor struct {
	Score       float64 `json:"score"`
	Weight      int     `json:"weight"`
	Description string  `json:"description"`
}

// ConfidenceScoring quantifies how trustworthy a valuation estimate is.
// Factor weights always sum to 100 and OverallScore is their
// weight-normalized average.
type ConfidenceScoring struct {
	OverallScore    int                         `json:"overall_score"`
	Level           string                      `json:"level"`
	Factors         map[string]ConfidenceFactor `json:"factors"`
	Recommendations []string                    `json:"recommendations"`
}

// Confidence levels.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// ValuationHistoryEntry is one append-only record of a completed valuation.
// The store keeps only the most recent entries, newest first.
type ValuationHistoryEntry struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	PropertyID       string    `json:"property_id" gorm:"index"`
	Date             time.Time `json:"date"`
	EstimatedValue   int       `json:"estimated_value"`
	ValueLow         int       `json:"value_low"`
	ValueHigh        int       `json:"value_high"`
	ConfidenceScore  int       `json:"confidence_score"`
	ConfidenceLevel  string    `json:"confidence_level"`
	DataSource       string    `json:"data_source"`
	ComparablesCount int       `json:"comparables_count"`
	Notes            string    `json:"notes"`
}

// ComparablesData carries both orderings of the selected comparable set.
// Selected is similarity-ranked and feeds statistics and confidence scoring;
// Display is recency-ordered across primary and neighbouring areas and is the
// list surfaced for human review. The two orderings are intentionally
// distinct.
type ComparablesData struct {
	Selected   []SoldComparable `json:"comparable_sold"`
	Display    []SoldComparable `json:"comparable_display"`
	Statistics PriceStatistics  `json:"statistics"`
	SourceURL  string           `json:"source_url"`
	Diagnostic string           `json:"diagnostic,omitempty"`
}

// ValuationResult is the full outcome of one valuation request.
type ValuationResult struct {
	EstimatedValue int               `json:"estimated_value"`
	ValueLow       int               `json:"value_low"`
	ValueHigh      int               `json:"value_high"`
	Confidence     ConfidenceScoring `json:"confidence_scoring"`
	Comparables    ComparablesData   `json:"comparables_data"`
	DataSource     string            `json:"data_source"`
}
