package valuation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"propval/server/internal/comparables"
	"propval/server/internal/confidence"
	"propval/server/internal/location"
	"propval/server/internal/models"
	"propval/server/internal/stats"
)

// Data source labels on valuation results.
const (
	SourceLive   = "domain.com.au"
	SourceNoData = "no_data"
)

var ErrMissingSubject = errors.New("subject property is required")

var whitespaceRegexp = regexp.MustCompile(`\s+`)

// Orchestrator composes location parsing, comparable acquisition, similarity
// ranking, statistics and confidence scoring into one valuation cycle.
type Orchestrator struct {
	parser    *location.Parser
	selector  *comparables.Selector
	valueBand float64
	logger    *logrus.Logger
}

func NewOrchestrator(parser *location.Parser, selector *comparables.Selector, valueBand float64, logger *logrus.Logger) *Orchestrator {
	if valueBand <= 0 {
		valueBand = 0.10
	}
	return &Orchestrator{
		parser:    parser,
		selector:  selector,
		valueBand: valueBand,
		logger:    logger,
	}
}

// Evaluate runs the full valuation pipeline for one subject property. The
// only hard failure is a missing subject; an upstream with no data degrades
// to a zero-comparable result with low confidence.
func (o *Orchestrator) Evaluate(ctx context.Context, subject *models.Property) (*models.ValuationResult, error) {
	if subject == nil {
		return nil, ErrMissingSubject
	}

	primary := o.parser.Parse(subject.Location)
	neighbouring := o.neighbouringLocation(subject, primary)
	typeToken := comparables.PropertyTypeToken(subject.PropertyType)

	o.logger.WithFields(logrus.Fields{
		"suburb":        primary.Suburb,
		"state":         primary.State,
		"property_type": typeToken,
	}).Info("Starting valuation")

	selection := o.selector.Select(ctx, *subject, primary, neighbouring, typeToken)
	statistics := stats.Compute(selection.Selected)
	scoring := confidence.Score(selection.Selected, *subject)

	estimated := 0
	switch {
	case statistics.Median != nil:
		estimated = *statistics.Median
	case statistics.Avg != nil:
		estimated = *statistics.Avg
	}

	dataSource := SourceNoData
	if len(selection.Selected) > 0 {
		dataSource = SourceLive
	}

	result := &models.ValuationResult{
		EstimatedValue: estimated,
		ValueLow:       int(math.Round(float64(estimated) * (1 - o.valueBand))),
		ValueHigh:      int(math.Round(float64(estimated) * (1 + o.valueBand))),
		Confidence:     scoring,
		DataSource:     dataSource,
		Comparables: models.ComparablesData{
			Selected:   selection.Selected,
			Display:    selection.Display,
			Statistics: statistics,
			SourceURL:  selection.SourceURL,
			Diagnostic: selection.Diagnostic,
		},
	}

	o.logger.WithFields(logrus.Fields{
		"estimated_value": estimated,
		"comparables":     len(selection.Selected),
		"confidence":      scoring.Level,
	}).Info("Valuation complete")

	return result, nil
}

// HistoryEntry derives the append-only history record for a completed
// valuation. Persisting it is the caller's job.
func (o *Orchestrator) HistoryEntry(subject *models.Property, result *models.ValuationResult) models.ValuationHistoryEntry {
	return models.ValuationHistoryEntry{
		ID:               uuid.NewString(),
		PropertyID:       subject.ID,
		Date:             time.Now(),
		EstimatedValue:   result.EstimatedValue,
		ValueLow:         result.ValueLow,
		ValueHigh:        result.ValueHigh,
		ConfidenceScore:  result.Confidence.OverallScore,
		ConfidenceLevel:  result.Confidence.Level,
		DataSource:       result.DataSource,
		ComparablesCount: len(result.Comparables.Selected),
		Notes: fmt.Sprintf("Automated valuation from %d comparable sales (%s confidence)",
			len(result.Comparables.Selected), result.Confidence.Level),
	}
}

// neighbouringLocation builds the secondary search area when the subject has
// one configured. State and postcode fall back to the primary area's.
func (o *Orchestrator) neighbouringLocation(subject *models.Property, primary models.NormalizedLocation) *models.NormalizedLocation {
	if strings.TrimSpace(subject.NeighbouringSuburb) == "" {
		return nil
	}

	suburb := strings.ToLower(strings.TrimSpace(subject.NeighbouringSuburb))
	suburb = whitespaceRegexp.ReplaceAllString(suburb, "-")

	state := strings.ToLower(strings.TrimSpace(subject.NeighbouringState))
	if state == "" {
		state = primary.State
	}

	loc := &models.NormalizedLocation{Suburb: suburb, State: state}
	if postcode := strings.TrimSpace(subject.NeighbouringPostcode); postcode != "" {
		loc.Postcode = &postcode
	} else {
		loc.Postcode = primary.Postcode
	}
	return loc
}
