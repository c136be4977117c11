package comparables

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"propval/server/internal/models"
	"propval/server/internal/similarity"
)

// DefaultLimit caps how many comparables feed the statistics and confidence
// computation.
const DefaultLimit = 10

// Selection is the outcome of comparable acquisition for a subject property.
//
// Selected and Display deliberately carry different orderings: Selected is
// similarity-ranked and is the set that feeds statistics and confidence;
// Display merges the primary and neighbouring areas sorted by most recent
// sale, which is the list shown for human review. Do not collapse the two.
type Selection struct {
	Selected   []models.SoldComparable
	Display    []models.SoldComparable
	SourceURL  string
	Diagnostic string
}

// Rank scores every candidate against the subject and returns the top limit
// candidates ordered by descending similarity. The sort is stable, so
// re-ranking the same input always yields the same ordering.
func Rank(subject models.Property, candidates []models.SoldComparable, limit int) []models.SoldComparable {
	if limit <= 0 {
		limit = DefaultLimit
	}

	ranked := make([]models.SoldComparable, len(candidates))
	copy(ranked, candidates)
	for i := range ranked {
		ranked[i].SimilarityScore = similarity.Score(subject, ranked[i])
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SimilarityScore > ranked[j].SimilarityScore
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Selector orchestrates comparable acquisition and ranking for the primary
// area and, when configured on the subject, a neighbouring area.
type Selector struct {
	source Source
	limit  int
	logger *logrus.Logger
}

func NewSelector(source Source, limit int, logger *logrus.Logger) *Selector {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Selector{source: source, limit: limit, logger: logger}
}

// Select acquires comparables for both areas concurrently, scores them
// against the subject and produces the dual-ordered selection. Acquisition
// failures degrade to an empty selection with a diagnostic.
func (s *Selector) Select(ctx context.Context, subject models.Property, primary models.NormalizedLocation, neighbouring *models.NormalizedLocation, propertyType string) Selection {
	var (
		wg              sync.WaitGroup
		primaryResult   FetchResult
		neighbourResult FetchResult
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		primaryResult, _ = s.source.Fetch(ctx, primary, propertyType)
	}()

	if neighbouring != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			neighbourResult, _ = s.source.Fetch(ctx, *neighbouring, propertyType)
		}()
	}
	wg.Wait()

	tagArea(primaryResult.Comparables, areaLabel(primary), false)
	combined := primaryResult.Comparables
	if neighbouring != nil {
		tagArea(neighbourResult.Comparables, areaLabel(*neighbouring), true)
		combined = append(combined, neighbourResult.Comparables...)
	}

	selection := Selection{
		Selected:   Rank(subject, combined, s.limit),
		Display:    sortByRecency(combined),
		SourceURL:  primaryResult.SourceURL,
		Diagnostic: joinDiagnostics(primaryResult.Diagnostic, neighbourResult.Diagnostic),
	}

	s.logger.WithFields(logrus.Fields{
		"area":     areaLabel(primary),
		"found":    len(combined),
		"selected": len(selection.Selected),
	}).Info("Selected comparables")

	return selection
}

func tagArea(comparables []models.SoldComparable, area string, neighbouring bool) {
	for i := range comparables {
		comparables[i].SourceArea = area
		comparables[i].IsNeighbouring = neighbouring
	}
}

// sortByRecency orders comparables by most recent sale date, stable, with
// undated sales last. This is the display ordering, not the selection
// ordering.
func sortByRecency(comparables []models.SoldComparable) []models.SoldComparable {
	out := make([]models.SoldComparable, len(comparables))
	copy(out, comparables)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].SoldDateRaw, out[j].SoldDateRaw
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return out
}

func joinDiagnostics(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "; ")
}
