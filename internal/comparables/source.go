package comparables

import (
	"context"
	"strings"

	"propval/server/internal/models"
)

// FetchResult is what a Source returns for one area. Upstream failures never
// surface as errors; they resolve to an empty comparable list plus a
// diagnostic string for operator visibility.
type FetchResult struct {
	Comparables []models.SoldComparable
	SourceURL   string
	Diagnostic  string
}

// Source retrieves sold-property records for a normalized area. It is the
// boundary to the external sold-listings world: implementations may scrape a
// listings site live or answer from a time-bounded cache, and callers must
// not care which.
type Source interface {
	Fetch(ctx context.Context, loc models.NormalizedLocation, propertyType string) (FetchResult, error)
}

// propertyTypeTokens maps human property-type labels to the listing site's
// filter tokens.
var propertyTypeTokens = map[string]string{
	"house":          "houses",
	"unit":           "units",
	"apartment":      "apartments",
	"townhouse":      "townhouses",
	"villa":          "villas",
	"land":           "land",
	"acreage":        "acreage",
	"rural":          "rural",
	"rural property": "rural",
	"block of units": "block-of-units",
}

// PropertyTypeToken resolves a property-type label to the external source's
// filter token. Unknown labels fall back to a slug of the input.
func PropertyTypeToken(label string) string {
	normalized := strings.ToLower(strings.TrimSpace(label))
	if token, ok := propertyTypeTokens[normalized]; ok {
		return token
	}
	return strings.ReplaceAll(normalized, " ", "-")
}
