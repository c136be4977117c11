package comparables

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"propval/server/internal/models"
)

const soldSource = "domain.com.au"

// Display text used when a listing carries no sold date.
const recentlySold = "Recently"

var (
	// priceFormatRegexp strips currency symbols and separators. Whitespace
	// and letters are kept so unrelated numbers stay delimited and cannot
	// concatenate into a fake price run.
	priceFormatRegexp = regexp.MustCompile(`[$,.]`)
	// priceRunRegexp requires at least six consecutive digits; shorter runs
	// are unit numbers, street numbers or other junk
	priceRunRegexp = regexp.MustCompile(`\d{6,}`)
	// soldDateRegexp captures dates like "12 Apr 2025" out of tag text
	soldDateRegexp = regexp.MustCompile(`\d{1,2} [A-Z][a-z]{2} \d{4}`)
)

// nextDataPayload mirrors the slice of the embedded __NEXT_DATA__ document we
// care about. Anything else in the payload is ignored.
type nextDataPayload struct {
	Props struct {
		PageProps struct {
			ComponentProps struct {
				ListingsMap map[string]nextDataListing `json:"listingsMap"`
			} `json:"componentProps"`
		} `json:"pageProps"`
	} `json:"props"`
}

type nextDataListing struct {
	ID           json.Number          `json:"id"`
	ListingType  string               `json:"listingType"`
	ListingModel nextDataListingModel `json:"listingModel"`
}

type nextDataListingModel struct {
	URL          string           `json:"url"`
	Price        string           `json:"price"`
	DisplayPrice string           `json:"displayPrice"`
	Address      nextDataAddress  `json:"address"`
	Features     nextDataFeatures `json:"features"`
	Tags         nextDataTags     `json:"tags"`
}

type nextDataAddress struct {
	Street   string `json:"street"`
	Suburb   string `json:"suburb"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
}

type nextDataFeatures struct {
	Beds      *int `json:"beds"`
	Baths     *int `json:"baths"`
	CarSpaces *int `json:"carSpaces"`

	// Land size appears under different keys depending on listing vintage;
	// they are tried in this order.
	LandSize     *float64 `json:"landSize"`
	LandArea     *float64 `json:"landArea"`
	Land         *float64 `json:"land"`
	PropertyType string   `json:"propertyType"`
}

type nextDataTags struct {
	TagText      string `json:"tagText"`
	TagClassName string `json:"tagClassName"`
}

// parseSoldListings turns a raw __NEXT_DATA__ document into sold comparables.
// Listings whose price cannot be resolved, or resolves at or below minPrice,
// are dropped. Missing optional fields stay nil; zero car spaces is a real
// value and is kept.
func parseSoldListings(raw []byte, minPrice int, sourceArea string) ([]models.SoldComparable, error) {
	var payload nextDataPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode __NEXT_DATA__: %w", err)
	}

	listings := payload.Props.PageProps.ComponentProps.ListingsMap
	if len(listings) == 0 {
		return nil, nil
	}

	// Map iteration order is random; sort keys so repeated parses of the
	// same document produce the same comparable order.
	keys := make([]string, 0, len(listings))
	for k := range listings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	comparables := make([]models.SoldComparable, 0, len(listings))
	for _, k := range keys {
		listing := listings[k]
		model := listing.ListingModel

		price := extractPrice(model.Price, model.DisplayPrice, model.Tags.TagText)
		if price <= minPrice {
			continue
		}

		id := listing.ID.String()
		if id == "" {
			id = uuid.NewString()
		}

		soldDisplay, soldRaw := extractSoldDate(model.Tags.TagText)

		comparables = append(comparables, models.SoldComparable{
			ID:           id,
			Address:      formatAddress(model.Address),
			Price:        price,
			Beds:         model.Features.Beds,
			Baths:        model.Features.Baths,
			Cars:         model.Features.CarSpaces,
			LandArea:     firstLandArea(model.Features),
			PropertyType: model.Features.PropertyType,
			SoldDate:     soldDisplay,
			SoldDateRaw:  soldRaw,
			Source:       soldSource,
			SourceArea:   sourceArea,
		})
	}

	return comparables, nil
}

// extractPrice resolves a sale price from the first field that contains a run
// of at least six digits once currency and formatting characters are
// stripped. Only `$`, commas and dots are removed, so numbers separated by
// whitespace or text remain distinct; a price range like
// "$800,000 - $850,000" resolves to its first value. Returns 0 when no field
// resolves.
func extractPrice(fields ...string) int {
	for _, field := range fields {
		if field == "" {
			continue
		}
		cleaned := priceFormatRegexp.ReplaceAllString(field, "")
		run := priceRunRegexp.FindString(cleaned)
		if run == "" {
			continue
		}
		price, err := strconv.Atoi(run)
		if err != nil {
			// Run too long for int, not a plausible price.
			continue
		}
		return price
	}
	return 0
}

func firstLandArea(f nextDataFeatures) *float64 {
	for _, candidate := range []*float64{f.LandSize, f.LandArea, f.Land} {
		if candidate != nil && *candidate > 0 {
			return candidate
		}
	}
	return nil
}

func extractSoldDate(tagText string) (string, *time.Time) {
	match := soldDateRegexp.FindString(tagText)
	if match == "" {
		return recentlySold, nil
	}
	ts, err := time.Parse("2 Jan 2006", match)
	if err != nil {
		return recentlySold, nil
	}
	return match, &ts
}

func formatAddress(a nextDataAddress) string {
	parts := make([]string, 0, 3)
	if a.Street != "" {
		parts = append(parts, a.Street)
	}
	if a.Suburb != "" {
		parts = append(parts, a.Suburb)
	}
	region := strings.TrimSpace(strings.ToUpper(a.State) + " " + a.Postcode)
	if region != "" {
		parts = append(parts, region)
	}
	return strings.Join(parts, ", ")
}
