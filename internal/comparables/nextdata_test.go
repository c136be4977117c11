package comparables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNextData = `{
	"props": {
		"pageProps": {
			"componentProps": {
				"listingsMap": {
					"2019001": {
						"id": 2019001,
						"listingType": "listing",
						"listingModel": {
							"url": "/12-smith-street-bondi-nsw-2026-2019001",
							"price": "$1,250,000",
							"address": {
								"street": "12 Smith Street",
								"suburb": "Bondi",
								"state": "nsw",
								"postcode": "2026"
							},
							"features": {
								"beds": 3,
								"baths": 2,
								"carSpaces": 0,
								"landSize": 320.5,
								"propertyType": "House"
							},
							"tags": {
								"tagText": "Sold 14 Jun 2025",
								"tagClassName": "is-sold"
							}
						}
					},
					"2019002": {
						"id": 2019002,
						"listingType": "listing",
						"listingModel": {
							"url": "/4-ocean-avenue-bondi-nsw-2026-2019002",
							"price": "Contact agent",
							"displayPrice": "$980,000",
							"address": {
								"street": "4 Ocean Avenue",
								"suburb": "Bondi",
								"state": "nsw",
								"postcode": "2026"
							},
							"features": {
								"beds": 2,
								"baths": 1
							},
							"tags": {
								"tagText": "Sold"
							}
						}
					},
					"2019003": {
						"id": 2019003,
						"listingType": "listing",
						"listingModel": {
							"url": "/parking-space-2019003",
							"price": "$55,000",
							"address": {
								"street": "Car space, 1 Hall Street",
								"suburb": "Bondi",
								"state": "nsw",
								"postcode": "2026"
							},
							"features": {},
							"tags": {"tagText": "Sold 1 May 2025"}
						}
					}
				}
			}
		}
	}
}`

func TestParseSoldListings(t *testing.T) {
	comps, err := parseSoldListings([]byte(sampleNextData), 100000, "bondi, NSW")

	require.NoError(t, err)
	// The $55,000 car space is junk-filtered.
	require.Len(t, comps, 2)

	first := comps[0]
	assert.Equal(t, "2019001", first.ID)
	assert.Equal(t, "12 Smith Street, Bondi, NSW 2026", first.Address)
	assert.Equal(t, 1250000, first.Price)
	require.NotNil(t, first.Beds)
	assert.Equal(t, 3, *first.Beds)
	require.NotNil(t, first.Cars)
	assert.Equal(t, 0, *first.Cars, "zero car spaces is a real value")
	require.NotNil(t, first.LandArea)
	assert.Equal(t, 320.5, *first.LandArea)
	assert.Equal(t, "House", first.PropertyType)
	assert.Equal(t, "14 Jun 2025", first.SoldDate)
	require.NotNil(t, first.SoldDateRaw)
	assert.Equal(t, "bondi, NSW", first.SourceArea)
	assert.Equal(t, soldSource, first.Source)

	second := comps[1]
	assert.Equal(t, 980000, second.Price, "price falls back to displayPrice")
	assert.Nil(t, second.Cars, "missing car spaces stays nil, not zero")
	assert.Nil(t, second.LandArea)
	assert.Equal(t, "Recently", second.SoldDate, "undated sale displays as Recently")
	assert.Nil(t, second.SoldDateRaw)
}

func TestParseSoldListings_Deterministic(t *testing.T) {
	first, err := parseSoldListings([]byte(sampleNextData), 100000, "bondi, NSW")
	require.NoError(t, err)
	second, err := parseSoldListings([]byte(sampleNextData), 100000, "bondi, NSW")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParseSoldListings_NoPriceFieldsDropped(t *testing.T) {
	// A listing with no price anywhere must be dropped; the digits in its
	// sold-date tag are not a price.
	const doc = `{
		"props": {"pageProps": {"componentProps": {"listingsMap": {
			"2019004": {
				"id": 2019004,
				"listingType": "listing",
				"listingModel": {
					"url": "/9-hill-road-bondi-nsw-2026-2019004",
					"price": "",
					"address": {"street": "9 Hill Road", "suburb": "Bondi", "state": "nsw", "postcode": "2026"},
					"features": {"beds": 3, "baths": 2},
					"tags": {"tagText": "Sold 14 Jun 2025"}
				}
			}
		}}}}
	}`

	comps, err := parseSoldListings([]byte(doc), 100000, "bondi, NSW")

	require.NoError(t, err)
	assert.Empty(t, comps)
}

func TestParseSoldListings_MalformedDocument(t *testing.T) {
	_, err := parseSoldListings([]byte("<html>blocked</html>"), 100000, "bondi, NSW")

	assert.Error(t, err)
}

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name     string
		fields   []string
		expected int
	}{
		{"formatted", []string{"$1,250,000"}, 1250000},
		{"fallback to second field", []string{"Contact agent", "$980,000"}, 980000},
		{"embedded in text", []string{"Sold for $2,100,000 at auction"}, 2100000},
		{"short runs rejected", []string{"$55,000"}, 0},
		{"no digits", []string{"Price withheld"}, 0},
		{"empty", nil, 0},
		// Digits separated by whitespace or letters must not concatenate
		// into a fake price run.
		{"date text is not a price", []string{"", "", "Sold 14 Jun 2025"}, 0},
		{"price range takes first value", []string{"Price guide $800,000 - $850,000"}, 800000},
		{"auction date alongside price", []string{"Auction 14 Jun 2025, sold $1,100,000"}, 1100000},
		{"overlong run rejected", []string{"$111,111,111,111,111,111,111"}, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, extractPrice(tt.fields...), tt.name)
	}
}

func TestPropertyTypeToken(t *testing.T) {
	tests := []struct {
		label    string
		expected string
	}{
		{"house", "houses"},
		{"House", "houses"},
		{"unit", "units"},
		{"apartment", "apartments"},
		{"townhouse", "townhouses"},
		{"villa", "villas"},
		{"land", "land"},
		{"acreage", "acreage"},
		{"rural", "rural"},
		{"Rural Property", "rural"},
		{"Block of Units", "block-of-units"},
		{"Converted Warehouse", "converted-warehouse"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, PropertyTypeToken(tt.label), tt.label)
	}
}
