package location

import (
	"regexp"
	"strings"

	"propval/server/internal/models"
)

var (
	// postcodeRegexp captures an Australian 4-digit postcode
	postcodeRegexp = regexp.MustCompile(`\b(\d{4})\b`)
	// streetNumberRegexp captures a leading street/unit number
	streetNumberRegexp = regexp.MustCompile(`^\s*\d+[a-zA-Z]?(/\d+[a-zA-Z]?)?\s+`)
	// residueRegexp captures leading digits and hyphens left over after
	// state/postcode stripping
	residueRegexp    = regexp.MustCompile(`^[\d-]+`)
	whitespaceRegexp = regexp.MustCompile(`\s+`)
)

// states is tested in order; the first whole-word match wins and no attempt
// is made to disambiguate addresses mentioning several.
var states = []string{"nsw", "vic", "qld", "wa", "sa", "tas", "act", "nt"}

// streetTypes are the street keywords recognised when an address has no
// comma-separated suburb segment. The keyword and everything after it is
// dropped.
var streetTypes = []string{
	"street", "road", "avenue", "drive", "court", "place", "lane",
	"crescent", "way", "boulevard",
	"st", "rd", "ave", "av", "dr", "ct", "pl", "ln", "cres", "blvd",
}

var (
	stateRegexps      map[string]*regexp.Regexp
	streetTypeRegexps map[string]*regexp.Regexp
)

func init() {
	stateRegexps = make(map[string]*regexp.Regexp, len(states))
	for _, s := range states {
		stateRegexps[s] = regexp.MustCompile(`(?i)\b` + s + `\b`)
	}
	streetTypeRegexps = make(map[string]*regexp.Regexp, len(streetTypes))
	for _, t := range streetTypes {
		streetTypeRegexps[t] = regexp.MustCompile(`(?i)\b` + t + `\b.*$`)
	}
}

// Parser normalizes free-text property addresses into canonical
// (suburb, state, postcode) lookup keys. Parsing is deterministic, does no
// I/O and never fails; unknown parts fall back to defaults.
type Parser struct {
	defaultState string
}

func NewParser(defaultState string) *Parser {
	if defaultState == "" {
		defaultState = "qld"
	}
	return &Parser{defaultState: strings.ToLower(defaultState)}
}

// Parse derives the canonical location key for an address. An address with no
// discernible suburb text yields an empty suburb; callers must treat that as
// "no comparables available" rather than an error.
func (p *Parser) Parse(address string) models.NormalizedLocation {
	loc := models.NormalizedLocation{State: p.defaultState}

	if match := postcodeRegexp.FindString(address); match != "" {
		postcode := match
		loc.Postcode = &postcode
	}

	for _, s := range states {
		if stateRegexps[s].MatchString(address) {
			loc.State = s
			break
		}
	}

	loc.Suburb = p.extractSuburb(address)
	return loc
}

func (p *Parser) extractSuburb(address string) string {
	segment := address
	if parts := strings.Split(address, ","); len(parts) >= 2 {
		segment = parts[1]
	} else {
		segment = streetNumberRegexp.ReplaceAllString(segment, "")
		for _, t := range streetTypes {
			if streetTypeRegexps[t].MatchString(segment) {
				segment = streetTypeRegexps[t].ReplaceAllString(segment, "")
				break
			}
		}
	}

	for _, s := range states {
		segment = stateRegexps[s].ReplaceAllString(segment, " ")
	}
	segment = postcodeRegexp.ReplaceAllString(segment, " ")

	segment = strings.ToLower(strings.TrimSpace(segment))
	segment = whitespaceRegexp.ReplaceAllString(segment, "-")
	segment = residueRegexp.ReplaceAllString(segment, "")
	return strings.Trim(segment, "-")
}
