package comparables

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
	"github.com/sirupsen/logrus"

	"propval/server/internal/models"
)

// LiveSource scrapes sold listings from the listings site and parses the
// embedded __NEXT_DATA__ block out of the returned document. Scraping an
// embedded data block is inherently brittle; everything specific to the
// document layout stays inside this file so the strategy can be swapped
// without touching scoring or statistics.
type LiveSource struct {
	collector *colly.Collector
	baseURL   string
	proxyURL  string
	minPrice  int
	logger    *logrus.Logger
}

func NewLiveSource(baseURL, proxyURL string, minPrice int, logger *logrus.Logger) *LiveSource {
	c := colly.NewCollector()
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		c.AllowedDomains = []string{u.Host}
	}

	// Rotating user agents and referers keep the scraper from looking like
	// a single misbehaving client.
	extensions.RandomUserAgent(c)
	extensions.Referer(c)

	if proxyURL != "" {
		if err := c.SetProxy(proxyURL); err != nil {
			logger.WithError(err).Warn("Failed to configure listings proxy, continuing without it")
			proxyURL = ""
		}
	}

	return &LiveSource{
		collector: c,
		baseURL:   strings.TrimRight(baseURL, "/"),
		proxyURL:  proxyURL,
		minPrice:  minPrice,
		logger:    logger,
	}
}

// Fetch retrieves sold comparables for one area. Network failures, blocked
// responses and missing data blocks all resolve to an empty list plus a
// diagnostic; a valuation is never aborted from here.
func (s *LiveSource) Fetch(ctx context.Context, loc models.NormalizedLocation, propertyType string) (FetchResult, error) {
	if loc.Suburb == "" {
		return FetchResult{Diagnostic: "address yielded no suburb, skipping sold-listings lookup"}, nil
	}
	if err := ctx.Err(); err != nil {
		return FetchResult{Diagnostic: fmt.Sprintf("fetch cancelled: %v", err)}, nil
	}

	sourceURL := s.listingsURL(loc, propertyType)
	area := areaLabel(loc)

	var (
		comparables []models.SoldComparable
		parseErr    error
		visitStatus int
		blockFound  bool
	)

	collector := s.collector.Clone()
	collector.OnHTML("script#__NEXT_DATA__", func(e *colly.HTMLElement) {
		blockFound = true
		comparables, parseErr = parseSoldListings([]byte(e.Text), s.minPrice, area)
	})
	collector.OnError(func(r *colly.Response, err error) {
		visitStatus = r.StatusCode
		parseErr = err
	})

	if err := collector.Visit(sourceURL); err != nil && parseErr == nil {
		parseErr = err
	}
	collector.Wait()

	result := FetchResult{Comparables: comparables, SourceURL: sourceURL}
	switch {
	case parseErr != nil:
		result.Comparables = nil
		result.Diagnostic = s.diagnose(fmt.Sprintf("sold-listings fetch failed (status %d): %v", visitStatus, parseErr))
	case !blockFound:
		result.Diagnostic = s.diagnose("no __NEXT_DATA__ block in sold-listings response, page layout may have changed or request was blocked")
	}

	if result.Diagnostic != "" {
		s.logger.WithFields(logrus.Fields{
			"area": area,
			"url":  sourceURL,
		}).Warn(result.Diagnostic)
	} else {
		s.logger.WithFields(logrus.Fields{
			"area":  area,
			"count": len(result.Comparables),
		}).Info("Fetched sold comparables")
	}

	return result, nil
}

func (s *LiveSource) listingsURL(loc models.NormalizedLocation, propertyType string) string {
	slug := loc.Suburb + "-" + loc.State
	if loc.Postcode != nil {
		slug += "-" + *loc.Postcode
	}
	u := fmt.Sprintf("%s/sold-listings/%s/", s.baseURL, slug)
	if propertyType != "" {
		u += "?ptype=" + url.QueryEscape(propertyType)
	}
	return u
}

// diagnose annotates a failure message with whether the proxy indirection was
// in play. The proxy never changes control flow, only the message.
func (s *LiveSource) diagnose(msg string) string {
	if s.proxyURL != "" {
		return msg + " (via proxy)"
	}
	return msg + " (direct, no proxy configured)"
}

func areaLabel(loc models.NormalizedLocation) string {
	if loc.Suburb == "" {
		return loc.State
	}
	return loc.Suburb + ", " + strings.ToUpper(loc.State)
}
