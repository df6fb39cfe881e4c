package hometown

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/courtsidehq/courtside/internal/domain/enrichment"
	"github.com/courtsidehq/courtside/internal/domain/identity"
	"github.com/courtsidehq/courtside/internal/platform/logging"
	"github.com/courtsidehq/courtside/internal/platform/names"
	"github.com/courtsidehq/courtside/internal/platform/resilience"
)

const defaultBasketballRefURL = "https://www.basketball-reference.com"

// BasketballReferenceSource scrapes the stats site's player pages. The
// search endpoint either redirects straight to a player page or returns
// a result list; the first result wins.
type BasketballReferenceSource struct {
	http    *resty.Client
	baseURL string
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

func NewBasketballReferenceSource(cfg SourceConfig) *BasketballReferenceSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBasketballRefURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &BasketballReferenceSource{
		http:    newHTTPClient(cfg),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		breaker: resilience.NewCircuitBreaker("basketball_reference", resilience.DefaultScraperBreakerConfig()),
		logger:  logger,
	}
}

func (s *BasketballReferenceSource) Name() string { return "basketball_reference" }

func (s *BasketballReferenceSource) Lookup(ctx context.Context, hint identity.Hint) (enrichment.Fields, string, error) {
	display := names.Display(hint.Name)
	if display == "" {
		return enrichment.Fields{}, "", fmt.Errorf("player name is required")
	}
	if err := s.breaker.Allow(); err != nil {
		return enrichment.Fields{}, "", err
	}

	fields, sourceURL, err := s.fetchPlayer(ctx, display)
	recordOutcome(s.breaker, err)
	return fields, sourceURL, err
}

func (s *BasketballReferenceSource) fetchPlayer(ctx context.Context, display string) (enrichment.Fields, string, error) {
	resp, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("search", display).
		Get("/search/search.fcgi")
	if err != nil {
		return enrichment.Fields{}, "", fmt.Errorf("search %q: %w", display, err)
	}
	if resp.StatusCode() == 404 {
		return enrichment.Fields{}, "", fmt.Errorf("%w: %q", ErrPlayerNotFound, display)
	}
	if resp.IsError() {
		return enrichment.Fields{}, "", fmt.Errorf("search %q: status=%d", display, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return enrichment.Fields{}, "", fmt.Errorf("parse search result: %w", err)
	}

	sourceURL := resp.RawResponse.Request.URL.String()

	// The search either landed on a player page already or listed
	// candidates to follow.
	if doc.Find("#meta").Length() == 0 {
		href, ok := doc.Find(".search-item-url").First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			link := doc.Find(".search-item-name a").First()
			href, ok = link.Attr("href")
			if !ok || strings.TrimSpace(href) == "" {
				return enrichment.Fields{}, "", fmt.Errorf("%w: %q", ErrPlayerNotFound, display)
			}
		}

		resp, err = s.http.R().SetContext(ctx).Get(href)
		if err != nil {
			return enrichment.Fields{}, "", fmt.Errorf("fetch player page %q: %w", href, err)
		}
		if resp.IsError() {
			return enrichment.Fields{}, "", fmt.Errorf("fetch player page %q: status=%d", href, resp.StatusCode())
		}
		doc, err = goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
		if err != nil {
			return enrichment.Fields{}, "", fmt.Errorf("parse player page: %w", err)
		}
		sourceURL = s.baseURL + href
	}

	fields := parsePlayerMeta(doc)
	if fields.Empty() {
		return enrichment.Fields{}, sourceURL, fmt.Errorf("%w: %q has no biographical data", ErrPlayerNotFound, display)
	}
	return fields, sourceURL, nil
}

// parsePlayerMeta extracts biographical fields from a player page's
// meta block.
func parsePlayerMeta(doc *goquery.Document) enrichment.Fields {
	var fields enrichment.Fields
	meta := doc.Find("#meta")

	if birthplace := cleanText(meta.Find(`span[itemprop="birthPlace"]`).Text()); birthplace != "" {
		birthplace = strings.TrimPrefix(birthplace, "in ")
		if city, state, ok := splitCityState(birthplace); ok {
			fields.HometownCity = &city
			fields.HometownState = &state
		}
	}

	meta.Find("p").Each(func(_ int, p *goquery.Selection) {
		label := cleanText(p.Find("strong").First().Text())
		value := cleanText(p.Text())
		value = cleanText(strings.TrimPrefix(value, label))

		switch {
		case strings.HasPrefix(label, "High School"):
			school, place, found := strings.Cut(value, " in ")
			school = cleanText(school)
			if school != "" {
				fields.HighSchool = &school
			}
			if found {
				if city, state, ok := splitCityState(place); ok {
					fields.HighSchoolCity = &city
					fields.HighSchoolState = &state
				}
			}
		case strings.HasPrefix(label, "College"):
			if college, _, _ := strings.Cut(value, ","); cleanText(college) != "" {
				college = cleanText(college)
				fields.College = &college
			}
		}
	})

	if src, ok := meta.Find(".media-item img").First().Attr("src"); ok && strings.TrimSpace(src) != "" {
		src = strings.TrimSpace(src)
		fields.PhotoURL = &src
	}

	return fields
}
