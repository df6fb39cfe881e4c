package hometown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/courtsidehq/courtside/internal/domain/enrichment"
	"github.com/courtsidehq/courtside/internal/domain/identity"
	"github.com/courtsidehq/courtside/internal/platform/logging"
	"github.com/courtsidehq/courtside/internal/platform/names"
	"github.com/courtsidehq/courtside/internal/platform/resilience"
)

const (
	defaultWikipediaURL  = "https://en.wikipedia.org"
	defaultGrokepediaURL = "https://grokipedia.com"
)

// MediaWikiSource scrapes encyclopedia player articles. Wikipedia and
// its mirrors share the infobox layout, so one parser serves both.
type MediaWikiSource struct {
	name    string
	http    *resty.Client
	baseURL string
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

func NewWikipediaSource(cfg SourceConfig) *MediaWikiSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultWikipediaURL
	}
	return newMediaWikiSource("wikipedia", cfg)
}

func NewGrokepediaSource(cfg SourceConfig) *MediaWikiSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGrokepediaURL
	}
	return newMediaWikiSource("grokepedia", cfg)
}

func newMediaWikiSource(name string, cfg SourceConfig) *MediaWikiSource {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &MediaWikiSource{
		name:    name,
		http:    newHTTPClient(cfg),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		breaker: resilience.NewCircuitBreaker(name, resilience.DefaultScraperBreakerConfig()),
		logger:  logger,
	}
}

func (s *MediaWikiSource) Name() string { return s.name }

// Lookup tries the player's article title directly, then the
// basketball-disambiguated title.
func (s *MediaWikiSource) Lookup(ctx context.Context, hint identity.Hint) (enrichment.Fields, string, error) {
	display := names.Display(hint.Name)
	if display == "" {
		return enrichment.Fields{}, "", fmt.Errorf("player name is required")
	}
	if err := s.breaker.Allow(); err != nil {
		return enrichment.Fields{}, "", err
	}

	titles := []string{
		strings.ReplaceAll(display, " ", "_"),
		strings.ReplaceAll(display, " ", "_") + "_(basketball)",
	}

	var lastErr error
	for _, title := range titles {
		fields, sourceURL, err := s.fetchArticle(ctx, title)
		if err == nil {
			s.breaker.RecordSuccess()
			return fields, sourceURL, nil
		}
		lastErr = err
		if !errors.Is(err, ErrPlayerNotFound) {
			break
		}
	}
	recordOutcome(s.breaker, lastErr)
	return enrichment.Fields{}, "", lastErr
}

func (s *MediaWikiSource) fetchArticle(ctx context.Context, title string) (enrichment.Fields, string, error) {
	path := "/wiki/" + url.PathEscape(title)
	resp, err := s.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return enrichment.Fields{}, "", fmt.Errorf("fetch article %q: %w", title, err)
	}
	if resp.StatusCode() == 404 {
		return enrichment.Fields{}, "", fmt.Errorf("%w: article %q", ErrPlayerNotFound, title)
	}
	if resp.IsError() {
		return enrichment.Fields{}, "", fmt.Errorf("fetch article %q: status=%d", title, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return enrichment.Fields{}, "", fmt.Errorf("parse article %q: %w", title, err)
	}

	fields := parseInfobox(doc)
	sourceURL := s.baseURL + path
	if fields.Empty() {
		return enrichment.Fields{}, sourceURL, fmt.Errorf("%w: article %q has no infobox data", ErrPlayerNotFound, title)
	}
	return fields, sourceURL, nil
}

var bracketedRefRegex = regexp.MustCompile(`\[\d+\]`)

// parseInfobox reads the biographical rows of a player infobox.
func parseInfobox(doc *goquery.Document) enrichment.Fields {
	var fields enrichment.Fields

	doc.Find(".infobox tr").Each(func(_ int, row *goquery.Selection) {
		label := cleanText(row.Find("th").First().Text())
		cell := row.Find("td").First()
		if cell.Length() == 0 {
			return
		}
		value := cleanText(bracketedRefRegex.ReplaceAllString(cell.Text(), ""))

		switch {
		case strings.EqualFold(label, "Born"):
			// The cell mixes the birth date and the birthplace; the
			// birthplace div is the reliable part.
			place := cleanText(cell.Find(".birthplace").Text())
			if place == "" {
				// Fall back to the text after the last closing paren of
				// the date, e.g. "June 1, 1998 (age 28) Akron, Ohio, U.S."
				if i := strings.LastIndex(value, ")"); i >= 0 && i+1 < len(value) {
					place = cleanText(value[i+1:])
				}
			}
			place = strings.TrimSuffix(place, ", U.S.")
			place = strings.TrimSuffix(place, ", United States")
			if city, state, ok := splitCityState(place); ok {
				fields.HometownCity = &city
				fields.HometownState = &state
			}
		case strings.EqualFold(label, "High school"):
			school, place, found := strings.Cut(value, " (")
			school = cleanText(school)
			if school != "" {
				fields.HighSchool = &school
			}
			if found {
				place = strings.TrimSuffix(place, ")")
				if city, state, ok := splitCityState(place); ok {
					fields.HighSchoolCity = &city
					fields.HighSchoolState = &state
				}
			}
		case strings.EqualFold(label, "College"):
			if college := cleanText(strings.Split(value, "(")[0]); college != "" {
				fields.College = &college
			}
		}
	})

	if src, ok := doc.Find(".infobox img").First().Attr("src"); ok && strings.TrimSpace(src) != "" {
		src = strings.TrimSpace(src)
		if strings.HasPrefix(src, "//") {
			src = "https:" + src
		}
		fields.PhotoURL = &src
	}

	return fields
}
