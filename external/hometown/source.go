package hometown

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/courtsidehq/courtside/internal/platform/logging"
	"github.com/courtsidehq/courtside/internal/platform/resilience"
)

// ErrPlayerNotFound marks a lookup the source simply has no page for.
// Transport and parse failures are returned as ordinary errors.
var ErrPlayerNotFound = fmt.Errorf("player not found")

const defaultUserAgent = "courtside/1.0 (+https://github.com/courtsidehq/courtside)"

type SourceConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	// MinRequestInterval spaces requests to the upstream; zero disables
	// pacing.
	MinRequestInterval time.Duration
	Logger             *logging.Logger
}

func newHTTPClient(cfg SourceConfig) *resty.Client {
	client := resty.New()
	if cfg.BaseURL != "" {
		client.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client.SetTimeout(timeout)

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client.SetHeader("user-agent", userAgent)

	if cfg.MinRequestInterval > 0 {
		pacer := &requestPacer{interval: cfg.MinRequestInterval}
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return pacer.wait(req.Context())
		})
	}
	return client
}

// recordOutcome feeds a lookup result into a source's breaker. A miss
// means the site answered and simply has no page for the player, so
// only transport, status, and parse failures count against it.
func recordOutcome(b *resilience.CircuitBreaker, err error) {
	if err != nil && !errors.Is(err, ErrPlayerNotFound) {
		b.RecordFailure()
		return
	}
	b.RecordSuccess()
}

// requestPacer spaces requests to one upstream. Each caller claims the
// next slot under the lock, then sleeps outside it, so concurrent
// lookups queue instead of bursting.
type requestPacer struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func (p *requestPacer) wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	next := p.last.Add(p.interval)
	if next.Before(now) {
		next = now
	}
	p.last = next
	p.mu.Unlock()

	delay := time.Until(next)
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// usStates maps every spelling the sources use to the canonical state
// name, so "OH", "Ohio", and "ohio" all merge to one rollup bucket.
var usStates = map[string]string{}

func init() {
	type state struct{ abbr, name string }
	for _, s := range []state{
		{"AL", "Alabama"}, {"AK", "Alaska"}, {"AZ", "Arizona"}, {"AR", "Arkansas"},
		{"CA", "California"}, {"CO", "Colorado"}, {"CT", "Connecticut"}, {"DE", "Delaware"},
		{"FL", "Florida"}, {"GA", "Georgia"}, {"HI", "Hawaii"}, {"ID", "Idaho"},
		{"IL", "Illinois"}, {"IN", "Indiana"}, {"IA", "Iowa"}, {"KS", "Kansas"},
		{"KY", "Kentucky"}, {"LA", "Louisiana"}, {"ME", "Maine"}, {"MD", "Maryland"},
		{"MA", "Massachusetts"}, {"MI", "Michigan"}, {"MN", "Minnesota"}, {"MS", "Mississippi"},
		{"MO", "Missouri"}, {"MT", "Montana"}, {"NE", "Nebraska"}, {"NV", "Nevada"},
		{"NH", "New Hampshire"}, {"NJ", "New Jersey"}, {"NM", "New Mexico"}, {"NY", "New York"},
		{"NC", "North Carolina"}, {"ND", "North Dakota"}, {"OH", "Ohio"}, {"OK", "Oklahoma"},
		{"OR", "Oregon"}, {"PA", "Pennsylvania"}, {"RI", "Rhode Island"}, {"SC", "South Carolina"},
		{"SD", "South Dakota"}, {"TN", "Tennessee"}, {"TX", "Texas"}, {"UT", "Utah"},
		{"VT", "Vermont"}, {"VA", "Virginia"}, {"WA", "Washington"}, {"WV", "West Virginia"},
		{"WI", "Wisconsin"}, {"WY", "Wyoming"}, {"DC", "District of Columbia"},
	} {
		usStates[strings.ToLower(s.abbr)] = s.name
		usStates[strings.ToLower(s.name)] = s.name
	}
}

// canonicalState resolves a state spelling, "" when the value is not a
// US state at all.
func canonicalState(raw string) string {
	return usStates[strings.ToLower(strings.TrimSpace(raw))]
}

// splitCityState parses "Akron, Ohio" or "Akron, OH" birthplace text.
// Values whose trailing part is not a US state return ok=false, which
// keeps foreign birthplaces out of the hometown fields.
func splitCityState(raw string) (city, state string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", false
	}

	parts := strings.Split(raw, ",")
	if len(parts) < 2 {
		return "", "", false
	}

	state = canonicalState(parts[len(parts)-1])
	if state == "" {
		return "", "", false
	}
	city = strings.TrimSpace(strings.Join(parts[:len(parts)-1], ","))
	return city, state, city != ""
}

func cleanText(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
