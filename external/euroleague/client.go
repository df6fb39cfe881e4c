package euroleague

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/courtsidehq/courtside/internal/domain/performance"
	"github.com/courtsidehq/courtside/internal/domain/roster"
	"github.com/courtsidehq/courtside/internal/domain/schedule"
	"github.com/courtsidehq/courtside/internal/platform/logging"
	"github.com/courtsidehq/courtside/internal/platform/resilience"
	"github.com/courtsidehq/courtside/internal/usecase"
)

const (
	defaultBaseURL     = "https://api-live.euroleague.net/v2"
	defaultCompetition = "E"
	maxResponseBytes   = 8 << 20
)

var errLeagueTransient = crerr.New("league feed transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Competition    string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches the league's primary feed. It implements
// usecase.LeagueClient.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	competition    string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	competition := strings.TrimSpace(cfg.Competition)
	if competition == "" {
		competition = defaultCompetition
	}
	breakerCfg := cfg.CircuitBreaker.WithDefaults(resilience.DefaultLeagueBreakerConfig())

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		competition:    competition,
		maxRetries:     max(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker("league feed", breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Roster(ctx context.Context, seasonCode string) ([]roster.Entry, error) {
	seasonCode, err := validateSeasonCode(seasonCode)
	if err != nil {
		return nil, err
	}

	var envelope peopleEnvelope
	path := c.seasonPath(seasonCode, "people")
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return nil, fmt.Errorf("fetch roster season=%s: %w", seasonCode, err)
	}

	out := make([]roster.Entry, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		if item.Active != nil && !*item.Active {
			continue
		}
		entry := mapPersonToEntry(item)
		if entry.DisplayName == "" && entry.SourcePlayerID == "" {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (c *Client) Teams(ctx context.Context, seasonCode string) ([]roster.Team, error) {
	seasonCode, err := validateSeasonCode(seasonCode)
	if err != nil {
		return nil, err
	}

	var envelope clubsEnvelope
	path := c.seasonPath(seasonCode, "clubs")
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return nil, fmt.Errorf("fetch clubs season=%s: %w", seasonCode, err)
	}

	out := make([]roster.Team, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		team := mapClubToTeam(item)
		if team.ID == "" {
			continue
		}
		out = append(out, team)
	}
	return out, nil
}

func (c *Client) Season(ctx context.Context, seasonCode string) (schedule.Season, error) {
	seasonCode, err := validateSeasonCode(seasonCode)
	if err != nil {
		return schedule.Season{}, err
	}

	var envelope gamesEnvelope
	path := c.seasonPath(seasonCode, "games")
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return schedule.Season{}, fmt.Errorf("fetch schedule season=%s: %w", seasonCode, err)
	}

	season := schedule.Season{
		League:     c.competition,
		Code:       seasonCode,
		TotalGames: len(envelope.Data),
	}
	for _, item := range envelope.Data {
		season.Games = append(season.Games, mapGame(item))
	}
	return season, nil
}

func (c *Client) GameLines(ctx context.Context, seasonCode string) ([]performance.GameLine, error) {
	seasonCode, err := validateSeasonCode(seasonCode)
	if err != nil {
		return nil, err
	}

	var envelope boxScoreEnvelope
	path := c.seasonPath(seasonCode, "boxscores")
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return nil, fmt.Errorf("fetch box scores season=%s: %w", seasonCode, err)
	}

	out := make([]performance.GameLine, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		line := mapBoxScoreLine(item)
		if line.GameID == "" {
			continue
		}
		out = append(out, line)
	}
	return out, nil
}

func (c *Client) seasonPath(seasonCode, resource string) string {
	return fmt.Sprintf("/competitions/%s/seasons/%s/%s",
		url.PathEscape(c.competition), url.PathEscape(seasonCode), resource)
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "league feed circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: league feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errLeagueTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode league payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errLeagueTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errLeagueTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: feed status=%d", errLeagueTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("feed status=%d", resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("feed request failed")
	}
	c.logger.WarnContext(ctx, "league feed request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
