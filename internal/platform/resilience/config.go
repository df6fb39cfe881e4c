package resilience

import "time"

// CircuitBreakerConfig sizes one upstream breaker. Zero fields take
// the chosen profile's defaults when the breaker is built.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

// DefaultLeagueBreakerConfig sizes the breaker for the league feed.
// The feed is hit in short bursts once per pipeline run, so the
// breaker tolerates a few consecutive failures and re-probes quickly
// with a pair of requests.
func DefaultLeagueBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// DefaultScraperBreakerConfig sizes the per-site breakers for the
// hometown lookup sources. Scraped sites throttle aggressively, so
// these trip after fewer failures, stay open a full minute, and probe
// with a single request.
func DefaultScraperBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 3,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	}
}

// WithDefaults fills unset sizing fields from a profile. Enabled is
// taken as given: an explicitly disabled breaker stays disabled.
func (cfg CircuitBreakerConfig) WithDefaults(defaults CircuitBreakerConfig) CircuitBreakerConfig {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}
