package resilience

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	b := NewCircuitBreaker("league feed", CircuitBreakerConfig{
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	if err := b.Allow(); err != nil {
		t.Fatalf("closed breaker should allow: %v", err)
	}
	b.RecordFailure()
	b.RecordFailure()

	err := b.Allow()
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open breaker to reject, got %v", err)
	}
	if !strings.Contains(err.Error(), "league feed") {
		t.Fatalf("rejection should name the upstream: %v", err)
	}
	if got := b.State(); got != CircuitStateOpen {
		t.Fatalf("unexpected state: got=%s want=%s", got, CircuitStateOpen)
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	b := NewCircuitBreaker("basketball_reference", CircuitBreakerConfig{
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})
	b.now = func() time.Time { return time.Unix(0, 0) }
	b.RecordFailure()

	b.now = func() time.Time { return time.Unix(0, 0).Add(2 * time.Minute) }
	if err := b.Allow(); err != nil {
		t.Fatalf("half-open breaker should allow a probe: %v", err)
	}
	b.RecordSuccess()

	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("unexpected state after probe success: got=%s want=%s", got, CircuitStateClosed)
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := NewCircuitBreaker("wikipedia", CircuitBreakerConfig{
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})
	b.now = func() time.Time { return time.Unix(0, 0) }
	b.RecordFailure()

	b.now = func() time.Time { return time.Unix(0, 0).Add(2 * time.Minute) }
	if err := b.Allow(); err != nil {
		t.Fatalf("half-open breaker should allow a probe: %v", err)
	}
	b.RecordFailure()

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected reopened breaker to reject, got %v", err)
	}
}

func TestCircuitBreaker_HalfOpenProbeBudget(t *testing.T) {
	b := NewCircuitBreaker("league feed", CircuitBreakerConfig{
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   2,
	})
	b.now = func() time.Time { return time.Unix(0, 0) }
	b.RecordFailure()

	b.now = func() time.Time { return time.Unix(0, 0).Add(2 * time.Minute) }
	for i := 0; i < 2; i++ {
		if err := b.Allow(); err != nil {
			t.Fatalf("probe %d should be allowed: %v", i+1, err)
		}
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("probe budget exhausted, expected rejection, got %v", err)
	}

	b.RecordSuccess()
	if got := b.State(); got != CircuitStateHalfOpen {
		t.Fatalf("one win should not close a two-probe breaker: got=%s", got)
	}
	b.RecordSuccess()
	if got := b.State(); got != CircuitStateClosed {
		t.Fatalf("unexpected state after full probe batch: got=%s want=%s", got, CircuitStateClosed)
	}
}

func TestCircuitBreakerConfig_WithDefaults(t *testing.T) {
	t.Run("zero fields take the profile", func(t *testing.T) {
		cfg := CircuitBreakerConfig{Enabled: true}.WithDefaults(DefaultScraperBreakerConfig())
		if cfg.FailureThreshold != 3 || cfg.OpenTimeout != time.Minute || cfg.HalfOpenMaxReq != 1 {
			t.Fatalf("unexpected scraper profile: %+v", cfg)
		}
	})

	t.Run("explicit fields survive", func(t *testing.T) {
		cfg := CircuitBreakerConfig{
			FailureThreshold: 10,
			OpenTimeout:      time.Second,
			HalfOpenMaxReq:   4,
		}.WithDefaults(DefaultLeagueBreakerConfig())
		if cfg.FailureThreshold != 10 || cfg.OpenTimeout != time.Second || cfg.HalfOpenMaxReq != 4 {
			t.Fatalf("unexpected config: %+v", cfg)
		}
	})

	t.Run("disabled stays disabled", func(t *testing.T) {
		cfg := CircuitBreakerConfig{}.WithDefaults(DefaultLeagueBreakerConfig())
		if cfg.Enabled {
			t.Fatalf("defaults should not force a breaker on")
		}
	})
}
