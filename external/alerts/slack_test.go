package alerts

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	sonic "github.com/bytedance/sonic"
)

type webhookRecorder struct {
	mu     sync.Mutex
	bodies []string
	status int
}

func (r *webhookRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		raw, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.bodies = append(r.bodies, string(raw))
		status := r.status
		r.mu.Unlock()
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
	}
}

func (r *webhookRecorder) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bodies)
}

func TestSlackAlerterNotify(t *testing.T) {
	t.Run("delivers message payload", func(t *testing.T) {
		rec := &webhookRecorder{}
		srv := httptest.NewServer(rec.handler())
		defer srv.Close()

		alerter, err := NewSlackAlerter(SlackAlerterConfig{
			WebhookURL: srv.URL,
			Channel:    "#pipeline",
			Username:   "courtside",
		})
		if err != nil {
			t.Fatalf("unexpected constructor error: %v", err)
		}

		if err := alerter.Notify(context.Background(), "3 of 40 players need manual review"); err != nil {
			t.Fatalf("unexpected notify error: %v", err)
		}
		if rec.calls() != 1 {
			t.Fatalf("unexpected webhook calls: got=%d want=1", rec.calls())
		}

		var msg slackMessage
		if err := sonic.Unmarshal([]byte(rec.bodies[0]), &msg); err != nil {
			t.Fatalf("unexpected payload decode error: %v", err)
		}
		if msg.Text != "3 of 40 players need manual review" {
			t.Fatalf("unexpected text: got=%q", msg.Text)
		}
		if msg.Channel != "#pipeline" || msg.Username != "courtside" {
			t.Fatalf("unexpected routing fields: got=%q/%q", msg.Channel, msg.Username)
		}
	})

	t.Run("retries server errors then fails", func(t *testing.T) {
		rec := &webhookRecorder{status: http.StatusInternalServerError}
		srv := httptest.NewServer(rec.handler())
		defer srv.Close()

		alerter, err := NewSlackAlerter(SlackAlerterConfig{WebhookURL: srv.URL, MaxRetries: 2})
		if err != nil {
			t.Fatalf("unexpected constructor error: %v", err)
		}

		err = alerter.Notify(context.Background(), "pipeline run aborted")
		if err == nil {
			t.Fatalf("expected a delivery error")
		}
		if rec.calls() != 3 {
			t.Fatalf("unexpected webhook calls: got=%d want=3", rec.calls())
		}
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		rec := &webhookRecorder{status: http.StatusBadRequest}
		srv := httptest.NewServer(rec.handler())
		defer srv.Close()

		alerter, err := NewSlackAlerter(SlackAlerterConfig{WebhookURL: srv.URL, MaxRetries: 3})
		if err != nil {
			t.Fatalf("unexpected constructor error: %v", err)
		}

		if err := alerter.Notify(context.Background(), "pipeline run aborted"); err == nil {
			t.Fatalf("expected a delivery error")
		}
		if rec.calls() != 1 {
			t.Fatalf("unexpected webhook calls: got=%d want=1", rec.calls())
		}
	})

	t.Run("blank message rejected", func(t *testing.T) {
		alerter, err := NewSlackAlerter(SlackAlerterConfig{WebhookURL: "https://hooks.example.com/services/x"})
		if err != nil {
			t.Fatalf("unexpected constructor error: %v", err)
		}
		if err := alerter.Notify(context.Background(), "   "); err == nil {
			t.Fatalf("expected an error for blank message")
		}
	})
}

func TestNewSlackAlerterValidation(t *testing.T) {
	if _, err := NewSlackAlerter(SlackAlerterConfig{}); err == nil {
		t.Fatalf("expected an error for missing webhook url")
	}
	if _, err := NewSlackAlerter(SlackAlerterConfig{WebhookURL: "ftp://example.com"}); err == nil ||
		!strings.Contains(err.Error(), "http") {
		t.Fatalf("expected a scheme error, got %v", err)
	}
}
