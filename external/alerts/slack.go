package alerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"

	"github.com/courtsidehq/courtside/internal/platform/logging"
)

type SlackAlerterConfig struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	MaxRetries int
	Logger     *logging.Logger
}

// SlackAlerter posts pipeline alerts to a Slack incoming webhook.
// Delivery is best-effort: callers tolerate Notify errors, so the
// alerter only retries transient failures a few times and gives up.
type SlackAlerter struct {
	client     *fasthttp.Client
	webhookURL string
	channel    string
	username   string
	timeout    time.Duration
	maxRetries int
	logger     *logging.Logger
}

type slackMessage struct {
	Text     string `json:"text"`
	Channel  string `json:"channel,omitempty"`
	Username string `json:"username,omitempty"`
}

func NewSlackAlerter(cfg SlackAlerterConfig) (*SlackAlerter, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, crerr.New("slack webhook url is required")
	}
	if !strings.HasPrefix(webhookURL, "http://") && !strings.HasPrefix(webhookURL, "https://") {
		return nil, crerr.Newf("slack webhook url %q must be http or https", webhookURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &SlackAlerter{
		client:     &fasthttp.Client{},
		webhookURL: webhookURL,
		channel:    strings.TrimSpace(cfg.Channel),
		username:   strings.TrimSpace(cfg.Username),
		timeout:    timeout,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}, nil
}

// Notify implements usecase.Alerter.
func (a *SlackAlerter) Notify(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return crerr.New("alert message is empty")
	}

	body, err := sonic.Marshal(slackMessage{
		Text:     message,
		Channel:  a.channel,
		Username: a.username,
	})
	if err != nil {
		return crerr.Wrap(err, "marshal slack payload")
	}

	var lastErr error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if attempt > 0 {
			if err := sleepCtx(ctx, time.Duration(attempt)*time.Second); err != nil {
				return err
			}
		}

		retryable, err := a.post(body)
		if err == nil {
			a.logger.Debug("slack alert delivered", "preview", previewText(message, 256))
			return nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	a.logger.Warn("slack alert delivery failed",
		"attempts", a.maxRetries+1,
		"preview", previewText(message, 256),
		"error", lastErr,
	)
	return fmt.Errorf("deliver slack alert: %w", lastErr)
}

func (a *SlackAlerter) post(body []byte) (retryable bool, err error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(a.webhookURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := a.client.DoTimeout(req, resp, a.timeout); err != nil {
		return true, crerr.Wrap(err, "post webhook")
	}

	status := resp.StatusCode()
	if status/100 == 2 {
		return false, nil
	}
	err = crerr.Newf("webhook status=%d body=%s", status, previewText(string(resp.Body()), 512))
	return isRetryableStatus(status), err
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusRequestTimeout ||
		status == fasthttp.StatusTooManyRequests ||
		status >= fasthttp.StatusInternalServerError
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// previewText keeps logged alert bodies short.
func previewText(value string, max int) string {
	if len(value) <= max {
		return strings.TrimSpace(value)
	}
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.WriteString(value[:max])
	_, _ = buf.WriteString("...(truncated)")
	return strings.TrimSpace(buf.String())
}
