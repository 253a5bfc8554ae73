package events

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
	"github.com/riskibarqy/tournament-engine/internal/platform/logging"
	"github.com/riskibarqy/tournament-engine/internal/platform/resilience"
)

const (
	HeaderEventType = "X-Tournament-Event"
	HeaderEventID   = "X-Tournament-Event-Id"
	HeaderTimestamp = "X-Webhook-Timestamp"
	HeaderSignature = "X-Webhook-Signature"
)

var errWebhookTransient = crerr.New("webhook transient failure")

type WebhookConfig struct {
	URL            string
	Secret         string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookSink POSTs each event as JSON to one configured endpoint, signed with HMAC-SHA256
// over "<timestamp>.<body>" when a secret is set.
type WebhookSink struct {
	client  *fasthttp.Client
	url     string
	secret  []byte
	timeout time.Duration
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
	now     func() time.Time
}

func NewWebhookSink(cfg WebhookConfig, logger *logging.Logger) (*WebhookSink, error) {
	target, err := validateHTTPURL(cfg.URL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid WEBHOOK_URL")
	}
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &WebhookSink{
		client: &fasthttp.Client{
			Name:                "tournament-engine-webhook",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		url:     target,
		secret:  []byte(strings.TrimSpace(cfg.Secret)),
		timeout: timeout,
		breaker: resilience.New(cfg.CircuitBreaker),
		logger:  logger,
		now:     time.Now,
	}, nil
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Deliver(ctx context.Context, event tournament.Event) error {
	body, err := Encode(event)
	if err != nil {
		return crerr.Wrap(err, "encode webhook event")
	}

	err = s.breaker.Do(ctx, func(ctx context.Context) error {
		return s.post(ctx, event, body)
	})
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		s.logger.WarnContext(ctx, "webhook circuit breaker rejected delivery", "event_id", event.ID)
	}
	return err
}

func (s *WebhookSink) post(ctx context.Context, event tournament.Event, body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	timestamp := strconv.FormatInt(s.now().Unix(), 10)

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set(HeaderEventType, string(event.Type))
	req.Header.Set(HeaderEventID, event.ID)
	req.Header.Set(HeaderTimestamp, timestamp)
	if len(s.secret) > 0 {
		req.Header.Set(HeaderSignature, "sha256="+Sign(s.secret, timestamp, body))
	}
	req.SetBodyRaw(body)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("webhook.url", s.url),
			attribute.String("webhook.event_type", string(event.Type)),
		)
	}

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.client.DoDeadline(req, resp, deadline); err != nil {
		return crerr.Mark(crerr.Wrapf(err, "post webhook %s", event.Type), errWebhookTransient)
	}

	status := resp.StatusCode()
	if status/100 == 2 {
		return nil
	}

	callErr := crerr.Newf("post webhook %s status=%d body=%s", event.Type, status, truncate(string(resp.Body()), 512))
	if isRetryableStatus(status) {
		return crerr.Mark(callErr, errWebhookTransient)
	}
	return resilience.Permanent(callErr)
}

// Sign returns the hex HMAC-SHA256 of "<timestamp>.<body>".
func Sign(secret []byte, timestamp string, body []byte) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(timestamp)
	_ = buf.WriteByte('.')
	_, _ = buf.Write(body)

	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write(buf.B)
	return hex.EncodeToString(mac.Sum(nil))
}

func IsTransient(err error) bool {
	return crerr.Is(err, errWebhookTransient)
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusRequestTimeout ||
		status == fasthttp.StatusTooManyRequests ||
		status >= fasthttp.StatusInternalServerError
}

func validateHTTPURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}
	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return candidate, nil
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}
