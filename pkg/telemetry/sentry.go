package telemetry

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/ghuser/medtrace/pkg/config"
)

const redacted = "[redacted]"

// sensitiveParams are request fields that must not leave the process: the
// printable batch signature and the party identity.
var sensitiveParams = []string{"signature", "party", "email", "customer_email", "recipient"}

// SetupSentry initializes the Sentry SDK. No-ops if DSN is empty.
func SetupSentry(cfg *config.Config) error {
	if cfg.SentryDSN == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          cfg.ServiceName + "@" + cfg.ServiceVersion,
		TracesSampleRate: cfg.SentryTracesSampleRate,
		SendDefaultPII:   false,
		BeforeSend:       scrubEvent,
	}); err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	return nil
}

// SentryFlush flushes buffered events before process exit.
func SentryFlush() {
	sentry.Flush(2 * time.Second)
}

// SentryMiddleware returns a net/http middleware that captures panics and errors.
// Repanic: true so the outer Recovery middleware still handles the 500 response.
func SentryMiddleware() func(http.Handler) http.Handler {
	h := sentryhttp.New(sentryhttp.Options{Repanic: true})
	return h.Handle
}

// scrubEvent drops session cookies and request bodies and redacts signatures
// and emails from the query string.
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request == nil {
		return event
	}
	event.Request.Cookies = ""
	if event.Request.Data != "" {
		event.Request.Data = redacted
	}
	delete(event.Request.Headers, "Cookie")
	event.Request.QueryString = scrubQuery(event.Request.QueryString)
	event.Request.URL = scrubURL(event.Request.URL)
	return event
}

func scrubQuery(raw string) string {
	if raw == "" {
		return raw
	}
	q, err := url.ParseQuery(raw)
	if err != nil {
		return redacted
	}
	for key := range q {
		for _, s := range sensitiveParams {
			if strings.EqualFold(key, s) {
				q.Set(key, redacted)
			}
		}
	}
	return q.Encode()
}

func scrubURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = scrubQuery(u.RawQuery)
	return u.String()
}
