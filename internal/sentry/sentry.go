package sentry

import (
	"net/url"
	"os"
	"runtime"
	"strings"
	"time"

	gosentry "github.com/getsentry/sentry-go"
)

// dsnEnv names the environment variable holding the Sentry DSN. Builds without it
// never report.
const dsnEnv = "GLRHS_SENTRY_DSN"

// dsn is a package-level var so tests can override it.
var dsn = os.Getenv(dsnEnv)

// enabled tracks whether sentry was successfully initialized.
var enabled bool

// flushTimeout bounds how long shutdown waits for queued events.
const flushTimeout = 2 * time.Second

// secretParams are query parameters that carry Mattermost credentials.
var secretParams = []string{"token", "access_token"}

// Init initializes the Sentry SDK. When telemetryEnabled is false or dsn is
// empty, it no-ops silently and all other functions in this package become safe
// no-ops.
func Init(version string, telemetryEnabled bool) error {
	if !telemetryEnabled || dsn == "" {
		enabled = false
		return nil
	}

	err := gosentry.Init(gosentry.ClientOptions{
		Dsn:              dsn,
		Release:          "glrhs@" + version,
		AttachStacktrace: true,
		SampleRate:       1.0,
		BeforeSend: func(event *gosentry.Event, _ *gosentry.EventHint) *gosentry.Event {
			return scrubEvent(event)
		},
		BeforeBreadcrumb: func(b *gosentry.Breadcrumb, _ *gosentry.BreadcrumbHint) *gosentry.Breadcrumb {
			b.Message = scrubText(b.Message)
			return b
		},
	})
	if err != nil {
		return err
	}

	gosentry.ConfigureScope(func(scope *gosentry.Scope) {
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
		scope.SetTag("go_version", runtime.Version())
		scope.SetTag("version", version)
	})

	enabled = true
	return nil
}

// IsEnabled returns whether sentry is active.
func IsEnabled() bool {
	return enabled
}

// Flush waits up to flushTimeout for queued events. It reports whether the queue
// drained; a disabled client has nothing queued.
func Flush() bool {
	if !enabled {
		return true
	}
	return gosentry.Flush(flushTimeout)
}

// RecoverPanic reports a panic of the window goroutine, flushes, then re-panics.
// Usage: defer sentry.RecoverPanic()
func RecoverPanic() {
	if !enabled {
		return
	}
	if r := recover(); r != nil {
		hub := gosentry.CurrentHub().Clone()
		hub.Scope().SetLevel(gosentry.LevelFatal)
		hub.Scope().SetTag("crash", "panic")
		hub.Recover(r)
		hub.Flush(flushTimeout)
		panic(r)
	}
}

// scrubEvent removes Mattermost credentials from an outgoing event: the
// Authorization and Cookie headers, token query parameters, and bearer tokens
// quoted in messages.
func scrubEvent(event *gosentry.Event) *gosentry.Event {
	if event == nil {
		return nil
	}
	event.Message = scrubText(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = scrubText(event.Exception[i].Value)
	}
	if req := event.Request; req != nil {
		for k := range req.Headers {
			switch strings.ToLower(k) {
			case "authorization", "cookie":
				req.Headers[k] = "[redacted]"
			}
		}
		req.Cookies = ""
		req.QueryString = scrubQuery(req.QueryString)
		req.URL = scrubText(req.URL)
	}
	return event
}

// scrubQuery redacts secretParams in a raw query string.
func scrubQuery(raw string) string {
	if raw == "" {
		return raw
	}
	q, err := url.ParseQuery(raw)
	if err != nil {
		return "[redacted]"
	}
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "[redacted]")
			changed = true
		}
	}
	if !changed {
		return raw
	}
	return q.Encode()
}

// scrubText cuts bearer tokens and token query values out of free text.
func scrubText(s string) string {
	if i := strings.Index(strings.ToLower(s), "bearer "); i >= 0 {
		end := i + len("bearer ")
		for end < len(s) && s[end] != ' ' && s[end] != '"' && s[end] != '\n' {
			end++
		}
		s = s[:i+len("bearer ")] + "[redacted]" + scrubText(s[end:])
	}
	for _, p := range secretParams {
		key := p + "="
		i := strings.Index(s, key)
		if i < 0 || (i > 0 && s[i-1] != '?' && s[i-1] != '&') {
			continue
		}
		end := i + len(key)
		for end < len(s) && s[end] != '&' && s[end] != ' ' && s[end] != '"' {
			end++
		}
		s = s[:i+len(key)] + "[redacted]" + s[end:]
	}
	return s
}

// SetContext adds the window context to the current scope. The server URL is
// reported by host only.
func SetContext(serverHost, pluginID string, popout bool) {
	if !enabled {
		return
	}
	gosentry.ConfigureScope(func(scope *gosentry.Scope) {
		scope.SetTag("plugin_id", pluginID)
		scope.SetTag("popout", boolStr(popout))
		scope.SetContext("app", map[string]interface{}{
			"server_host": serverHost,
			"plugin_id":   pluginID,
			"popout":      popout,
		})
	})
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
