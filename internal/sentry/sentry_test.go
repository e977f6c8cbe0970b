package sentry

import (
	"testing"

	gosentry "github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
)

func TestInit_Disabled(t *testing.T) {
	err := Init("1.0.0", false)
	assert.NoError(t, err)
	// Flush and RecoverPanic should be safe no-ops
	Flush()
}

func TestInit_EmptyDSN(t *testing.T) {
	origDSN := dsn
	dsn = ""
	defer func() { dsn = origDSN }()

	err := Init("1.0.0", true)
	assert.NoError(t, err)
	Flush()
}

func TestIsEnabled(t *testing.T) {
	enabled = false
	assert.False(t, IsEnabled())
	enabled = true
	assert.True(t, IsEnabled())
	enabled = false // reset
}

func TestSetContext_DisabledIsNoop(t *testing.T) {
	enabled = false
	assert.NotPanics(t, func() { SetContext("mm.example.com", "com.github.manland.mattermost-plugin-gitlab", true) })
}

func TestScrubEvent_RemovesCredentials(t *testing.T) {
	event := &gosentry.Event{
		Message: `get connected: Get "https://mm.example.com/api?token=abc123&x=1": Authorization: Bearer s3cret`,
		Request: &gosentry.Request{
			URL:         "https://mm.example.com/plugins/x/api/v1/connected?access_token=abc",
			QueryString: "reminder=true&token=abc123",
			Cookies:     "MMAUTHTOKEN=abc",
			Headers: map[string]string{
				"Authorization": "Bearer s3cret",
				"Accept":        "application/json",
			},
		},
		Exception: []gosentry.Exception{{Value: "dial: bearer s3cret refused"}},
	}

	out := scrubEvent(event)
	assert.NotContains(t, out.Message, "abc123")
	assert.NotContains(t, out.Message, "s3cret")
	assert.Contains(t, out.Message, "x=1")
	assert.Equal(t, "[redacted]", out.Request.Headers["Authorization"])
	assert.Equal(t, "application/json", out.Request.Headers["Accept"])
	assert.Empty(t, out.Request.Cookies)
	assert.NotContains(t, out.Request.QueryString, "abc123")
	assert.Contains(t, out.Request.QueryString, "reminder=true")
	assert.NotContains(t, out.Request.URL, "access_token=abc")
	assert.NotContains(t, out.Exception[0].Value, "s3cret")
}

func TestScrubText_LeavesPlainMessages(t *testing.T) {
	assert.Equal(t, "lhs refresh failed: 500", scrubText("lhs refresh failed: 500"))
	assert.Equal(t, "mytoken=keep", scrubText("mytoken=keep"))
	assert.Nil(t, scrubEvent(nil))
}

func TestFlush_DisabledReportsDrained(t *testing.T) {
	enabled = false
	assert.True(t, Flush())
}
