package horizon_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
	"github.com/stretchr/testify/assert"
)

func rateHeaders(limit, remaining, reset string) http.Header {
	header := http.Header{}
	if limit != "" {
		header.Set("X-Ratelimit-Limit", limit)
	}

	if remaining != "" {
		header.Set("X-Ratelimit-Remaining", remaining)
	}

	if reset != "" {
		header.Set("X-Ratelimit-Reset", reset)
	}

	return header
}

func TestParseRateLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		header   http.Header
		expected horizon.RateLimit
	}{
		{
			name:     "all headers present",
			header:   rateHeaders("100", "0", "1700000000"),
			expected: horizon.RateLimit{Limit: 100, Remaining: 0, Reset: 1700000000, Known: true},
		},
		{
			name:     "missing remaining",
			header:   rateHeaders("100", "", "12"),
			expected: horizon.UnknownRateLimit,
		},
		{
			name:     "malformed limit",
			header:   rateHeaders("lots", "3", "12"),
			expected: horizon.UnknownRateLimit,
		},
		{
			name:     "no headers",
			header:   http.Header{},
			expected: horizon.UnknownRateLimit,
		},
		{
			name:     "nil header",
			header:   nil,
			expected: horizon.UnknownRateLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			first := horizon.ParseRateLimit(tt.header)
			assert.Equal(t, tt.expected, first)
			assert.Equal(t, first, horizon.ParseRateLimit(tt.header), "parsing must be idempotent")
		})
	}
}

func TestRateLimit_ResetAfter(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)

	relative := horizon.RateLimit{Limit: 3600, Remaining: 10, Reset: 42, Known: true}
	assert.Equal(t, 42*time.Second, relative.ResetAfter(now))

	epoch := horizon.RateLimit{Limit: 100, Remaining: 0, Reset: 1_700_000_030, Known: true}
	assert.Equal(t, 30*time.Second, epoch.ResetAfter(now))
	assert.True(t, epoch.Exhausted())

	past := horizon.RateLimit{Limit: 100, Remaining: 0, Reset: 1_600_000_000, Known: true}
	assert.Zero(t, past.ResetAfter(now))

	assert.Zero(t, horizon.UnknownRateLimit.ResetAfter(now))
	assert.False(t, horizon.UnknownRateLimit.Exhausted())
	assert.Equal(t, "unknown", horizon.UnknownRateLimit.String())
}
