package horizon

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/horizon-client/internal/constants"
)

// epochThreshold separates epoch-second reset values from relative ones.
const epochThreshold = 1_000_000_000

// RateLimit is the server's rate-limit state as reported on a response.
// Known is false when any of the three headers was missing or malformed.
type RateLimit struct {
	Limit     int   `json:"limit"     yaml:"limit"`
	Remaining int   `json:"remaining" yaml:"remaining"`
	Reset     int64 `json:"reset"     yaml:"reset"`
	Known     bool  `json:"known"     yaml:"known"`
}

// UnknownRateLimit is returned when the headers are absent.
var UnknownRateLimit = RateLimit{}

// ParseRateLimit reads the X-Ratelimit-* headers. It never fails: partial or
// malformed headers yield UnknownRateLimit.
func ParseRateLimit(header http.Header) RateLimit {
	if header == nil {
		return UnknownRateLimit
	}

	limit, ok := headerInt(header, constants.HeaderRateLimitLimit)
	if !ok {
		return UnknownRateLimit
	}

	remaining, ok := headerInt(header, constants.HeaderRateLimitRemaining)
	if !ok {
		return UnknownRateLimit
	}

	reset, ok := headerInt(header, constants.HeaderRateLimitReset)
	if !ok {
		return UnknownRateLimit
	}

	return RateLimit{
		Limit:     int(limit),
		Remaining: int(remaining),
		Reset:     reset,
		Known:     true,
	}
}

func headerInt(header http.Header, key string) (int64, bool) {
	raw := strings.TrimSpace(header.Get(key))
	if raw == "" {
		return 0, false
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, false
	}

	return value, true
}

// Exhausted reports whether the window has no requests left.
func (r RateLimit) Exhausted() bool {
	return r.Known && r.Remaining == 0
}

// ResetAfter returns how long until the window resets, measured from now.
// Reset values of at least 1e9 are treated as epoch seconds, smaller values as
// seconds remaining in the window.
func (r RateLimit) ResetAfter(now time.Time) time.Duration {
	if !r.Known {
		return 0
	}

	if r.Reset >= epochThreshold {
		wait := time.Unix(r.Reset, 0).Sub(now)
		if wait < 0 {
			return 0
		}

		return wait
	}

	return time.Duration(r.Reset) * time.Second
}

// String renders the state for logs and the CLI.
func (r RateLimit) String() string {
	if !r.Known {
		return "unknown"
	}

	return strconv.Itoa(r.Remaining) + "/" + strconv.Itoa(r.Limit) + " reset=" + strconv.FormatInt(r.Reset, 10)
}
