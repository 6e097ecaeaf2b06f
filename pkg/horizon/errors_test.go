package horizon

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawResponse(status int, body string, header http.Header) *RawResponse {
	if header == nil {
		header = http.Header{}
	}

	return &RawResponse{StatusCode: status, Header: header, Body: []byte(body)}
}

func rateLimitHeader(limit, remaining, reset string) http.Header {
	header := http.Header{}
	header.Set("X-Ratelimit-Limit", limit)
	header.Set("X-Ratelimit-Remaining", remaining)
	header.Set("X-Ratelimit-Reset", reset)

	return header
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestDecodeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		raw        *RawResponse
		kind       ErrorKind
		sentinel   error
		title      string
		body       string
		retryAfter time.Duration
	}{
		{
			name: "not found problem",
			raw: rawResponse(http.StatusNotFound,
				`{"type":"https://stellar.org/horizon-errors/not_found","title":"Resource Missing","status":404,"detail":"The resource at the url requested was not found."}`, nil),
			kind:     KindNotFound,
			sentinel: ErrNotFound,
			title:    "Resource Missing",
		},
		{
			name: "bad request problem",
			raw: rawResponse(http.StatusBadRequest,
				`{"type":"https://stellar.org/horizon-errors/bad_request","title":"Bad Request","status":400,"extras":{"invalid_field":"cursor","reason":"cursor must be a number"}}`, nil),
			kind:     KindBadRequest,
			sentinel: ErrBadRequest,
			title:    "Bad Request",
		},
		{
			name:     "bad request without problem body",
			raw:      rawResponse(http.StatusBadRequest, `<html>oops</html>`, nil),
			kind:     KindBadRequest,
			sentinel: ErrBadRequest,
			body:     `<html>oops</html>`,
		},
		{
			name:     "unprocessable entity is a bad request",
			raw:      rawResponse(http.StatusUnprocessableEntity, `{"title":"Unprocessable"}`, nil),
			kind:     KindBadRequest,
			sentinel: ErrBadRequest,
			title:    "Unprocessable",
		},
		{
			name: "rate limited with retry after",
			raw: rawResponse(http.StatusTooManyRequests, `{"title":"Rate Limit Exceeded","status":429}`,
				http.Header{"Retry-After": {"7"}}),
			kind:       KindRateLimited,
			sentinel:   ErrRateLimited,
			title:      "Rate Limit Exceeded",
			retryAfter: 7 * time.Second,
		},
		{
			name:     "service unavailable",
			raw:      rawResponse(http.StatusServiceUnavailable, `upstream down`, nil),
			kind:     KindServerError,
			sentinel: ErrServerError,
			body:     "upstream down",
		},
		{
			name:     "gateway timeout with empty body",
			raw:      rawResponse(http.StatusGatewayTimeout, ``, nil),
			kind:     KindServerError,
			sentinel: ErrServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svcErr := DecodeError(tt.raw)

			assert.Equal(t, tt.kind, svcErr.Kind)
			assert.Equal(t, tt.raw.StatusCode, svcErr.StatusCode)
			require.ErrorIs(t, svcErr, tt.sentinel)
			assert.Equal(t, tt.body, svcErr.Body)
			assert.Equal(t, tt.retryAfter, svcErr.RetryAfter)
			assert.False(t, svcErr.RateLimit.Known)

			if tt.title != "" {
				require.NotNil(t, svcErr.Problem)
				assert.Equal(t, tt.title, svcErr.Problem.Title)
				assert.Contains(t, svcErr.Error(), tt.title)
			} else {
				assert.Nil(t, svcErr.Problem)
			}

			wrapped := fmt.Errorf("listing ledgers: %w", svcErr)
			found, ok := AsServiceError(wrapped)
			require.True(t, ok)
			assert.Same(t, svcErr, found)
		})
	}
}

func TestDecodeError_UnexpectedStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusSwitchingProtocols, http.StatusMovedPermanently, http.StatusNotModified} {
		svcErr := DecodeError(rawResponse(status, `<a href="/elsewhere">Moved</a>`, nil))

		assert.Equal(t, KindDecode, svcErr.Kind, status)
		assert.Equal(t, status, svcErr.StatusCode)
		require.ErrorIs(t, svcErr, ErrDecode)
		require.ErrorIs(t, svcErr, ErrUnexpectedStatus)
		assert.False(t, IsServerError(svcErr))
		assert.Nil(t, svcErr.Problem)
		assert.Equal(t, `<a href="/elsewhere">Moved</a>`, svcErr.Body)
	}
}

func TestDecodeError_BodyPrefix(t *testing.T) {
	t.Parallel()

	svcErr := DecodeError(rawResponse(http.StatusBadGateway, strings.Repeat("x", 2000), nil))
	assert.Len(t, svcErr.Body, 512)
}

func TestDecodeError_ProblemExtras(t *testing.T) {
	t.Parallel()

	svcErr := DecodeError(rawResponse(http.StatusBadRequest,
		`{"title":"Bad Request","extras":{"invalid_field":"cursor"}}`, nil))
	require.NotNil(t, svcErr.Problem)

	var field string

	require.NoError(t, svcErr.Problem.Extra("invalid_field", &field))
	assert.Equal(t, "cursor", field)
	require.ErrorIs(t, svcErr.Problem.Extra("reason", &field), ErrNotFound)
}

func TestDecodeResponse(t *testing.T) {
	t.Parallel()

	t.Run("success carries rate limit", func(t *testing.T) {
		t.Parallel()

		raw := rawResponse(http.StatusOK, `{"id":"l1","paging_token":"5","sequence":5}`, rateLimitHeader("100", "99", "30"))

		resp, err := DecodeResponse[Ledger](raw)
		require.NoError(t, err)
		assert.Equal(t, uint32(5), resp.Data.Sequence)
		assert.Equal(t, RateLimit{Limit: 100, Remaining: 99, Reset: 30, Known: true}, resp.RateLimit)
	})

	t.Run("malformed body is a decode failure", func(t *testing.T) {
		t.Parallel()

		raw := rawResponse(http.StatusOK, `{"id":`, rateLimitHeader("100", "98", "30"))

		_, err := DecodeResponse[Ledger](raw)
		require.Error(t, err)
		assert.True(t, IsDecode(err))

		svcErr, ok := AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, `{"id":`, svcErr.Body)
		assert.Equal(t, 98, svcErr.RateLimit.Remaining)
	})

	t.Run("error response carries rate limit", func(t *testing.T) {
		t.Parallel()

		raw := rawResponse(http.StatusTooManyRequests, `{"title":"Rate Limit Exceeded"}`,
			rateLimitHeader("100", "0", "1700000000"))

		_, err := DecodeResponse[Ledger](raw)
		require.Error(t, err)
		assert.True(t, IsRateLimited(err))

		svcErr, ok := AsServiceError(err)
		require.True(t, ok)
		assert.Equal(t, RateLimit{Limit: 100, Remaining: 0, Reset: 1700000000, Known: true}, svcErr.RateLimit)
		assert.True(t, svcErr.RateLimit.Exhausted())
	})
}

func TestDecodePage_EmptyRecords(t *testing.T) {
	t.Parallel()

	raw := rawResponse(http.StatusOK,
		`{"_links":{"self":{"href":"/ledgers?cursor=9"},"next":{"href":"/ledgers?cursor=9"},"prev":{"href":"/ledgers?cursor=9&order=desc"}},"_embedded":{"records":[]}}`, nil)

	page, err := DecodePage(raw, AllLedgers().WithCursor("9"))
	require.NoError(t, err)
	assert.NotNil(t, page.Records)
	assert.Zero(t, page.Len())
	assert.Equal(t, UnknownRateLimit, page.RateLimit)

	next, ok := page.NextRequest()
	require.True(t, ok)
	assert.Equal(t, Cursor("9"), next.Cursor())
}

func TestFetch_TransportFailure(t *testing.T) {
	t.Parallel()

	exec := newTestExecutor(t, &scriptedTransport{})

	_, err := Fetch(t.Context(), exec, LedgerRequest(1))
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.False(t, errors.Is(err, ErrDecode))
}

func TestServiceError_Error(t *testing.T) {
	t.Parallel()

	svcErr := &ServiceError{
		Kind:       KindNotFound,
		StatusCode: http.StatusNotFound,
		Problem:    &Problem{Title: "Resource Missing", Detail: "no ledger 9"},
	}
	assert.Equal(t, "horizon: not found (404): Resource Missing: no ledger 9", svcErr.Error())

	transport := transportError(errors.New("dial tcp: connection refused"))
	assert.Equal(t, "horizon: transport failure: dial tcp: connection refused", transport.Error())
}
