package horizon

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/fivetwenty-io/horizon-client/internal/constants"
)

// ErrorKind classifies a ServiceError.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindBadRequest
	KindRateLimited
	KindServerError
	KindTransport
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindBadRequest:
		return "bad request"
	case KindRateLimited:
		return "rate limited"
	case KindServerError:
		return "server error"
	case KindTransport:
		return "transport failure"
	case KindDecode:
		return "decode failure"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against a ServiceError of the same kind.
var (
	ErrNotFound    = errors.New("resource not found")
	ErrBadRequest  = errors.New("bad request")
	ErrRateLimited = errors.New("rate limited")
	ErrServerError = errors.New("server error")
	ErrTransport   = errors.New("transport failure")
	ErrDecode      = errors.New("decode failure")
)

// Static errors for err113 compliance.
var (
	ErrNotStreamable       = errors.New("request does not support streaming")
	ErrStreamClosed        = errors.New("stream closed")
	ErrConfigRequired      = errors.New("config is required")
	ErrHorizonURLRequired  = errors.New("horizon URL is required")
	ErrInvalidHorizonURL   = errors.New("invalid horizon URL")
	ErrEnvelopeRequired    = errors.New("transaction envelope is required")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidAssetString  = errors.New("invalid asset")
	ErrUnexpectedSubmitted = errors.New("unexpected submission response")
	ErrUnexpectedStatus    = errors.New("unexpected status")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindBadRequest:
		return ErrBadRequest
	case KindRateLimited:
		return ErrRateLimited
	case KindServerError:
		return ErrServerError
	case KindTransport:
		return ErrTransport
	case KindDecode:
		return ErrDecode
	default:
		return nil
	}
}

// Problem is an RFC 7807 problem document as returned by Horizon.
type Problem struct {
	Type     string                     `json:"type"               yaml:"type"`
	Title    string                     `json:"title"              yaml:"title"`
	Status   int                        `json:"status"             yaml:"status"`
	Detail   string                     `json:"detail,omitempty"   yaml:"detail,omitempty"`
	Instance string                     `json:"instance,omitempty" yaml:"instance,omitempty"`
	Extras   map[string]json.RawMessage `json:"extras,omitempty"   yaml:"-"`
}

// Extra decodes one entry of the problem's extras into v.
func (p *Problem) Extra(key string, v interface{}) error {
	raw, ok := p.Extras[key]
	if !ok {
		return fmt.Errorf("problem extra %q: %w", key, ErrNotFound)
	}

	err := json.Unmarshal(raw, v)
	if err != nil {
		return fmt.Errorf("parsing problem extra %q: %w", key, err)
	}

	return nil
}

// ServiceError is the single error type returned by fetch, page and submit
// calls. Every field a caller may branch on is structured.
type ServiceError struct {
	Kind       ErrorKind
	StatusCode int
	Problem    *Problem
	RateLimit  RateLimit
	// RetryAfter is set from the Retry-After header on rate-limited responses.
	RetryAfter time.Duration
	// Body holds a prefix of the raw body when it could not be decoded.
	Body string
	Err  error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	var builder strings.Builder

	builder.WriteString("horizon: ")
	builder.WriteString(e.Kind.String())

	if e.StatusCode != 0 {
		builder.WriteString(" (" + strconv.Itoa(e.StatusCode) + ")")
	}

	if e.Problem != nil && e.Problem.Title != "" {
		builder.WriteString(": " + e.Problem.Title)

		if e.Problem.Detail != "" {
			builder.WriteString(": " + e.Problem.Detail)
		}
	} else if e.Err != nil {
		builder.WriteString(": " + e.Err.Error())
	}

	return builder.String()
}

// Unwrap returns the underlying cause, if any.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *ServiceError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// AsServiceError extracts a ServiceError from an error chain.
func AsServiceError(err error) (*ServiceError, bool) {
	svcErr := &ServiceError{}
	if errors.As(err, &svcErr) {
		return svcErr, true
	}

	return nil, false
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsBadRequest checks if the error is a bad request error.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

// IsRateLimited checks if the error is a rate limited error.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsServerError checks if the error is a server error.
func IsServerError(err error) bool {
	return errors.Is(err, ErrServerError)
}

// IsTransport checks if the error is a transport failure.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsDecode checks if the error is a decode failure.
func IsDecode(err error) bool {
	return errors.Is(err, ErrDecode)
}

// transportError wraps a failure reported by the Transport itself.
func transportError(err error) *ServiceError {
	return &ServiceError{Kind: KindTransport, Err: err}
}

func decodeError(raw *RawResponse, err error) *ServiceError {
	return &ServiceError{
		Kind:       KindDecode,
		StatusCode: raw.StatusCode,
		RateLimit:  ParseRateLimit(raw.Header),
		Body:       bodyPrefix(raw.Body),
		Err:        err,
	}
}

// DecodeError maps a non-2xx response to a ServiceError. Informational and
// redirect statuses carry no resource and no problem, so they are decode
// failures wrapping ErrUnexpectedStatus.
func DecodeError(raw *RawResponse) *ServiceError {
	svcErr := &ServiceError{
		StatusCode: raw.StatusCode,
		RateLimit:  ParseRateLimit(raw.Header),
	}

	switch {
	case raw.StatusCode < http.StatusBadRequest:
		svcErr.Kind = KindDecode
		svcErr.Err = fmt.Errorf("%w: %d", ErrUnexpectedStatus, raw.StatusCode)
		svcErr.Body = bodyPrefix(raw.Body)

		return svcErr
	case raw.StatusCode == http.StatusNotFound:
		svcErr.Kind = KindNotFound
	case raw.StatusCode == http.StatusTooManyRequests:
		svcErr.Kind = KindRateLimited
		svcErr.RetryAfter = parseRetryAfter(raw.Header.Get(constants.HeaderRetryAfter))
	case raw.StatusCode >= http.StatusBadRequest && raw.StatusCode < http.StatusInternalServerError:
		svcErr.Kind = KindBadRequest
	default:
		svcErr.Kind = KindServerError
	}

	problem, ok := parseProblem(raw.Body)
	if ok {
		svcErr.Problem = problem
	} else {
		svcErr.Body = bodyPrefix(raw.Body)
	}

	return svcErr
}

func parseProblem(body []byte) (*Problem, bool) {
	if len(body) == 0 {
		return nil, false
	}

	var problem Problem

	err := json.Unmarshal(body, &problem)
	if err != nil || (problem.Type == "" && problem.Title == "") {
		return nil, false
	}

	return &problem, true
}

func bodyPrefix(body []byte) string {
	if len(body) > constants.ErrorBodyPreview {
		return string(body[:constants.ErrorBodyPreview])
	}

	return string(body)
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}

	seconds, err := strconv.Atoi(value)
	if err == nil {
		if seconds < 0 {
			return 0
		}

		return time.Duration(seconds) * time.Second
	}

	at, err := http.ParseTime(value)
	if err != nil {
		return 0
	}

	wait := time.Until(at)
	if wait < 0 {
		return 0
	}

	return wait
}
