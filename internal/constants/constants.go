package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for one-shot requests.
	DefaultHTTPTimeout = 60 * time.Second

	// DefaultConnectTimeout bounds dialing and TLS handshakes, streams included.
	DefaultConnectTimeout = 10 * time.Second
)

// Retry limits for the transport. One-shot calls do not retry by default.
const (
	// DefaultRetryMax is the default maximum number of transport retries.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum wait between transport retries.
	DefaultRetryWaitMin = 1 * time.Second

	// ExtendedRetryWaitMax is the maximum wait between transport retries.
	ExtendedRetryWaitMax = 30 * time.Second
)

// Event stream reconnection.
const (
	// DefaultStreamInitialBackoff is the first reconnect delay.
	DefaultStreamInitialBackoff = 500 * time.Millisecond

	// DefaultStreamMaxBackoff caps the reconnect delay.
	DefaultStreamMaxBackoff = 30 * time.Second

	// DefaultStreamStableAfter is how long a connection must stay up before
	// the reconnect delay is reset.
	DefaultStreamStableAfter = 5 * time.Second

	// StreamBackoffMultiplier grows the delay between consecutive failures.
	StreamBackoffMultiplier = 2.0
)

// ErrorBodyPreview is how many bytes of an undecodable body are kept.
const ErrorBodyPreview = 512

// Pagination.
const (
	// DefaultPageLimit is the page size requested by the CLI.
	DefaultPageLimit = 10

	// MaxPageLimit is the largest page size the service accepts.
	MaxPageLimit = 200
)

// Request headers.
const (
	HeaderClientName    = "X-Client-Name"
	HeaderClientVersion = "X-Client-Version"
	HeaderRequestID     = "X-Request-ID"
	HeaderLastEventID   = "Last-Event-ID"
	HeaderRetryAfter    = "Retry-After"

	// DefaultClientName identifies this library to the service.
	DefaultClientName = "horizon-client-go"

	// DefaultClientVersion is reported alongside DefaultClientName.
	DefaultClientVersion = "0.1.0"
)

// Rate-limit headers.
const (
	HeaderRateLimitLimit     = "X-Ratelimit-Limit"
	HeaderRateLimitRemaining = "X-Ratelimit-Remaining"
	HeaderRateLimitReset     = "X-Ratelimit-Reset"
)

// Content types.
const (
	ContentTypeJSON        = "application/json"
	ContentTypeHAL         = "application/hal+json"
	ContentTypeForm        = "application/x-www-form-urlencoded"
	ContentTypeEventStream = "text/event-stream"
)

// Well-known public instances.
const (
	PublicNetworkURL = "https://horizon.stellar.org"
	TestNetworkURL   = "https://horizon-testnet.stellar.org"
	FutureNetworkURL = "https://horizon-futurenet.stellar.org"
)
