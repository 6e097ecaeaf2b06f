// Package horizonclient provides the main entry point for creating Horizon API clients
package horizonclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/horizon-client/internal/client"
	"github.com/fivetwenty-io/horizon-client/internal/constants"
	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
)

// Well-known public Horizon instances.
const (
	PublicURL    = constants.PublicNetworkURL
	TestnetURL   = constants.TestNetworkURL
	FuturenetURL = constants.FutureNetworkURL
)

// New creates a new Horizon client. The caller's config is not modified.
func New(ctx context.Context, config *horizon.Config) (horizon.Client, error) {
	if config == nil {
		return nil, horizon.ErrConfigRequired
	}

	if strings.TrimSpace(config.HorizonURL) == "" {
		return nil, horizon.ErrHorizonURLRequired
	}

	normalized := *config
	normalized.HorizonURL = NormalizeURL(config.HorizonURL)

	client, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return client, nil
}

// NormalizeURL trims surrounding whitespace and trailing slashes and adds
// "https://" when no scheme is present.
func NormalizeURL(raw string) string {
	horizonURL := strings.TrimRight(strings.TrimSpace(raw), "/")
	if !strings.HasPrefix(horizonURL, "http://") && !strings.HasPrefix(horizonURL, "https://") {
		horizonURL = "https://" + horizonURL
	}

	return horizonURL
}

// NewWithURL creates a new client with just a Horizon URL.
func NewWithURL(ctx context.Context, horizonURL string) (horizon.Client, error) {
	return New(ctx, &horizon.Config{
		HorizonURL: horizonURL,
	})
}

// NewPublic creates a client for the public network instance.
func NewPublic(ctx context.Context) (horizon.Client, error) {
	return NewWithURL(ctx, PublicURL)
}

// NewTestnet creates a client for the test network instance.
func NewTestnet(ctx context.Context) (horizon.Client, error) {
	return NewWithURL(ctx, TestnetURL)
}
