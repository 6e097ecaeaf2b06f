//go:build integration

package integration

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/horizon-client/pkg/horizon"
	"github.com/fivetwenty-io/horizon-client/pkg/horizonclient"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	HorizonURL  string
	HorizonPath string
	Verbose     bool
}

// LoadTestConfig loads test configuration from environment variables
func LoadTestConfig() *TestConfig {
	horizonURL := os.Getenv("HORIZON_URL")
	if horizonURL == "" {
		horizonURL = horizonclient.TestnetURL
	}

	return &TestConfig{
		HorizonURL:  horizonclient.NormalizeURL(horizonURL),
		HorizonPath: getHorizonPath(),
		Verbose:     os.Getenv("TEST_VERBOSE") == "true",
	}
}

func getHorizonPath() string {
	if path := os.Getenv("HORIZON_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../horizon", "./horizon", "../horizon"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "horizon"
}

// NewClient creates a client for the configured server, skipping the test
// when the server cannot be reached.
func (config *TestConfig) NewClient(t *testing.T) horizon.Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := horizonclient.NewWithURL(ctx, config.HorizonURL)
	require.NoError(t, err)

	_, err = client.Root(ctx)
	if err != nil {
		t.Skipf("Horizon server %s not reachable, skipping integration test: %v", config.HorizonURL, err)
	}

	return client
}

// SkipIfMissingBinary skips test if the horizon binary is not built
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.HorizonPath); err != nil {
		t.Skipf("horizon binary not found at %s, skipping integration test", config.HorizonPath)
	}
}

// CommandRunner provides utilities for running horizon commands
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes a horizon command against the configured server
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	args = append([]string{"--url", runner.config.HorizonURL}, args...)

	cmd := exec.Command(runner.config.HorizonPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	// Keep the user's config file out of the run.
	cmd.Env = append(os.Environ(), "HOME="+runner.t.TempDir())

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.HorizonPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}
