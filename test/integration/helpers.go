//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	Username     string
	Password     string
	ClientID     string
	ClientSecret string
	BinaryPath   string
	AllowWrites  bool
	Verbose      bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		Username:     os.Getenv("BULLHORN_USERNAME"),
		Password:     os.Getenv("BULLHORN_PASSWORD"),
		ClientID:     os.Getenv("BULLHORN_CLIENT_ID"),
		ClientSecret: os.Getenv("BULLHORN_CLIENT_SECRET"),
		BinaryPath:   getBinaryPath(),
		AllowWrites:  os.Getenv("BULLHORN_INTEGRATION_WRITES") == "true",
		Verbose:      os.Getenv("BULLHORN_VERBOSE") == "true",
	}
}

// getBinaryPath determines the path to the bullhorn binary
func getBinaryPath() string {
	if path := os.Getenv("BULLHORN_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../bullhorn", "./bullhorn", "../bullhorn"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "bullhorn"
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.Username == "" || config.Password == "" || config.ClientID == "" || config.ClientSecret == "" {
		t.Skip("BULLHORN_* credentials not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.BinaryPath); err != nil {
		t.Skipf("bullhorn binary not found at %s, skipping integration test", config.BinaryPath)
	}
}

// SkipUnlessWritesAllowed skips tests that create records in the target corporation.
func (config *TestConfig) SkipUnlessWritesAllowed(t *testing.T) {
	t.Helper()

	if !config.AllowWrites {
		t.Skip("BULLHORN_INTEGRATION_WRITES not enabled, skipping write test")
	}
}

// CommandRunner provides utilities for running bullhorn commands
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

// Run executes a bullhorn command and returns output. Credentials reach the
// binary through the inherited BULLHORN_* environment, never the argument list.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(runner.config.BinaryPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.BinaryPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunJSON executes a command with JSON output and decodes the result into out.
func (runner *CommandRunner) RunJSON(out interface{}, args ...string) error {
	stdout, stderr, err := runner.Run(append(args, "--output", "json")...)
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr))
	}

	return json.Unmarshal([]byte(stdout), out)
}

// GenerateTestEmail creates a unique email address for test candidates
func GenerateTestEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@integration.example.com", prefix, time.Now().UnixNano())
}
