package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/bullhorn-client/internal/constants"
	"github.com/fivetwenty-io/bullhorn-client/pkg/bhclient"
	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

const (
	// JSON formatting.
	defaultJSONIndent = 2

	NotAvailable = "N/A"
)

// passwordReader reads a password without echo. Replaced in tests.
var passwordReader = func(fd int) ([]byte, error) {
	return term.ReadPassword(fd)
}

// stdinIsTerminal reports whether a password can be prompted for.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// loadConfig builds a client config from viper keys, prompting for the
// password when it is not configured.
func loadConfig(cmd *cobra.Command) (*bullhorn.Config, error) {
	config := &bullhorn.Config{
		AuthEndpoint: viper.GetString("auth-endpoint"),
		APIRoot:      viper.GetString("api-root"),
		Version:      viper.GetString("api-version"),
		Username:     viper.GetString("username"),
		Password:     viper.GetString("password"),
		ClientID:     viper.GetString("client-id"),
		ClientSecret: viper.GetString("client-secret"),
		HTTPTimeout:  viper.GetDuration("timeout"),
	}

	if config.Username == "" || config.ClientID == "" || config.ClientSecret == "" {
		return nil, constants.ErrNoCredentials
	}

	if config.Password == "" {
		password, err := promptPassword(cmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}

		config.Password = password
	}

	cacheConfig, err := cacheConfigFromViper()
	if err != nil {
		return nil, err
	}

	config.CandidateCache = cacheConfig

	if viper.GetBool("verbose") {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
		config.Logger = bullhorn.NewZerologLogger(logger)
		config.Debug = true
	}

	return config, nil
}

func cacheConfigFromViper() (*bullhorn.CacheConfig, error) {
	builder := bullhorn.NewCacheBuilder()

	switch cacheType := bullhorn.CacheType(viper.GetString("cache")); cacheType {
	case "", bullhorn.CacheTypeMemory:
		builder.WithType(bullhorn.CacheTypeMemory).WithMemoryConfig(constants.DefaultCacheSize)
	case bullhorn.CacheTypeNone:
		builder.WithType(bullhorn.CacheTypeNone)
	case bullhorn.CacheTypeNATS:
		// Memory L1 in front of the shared bucket
		builder.WithType(bullhorn.CacheTypeNATS).WithMemoryConfig(constants.DefaultCacheSize).WithNATSConfig(&bullhorn.NATSKVConfig{
			URL:          viper.GetString("nats-url"),
			Bucket:       viper.GetString("nats-bucket"),
			Name:         "bullhorn-cli",
			CreateBucket: true,
			TTL:          constants.DefaultCandidateCacheTTL,
		})
	default:
		return nil, fmt.Errorf("%w: %s", bullhorn.ErrUnsupportedCacheType, cacheType)
	}

	return builder.Config(), nil
}

func promptPassword(out io.Writer) (string, error) {
	if !stdinIsTerminal() {
		return "", constants.ErrNotInteractive
	}

	_, _ = fmt.Fprint(out, "Password: ")

	bytePassword, err := passwordReader(int(os.Stdin.Fd()))
	_, _ = fmt.Fprintln(out)

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(bytePassword) == 0 {
		return "", constants.ErrPasswordRequired
	}

	return string(bytePassword), nil
}

// newClient creates a client from the command's configuration.
func newClient(cmd *cobra.Command) (bullhorn.Client, error) {
	config, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	return bhclient.New(config)
}

// withClient runs fn with a configured client and closes it afterwards.
func withClient(cmd *cobra.Command, fn func(client bullhorn.Client) error) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	defer func() { _ = client.Close() }()

	return fn(client)
}

// render writes value as JSON or YAML, or calls table for the default format.
func render(cmd *cobra.Command, value interface{}, table func(*tablewriter.Table)) error {
	out := cmd.OutOrStdout()

	switch output := viper.GetString("output"); output {
	case constants.OutputFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))

		return encoder.Encode(value)
	case constants.OutputFormatYAML:
		encoder := yaml.NewEncoder(out)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(value)
	case "", constants.OutputFormatTable:
		writer := tablewriter.NewWriter(out)
		table(writer)

		if err := writer.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownOutput, output)
	}
}

// parseID parses a positive entity id argument.
func parseID(value string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", constants.ErrInvalidID, value)
	}

	return id, nil
}

// validateFilePath checks that a path is safe to read and names a regular file.
func validateFilePath(filePath string) (string, error) {
	if filePath == "" {
		return "", constants.ErrFileNameRequired
	}

	cleanPath := filepath.Clean(filePath)

	if filepath.IsAbs(filePath) {
		if cleanPath != filePath {
			return "", fmt.Errorf("%w: %s", constants.ErrDirectoryTraversal, filePath)
		}
	} else if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", constants.ErrDirectoryTraversal, filePath)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", fmt.Errorf("file not accessible: %w", err)
	}

	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", constants.ErrNotRegularFile, filePath)
	}

	return cleanPath, nil
}

func orNA(value string) string {
	if value == "" {
		return NotAvailable
	}

	return value
}

func formatMillis(millis int64) string {
	if millis == 0 {
		return NotAvailable
	}

	return time.UnixMilli(millis).UTC().Format(time.RFC3339)
}
