package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/bullhorn-client/cmd/bullhorn/commands"
	"github.com/fivetwenty-io/bullhorn-client/internal/constants"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "bullhorn",
	Short: "Bullhorn REST API CLI",
	Long: `A command-line interface for the Bullhorn staffing REST API.

Credentials are read from $HOME/.bullhorn/config.yml, BULLHORN_* environment
variables or flags. Every invocation logs in on first use.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.bullhorn/config.yml)")
	flags.String("auth-endpoint", "", "OAuth base URL")
	flags.String("api-root", "", "REST services root URL")
	flags.String("api-version", "", "REST API version sent on login")
	flags.StringP("username", "u", "", "API username")
	flags.StringP("password", "p", "", "API password (prompted when omitted)")
	flags.String("client-id", "", "OAuth client id")
	flags.String("client-secret", "", "OAuth client secret")
	flags.Duration("timeout", 0, "per-request timeout (0 means none)")
	flags.String("cache", "memory", "candidate cache backend (memory, nats, none)")
	flags.String("nats-url", "", "NATS server URL for the nats cache")
	flags.String("nats-bucket", "bullhorn-candidates", "NATS KV bucket for the nats cache")
	flags.StringP("output", "o", constants.OutputFormatTable, "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")

	// Bind flags to viper
	for _, name := range []string{
		"config", "auth-endpoint", "api-root", "api-version", "username", "password",
		"client-id", "client-secret", "timeout", "cache", "nats-url", "nats-bucket",
		"output", "verbose",
	} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewLoginCommand())
	rootCmd.AddCommand(commands.NewJobsCommand())
	rootCmd.AddCommand(commands.NewCandidatesCommand())
	rootCmd.AddCommand(commands.NewSubmissionsCommand())
	rootCmd.AddCommand(commands.NewFilesCommand())
	rootCmd.AddCommand(commands.NewTearsheetsCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.bullhorn/config.yml
		viper.AddConfigPath(filepath.Join(home, ".bullhorn"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// BULLHORN_CLIENT_SECRET maps to client-secret
	viper.SetEnvPrefix("BULLHORN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
