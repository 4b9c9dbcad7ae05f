package commands

import (
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

// NewLoginCommand creates the login command. The session token is never printed.
func NewLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Verify credentials by logging in",
		Long:  "Perform the full authorization flow and display the REST URL of the resulting session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(client bullhorn.Client) error {
				session, err := client.Session(cmd.Context())
				if err != nil {
					return err
				}

				type LoginInfo struct {
					RestURL    string    `json:"restUrl"    yaml:"rest_url"`
					AcquiredAt time.Time `json:"acquiredAt" yaml:"acquired_at"`
					Age        string    `json:"age"        yaml:"age"`
				}

				info := LoginInfo{
					RestURL:    session.RestURL,
					AcquiredAt: session.AcquiredAt,
					Age:        session.Age(time.Now()).Round(time.Millisecond).String(),
				}

				return render(cmd, info, func(table *tablewriter.Table) {
					table.Header("Property", "Value")
					_ = table.Append("REST URL", info.RestURL)
					_ = table.Append("Acquired", info.AcquiredAt.Format(time.RFC3339))
					_ = table.Append("Age", info.Age)
				})
			})
		},
	}
}
