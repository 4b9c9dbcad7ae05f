package commands

import (
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/bullhorn-client/internal/constants"
	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

// NewSubmissionsCommand creates the submissions command group
func NewSubmissionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "submissions",
		Aliases: []string{"submission"},
		Short:   "Manage job submissions",
		Long:    "Submit candidates to job orders",
	}

	cmd.AddCommand(newSubmissionsCreateCommand())

	return cmd
}

func newSubmissionsCreateCommand() *cobra.Command {
	var (
		candidateID string
		jobOrderID  string
		status      string
		source      string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a candidate to a job order",
		Long:  "Create a job submission linking --candidate to --job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if candidateID == "" {
				return constants.ErrCandidateRequired
			}

			if jobOrderID == "" {
				return constants.ErrJobOrderRequired
			}

			candidate, err := parseID(candidateID)
			if err != nil {
				return err
			}

			jobOrder, err := parseID(jobOrderID)
			if err != nil {
				return err
			}

			return withClient(cmd, func(client bullhorn.Client) error {
				result, err := client.JobSubmissions().Create(cmd.Context(), &bullhorn.JobSubmission{
					Candidate: &bullhorn.EntityRef{ID: candidate},
					JobOrder:  &bullhorn.EntityRef{ID: jobOrder},
					Status:    status,
					Source:    source,
				})
				if err != nil {
					return err
				}

				return renderChange(cmd, result)
			})
		},
	}

	cmd.Flags().StringVar(&candidateID, "candidate", "", "candidate id")
	cmd.Flags().StringVar(&jobOrderID, "job", "", "job order id")
	cmd.Flags().StringVar(&status, "status", "", "submission status (default \"New Lead\")")
	cmd.Flags().StringVar(&source, "source", "", "submission source")

	return cmd
}
