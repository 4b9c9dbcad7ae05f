package commands

import (
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

// NewTearsheetsCommand creates the tearsheets command group
func NewTearsheetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tearsheets",
		Aliases: []string{"tearsheet"},
		Short:   "Manage tearsheets",
		Long:    "Manage candidate membership of Bullhorn tearsheets",
	}

	cmd.AddCommand(newTearsheetsAddCandidateCommand())

	return cmd
}

func newTearsheetsAddCandidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add-candidate TEARSHEET_ID CANDIDATE_ID",
		Short: "Add a candidate to a tearsheet",
		Long:  "Associate an existing candidate with an existing tearsheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tearsheetID, err := parseID(args[0])
			if err != nil {
				return err
			}

			candidateID, err := parseID(args[1])
			if err != nil {
				return err
			}

			return withClient(cmd, func(client bullhorn.Client) error {
				result, err := client.Tearsheets().AddCandidate(cmd.Context(), tearsheetID, candidateID)
				if err != nil {
					return err
				}

				return renderChange(cmd, result)
			})
		},
	}
}
