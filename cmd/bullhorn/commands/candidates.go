package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

// ErrCandidateNotFound is returned when an email lookup has no match.
var ErrCandidateNotFound = errors.New("candidate not found")

// NewCandidatesCommand creates the candidates command group
func NewCandidatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "candidates",
		Aliases: []string{"candidate"},
		Short:   "Manage candidates",
		Long:    "Find and create Bullhorn candidates",
	}

	cmd.AddCommand(newCandidatesFindCommand())
	cmd.AddCommand(newCandidatesCreateCommand())
	cmd.AddCommand(newCandidatesEnsureCommand())

	return cmd
}

func newCandidatesFindCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "find EMAIL",
		Short: "Find a candidate by email",
		Long:  "Search for the candidate with the given email address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(client bullhorn.Client) error {
				candidate, err := client.Candidates().FindByEmail(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				if candidate == nil {
					return fmt.Errorf("%w: %s", ErrCandidateNotFound, args[0])
				}

				return render(cmd, candidate, func(table *tablewriter.Table) {
					table.Header("ID", "First Name", "Last Name", "Email")
					_ = table.Append([]string{
						strconv.Itoa(candidate.ID),
						orNA(candidate.FirstName),
						orNA(candidate.LastName),
						orNA(candidate.Email),
					})
				})
			})
		},
	}
}

// candidateFlags collects the candidate fields shared by create and ensure.
type candidateFlags struct {
	firstName string
	lastName  string
	email     string
	phone     string
	source    string
	status    string
}

func (f *candidateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&f.lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&f.email, "email", "", "email address")
	cmd.Flags().StringVar(&f.phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&f.source, "source", "", "candidate source")
	cmd.Flags().StringVar(&f.status, "status", "", "candidate status")
}

func (f *candidateFlags) candidate() *bullhorn.Candidate {
	candidate := &bullhorn.Candidate{
		FirstName: f.firstName,
		LastName:  f.lastName,
		Email:     f.email,
		Phone:     f.phone,
		Source:    f.source,
		Status:    f.status,
	}

	if f.firstName != "" || f.lastName != "" {
		candidate.Name = joinName(f.firstName, f.lastName)
	}

	return candidate
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

func newCandidatesCreateCommand() *cobra.Command {
	var flags candidateFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a candidate",
		Long:  "Create a new candidate without checking for duplicates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(client bullhorn.Client) error {
				result, err := client.Candidates().Create(cmd.Context(), flags.candidate())
				if err != nil {
					return err
				}

				return renderChange(cmd, result)
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func newCandidatesEnsureCommand() *cobra.Command {
	var flags candidateFlags

	cmd := &cobra.Command{
		Use:   "ensure",
		Short: "Find or create a candidate by email",
		Long:  "Return the id of the candidate with --email, creating the candidate when none exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(client bullhorn.Client) error {
				id, err := client.Candidates().FindOrCreateByEmail(cmd.Context(), flags.candidate())
				if err != nil {
					return err
				}

				type EnsureResult struct {
					ID    int    `json:"id"    yaml:"id"`
					Email string `json:"email" yaml:"email"`
				}

				result := EnsureResult{ID: id, Email: flags.email}

				return render(cmd, result, func(table *tablewriter.Table) {
					table.Header("ID", "Email")
					_ = table.Append(strconv.Itoa(result.ID), result.Email)
				})
			})
		},
	}

	flags.register(cmd)
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func renderChange(cmd *cobra.Command, result *bullhorn.ChangeResult) error {
	return render(cmd, result, func(table *tablewriter.Table) {
		table.Header("Entity", "ID", "Change")
		_ = table.Append(result.ChangedEntityType, strconv.Itoa(result.ChangedEntityID), result.ChangeType)
	})
}
