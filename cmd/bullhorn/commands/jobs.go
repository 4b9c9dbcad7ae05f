package commands

import (
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

// NewJobsCommand creates the jobs command group
func NewJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job", "job-orders"},
		Short:   "Manage job orders",
		Long:    "List Bullhorn job orders",
	}

	cmd.AddCommand(newJobsOpenCommand())

	return cmd
}

func newJobsOpenCommand() *cobra.Command {
	var (
		fields  []string
		count   int
		start   int
		orderBy string
	)

	cmd := &cobra.Command{
		Use:   "open",
		Short: "List open job orders",
		Long:  "List job orders that are currently open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(client bullhorn.Client) error {
				jobs, err := client.JobOrders().ListOpen(cmd.Context(), &bullhorn.ListOptions{
					Fields:  fields,
					Count:   count,
					Start:   start,
					OrderBy: orderBy,
				})
				if err != nil {
					return err
				}

				return render(cmd, jobs, func(table *tablewriter.Table) {
					table.Header("ID", "Title", "Status", "Type", "Openings", "Client", "Added")

					for _, job := range jobs {
						clientName := NotAvailable
						if job.ClientCorporation != nil && job.ClientCorporation.Name != "" {
							clientName = job.ClientCorporation.Name
						}

						_ = table.Append([]string{
							strconv.Itoa(job.ID),
							strings.TrimSpace(job.Title),
							orNA(job.Status),
							orNA(job.EmploymentType),
							strconv.Itoa(job.NumOpenings),
							clientName,
							formatMillis(job.DateAdded),
						})
					}
				})
			})
		},
	}

	cmd.Flags().StringSliceVar(&fields, "fields", nil, "fields to return (default all)")
	cmd.Flags().IntVar(&count, "count", 0, "page size (default 499)")
	cmd.Flags().IntVar(&start, "start", 0, "offset of the first result")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "sort field, prefix with - for descending")

	return cmd
}
