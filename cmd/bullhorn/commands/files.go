package commands

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/bullhorn-client/internal/constants"
	"github.com/fivetwenty-io/bullhorn-client/pkg/bullhorn"
)

// NewFilesCommand creates the files command group
func NewFilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "files",
		Aliases: []string{"file"},
		Short:   "Manage entity files",
		Long:    "Attach files to Bullhorn entities",
	}

	cmd.AddCommand(newFilesAttachCommand())

	return cmd
}

func newFilesAttachCommand() *cobra.Command {
	var (
		entity      string
		entityID    string
		filePath    string
		fileType    string
		description string
		externalID  string
	)

	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Attach a file to an entity",
		Long:  "Upload a local file and attach it to the entity identified by --entity and --id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(entityID)
			if err != nil {
				return err
			}

			cleanPath, err := validateFilePath(filePath)
			if err != nil {
				return err
			}

			content, err := os.ReadFile(cleanPath)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}

			name := filepath.Base(cleanPath)
			if externalID == "" {
				externalID = name
			}

			attachment := &bullhorn.FileAttachment{
				ExternalID:  externalID,
				Content:     content,
				FileType:    fileType,
				Name:        name,
				ContentType: mime.TypeByExtension(filepath.Ext(name)),
				Description: description,
			}

			return withClient(cmd, func(client bullhorn.Client) error {
				result, err := client.Files().Attach(cmd.Context(), entity, id, attachment)
				if err != nil {
					return err
				}

				return render(cmd, result, func(table *tablewriter.Table) {
					table.Header("File ID", "Entity", "Entity ID", "Name")
					_ = table.Append(strconv.Itoa(result.FileID), entity, strconv.Itoa(id), name)
				})
			})
		},
	}

	cmd.Flags().StringVar(&entity, "entity", constants.EntityCandidate, "entity type")
	cmd.Flags().StringVar(&entityID, "id", "", "entity id")
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "path of the file to attach")
	cmd.Flags().StringVar(&fileType, "type", constants.DefaultFileType, "Bullhorn file type")
	cmd.Flags().StringVar(&description, "description", "", "file description")
	cmd.Flags().StringVar(&externalID, "external-id", "", "external id (default file name)")

	return cmd
}
