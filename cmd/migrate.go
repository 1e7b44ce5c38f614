package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-board/pkg/migration"
	"github.com/mattsolo1/grove-board/pkg/models"
	"github.com/mattsolo1/grove-board/pkg/service"
)

func NewMigrateCmd(svc **service.Service) *cobra.Command {
	var (
		parentID      string
		containerType string
		dryRun        bool
		verbose       bool
		includeHidden bool
	)

	cmd := &cobra.Command{
		Use:   "migrate <notebook-dir>",
		Short: "Import a directory of markdown notes",
		Long: `Import every markdown file below a notebook directory. Each subdirectory
becomes a container titled after it.

Examples:
  board migrate ~/notebooks --dry-run
  board migrate ~/notebooks -p nd:kq2x1.3f.a --container folder -v`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			parent, err := resolve(s, parentID)
			if err != nil {
				return err
			}
			container, err := models.ParseNodeType(containerType)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			report, err := migration.Migrate(s, args[0], parent, migration.MigrationOptions{
				Container:  container,
				DryRun:     dryRun,
				Verbose:    verbose,
				SkipHidden: !includeHidden,
			}, out)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\nFiles: %d, imported: %d, skipped: %d, failed: %d, containers: %d (%s)\n",
				report.TotalFiles, report.ImportedFiles, report.SkippedFiles, report.FailedFiles,
				report.CreatedContainers, report.Duration().Round(time.Millisecond))
			for file, err := range report.ProcessingErrors {
				fmt.Fprintf(out, "  %s: %v\n", file, err)
			}
			if report.FailedFiles > 0 {
				return fmt.Errorf("%d file(s) failed to import", report.FailedFiles)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&parentID, "parent", "p", "", "Container to import into (default: root folder)")
	cmd.Flags().StringVar(&containerType, "container", string(models.NodeTypeDropBar), "Node type for directories")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be imported")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print each file")
	cmd.Flags().BoolVar(&includeHidden, "hidden", false, "Include hidden files and directories")

	return cmd
}
