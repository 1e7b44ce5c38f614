package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-board/pkg/service"
)

func NewImportCmd(svc **service.Service) *cobra.Command {
	var parentID string

	cmd := &cobra.Command{
		Use:   "import <file.md>...",
		Short: "Import markdown files as nodes",
		Long: `Import markdown files. The frontmatter type selects the node type (notebox
when absent) and the title comes from the frontmatter or the first heading.
A file whose frontmatter id names an existing node updates that node.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			parent, err := resolve(s, parentID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				n, err := s.ImportMarkdown(string(content), parent)
				if err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}
				if n.IsDeleted() {
					fmt.Fprintf(out, "%s: removed empty %s %s\n", path, n.Type(), n.ID())
					continue
				}
				fmt.Fprintf(out, "%s → %s\n", path, n.ID())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&parentID, "parent", "p", "", "Container for new nodes (default: root folder)")

	return cmd
}
