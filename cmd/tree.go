package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mattsolo1/grove-board/pkg/service"
	"github.com/mattsolo1/grove-board/pkg/tree"
)

func NewTreeCmd(svc **service.Service) *cobra.Command {
	var (
		fromID  string
		asYAML  bool
		orphans bool
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the board as a tree",
		Long: `Print the board from the root folder, or from --from. Nodes held by several
containers are expanded once and marked (shared) elsewhere.

Examples:
  board tree
  board tree --yaml > board.yaml
  board tree --orphans            # Nodes no container holds`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			out := cmd.OutOrStdout()

			var items []*tree.Item
			if orphans {
				// Unreachable descendants are shown under their topmost orphan.
				for _, n := range s.Orphans() {
					if len(s.Store().ParentsOf(n)) == 0 {
						items = append(items, tree.Build(n))
					}
				}
				if len(items) == 0 {
					fmt.Fprintln(out, "No orphaned nodes")
					return nil
				}
			} else {
				start, err := resolve(s, fromID)
				if err != nil {
					return err
				}
				items = append(items, tree.Build(start))
			}

			if asYAML {
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				var v any = items
				if len(items) == 1 && !orphans {
					v = items[0]
				}
				if err := enc.Encode(v); err != nil {
					return fmt.Errorf("encode yaml: %w", err)
				}
				return enc.Close()
			}
			for _, item := range items {
				if err := item.Render(out); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fromID, "from", "", "Start at this node instead of the root folder")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Output YAML")
	cmd.Flags().BoolVar(&orphans, "orphans", false, "List nodes not reachable from the root folder")

	return cmd
}
