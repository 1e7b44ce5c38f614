package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-board/pkg/models"
	"github.com/mattsolo1/grove-board/pkg/service"
)

func NewSearchCmd(svc **service.Service) *cobra.Command {
	var (
		searchType  string
		searchLimit int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search nodes",
		Long: `Search for nodes matching the query. Every word must match; the last one
may be a prefix. Containers also match on their children's text.

Examples:
  board search dentist
  board search "call den"       # Prefix match on the last word
  board search milk -t dropbar  # Only bars holding a match`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			query := strings.Join(args, " ")

			var filter models.NodeType
			if searchType != "" {
				t, err := models.ParseNodeType(searchType)
				if err != nil {
					return err
				}
				filter = t
			}

			results, err := s.Search(query)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			shown := 0
			for _, n := range results {
				if filter != "" && n.Type() != filter {
					continue
				}
				if searchLimit > 0 && shown == searchLimit {
					break
				}
				shown++
				fmt.Fprintf(out, "%d. %s\n", shown, label(n))
			}
			if shown == 0 {
				fmt.Fprintln(out, "No results found")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&searchType, "type", "t", "", "Filter by node type")
	cmd.Flags().IntVar(&searchLimit, "limit", 50, "Maximum results")

	return cmd
}
