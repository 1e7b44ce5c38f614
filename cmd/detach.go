package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-board/pkg/service"
)

func NewDetachCmd(svc **service.Service) *cobra.Command {
	var fromID string

	cmd := &cobra.Command{
		Use:   "detach <id>",
		Short: "Take a node out of its containers",
		Long: `Detach a node from every container holding it, or from one with --from.
The node itself is kept; see "board tree --orphans".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			n, err := resolve(s, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if fromID == "" {
				parents := s.Store().RemoveFromParents(n)
				fmt.Fprintf(out, "Detached %s from %d container(s)\n", label(n), len(parents))
				return nil
			}

			parent, err := resolve(s, fromID)
			if err != nil {
				return err
			}
			for i, c := range parent.Children() {
				if c == n {
					if _, err := s.RemoveChildAt(parent, i); err != nil {
						return err
					}
					fmt.Fprintf(out, "Detached %s from %s\n", label(n), label(parent))
					return nil
				}
			}
			return fmt.Errorf("%s is not in %s", n.ID(), parent.ID())
		},
	}

	cmd.Flags().StringVar(&fromID, "from", "", "Only detach from this container")

	return cmd
}
