package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-board/pkg/service"
)

func NewAddCmd(svc **service.Service) *cobra.Command {
	var position int

	cmd := &cobra.Command{
		Use:   "add <parent> <child>",
		Short: "Attach an existing node to a container",
		Long: `Attach a node to another container. A node may live in several
containers at once; use detach to take it out of one.

Examples:
  board add nd:kq2x1.3f.a nd:kq2x5.9c.b          # Append
  board add root nd:kq2x5.9c.b --at 0            # Insert first`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			parent, err := resolve(s, args[0])
			if err != nil {
				return err
			}
			child, err := resolve(s, args[1])
			if err != nil {
				return err
			}
			if err := s.AddChild(parent, child, position); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", label(child), label(parent))
			return nil
		},
	}

	cmd.Flags().IntVar(&position, "at", -1, "Insert at this position instead of appending")

	return cmd
}
