package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-board/pkg/service"
)

func NewRmCmd(svc **service.Service) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete nodes",
		Long: `Delete nodes. Children of a deleted container stay on the board unless
--recursive is given, which also deletes every descendant no other container
still holds.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			out := cmd.OutOrStdout()

			for _, arg := range args {
				n, err := resolve(s, arg)
				if err != nil {
					return err
				}
				name := label(n)
				if recursive {
					count, err := s.DeleteTree(n)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Deleted %s and %d descendant(s)\n", name, count-1)
					continue
				}
				if err := s.Delete(n); err != nil {
					return err
				}
				fmt.Fprintf(out, "Deleted %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Also delete descendants left without a container")

	return cmd
}
