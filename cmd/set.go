package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-board/pkg/service"
)

func NewSetCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <id> <key=value>...",
		Short: "Update fields of a node",
		Long: `Merge key=value pairs into a node's data. Keys the node's type does not
define are ignored. A node left empty by the update is removed.

Examples:
  board set nd:kq2x1.3f.a title="call dentist"
  board set nd:kq2x1.3f.a content=   # Clear the content`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			n, err := resolve(s, args[0])
			if err != nil {
				return err
			}
			partial, err := parseFields(args[1:])
			if err != nil {
				return err
			}
			res, err := s.Update(n, partial)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case res.Removed:
				fmt.Fprintf(out, "Removed empty %s %s\n", n.Type(), n.ID())
			case len(res.Changed) == 0:
				fmt.Fprintln(out, "No changes")
			default:
				fmt.Fprintf(out, "Updated %s\n", strings.Join(res.Changed, ", "))
			}
			return nil
		},
	}

	return cmd
}
