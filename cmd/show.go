package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-board/pkg/ident"
	"github.com/mattsolo1/grove-board/pkg/service"
)

func NewShowCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a node's fields, children and containers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc

			n, err := resolve(s, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "ID:      %s\n", n.ID())
			fmt.Fprintf(out, "Type:    %s\n", n.Type())
			if created, ok := ident.Time(string(n.ID())); ok {
				fmt.Fprintf(out, "Created: %s\n", created.Local().Format("2006-01-02 15:04:05"))
			}

			data := n.Data().Map()
			keys := make([]string, 0, len(data))
			for k := range data {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "%s: %q\n", k, data[k])
			}

			if children := n.Children(); len(children) > 0 {
				fmt.Fprintln(out, "Children:")
				for i, c := range children {
					fmt.Fprintf(out, "  %d. %s\n", i, label(c))
				}
			}
			if parents := s.Store().ParentsOf(n); len(parents) > 0 {
				fmt.Fprintln(out, "In:")
				for _, p := range parents {
					fmt.Fprintf(out, "  %s\n", label(p))
				}
			}
			return nil
		},
	}

	return cmd
}
