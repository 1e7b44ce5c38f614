package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-board/pkg/service"
)

func NewKeysCmd(svc **service.Service) *cobra.Command {
	var (
		prefix     string
		showValues bool
	)

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the keys of the persistent registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := (*svc).Registry()
			out := cmd.OutOrStdout()

			for _, key := range reg.Keys() {
				if !strings.HasPrefix(key, prefix) {
					continue
				}
				if !showValues {
					fmt.Fprintln(out, key)
					continue
				}
				value, _ := reg.GetKey(key)
				fmt.Fprintf(out, "%s\t%s\n", key, value)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Only keys starting with this prefix")
	cmd.Flags().BoolVar(&showValues, "values", false, "Print values next to keys")

	return cmd
}
