package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-board/pkg/registry"
	"github.com/mattsolo1/grove-board/pkg/service"
)

func NewResetCmd(svc **service.Service) *cobra.Command {
	var (
		hard  bool
		force bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase the persisted board",
		Long: `Delete every node and clear the persistent registry, leaving an empty
root folder. --hard erases the storage key right away before the new root
is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("reset erases the whole board; pass --force to confirm")
			}
			mode := registry.ResetSoft
			if hard {
				mode = registry.ResetHard
			}
			count, err := (*svc).Reset(cmd.Context(), mode)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d node(s)\n", count)
			return nil
		},
	}

	cmd.Flags().BoolVar(&hard, "hard", false, "Erase the storage key immediately")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Confirm the reset")

	return cmd
}
