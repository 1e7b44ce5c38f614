package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-board/cmd"
	"github.com/mattsolo1/grove-board/cmd/config"
	"github.com/mattsolo1/grove-board/pkg/service"
)

var svc *service.Service

func main() {
	rootCmd := &cobra.Command{
		Use:          "board",
		Short:        "A board of notes, bars and folders",
		SilenceUsage: true,
	}
	cobra.OnInitialize(config.InitConfig)
	config.AddGlobalFlags(rootCmd)

	rootCmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		// This runs once before any subcommand
		if cmd.SkipsService(c) {
			return nil
		}
		var err error
		svc, err = config.InitService(c.Context())
		return err
	}
	rootCmd.PersistentPostRunE = func(c *cobra.Command, args []string) error {
		if svc == nil {
			return nil
		}
		// Close cancels the pending flush timer and flushes synchronously.
		err := svc.Close(c.Context())
		svc = nil
		return err
	}

	cmd.AddCommands(rootCmd, &svc)

	if err := rootCmd.Execute(); err != nil {
		// Post-run hooks are skipped when a command fails; keep what it did.
		if svc != nil {
			_ = svc.Close(context.Background())
		}
		os.Exit(1)
	}
}
