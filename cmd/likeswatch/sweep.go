package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one sweep and exit",
		Long: `Fetches every target's likes once, records and relays the new posts,
then exits. Notifications go out over the REST API; the interactive gateway
is not started, so like controls sent by this command are handled by the
next 'run' daemon.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine()
			if err != nil {
				return err
			}
			defer e.shutdown()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e.crawl.Sweep(ctx)
			return nil
		},
	}
}
