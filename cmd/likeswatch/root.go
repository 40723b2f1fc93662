package main

import (
	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	configPath string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "likeswatch",
		Short: "Watch accounts' liked posts and relay them to a chat channel",
		Long: `likeswatch periodically sweeps the liked posts of a set of monitored
accounts through an instrumented browser session, records what it has seen,
and relays new photo posts to a Discord channel with an interactive like
control.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(newRunCmd())
	root.AddCommand(newSweepCmd())
	root.AddCommand(newAuthCmd())
	root.AddCommand(newTargetCmd())
	root.AddCommand(newMuteCmd())

	return root
}
