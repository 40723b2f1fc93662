package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"likeswatch/pkg/config"
	"likeswatch/pkg/models"
	"likeswatch/pkg/storage"
)

// withStore loads config, opens the database and runs fn against it
func withStore(fn func(ctx context.Context, store storage.Admin) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(context.Background(), store)
}

func newTargetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Manage monitored accounts",
	}

	var displayName, channelID string
	add := &cobra.Command{
		Use:   "add <account-id>",
		Short: "Add or update a monitored account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store storage.Admin) error {
				name := displayName
				if name == "" {
					name = args[0]
				}
				err := store.AddTarget(ctx, models.Target{
					AccountID:       args[0],
					DisplayName:     name,
					NotifyChannelID: channelID,
				})
				if err != nil {
					return err
				}
				fmt.Printf("Target %s added.\n", args[0])
				return nil
			})
		},
	}
	add.Flags().StringVar(&displayName, "name", "", "display name used in notification footers")
	add.Flags().StringVar(&channelID, "channel", "", "channel id that receives this target's notifications")

	remove := &cobra.Command{
		Use:   "remove <account-id>",
		Short: "Stop monitoring an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store storage.Admin) error {
				if err := store.RemoveTarget(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("Target %s removed.\n", args[0])
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List monitored accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store storage.Admin) error {
				targets, err := store.ListTargets(ctx)
				if err != nil {
					return err
				}
				if len(targets) == 0 {
					fmt.Println("No targets configured.")
					return nil
				}
				for _, t := range targets {
					seen, err := store.CountSeen(ctx, t.AccountID)
					if err != nil {
						return err
					}
					fmt.Printf("%s  %s  channel=%s  seen=%d\n", t.AccountID, t.DisplayName, t.NotifyChannelID, seen)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(add, remove, list)
	return cmd
}

func newMuteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mute",
		Short: "Manage text patterns that suppress notifications",
	}

	add := &cobra.Command{
		Use:   "add <pattern>",
		Short: "Suppress posts whose text contains the pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store storage.Admin) error {
				if err := store.AddMuteRule(ctx, models.MuteRule{Pattern: args[0]}); err != nil {
					return err
				}
				fmt.Printf("Mute pattern %q added.\n", args[0])
				return nil
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove <pattern>",
		Short: "Remove a mute pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store storage.Admin) error {
				if err := store.RemoveMuteRule(ctx, args[0]); err != nil {
					return err
				}
				fmt.Printf("Mute pattern %q removed.\n", args[0])
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List mute patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, store storage.Admin) error {
				rules, err := store.ListMuteRules(ctx)
				if err != nil {
					return err
				}
				if len(rules) == 0 {
					fmt.Println("No mute patterns configured.")
					return nil
				}
				for _, r := range rules {
					fmt.Println(r.Pattern)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(add, remove, list)
	return cmd
}
