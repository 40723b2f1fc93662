package main

import (
	"fmt"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"likeswatch/pkg/auth"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored bot token",
	}
	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Store the Discord bot token",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := auth.NewManager()
			if err != nil {
				return fmt.Errorf("credential store unavailable: %w", err)
			}

			fmt.Print("Discord bot token: ")
			raw, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("failed to read token: %w", err)
			}
			token := strings.TrimSpace(string(raw))
			if token == "" {
				return fmt.Errorf("token cannot be empty")
			}

			err = manager.Store(&auth.Credential{
				Name:         auth.CredentialDiscordToken,
				Secret:       token,
				LastModified: time.Now(),
			})
			if err != nil {
				return fmt.Errorf("failed to store token: %w", err)
			}
			fmt.Println("Token stored.")
			return nil
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a bot token is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := auth.NewManager()
			if err != nil {
				return fmt.Errorf("credential store unavailable: %w", err)
			}
			if manager.Exists(auth.CredentialDiscordToken) {
				fmt.Println("Token: stored")
			} else {
				fmt.Println("Token: not stored")
			}
			return nil
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored bot token",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := auth.NewManager()
			if err != nil {
				return fmt.Errorf("credential store unavailable: %w", err)
			}
			if err := manager.Delete(auth.CredentialDiscordToken); err != nil {
				return fmt.Errorf("failed to delete token: %w", err)
			}
			fmt.Println("Token deleted.")
			return nil
		},
	}
}
