package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dbmodel/internal/auth"
	"dbmodel/internal/config"
	"dbmodel/internal/repository"
	"dbmodel/internal/store"
)

var tokenTTL time.Duration

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token <email>",
	Short: "Issue an access token for a stored user",
	Long: `Load a stored user and print a JWT carrying the roles of their
permissions, signed with the configured secret.

Example:
  seed token admin@example.com --ttl 1h`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		docStore, err := store.Open(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer docStore.Close()

		user, err := repository.NewUserRepository(docStore).FindByEmail(ctx, args[0])
		if err != nil {
			return err
		}
		token, err := auth.NewJWTService(cfg.JWTSecret).GenerateToken(user.Sub, user.Email, user.Roles(), tokenTTL)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", auth.AccessTokenExpiry, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
