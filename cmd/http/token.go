package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/igaue-takahiko/food-delivery-app/internal/auth"
	"github.com/igaue-takahiko/food-delivery-app/internal/config"
	"github.com/igaue-takahiko/food-delivery-app/internal/model"
)

// delivery token --account <id> --role SELLER
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for local testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		accountID, _ := cmd.Flags().GetString("account")
		rawRole, _ := cmd.Flags().GetString("role")
		role, err := model.ParseRole(rawRole)
		if err != nil {
			return err
		}

		token, err := auth.NewManager(cfg.JWT.Secret, cfg.JWT.TTL).Issue(accountID, role)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
