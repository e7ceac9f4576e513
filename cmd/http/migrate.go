package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/igaue-takahiko/food-delivery-app/internal/config"
	"github.com/igaue-takahiko/food-delivery-app/internal/repository"
)

// delivery migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()
		dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer dbPool.Close()

		fmt.Println("Applying schema…")
		if err := repository.NewRepository(dbPool).Migrate(ctx); err != nil {
			return err
		}
		fmt.Println("Done.")
		return nil
	},
}
