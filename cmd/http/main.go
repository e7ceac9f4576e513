package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "delivery",
	Short: "Food delivery order service",
	// Running the binary without a subcommand starts the server.
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("account", "", "account id to put in the token")
	tokenCmd.Flags().String("role", "USER", "role claim (USER, SELLER or ADMIN)")
	_ = tokenCmd.MarkFlagRequired("account")
}
