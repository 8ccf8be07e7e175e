package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database and apply migrations",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		n, err := store.ProblemCount(context.Background())
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		fmt.Printf("✅ Database ready at %s (%d problem(s) stored)\n", cfg.DatabasePath, n)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
