package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show stored problem and review statistics",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		ctx := context.Background()
		total, err := store.ProblemCount(ctx)
		if err != nil {
			fmt.Println("❌ Error counting problems:", err)
			return
		}
		stats, err := store.ReviewStats(ctx, today())
		if err != nil {
			fmt.Println("❌ Error fetching stats:", err)
			return
		}

		fmt.Println("📊 Statistics")
		fmt.Println("-------------")
		fmt.Printf("Total Problems:   %d\n", total)
		fmt.Printf("Never Reviewed:   %d\n", stats.NeverReviewed)
		fmt.Printf("Reviewed Today:   %d\n", stats.ReviewedToday)
		fmt.Printf("Reviews Last 7D:  %d\n", stats.ReviewsLast7Days)
		fmt.Printf("Total Reviews:    %d\n", stats.Total)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
