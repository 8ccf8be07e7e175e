package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/models"
	"github.com/spf13/cobra"
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show overview of progress and stats",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		stats, err := store.ReviewStats(context.Background(), today())
		if err != nil {
			fmt.Println("❌ Error fetching stats:", err)
			return
		}

		fmt.Println("\n📊 Revision Overview")
		fmt.Println("====================")
		fmt.Printf("Total Reviews:      %d\n", stats.Total)
		fmt.Printf("Reviews Last 7D:    %d\n", stats.ReviewsLast7Days)
		fmt.Printf("Never Reviewed:     %d\n", stats.NeverReviewed)

		fmt.Println("\n📈 Problem Distribution by Difficulty")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Difficulty\tCount")
		fmt.Fprintln(w, "----------\t-----")

		for _, d := range []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard, models.DifficultyUnknown} {
			count := stats.CountByDifficulty[d]
			if d == models.DifficultyUnknown && count == 0 {
				continue
			}
			fmt.Fprintf(w, "%s\t%d\t%s\n", d, count, strings.Repeat("█", count))
		}
		w.Flush()
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(overviewCmd)
}
