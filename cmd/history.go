package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/db"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show when a problem was sent for revision",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Println("❌ Invalid ID")
			return
		}

		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		ctx := context.Background()
		p, err := store.GetProblem(ctx, id)
		if errors.Is(err, db.ErrNotFound) {
			fmt.Println("❌ Problem not found with ID:", id)
			return
		}
		if err != nil {
			fmt.Println("❌ Error fetching problem:", err)
			return
		}
		events, err := store.ListReviewEvents(ctx, id)
		if err != nil {
			fmt.Println("❌ Error fetching history:", err)
			return
		}

		fmt.Printf("📜 %s (%s)\n", p.Title, p.Difficulty)
		if len(events) == 0 {
			fmt.Println("   never sent for revision")
			return
		}
		loc, err := cfg.Location()
		if err != nil {
			fmt.Println("❌", err)
			return
		}
		for _, ev := range events {
			fmt.Printf("   • %s\n", ev.ReviewedAt.In(loc).Format("2006-01-02 15:04"))
		}
		fmt.Printf("   %d review(s)\n", len(events))
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
