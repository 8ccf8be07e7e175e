package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/leetcode"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import recent accepted submissions from LeetCode",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		syncer, err := newSyncer(store)
		if err != nil {
			fmt.Println("❌", err)
			return
		}

		rep, err := syncer.Sync(context.Background())
		var rl *leetcode.RateLimitError
		switch {
		case errors.As(err, &rl):
			fmt.Println("❌ Too many requests - the API has rate-limited you. Wait 1-2 hours and try again.")
			return
		case err != nil:
			fmt.Println("❌ Failed to fetch LeetCode submissions:", err)
			return
		}

		fmt.Printf("✅ Synced %d submission(s): %d added, %d updated, %d unchanged, %d failed\n",
			rep.Fetched, rep.Added, rep.Updated, rep.Skipped, rep.Failed)
		if cfg.LeetCodeSession == "" {
			fmt.Println("💡 Set LEETCODE_SESSION and CSRF_TOKEN to import your solution code too.")
		}
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
