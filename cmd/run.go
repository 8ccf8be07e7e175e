package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one daily revision cycle now",
	Long: `Sync recent accepted submissions (when LEETCODE_USERNAME is set), select
today's problems, email the digest and record the reviews. Nothing is
recorded if the email could not be sent.`,
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		a, err := newAgent(store, true)
		if err != nil {
			fmt.Println("❌", err)
			return
		}

		rep, err := a.RunOnce(context.Background())
		if rep.Sync != nil {
			fmt.Printf("🔄 Synced: %d fetched, %d added, %d updated\n", rep.Sync.Fetched, rep.Sync.Added, rep.Sync.Updated)
		}
		if err != nil {
			fmt.Println("❌ Run failed:", err)
			return
		}
		if len(rep.Selected) == 0 {
			fmt.Println("✅ No problems to revise today.")
			return
		}

		fmt.Printf("📧 Sent %d problem(s) to %s:\n", len(rep.Selected), cfg.Recipient)
		for _, p := range rep.Selected {
			fmt.Printf("   • %s (%s)\n", p.Title, p.Difficulty)
		}
		fmt.Println("\n🎉 Reviews recorded!")
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
