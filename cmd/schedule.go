package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/agent"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Send the digest every day at DAILY_SEND_TIME until interrupted",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

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
		spec, err := cfg.CronSpec()
		if err != nil {
			fmt.Println("❌", err)
			return
		}
		loc, err := cfg.Location()
		if err != nil {
			fmt.Println("❌", err)
			return
		}

		s, err := agent.NewScheduler(a, spec, loc, appLog)
		if err != nil {
			fmt.Println("❌", err)
			return
		}

		fmt.Printf("⏰ Scheduler started. Digests go out daily at %s (%s). Ctrl+C to stop.\n", cfg.SendTime, loc)
		if err := s.Run(ctx); err != nil {
			fmt.Println("❌ Scheduler error:", err)
			return
		}
		fmt.Println("👋 Scheduler stopped.")
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
