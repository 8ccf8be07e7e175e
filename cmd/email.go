package cmd

import (
	"context"
	"fmt"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/digest"
	"github.com/spf13/cobra"
)

var checkEmailCmd = &cobra.Command{
	Use:   "check-email",
	Short: "Verify the email transport credentials without sending",
	Run: func(cmd *cobra.Command, args []string) {
		sender, err := digest.NewSender(cfg, appLog)
		if err != nil {
			fmt.Println("✗ Email configuration incomplete:", err)
			return
		}
		checker, ok := sender.(digest.Checker)
		if !ok {
			fmt.Println("⚠️  This transport cannot be checked without sending")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.EmailTimeout)
		defer cancel()
		if err := checker.Check(ctx); err != nil {
			fmt.Println("✗ Email configuration test failed:", err)
			return
		}
		fmt.Println("✓ Email configuration test successful")
	},
}

var testEmailCmd = &cobra.Command{
	Use:   "test-email",
	Short: "Send a sample digest to RECIPIENT_EMAIL",
	Run: func(cmd *cobra.Command, args []string) {
		sender, err := digest.NewSender(cfg, appLog)
		if err != nil {
			fmt.Println("✗ Email configuration incomplete:", err)
			return
		}
		d := digest.NewDispatcher(sender, appLog)
		if err := d.Dispatch(context.Background(), today(), digest.SampleProblems()); err != nil {
			fmt.Println("✗ Failed to send email:", err)
			return
		}
		fmt.Printf("✓ Test email sent successfully to %s\n", cfg.Recipient)
	},
}

func init() {
	rootCmd.AddCommand(checkEmailCmd)
	rootCmd.AddCommand(testEmailCmd)
}
