package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"
)

var todayOpen bool

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Preview the problems today's digest would contain",
	Long: `Preview today's selection without sending email or recording reviews.
Problems already sent today are never selected again.`,
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		a, err := newAgent(store, false)
		if err != nil {
			fmt.Println("❌", err)
			return
		}

		problems, day, err := a.Preview(context.Background())
		if err != nil {
			fmt.Println("❌ Error selecting problems:", err)
			return
		}
		if len(problems) == 0 {
			fmt.Println("✅ Nothing left to revise today! Good job.")
			return
		}

		fmt.Printf("🔥 %d Problem(s) for %s:\n\n", len(problems), day.Format("Monday, January 02"))
		for i, p := range problems {
			fmt.Println("========================================")
			fmt.Printf("[%d/%d] %s (%s)\n", i+1, len(problems), p.Title, p.Difficulty)
			fmt.Printf("URL: %s\n", p.URL())
			if p.Topics != "" {
				fmt.Printf("Topics: %s\n", p.Topics)
			}
			if p.Explanation != nil {
				fmt.Printf("Analysis: %s\n", *p.Explanation)
			}
			if todayOpen {
				fmt.Println("🌐 Opening URL in browser...")
				openBrowser(p.URL())
			}
		}
		fmt.Println("========================================")
	},
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().BoolVarP(&todayOpen, "open", "o", false, "Open problem URLs in browser")
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}
	if err != nil {
		fmt.Printf("❌ Failed to open browser: %v\n", err)
	}
}
