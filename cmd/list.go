package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/models"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored problems, oldest solved first",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		problems, err := store.ListProblems(context.Background())
		if err != nil {
			fmt.Println("❌ Error listing problems:", err)
			return
		}
		if len(problems) == 0 {
			fmt.Println("📭 No problems stored yet. Try 'recall sync' or 'recall add'.")
			return
		}

		printProblemTable(problems)
	},
}

func printProblemTable(problems []models.Problem) {
	loc, _ := cfg.Location()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tProblem\tDiff\tAccepted\tLast Review\tTopics")
	fmt.Fprintln(w, "--\t-------\t----\t--------\t-----------\t------")

	for _, p := range problems {
		accepted := p.AcceptedAt
		last := "never"
		if loc != nil {
			accepted = accepted.In(loc)
		}
		if p.LastReviewed != nil {
			lr := *p.LastReviewed
			if loc != nil {
				lr = lr.In(loc)
			}
			last = lr.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Title, p.Difficulty, accepted.Format("2006-01-02"), last, p.Topics)
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(listCmd)
}
