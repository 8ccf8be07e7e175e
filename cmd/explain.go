package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/db"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/explain"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/models"
	"github.com/spf13/cobra"
)

var (
	explainAll  bool
	explainFile string
	explainLang string
)

var explainCmd = &cobra.Command{
	Use:   "explain [id]",
	Short: "Analyse solution code",
	Long: `Analyse solution code offline.

  recall explain 12                 regenerate the analysis of problem 12
  recall explain --all              fill in every missing analysis
  recall explain --file s.go -l go  analyse a file without storing anything`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if explainFile != "" {
			code, err := readCodeFile(explainFile)
			if err != nil {
				fmt.Println("❌ Error reading file:", err)
				return
			}
			fmt.Println("🔍", explain.Explain(code, explainLang))
			fmt.Println("📐", explain.Complexity(code, explainLang))
			return
		}
		if !explainAll && len(args) == 0 {
			cmd.Help()
			return
		}

		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()
		ctx := context.Background()

		if explainAll {
			problems, err := store.ListProblems(ctx)
			if err != nil {
				fmt.Println("❌ Error listing problems:", err)
				return
			}
			n := explain.Backfill(ctx, store, problems, appLog)
			fmt.Printf("✅ Generated %d analysis(es) for %d problem(s)\n", n, len(problems))
			return
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			fmt.Println("❌ Invalid ID")
			return
		}
		p, err := store.GetProblem(ctx, id)
		if errors.Is(err, db.ErrNotFound) {
			fmt.Println("❌ Problem not found with ID:", id)
			return
		}
		if err != nil {
			fmt.Println("❌ Error fetching problem:", err)
			return
		}

		// Force regeneration of this one problem.
		p.Explanation = nil
		problems := []models.Problem{*p}
		explain.Backfill(ctx, store, problems, appLog)
		fmt.Printf("🔍 %s: %s\n", p.Title, *problems[0].Explanation)
		fmt.Println("📐", explain.Complexity(p.Code, p.Language))
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
	explainCmd.Flags().BoolVarP(&explainAll, "all", "a", false, "Fill in every missing analysis")
	explainCmd.Flags().StringVarP(&explainFile, "file", "f", "", "Analyse a source file instead of a stored problem")
	explainCmd.Flags().StringVarP(&explainLang, "lang", "l", "", "Language of --file")
}
