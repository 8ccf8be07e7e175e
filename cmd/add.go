package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/models"
	"github.com/spf13/cobra"
)

var (
	addTopics    string
	addLang      string
	addCodeFile  string
	addStatement string
	addAccepted  string
)

var addCmd = &cobra.Command{
	Use:   "add [title] [slug] [difficulty]",
	Short: "Add a solved problem by hand",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		title, slug := args[0], args[1]

		difficulty := models.ParseDifficulty(args[2])
		if difficulty == models.DifficultyUnknown {
			fmt.Println("❌ Difficulty must be Easy, Medium or Hard")
			return
		}

		acceptedAt := time.Now()
		if addAccepted != "" {
			loc, err := cfg.Location()
			if err != nil {
				fmt.Println("❌", err)
				return
			}
			t, err := time.ParseInLocation("2006-01-02", addAccepted, loc)
			if err != nil {
				fmt.Println("❌ --accepted must be YYYY-MM-DD")
				return
			}
			acceptedAt = t
		}

		code, err := readCodeFile(addCodeFile)
		if err != nil {
			fmt.Println("❌ Error reading code file:", err)
			return
		}

		store, err := openStore()
		if err != nil {
			fmt.Println("❌ Database error:", err)
			return
		}
		defer store.Close()

		problem := models.Problem{
			Title:      title,
			Slug:       slug,
			Difficulty: difficulty,
			Topics:     models.JoinTopics(strings.Split(addTopics, ",")),
			Statement:  addStatement,
			Code:       code,
			Language:   addLang,
			AcceptedAt: acceptedAt,
		}

		id, err := store.UpsertProblem(context.Background(), problem)
		if err != nil {
			fmt.Println("❌ Error adding problem:", err)
			return
		}

		fmt.Printf("✅ Added '%s' (ID %d, %s)\n", title, id, problem.URL())
	},
}

func readCodeFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addTopics, "topics", "t", "", "Comma-separated topics (e.g. Array,Hash Table)")
	addCmd.Flags().StringVarP(&addLang, "lang", "l", "", "Language of the solution")
	addCmd.Flags().StringVarP(&addCodeFile, "code-file", "c", "", "File holding your accepted solution")
	addCmd.Flags().StringVarP(&addStatement, "statement", "s", "", "Problem statement")
	addCmd.Flags().StringVar(&addAccepted, "accepted", "", "Date the problem was solved (YYYY-MM-DD, default now)")
}
