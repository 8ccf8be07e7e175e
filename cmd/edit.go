package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/db"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/models"
	"github.com/spf13/cobra"
)

var (
	editTitle      string
	editDifficulty string
	editTopics     string
	editStatement  string
	editLang       string
	editCodeFile   string
)

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a problem's details or attach new code",
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
		target, err := store.GetProblem(ctx, id)
		if errors.Is(err, db.ErrNotFound) {
			fmt.Println("❌ Problem not found with ID:", id)
			return
		}
		if err != nil {
			fmt.Println("❌ Error fetching problem:", err)
			return
		}

		if cmd.Flags().Changed("title") {
			target.Title = editTitle
		}
		if cmd.Flags().Changed("difficulty") {
			d := models.ParseDifficulty(editDifficulty)
			if d == models.DifficultyUnknown {
				fmt.Println("❌ Difficulty must be Easy, Medium or Hard")
				return
			}
			target.Difficulty = d
		}
		if cmd.Flags().Changed("topics") {
			target.Topics = models.JoinTopics(strings.Split(editTopics, ","))
		}
		if cmd.Flags().Changed("statement") {
			target.Statement = editStatement
		}
		if cmd.Flags().Changed("lang") {
			target.Language = editLang
		}

		if err := store.UpdateProblemDetails(ctx, *target); err != nil {
			fmt.Println("❌ Error updating problem:", err)
			return
		}

		if cmd.Flags().Changed("code-file") {
			code, err := readCodeFile(editCodeFile)
			if err != nil {
				fmt.Println("❌ Error reading code file:", err)
				return
			}
			if err := store.SetCode(ctx, id, code, target.Language); err != nil {
				fmt.Println("❌ Error saving code:", err)
				return
			}
			fmt.Println("🔄 Code replaced, explanation will be regenerated on the next run")
		}

		fmt.Println("✅ Problem updated successfully!")
	},
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVar(&editDifficulty, "difficulty", "", "New difficulty (Easy, Medium, Hard)")
	editCmd.Flags().StringVar(&editTopics, "topics", "", "Comma-separated topics (replaces existing)")
	editCmd.Flags().StringVar(&editStatement, "statement", "", "New statement")
	editCmd.Flags().StringVar(&editLang, "lang", "", "Language of the solution")
	editCmd.Flags().StringVar(&editCodeFile, "code-file", "", "File holding a new accepted solution")
}
