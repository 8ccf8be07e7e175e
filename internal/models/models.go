package models

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Difficulty is the LeetCode difficulty label of a problem.
type Difficulty string

const (
	DifficultyEasy    Difficulty = "Easy"
	DifficultyMedium  Difficulty = "Medium"
	DifficultyHard    Difficulty = "Hard"
	DifficultyUnknown Difficulty = "Unknown"
)

var titleCaser = cases.Title(language.English)

// ParseDifficulty normalizes free-form input ("easy", " HARD ") to a known label.
// Anything unrecognised maps to DifficultyUnknown.
func ParseDifficulty(s string) Difficulty {
	switch d := Difficulty(titleCaser.String(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d
	default:
		return DifficultyUnknown
	}
}

// Rank orders difficulties for review priority: Easy=1 ... anything else=4.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 4
	}
}

// Problem represents a solved problem eligible for review.
type Problem struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Difficulty   Difficulty `json:"difficulty"`
	Topics       string     `json:"topics"` // comma separated
	Statement    string     `json:"statement"`
	Code         string     `json:"code"`
	Language     string     `json:"language"`
	AcceptedAt   time.Time  `json:"accepted_at"`
	LastReviewed *time.Time `json:"last_reviewed,omitempty"` // nil: never reviewed
	Explanation  *string    `json:"explanation,omitempty"`   // nil: not generated yet
}

// URL is the public LeetCode page of the problem.
func (p Problem) URL() string {
	return "https://leetcode.com/problems/" + p.Slug + "/"
}

// TopicList splits the stored topic text into trimmed, non-empty tags.
func (p Problem) TopicList() []string {
	var out []string
	for _, part := range strings.Split(p.Topics, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// JoinTopics is the inverse of TopicList.
func JoinTopics(tags []string) string {
	clean := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		clean = append(clean, t)
	}
	return strings.Join(clean, ", ")
}

// ReviewEvent records that a problem went out in a dispatched digest.
type ReviewEvent struct {
	ID         int64     `json:"id"`
	ProblemID  int64     `json:"problem_id"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

type ReviewStats struct {
	Total             int
	ReviewedToday     int
	NeverReviewed     int
	ReviewsLast7Days  int
	CountByDifficulty map[Difficulty]int
}

// Submission is one accepted submission reported by the remote API.
type Submission struct {
	Title     string
	Slug      string
	Language  string
	Status    string
	Timestamp time.Time
}

// DayBounds returns [midnight, next midnight) of the calendar day containing t,
// evaluated in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
