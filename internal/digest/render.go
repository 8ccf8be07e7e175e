// Package digest renders the daily revision email and delivers it.
package digest

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html"
	htmltemplate "html/template"
	"regexp"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/models"
)

// ErrNothingToSend is returned when a digest would contain no problems.
var ErrNothingToSend = errors.New("digest: no problems to send")

//go:embed templates/*
var templatesFS embed.FS

var funcs = map[string]any{
	"inc": func(i int) int { return i + 1 },
}

var (
	htmlTemplate = htmltemplate.Must(htmltemplate.New("digest.html").Funcs(funcs).ParseFS(templatesFS, "templates/digest.html"))
	textTemplate = texttemplate.Must(texttemplate.New("digest.txt").Funcs(funcs).ParseFS(templatesFS, "templates/digest.txt"))
)

// Message is a rendered email with an HTML body and a plain-text alternative.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

type card struct {
	Title           string
	URL             string
	Difficulty      string
	DifficultyClass string
	Language        string
	Code            string
	Explanation     string
	Topics          string
	Statement       htmltemplate.HTML
	StatementText   string
}

type page struct {
	LongDate    string
	GeneratedAt string
	Problems    []card
}

// Subject is the email subject for a digest of n problems sent on day.
func Subject(day time.Time, n int) string {
	return fmt.Sprintf("LeetCode Daily Revision - %d Problems (%s)", n, day.Format("2006-01-02"))
}

// Render builds the digest for problems, in order. day is the run instant; it
// dates the subject and the footer.
func Render(day time.Time, problems []models.Problem) (Message, error) {
	if len(problems) == 0 {
		return Message{}, ErrNothingToSend
	}
	data := page{
		LongDate:    day.Format("Monday, January 02, 2006"),
		GeneratedAt: day.Format("2006-01-02 15:04:05"),
		Problems:    make([]card, 0, len(problems)),
	}
	for _, p := range problems {
		data.Problems = append(data.Problems, newCard(p))
	}

	var h, t bytes.Buffer
	if err := htmlTemplate.Execute(&h, data); err != nil {
		return Message{}, fmt.Errorf("render html: %w", err)
	}
	if err := textTemplate.Execute(&t, data); err != nil {
		return Message{}, fmt.Errorf("render text: %w", err)
	}
	return Message{
		Subject: Subject(day, len(problems)),
		HTML:    h.String(),
		Text:    t.String(),
	}, nil
}

func newCard(p models.Problem) card {
	c := card{
		Title:           p.Title,
		URL:             p.URL(),
		Difficulty:      string(p.Difficulty),
		DifficultyClass: strings.ToLower(string(p.Difficulty)),
		Language:        orDefault(p.Language, "unknown"),
		Code:            orDefault(p.Code, "No code available"),
		Explanation:     "Code analysis not available",
		Topics:          orDefault(p.Topics, "Topics not available"),
	}
	if c.Difficulty == "" {
		c.Difficulty = string(models.DifficultyUnknown)
		c.DifficultyClass = "unknown"
	}
	if p.Explanation != nil && strings.TrimSpace(*p.Explanation) != "" {
		c.Explanation = *p.Explanation
	}

	statement := strings.TrimSpace(p.Statement)
	switch {
	case statement == "":
		c.Statement = "Problem description not available"
		c.StatementText = "Problem description not available"
	case looksLikeHTML(statement):
		// Statements synced from LeetCode arrive as HTML fragments.
		c.Statement = htmltemplate.HTML(statement)
		c.StatementText = stripTags(statement)
	default:
		c.Statement = htmltemplate.HTML(strings.ReplaceAll(htmltemplate.HTMLEscapeString(statement), "\n", "<br>"))
		c.StatementText = statement
	}
	return c
}

var (
	tagPattern   = regexp.MustCompile(`<[^>]+>`)
	blankPattern = regexp.MustCompile(`\n{3,}`)
	htmlPattern  = regexp.MustCompile(`(?i)<(p|div|pre|code|strong|em|ul|ol|li|br|img|span|sup|sub)\b[^>]*>`)
)

func looksLikeHTML(s string) bool {
	return htmlPattern.MatchString(s)
}

func stripTags(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = blankPattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// SampleProblems is the fixed one-problem digest used to test delivery.
func SampleProblems() []models.Problem {
	explanation := "This is a test explanation."
	return []models.Problem{{
		ID:          1,
		Title:       "Two Sum",
		Slug:        "two-sum",
		Difficulty:  models.DifficultyEasy,
		Topics:      "Array, Hash Table",
		Statement:   "This is a test problem for email configuration.",
		Code:        "def twoSum(nums, target):\n    # Test code\n    return []",
		Language:    "Python",
		Explanation: &explanation,
	}}
}
