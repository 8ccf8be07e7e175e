// Package explain produces short heuristic descriptions of solution code
// without calling any external service.
package explain

import (
	"fmt"
	"regexp"
	"strings"
)

const noCode = "No code provided"

// Explain describes code written in language. It never fails and never
// returns an empty string; on an internal error it degrades to a generic note.
func Explain(code, language string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("Code analysis failed: %v", r)
		}
	}()

	if strings.TrimSpace(code) == "" {
		return noCode
	}
	switch normalizeLanguage(language) {
	case "go":
		if s, ok := explainGo(code); ok {
			return s
		}
		return explainWithPatterns(code)
	case "python":
		return explainPython(code)
	default:
		return fmt.Sprintf("Code analysis for %s: %s", displayLanguage(language), explainWithPatterns(code))
	}
}

// Complexity buckets a rough cyclomatic estimate into Low/Medium/High.
func Complexity(code, language string) string {
	var n int
	switch normalizeLanguage(language) {
	case "go":
		c, ok := goComplexity(code)
		if !ok {
			return "Complexity analysis unavailable"
		}
		n = c
	case "python":
		n = pythonComplexity(code)
	default:
		return "Complexity analysis unavailable"
	}
	switch {
	case n <= 5:
		return "Low complexity"
	case n <= 10:
		return "Medium complexity"
	default:
		return "High complexity"
	}
}

func normalizeLanguage(language string) string {
	switch l := strings.ToLower(strings.TrimSpace(language)); l {
	case "go", "golang":
		return "go"
	case "python", "python3", "py":
		return "python"
	default:
		return l
	}
}

func displayLanguage(language string) string {
	if l := strings.TrimSpace(language); l != "" {
		return l
	}
	return "unknown language"
}

type pattern struct {
	name string
	res  []*regexp.Regexp
}

func compile(name string, exprs ...string) pattern {
	p := pattern{name: name}
	for _, e := range exprs {
		p.res = append(p.res, regexp.MustCompile("(?i)"+e))
	}
	return p
}

// Checked in order; the first match of each family wins.
var patterns = []pattern{
	compile("sorting", `\.sort\(\)`, `sorted\(`, `arrays\.sort`, `std::sort`, `sort\(`, `sort\.`),
	compile("binary search", `left.*right.*mid`, `low.*high.*mid`, `binary.*search`),
	compile("two pointers", `left.*right`, `start.*end`, `i.*j.*while`),
	compile("dynamic programming", `dp\[`, `memo`, `cache`, `dp\s*[:=]`),
	compile("recursion", `recursive`),
	compile("hash map/dictionary", `hashmap`, `unordered_map`, `dict\(`, `\{\}`, `map\(`, `map\[`),
	compile("sliding window", `window`, `left.*right.*while`),
	compile("backtracking", `backtrack`, `dfs.*return`, `visited`),
	compile("graph traversal", `adjacency`, `neighbors`, `graph`, `visited`),
	compile("tree traversal", `treenode`, `root`, `left.*right`, `inorder|preorder|postorder`),
	compile("greedy algorithm", `greedy`, `optimal.*choice`),
	compile("divide and conquer", `merge`, `divide`, `conquer`),
}

func explainWithPatterns(code string) string {
	lower := strings.ToLower(code)
	var found []string
	for _, p := range patterns {
		for _, re := range p.res {
			if re.MatchString(lower) {
				found = append(found, p.name)
				break
			}
		}
	}
	if len(found) > 0 {
		return "Likely uses: " + strings.Join(found, ", ")
	}
	lines := len(strings.Split(code, "\n"))
	return fmt.Sprintf("Code structure analysis - %d lines, manual review recommended", lines)
}

func joinParts(parts []string, fallback string) string {
	if len(parts) == 0 {
		return fallback
	}
	return strings.Join(parts, ". ")
}
