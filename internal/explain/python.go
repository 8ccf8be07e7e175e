package explain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	pyDef      = regexp.MustCompile(`(?m)^\s*def\s+([A-Za-z_]\w*)\s*\(`)
	pyClass    = regexp.MustCompile(`(?m)^\s*class\s+([A-Za-z_]\w*)`)
	pyLoop     = regexp.MustCompile(`(?m)^\s*(for|while)\b`)
	pyCond     = regexp.MustCompile(`(?m)^\s*(if|elif)\b`)
	pyExcept   = regexp.MustCompile(`(?m)^\s*except\b`)
	pyBoolOp   = regexp.MustCompile(`\b(and|or)\b`)
	pyListComp = regexp.MustCompile(`\[[^\[\]]*\bfor\b[^\[\]]*\bin\b[^\[\]]*\]`)
	pyDictComp = regexp.MustCompile(`\{[^{}]*:[^{}]*\bfor\b[^{}]*\bin\b[^{}]*\}`)
	pyBuiltin  = regexp.MustCompile(`\b(map|filter|reduce|zip|enumerate|sorted|max|min|sum)\s*\(`)
)

// explainPython is a line-oriented approximation of an AST walk: it finds
// definitions, loops, conditionals, comprehensions, recursion and common builtins.
func explainPython(code string) string {
	var parts []string

	defs := pyDef.FindAllStringSubmatch(code, -1)
	var funcs []string
	for _, m := range defs {
		funcs = append(funcs, m[1])
	}
	if len(funcs) > 0 {
		parts = append(parts, "Defines function(s): "+strings.Join(funcs, ", "))
	}

	var classes []string
	for _, m := range pyClass.FindAllStringSubmatch(code, -1) {
		classes = append(classes, m[1])
	}
	if len(classes) > 0 {
		parts = append(parts, "Defines class(es): "+strings.Join(classes, ", "))
	}

	if n := len(pyLoop.FindAllString(code, -1)); n > 0 {
		parts = append(parts, fmt.Sprintf("Contains %d loop(s)", n))
	}
	if n := len(pyCond.FindAllString(code, -1)); n > 0 {
		parts = append(parts, fmt.Sprintf("Uses %d conditional statement(s)", n))
	}
	if n := len(pyListComp.FindAllString(code, -1)); n > 0 {
		parts = append(parts, fmt.Sprintf("Uses %d list comprehension(s)", n))
	}
	if n := len(pyDictComp.FindAllString(code, -1)); n > 0 {
		parts = append(parts, fmt.Sprintf("Uses %d dictionary comprehension(s)", n))
	}
	if pythonRecursive(code, funcs) {
		parts = append(parts, "Uses recursion")
	}

	var builtins []string
	seen := map[string]bool{}
	for _, m := range pyBuiltin.FindAllStringSubmatch(code, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			builtins = append(builtins, m[1])
		}
	}
	if len(builtins) > 0 {
		parts = append(parts, "Uses built-in functions: "+strings.Join(builtins, ", "))
	}

	if len(parts) == 0 {
		return explainWithPatterns(code)
	}
	return strings.Join(parts, ". ")
}

// pythonRecursive looks for a call to a function inside its own indented body.
func pythonRecursive(code string, funcs []string) bool {
	lines := strings.Split(code, "\n")
	for _, name := range funcs {
		call := regexp.MustCompile(`\b(self\.)?` + regexp.QuoteMeta(name) + `\s*\(`)
		header := regexp.MustCompile(`^\s*def\s+` + regexp.QuoteMeta(name) + `\s*\(`)
		for i, line := range lines {
			if !header.MatchString(line) {
				continue
			}
			indent := leadingSpace(line)
			for _, body := range lines[i+1:] {
				if strings.TrimSpace(body) == "" {
					continue
				}
				if leadingSpace(body) <= indent {
					break
				}
				if call.MatchString(body) {
					return true
				}
			}
		}
	}
	return false
}

func leadingSpace(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t"))
}

func pythonComplexity(code string) int {
	n := 1
	n += len(pyLoop.FindAllString(code, -1))
	n += len(pyCond.FindAllString(code, -1))
	n += len(pyExcept.FindAllString(code, -1))
	n += len(pyBoolOp.FindAllString(code, -1))
	return n
}
