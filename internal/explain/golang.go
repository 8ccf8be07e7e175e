package explain

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

var goHelpers = map[string]bool{
	"append": true, "copy": true, "len": true, "make": true,
	"max": true, "min": true, "delete": true,
}

// parseGo accepts a full file or a bare snippet of declarations.
func parseGo(code string) (*ast.File, bool) {
	fset := token.NewFileSet()
	if f, err := parser.ParseFile(fset, "solution.go", code, 0); err == nil {
		return f, true
	}
	if f, err := parser.ParseFile(fset, "solution.go", "package solution\n\n"+code, 0); err == nil {
		return f, true
	}
	return nil, false
}

func explainGo(code string) (string, bool) {
	file, ok := parseGo(code)
	if !ok {
		return "", false
	}

	var (
		funcs, types       []string
		loops, conds, maps int
		goroutines         int
		recursive          bool
		helpers            []string
		seenHelper         = map[string]bool{}
		usesSort, usesHeap bool
	)

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			funcs = append(funcs, d.Name.Name)
			if d.Body != nil && callsSelf(d) {
				recursive = true
			}
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				if ts, ok := spec.(*ast.TypeSpec); ok {
					types = append(types, ts.Name.Name)
				}
			}
		}
	}

	ast.Inspect(file, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.ForStmt, *ast.RangeStmt:
			loops++
		case *ast.IfStmt, *ast.SwitchStmt, *ast.TypeSwitchStmt:
			conds++
		case *ast.MapType:
			maps++
		case *ast.GoStmt:
			goroutines++
		case *ast.CallExpr:
			switch fn := x.Fun.(type) {
			case *ast.Ident:
				if goHelpers[fn.Name] && !seenHelper[fn.Name] {
					seenHelper[fn.Name] = true
					helpers = append(helpers, fn.Name)
				}
			case *ast.SelectorExpr:
				if pkg, ok := fn.X.(*ast.Ident); ok {
					switch pkg.Name {
					case "sort", "slices":
						usesSort = usesSort || strings.HasPrefix(fn.Sel.Name, "Sort") || fn.Sel.Name == "Slice" || fn.Sel.Name == "Ints" || fn.Sel.Name == "Strings"
					case "heap":
						usesHeap = true
					}
				}
			}
		}
		return true
	})

	var parts []string
	if len(funcs) > 0 {
		parts = append(parts, "Defines function(s): "+strings.Join(funcs, ", "))
	}
	if len(types) > 0 {
		parts = append(parts, "Defines type(s): "+strings.Join(types, ", "))
	}
	if loops > 0 {
		parts = append(parts, fmt.Sprintf("Contains %d loop(s)", loops))
	}
	if conds > 0 {
		parts = append(parts, fmt.Sprintf("Uses %d conditional statement(s)", conds))
	}
	if maps > 0 {
		parts = append(parts, "Uses a hash map")
	}
	if usesSort {
		parts = append(parts, "Sorts its input")
	}
	if usesHeap {
		parts = append(parts, "Uses a heap")
	}
	if goroutines > 0 {
		parts = append(parts, fmt.Sprintf("Starts %d goroutine(s)", goroutines))
	}
	if recursive {
		parts = append(parts, "Uses recursion")
	}
	if len(helpers) > 0 {
		parts = append(parts, "Uses built-in functions: "+strings.Join(helpers, ", "))
	}
	return joinParts(parts, "Simple code structure"), true
}

// callsSelf reports whether a function (or method) calls itself by name,
// including through a nested closure.
func callsSelf(fn *ast.FuncDecl) bool {
	name := fn.Name.Name
	found := false
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		if found {
			return false
		}
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		switch f := call.Fun.(type) {
		case *ast.Ident:
			found = f.Name == name
		case *ast.SelectorExpr:
			found = fn.Recv != nil && f.Sel.Name == name
		}
		return !found
	})
	return found
}

func goComplexity(code string) (int, bool) {
	file, ok := parseGo(code)
	if !ok {
		return 0, false
	}
	n := 1
	ast.Inspect(file, func(node ast.Node) bool {
		switch x := node.(type) {
		case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt, *ast.CaseClause, *ast.CommClause:
			n++
		case *ast.BinaryExpr:
			if x.Op == token.LAND || x.Op == token.LOR {
				n++
			}
		}
		return true
	})
	return n, true
}
