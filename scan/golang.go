package scan

import (
	"context"
	"fmt"
	goast "go/ast"
	"go/parser"
	"go/token"
	"os"
	"regexp"
	"strings"

	"github.com/gxptrace/gxptrace/analyze"
	"github.com/gxptrace/gxptrace/trace"
)

// Source directives recognized in test doc comments.
//
//	//gxp:test                          marks a qualification test
//	//gxp:requirements FS-001, DS-002   declares requirement linkage
const (
	directiveMarker       = "//gxp:test"
	directiveRequirements = "//gxp:requirements"
)

var requirementListPattern = regexp.MustCompile(`[A-Z]{2}-\d{3}`)

// GoScanner extracts test declarations from Go test files.
type GoScanner struct{}

// NewGoScanner creates a new Go test scanner.
func NewGoScanner() *GoScanner {
	return &GoScanner{}
}

// Language returns the scanner's language identifier.
func (s *GoScanner) Language() string { return "go" }

// Globs returns the test file patterns for Go.
func (s *GoScanner) Globs() []string { return []string{"**/*_test.go"} }

// ScanFile parses one Go test file and extracts every Test function,
// its requirement directives, and whether the body is a stub.
func (s *GoScanner) ScanFile(ctx context.Context, path string) ([]analyze.TestInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, content, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse file: %w", err)
	}

	var tests []analyze.TestInfo
	for _, decl := range file.Decls {
		fn, ok := decl.(*goast.FuncDecl)
		if !ok || fn.Recv != nil || !isTestFunc(fn.Name.Name) {
			continue
		}

		reqIDs, marked := parseDirectives(fn.Doc)
		tests = append(tests, analyze.TestInfo{
			Declaration: trace.TestDeclaration{
				TestID:             fn.Name.Name,
				Title:              fn.Name.Name,
				RequirementIDs:     reqIDs,
				HasCoreAssociation: marked,
			},
			Location: analyze.Location{
				File: path,
				Line: fset.Position(fn.Pos()).Line,
			},
			Stub: isGoStub(fn),
		})
	}
	return tests, nil
}

func isTestFunc(name string) bool {
	return strings.HasPrefix(name, "Test") && len(name) > len("Test")
}

// parseDirectives reads gxp directives from a function doc comment.
func parseDirectives(doc *goast.CommentGroup) (reqIDs []string, marked bool) {
	if doc == nil {
		return nil, false
	}
	for _, c := range doc.List {
		text := strings.TrimSpace(c.Text)
		switch {
		case text == directiveMarker:
			marked = true
		case strings.HasPrefix(text, directiveRequirements):
			rest := text[len(directiveRequirements):]
			reqIDs = append(reqIDs, requirementListPattern.FindAllString(rest, -1)...)
		}
	}
	return reqIDs, marked
}

// isGoStub reports whether a test body is an unimplemented placeholder:
// an empty body, or a single t.Skip/t.Skipf call, or a single panic.
func isGoStub(fn *goast.FuncDecl) bool {
	if fn.Body == nil || len(fn.Body.List) == 0 {
		return true
	}
	if len(fn.Body.List) != 1 {
		return false
	}
	expr, ok := fn.Body.List[0].(*goast.ExprStmt)
	if !ok {
		return false
	}
	call, ok := expr.X.(*goast.CallExpr)
	if !ok {
		return false
	}
	switch fun := call.Fun.(type) {
	case *goast.SelectorExpr:
		return fun.Sel.Name == "Skip" || fun.Sel.Name == "Skipf" || fun.Sel.Name == "SkipNow"
	case *goast.Ident:
		return fun.Name == "panic"
	}
	return false
}
