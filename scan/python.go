package scan

import (
	"context"
	"fmt"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/gxptrace/gxptrace/analyze"
	"github.com/gxptrace/gxptrace/trace"
)

// PythonScanner extracts test declarations from pytest test files using
// tree-sitter. It recognizes @pytest.mark.requirements([...]) linkage,
// the @pytest.mark.gxp qualification marker, and stub bodies.
type PythonScanner struct {
	parser *sitter.Parser
}

// NewPythonScanner creates a new Python test scanner.
func NewPythonScanner() *PythonScanner {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &PythonScanner{parser: p}
}

// Language returns the scanner's language identifier.
func (s *PythonScanner) Language() string { return "python" }

// Globs returns the test file patterns for pytest.
func (s *PythonScanner) Globs() []string {
	return []string{"**/test_*.py", "**/*_test.py"}
}

// ScanFile parses one Python test file and extracts every test_
// function with its markers.
func (s *PythonScanner) ScanFile(ctx context.Context, path string) ([]analyze.TestInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	tree, err := s.parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse file: %w", err)
	}
	defer tree.Close()

	var tests []analyze.TestInfo
	s.walk(tree.RootNode(), content, path, nil, &tests)
	return tests, nil
}

// walk recursively visits AST nodes collecting test functions.
// decorators carries the decorator nodes of the enclosing
// decorated_definition, if any.
func (s *PythonScanner) walk(node *sitter.Node, content []byte, path string, decorators []*sitter.Node, tests *[]analyze.TestInfo) {
	switch node.Type() {
	case "decorated_definition":
		var decs []*sitter.Node
		var definition *sitter.Node
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "decorator" {
				decs = append(decs, child)
			} else {
				definition = child
			}
		}
		if definition != nil {
			s.walk(definition, content, path, decs, tests)
		}
		return

	case "function_definition":
		name := nodeText(node.ChildByFieldName("name"), content)
		if strings.HasPrefix(name, "test_") {
			*tests = append(*tests, s.extractTest(node, name, content, path, decorators))
		}
		// test helpers may nest tests; fall through to the body
		if body := node.ChildByFieldName("body"); body != nil {
			s.walk(body, content, path, nil, tests)
		}
		return
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		s.walk(node.NamedChild(i), content, path, nil, tests)
	}
}

func (s *PythonScanner) extractTest(node *sitter.Node, name string, content []byte, path string, decorators []*sitter.Node) analyze.TestInfo {
	var reqIDs []string
	marked := false
	for _, dec := range decorators {
		text := nodeText(dec, content)
		if strings.Contains(text, "pytest.mark.requirements") {
			reqIDs = append(reqIDs, requirementListPattern.FindAllString(text, -1)...)
		}
		if strings.Contains(text, "pytest.mark.gxp") {
			marked = true
		}
	}

	return analyze.TestInfo{
		Declaration: trace.TestDeclaration{
			TestID:             name,
			Title:              name,
			RequirementIDs:     reqIDs,
			HasCoreAssociation: marked,
		},
		Location: analyze.Location{
			File: path,
			Line: int(node.StartPoint().Row) + 1,
		},
		Stub: isPythonStub(node, content),
	}
}

// isPythonStub reports whether a test body is an unimplemented
// placeholder: it raises NotImplementedError, calls pytest.skip, or
// consists of nothing but a docstring and pass.
func isPythonStub(fn *sitter.Node, content []byte) bool {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return true
	}

	onlyPass := true
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		text := nodeText(stmt, content)

		switch stmt.Type() {
		case "raise_statement":
			if strings.Contains(text, "NotImplementedError") {
				return true
			}
			onlyPass = false
		case "expression_statement":
			if strings.Contains(text, "pytest.skip(") {
				return true
			}
			// docstrings don't count as implementation
			if stmt.NamedChildCount() > 0 && stmt.NamedChild(0).Type() == "string" {
				continue
			}
			onlyPass = false
		case "pass_statement":
			// still a stub
		default:
			onlyPass = false
		}
	}
	return onlyPass
}

func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	return string(content[node.StartByte():node.EndByte()])
}
