// Package ruby inspects generated Ruby source with tree-sitter: it reports
// syntax problems and the constants the code refers to.
package ruby

import (
	"fmt"
	"sort"
	"sync"

	"bennypowers.dev/slimls/internal/collections"
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
)

// SyntaxIssue is a location where the Ruby grammar could not make sense
// of the source. Positions are 1-based.
type SyntaxIssue struct {
	Message   string `json:"message"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndLine   int    `json:"endLine"`
	EndColumn int    `json:"endColumn"`
}

// ConstantRef is a reference to a constant such as `User` or `Admin::User`.
// Positions are 1-based; EndColumn is exclusive.
type ConstantRef struct {
	Name      string `json:"name"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	EndColumn int    `json:"endColumn"`
}

// Analysis is everything learned from one parse
type Analysis struct {
	Issues    []SyntaxIssue
	Constants []ConstantRef
}

// Parser wraps a tree-sitter parser configured for Ruby
type Parser struct {
	parser *sitter.Parser
}

var rubyLang = sitter.NewLanguage(tree_sitter_ruby.Language())

// parserPool is a pool of reusable Ruby parsers
var parserPool = sync.Pool{
	New: func() any {
		parser := sitter.NewParser()
		if err := parser.SetLanguage(rubyLang); err != nil {
			panic(fmt.Sprintf("failed to set Ruby language: %v", err))
		}
		return &Parser{parser: parser}
	},
}

// AcquireParser gets a parser from the pool
func AcquireParser() *Parser {
	p := parserPool.Get().(*Parser)
	p.parser.Reset()
	return p
}

// ReleaseParser returns a parser to the pool
func ReleaseParser(p *Parser) {
	if p != nil {
		parserPool.Put(p)
	}
}

// Close closes the parser and releases its resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// ClosePool closes all parsers in the pool
func ClosePool() {
	for range 100 {
		if p, ok := parserPool.Get().(*Parser); ok && p != nil {
			p.Close()
		}
	}
}

// Analyze parses code once and collects both syntax issues and constant references
func (p *Parser) Analyze(code string) (*Analysis, error) {
	source := []byte(code)
	tree := p.parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse Ruby")
	}
	defer tree.Close()

	root := tree.RootNode()
	result := &Analysis{}
	collectIssues(root, result)
	collectStrayClosers(root, source, result)
	collectConstants(root, source, result)

	sort.SliceStable(result.Issues, func(i, j int) bool {
		return before(result.Issues[i].Line, result.Issues[i].Column, result.Issues[j].Line, result.Issues[j].Column)
	})
	return result, nil
}

// Check returns the syntax issues in code
func (p *Parser) Check(code string) ([]SyntaxIssue, error) {
	result, err := p.Analyze(code)
	if err != nil {
		return nil, err
	}
	return result.Issues, nil
}

// Constants returns the constant references in code, in source order
func (p *Parser) Constants(code string) ([]ConstantRef, error) {
	result, err := p.Analyze(code)
	if err != nil {
		return nil, err
	}
	return result.Constants, nil
}

// Analyze parses code with a pooled parser
func Analyze(code string) (*Analysis, error) {
	p := AcquireParser()
	defer ReleaseParser(p)
	return p.Analyze(code)
}

// collectIssues records ERROR and MISSING nodes. Subtrees without errors
// are skipped, and an ERROR node's own children are not reported again.
func collectIssues(node *sitter.Node, result *Analysis) {
	if node == nil {
		return
	}

	switch {
	case node.IsError():
		result.Issues = append(result.Issues, issueAt(node, "syntax error"))
		return
	case node.IsMissing():
		result.Issues = append(result.Issues, issueAt(node, fmt.Sprintf("missing %q", node.Kind())))
		return
	case !node.HasError():
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		collectIssues(node.Child(i), result)
	}
}

// statementContainers are the node kinds whose children are statements
var statementContainers = collections.NewSet(
	"program", "body_statement", "block_body", "then", "else", "do", "begin", "ensure",
	"parenthesized_statements",
)

// collectStrayClosers reports surplus `end` keywords. The grammar reads a
// lone `end` statement as an identifier rather than an error. `range.end`
// and other calls are not statements and stay untouched.
func collectStrayClosers(node *sitter.Node, source []byte, result *Analysis) {
	if node == nil || node.IsError() {
		return
	}
	container := statementContainers.Has(node.Kind())
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if container && child.Kind() == "identifier" &&
			string(source[child.StartByte():child.EndByte()]) == "end" {
			result.Issues = append(result.Issues, issueAt(child, `unexpected "end"`))
			continue
		}
		collectStrayClosers(child, source, result)
	}
}

func issueAt(node *sitter.Node, message string) SyntaxIssue {
	start, end := node.StartPosition(), node.EndPosition()
	return SyntaxIssue{
		Message:   message,
		Line:      int(start.Row) + 1,
		Column:    int(start.Column) + 1,
		EndLine:   int(end.Row) + 1,
		EndColumn: int(end.Column) + 1,
	}
}

// collectConstants records the outermost constant or scope resolution of
// every reference, so `A::B::C` is one reference rather than three
func collectConstants(node *sitter.Node, source []byte, result *Analysis) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "constant", "scope_resolution":
		start, end := node.StartPosition(), node.EndPosition()
		if start.Row == end.Row {
			result.Constants = append(result.Constants, ConstantRef{
				Name:      string(source[node.StartByte():node.EndByte()]),
				Line:      int(start.Row) + 1,
				Column:    int(start.Column) + 1,
				EndColumn: int(end.Column) + 1,
			})
		}
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		collectConstants(node.Child(i), source, result)
	}
}

func before(line, col, otherLine, otherCol int) bool {
	if line != otherLine {
		return line < otherLine
	}
	return col < otherCol
}
