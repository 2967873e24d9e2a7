// Package convert turns Slim templates into standalone Ruby source so the
// Ruby embedded in a template can be analysed with ordinary Ruby tooling.
// Every generated line can be traced back to the template line it came from.
package convert

import (
	"errors"

	"bennypowers.dev/slimls/internal/log"
	"bennypowers.dev/slimls/internal/slim"
)

// Snippet is one emitted piece of Ruby code
type Snippet struct {
	Code string `json:"code"`
	// OutputLine is the first line of Code in the generated source
	OutputLine int `json:"outputLine"`
	// SourceLine is the template line Code came from
	SourceLine int `json:"sourceLine"`
}

// Result is the outcome of converting one template
type Result struct {
	// Code is the generated Ruby source; snippets joined by newlines
	Code     string
	Mapper   *LineMapper
	Snippets []Snippet
}

// Empty reports whether the template contained no Ruby at all
func (r *Result) Empty() bool {
	return len(r.Snippets) == 0
}

// SourceLine maps a generated line back to its template line
func (r *Result) SourceLine(outputLine int) (int, bool) {
	return r.Mapper.Lookup(outputLine)
}

// SnippetsAt returns the snippets that came from a template line, in output order
func (r *Result) SnippetsAt(sourceLine int) []Snippet {
	var out []Snippet
	for _, s := range r.Snippets {
		if s.SourceLine == sourceLine {
			out = append(out, s)
		}
	}
	return out
}

// TemplateParser turns template text into a node tree
type TemplateParser interface {
	Parse(text string) (slim.Node, error)
}

// ParserFunc adapts a function to TemplateParser
type ParserFunc func(text string) (slim.Node, error)

// Parse calls f(text)
func (f ParserFunc) Parse(text string) (slim.Node, error) {
	return f(text)
}

// Converter converts templates using a given parser
type Converter struct {
	parser TemplateParser
}

// New creates a Converter. A nil parser selects the built-in Slim parser.
func New(parser TemplateParser) *Converter {
	if parser == nil {
		parser = ParserFunc(slim.Parse)
	}
	return &Converter{parser: parser}
}

// Convert converts content with the built-in Slim parser
func Convert(content, fileID string) (*Result, error) {
	return New(nil).Convert(content, fileID)
}

// Convert parses content and emits the Ruby it contains. fileID names the
// template in error messages only. Parse failures are returned as
// *TemplateSyntaxError.
func (c *Converter) Convert(content, fileID string) (*Result, error) {
	if content == "" {
		return newSession().result(), nil
	}

	root, err := c.parser.Parse(content)
	if err != nil {
		return nil, syntaxErrorFrom(fileID, err)
	}

	s := newSession()
	s.walk(root, 1, nil)
	log.Debug("Converted %s: %d snippets", fileID, len(s.snippets))
	return s.result(), nil
}

func syntaxErrorFrom(fileID string, err error) error {
	var se *slim.SyntaxError
	if errors.As(err, &se) {
		return NewTemplateSyntaxError(fileID, se.Line, se.Column, se.Message)
	}
	return NewTemplateSyntaxError(fileID, 0, 0, err.Error())
}
