package convert

import (
	"strings"

	"bennypowers.dev/slimls/internal/collections"
	"bennypowers.dev/slimls/internal/slim"
)

// embeddedRubyKind is the only embedded block kind whose body is Ruby
const embeddedRubyKind = "ruby"

// continuationKeywords extend the construct before them rather than
// starting a new one, so that construct must not be closed yet
var continuationKeywords = collections.NewSet("elsif", "else", "when", "rescue", "ensure")

// session accumulates the output of a single conversion
type session struct {
	mapper   *LineMapper
	snippets []Snippet
	// line is the next output line to be written
	line int
}

func newSession() *session {
	return &session{mapper: NewLineMapper(), line: 1}
}

func (s *session) emit(code string, sourceLine int) {
	span := lineCount(code)
	s.mapper.Record(s.line, sourceLine, span)
	s.snippets = append(s.snippets, Snippet{
		Code:       code,
		OutputLine: s.line,
		SourceLine: sourceLine,
	})
	s.line += span
}

func (s *session) result() *Result {
	code := make([]string, len(s.snippets))
	for i, snippet := range s.snippets {
		code[i] = snippet.Code
	}
	return &Result{
		Code:     strings.Join(code, "\n"),
		Mapper:   s.mapper,
		Snippets: s.snippets,
	}
}

// walk visits node, which sits at template line `line`. next is the
// following significant sibling, if any.
func (s *session) walk(node slim.Node, line int, next slim.Node) {
	switch n := node.(type) {
	case *slim.Multi:
		s.walkSequence(n.Children, line)
	case *slim.HTML:
		s.walkSequence(n.Children, line)
	case *slim.CodeOutput:
		s.walkOutput(n, line)
	case *slim.CodeControl:
		s.walkControl(n, line, next)
	case *slim.Text:
		s.walkText(n.Body, line)
	case *slim.Embedded:
		s.walkEmbedded(n, line)
	case *slim.Interpolate, *slim.Static, *slim.Newline:
		// only meaningful inside a text node
	}
}

// walkSequence visits children, the i-th of which sits at base+i
func (s *session) walkSequence(children []slim.Node, base int) {
	for i, child := range children {
		s.walk(child, base+i, nextSignificant(children, i))
	}
}

func (s *session) walkOutput(n *slim.CodeOutput, line int) {
	open := noDelimiter
	if strings.TrimSpace(n.Code) != "" && !isComment(n.Code) {
		code := sanitize(n.Code)
		open = detectDelimiter(code)
		if open == noDelimiter && hasSignificant(n.Children) {
			code = openBlock(code)
			open = keywordDelimiter
		}
		s.emit(code, line)
	}

	s.walkSequence(n.Children, line+1)

	if open != noDelimiter {
		s.emit(open.closer(), line+len(n.Children))
	}
}

func (s *session) walkControl(n *slim.CodeControl, line int, next slim.Node) {
	if isComment(n.Code) {
		return
	}
	hasCode := strings.TrimSpace(n.Code) != ""
	if hasCode {
		s.emit(n.Code, line)
	}
	if n.Body == nil {
		return
	}

	s.walk(n.Body, line+1, nil)

	if hasCode && isSignificant(n.Body) && !isContinuation(next) {
		s.emit(blockCloser, line)
	}
}

// walkText extracts interpolations anywhere under a text node. They all
// map to the text node's own line.
func (s *session) walkText(body slim.Node, line int) {
	switch n := body.(type) {
	case *slim.Interpolate:
		for _, expr := range ExtractInterpolations(n.Raw) {
			s.emit(expr, line)
		}
	case *slim.Multi:
		for _, child := range n.Children {
			s.walkText(child, line)
		}
	}
}

func (s *session) walkEmbedded(n *slim.Embedded, line int) {
	if n.Kind != embeddedRubyKind {
		return
	}
	for _, l := range ExtractEmbedded(blockText(n.Body), line) {
		s.emit(l.Code, l.Line)
	}
}

// blockText reassembles the raw lines of an embedded block body
func blockText(body slim.Node) string {
	switch n := body.(type) {
	case *slim.Static:
		return n.Text
	case *slim.Interpolate:
		return n.Raw
	case *slim.Multi:
		lines := make([]string, len(n.Children))
		for i, child := range n.Children {
			if !slim.IsNewline(child) {
				lines[i] = blockText(child)
			}
		}
		return strings.Join(lines, "\n")
	}
	return ""
}

// isSignificant reports whether node holds anything but line markers
func isSignificant(node slim.Node) bool {
	switch n := node.(type) {
	case nil, *slim.Newline:
		return false
	case *slim.Multi:
		return hasSignificant(n.Children)
	}
	return true
}

func hasSignificant(nodes []slim.Node) bool {
	for _, n := range nodes {
		if isSignificant(n) {
			return true
		}
	}
	return false
}

func nextSignificant(children []slim.Node, i int) slim.Node {
	for _, child := range children[i+1:] {
		if !slim.IsNewline(child) {
			return child
		}
	}
	return nil
}

func isContinuation(node slim.Node) bool {
	control, ok := node.(*slim.CodeControl)
	return ok && continuationKeywords.Has(leadingKeyword(control.Code))
}

func lineCount(code string) int {
	return strings.Count(code, "\n") + 1
}
