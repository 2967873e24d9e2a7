package slim

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	embeddedPattern = regexp.MustCompile(`^(\w+):\s*$`)
	doctypePattern  = regexp.MustCompile(`^doctype\b\s*(.*)$`)
	bareAttrPattern = regexp.MustCompile(`^[ \t]+([\w:@.-]+)[ \t]*=[ \t]*`)
)

var attrClosers = map[byte]byte{
	'(': ')',
	'[': ']',
	'{': '}',
}

// parser holds the cursor over the template lines for a single Parse call
type parser struct {
	lines []string
	pos   int
}

// Parse parses Slim template text into a node tree rooted at a *Multi.
//
// Every sequence in the returned tree holds one entry per physical line:
// constructs that span several lines (broken code lines, wrapped
// attributes, nested blocks) are followed by Newline markers so that a
// child's index always equals its line offset.
func Parse(text string) (Node, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	p := &parser{lines: lines}
	children, err := p.parseBlock(0, true)
	if err != nil {
		return nil, err
	}
	return &Multi{Children: children}, nil
}

// parseBlock parses consecutive lines at the given indentation
func (p *parser) parseBlock(indent int, root bool) ([]Node, error) {
	var out []Node
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if isBlank(line) {
			if !root && !p.blockContinues(indent) {
				break
			}
			out = append(out, &Newline{})
			p.pos++
			continue
		}

		ind := indentOf(line)
		if ind < indent {
			break
		}
		if ind > indent {
			msg := "Unexpected indentation"
			if p.previousIndent() > ind {
				msg = "Malformed indentation"
			}
			return nil, p.errorAt(msg, ind+1)
		}

		start := p.pos
		node, err := p.parseLine(ind)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
		out = pad(out, p.pos-start-1)
	}
	return out, nil
}

// parseLine parses the construct starting at the current line, including
// any nested lines it owns. On return p.pos is past everything consumed.
func (p *parser) parseLine(ind int) (Node, error) {
	s := p.lines[p.pos][ind:]

	switch {
	case strings.HasPrefix(s, "-"):
		return p.parseControl(s[1:], ind)

	case strings.HasPrefix(s, "="):
		return p.parseOutput(s[1:], ind)

	case strings.HasPrefix(s, "|"), strings.HasPrefix(s, "'"):
		return p.parseTextBlock(strings.TrimPrefix(s[1:], " "), ind), nil

	case strings.HasPrefix(s, "/!"):
		return p.parseTextBlock(strings.TrimSpace(s[2:]), ind), nil

	case strings.HasPrefix(s, "/"):
		p.pos++
		p.skipNested(ind)
		return &Newline{}, nil

	case strings.HasPrefix(s, "#{"):
		return p.parseTextBlock(s, ind), nil

	case strings.HasPrefix(s, "<"):
		p.pos++
		nested, err := p.parseNested(ind)
		if err != nil {
			return nil, err
		}
		text := &Text{Body: &Multi{Children: []Node{textNode(s)}}}
		if len(nested) == 0 {
			return text, nil
		}
		return &Multi{Children: append([]Node{text}, nested...)}, nil
	}

	if m := doctypePattern.FindStringSubmatch(s); m != nil {
		p.pos++
		return &HTML{Tag: "doctype", Attrs: []Attr{{Name: "type", Value: m[1], Quoted: true}}}, nil
	}

	if m := embeddedPattern.FindStringSubmatch(s); m != nil {
		return p.parseEmbedded(m[1], ind), nil
	}

	if isTagStart(s) {
		return p.parseTag(s, ind)
	}

	return nil, p.errorAt("Unknown line indicator", ind+1)
}

func (p *parser) parseControl(rest string, ind int) (Node, error) {
	start := p.pos
	code, err := p.brokenLine(strings.TrimSpace(rest))
	if err != nil {
		return nil, err
	}
	headerLines := p.pos - start + 1
	p.pos++

	nested, err := p.parseNested(ind)
	if err != nil {
		return nil, err
	}
	return &CodeControl{
		Code: code,
		Body: &Multi{Children: pad(nil, headerLines-1, nested...)},
	}, nil
}

// parseOutput parses the text after a leading `=`
func (p *parser) parseOutput(rest string, ind int) (Node, error) {
	escape := true
	if strings.HasPrefix(rest, "=") {
		escape = false
		rest = rest[1:]
	}
	// whitespace modifiers: =< => ='
	rest = strings.TrimLeft(rest, "<>'")

	start := p.pos
	code, err := p.brokenLine(strings.TrimSpace(rest))
	if err != nil {
		return nil, err
	}
	headerLines := p.pos - start + 1
	p.pos++

	nested, err := p.parseNested(ind)
	if err != nil {
		return nil, err
	}
	return &CodeOutput{
		Code:     code,
		Escape:   escape,
		Children: pad(nil, headerLines-1, nested...),
	}, nil
}

// parseTextBlock parses literal text whose more-indented following lines
// continue the same text
func (p *parser) parseTextBlock(first string, ind int) Node {
	p.pos++
	children := append([]Node{textNode(first)}, p.textContinuation(ind)...)
	return &Text{Body: &Multi{Children: children}}
}

func (p *parser) parseEmbedded(kind string, ind int) Node {
	p.pos++
	children := []Node{&Newline{}}
	for _, line := range p.collectNested(ind) {
		if isBlank(line) {
			children = append(children, &Newline{})
			continue
		}
		children = append(children, &Static{Text: line})
	}
	return &Embedded{Kind: kind, Body: &Multi{Children: children}}
}

// parseTag parses an element line. s is a suffix of the current line that
// starts at the tag name; ownerIndent is the indentation nested lines must exceed.
func (p *parser) parseTag(s string, ownerIndent int) (Node, error) {
	start := p.pos
	col := len(p.lines[p.pos]) - len(s) + 1

	name, i := scanTagName(s)
	if name == "" {
		name = "div"
	}
	tag := &HTML{Tag: name}

	for i < len(s) && (s[i] == '.' || (s[i] == '#' && !strings.HasPrefix(s[i:], "#{"))) {
		kind := "class"
		if s[i] == '#' {
			kind = "id"
		}
		j := i + 1
		for j < len(s) && isNameChar(s[j]) && s[j] != ':' {
			j++
		}
		if j == i+1 {
			return nil, p.errorAt("Illegal shortcut", col+i)
		}
		tag.Attrs = append(tag.Attrs, Attr{Name: kind, Value: s[i+1 : j], Quoted: true})
		i = j
	}

	rest := s[i:]
	if i < len(s) {
		if _, ok := attrClosers[s[i]]; ok {
			attrs, after, err := p.wrappedAttrs(s, i, col)
			if err != nil {
				return nil, err
			}
			tag.Attrs = append(tag.Attrs, attrs...)
			rest = after
		} else {
			attrs, after, err := p.bareAttrs(rest, col+i)
			if err != nil {
				return nil, err
			}
			tag.Attrs = append(tag.Attrs, attrs...)
			rest = after
		}
	}
	attrLines := p.pos - start + 1

	trimmed := strings.TrimLeft(rest, " \t")
	switch {
	case trimmed == "":
		p.pos++
		nested, err := p.parseNested(ownerIndent)
		if err != nil {
			return nil, err
		}
		tag.Children = pad([]Node{&Newline{}}, attrLines-1, nested...)

	case strings.HasPrefix(trimmed, "="):
		out, err := p.parseOutput(trimmed[1:], ownerIndent)
		if err != nil {
			return nil, err
		}
		tag.Children = pad(nil, attrLines-1, out)

	case strings.HasPrefix(trimmed, ":"):
		inner := strings.TrimLeft(trimmed[1:], " \t")
		if !isTagStart(inner) {
			return nil, p.errorAt("Expected tag", len(p.lines[p.pos])-len(inner)+1)
		}
		child, err := p.parseTag(inner, ownerIndent)
		if err != nil {
			return nil, err
		}
		tag.Children = pad(nil, attrLines-1, child)

	case strings.HasPrefix(trimmed, "/"):
		p.pos++

	default:
		text := rest
		if strings.HasPrefix(text, " ") {
			text = text[1:]
		}
		body := p.parseTextBlock(text, ownerIndent)
		tag.Children = pad(nil, attrLines-1, body)
	}
	return tag, nil
}

// wrappedAttrs parses attributes enclosed in (), [] or {} starting at s[i].
// The closing delimiter may be on a later line.
func (p *parser) wrappedAttrs(s string, i, col int) ([]Attr, string, error) {
	start := p.pos
	closer := attrClosers[s[i]]
	sc := &attrScanner{p: p, buf: s[i+1:], multiline: true}
	fail := func(message string) error {
		return newSyntaxError(message, start+1, col+i, p.lines[start])
	}

	var attrs []Attr
	for {
		sc.skipSpace()
		if sc.eof() {
			if !sc.more() {
				return nil, "", fail(fmt.Sprintf("Expected closing delimiter %c", closer))
			}
			continue
		}
		if sc.peek() == closer {
			return attrs, sc.buf[sc.j+1:], nil
		}

		name := sc.name(closer)
		if name == "" {
			return nil, "", fail("Invalid attribute")
		}
		sc.skipSpace()
		if sc.eof() || sc.peek() != '=' {
			attrs = append(attrs, Attr{Name: name})
			continue
		}
		sc.j++
		sc.skipSpace()
		value, quoted, err := sc.value(closer)
		if err != nil {
			return nil, "", fail(err.Error())
		}
		attrs = append(attrs, Attr{Name: name, Value: value, Quoted: quoted})
	}
}

// bareAttrs parses `name=value` pairs following the tag on the same line
func (p *parser) bareAttrs(rest string, col int) ([]Attr, string, error) {
	var attrs []Attr
	for {
		m := bareAttrPattern.FindStringSubmatchIndex(rest)
		if m == nil {
			return attrs, rest, nil
		}
		name := rest[m[2]:m[3]]
		sc := &attrScanner{p: p, buf: rest[m[1]:]}
		value, quoted, err := sc.value(0)
		if err != nil {
			return nil, "", p.errorAt(err.Error(), col)
		}
		attrs = append(attrs, Attr{Name: name, Value: value, Quoted: quoted})
		rest = sc.buf[sc.j:]
	}
}

// brokenLine joins code lines ending in `,` or `\` with the lines that follow
func (p *parser) brokenLine(code string) (string, error) {
	for strings.HasSuffix(code, ",") || strings.HasSuffix(code, `\`) {
		if p.pos+1 >= len(p.lines) {
			return "", newSyntaxError("Unexpected end of file", p.pos+1, 0, p.lines[p.pos])
		}
		p.pos++
		code += "\n" + strings.TrimSpace(p.lines[p.pos])
	}
	return code, nil
}

// parseNested parses the block of lines indented deeper than ownerIndent,
// if the next non-blank line is one
func (p *parser) parseNested(ownerIndent int) ([]Node, error) {
	j := p.pos
	for j < len(p.lines) && isBlank(p.lines[j]) {
		j++
	}
	if j >= len(p.lines) {
		return nil, nil
	}
	childIndent := indentOf(p.lines[j])
	if childIndent <= ownerIndent {
		return nil, nil
	}
	return p.parseBlock(childIndent, false)
}

// textContinuation consumes the lines nested under a text line
func (p *parser) textContinuation(ownerIndent int) []Node {
	var out []Node
	for _, line := range p.collectNested(ownerIndent) {
		out = append(out, textNode(strings.TrimLeft(line, " \t")))
	}
	return out
}

// collectNested consumes and returns the raw lines indented deeper than
// ownerIndent, including blank lines between them
func (p *parser) collectNested(ownerIndent int) []string {
	var out []string
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		if isBlank(line) {
			if !p.blockContinues(ownerIndent + 1) {
				break
			}
		} else if indentOf(line) <= ownerIndent {
			break
		}
		out = append(out, line)
		p.pos++
	}
	return out
}

func (p *parser) skipNested(ownerIndent int) {
	p.collectNested(ownerIndent)
}

// blockContinues reports whether a non-blank line at or beyond indent
// follows the blank lines at the cursor
func (p *parser) blockContinues(indent int) bool {
	for j := p.pos; j < len(p.lines); j++ {
		if !isBlank(p.lines[j]) {
			return indentOf(p.lines[j]) >= indent
		}
	}
	return false
}

func (p *parser) previousIndent() int {
	for j := p.pos - 1; j >= 0; j-- {
		if !isBlank(p.lines[j]) {
			return indentOf(p.lines[j])
		}
	}
	return 0
}

func (p *parser) errorAt(message string, column int) error {
	return newSyntaxError(message, p.pos+1, column, p.lines[p.pos])
}

// pad appends n Newline markers to out, followed by rest
func pad(out []Node, n int, rest ...Node) []Node {
	for range n {
		out = append(out, &Newline{})
	}
	return append(out, rest...)
}

func textNode(s string) Node {
	if strings.Contains(s, "#{") {
		return &Interpolate{Raw: s}
	}
	return &Static{Text: s}
}

func scanTagName(s string) (string, int) {
	if s == "" || !isLetter(s[0]) {
		return "", 0
	}
	i := 1
	for i < len(s) && isNameChar(s[i]) {
		i++
	}
	// `li: a` is an inline child, not a namespaced tag
	for i > 1 && (s[i-1] == ':' || s[i-1] == '-') {
		i--
	}
	return s[:i], i
}

func isTagStart(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '#' {
		return !strings.HasPrefix(s, "#{")
	}
	return isLetter(s[0]) || s[0] == '.'
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isNameChar(c byte) bool {
	return isLetter(c) || c >= '0' && c <= '9' || c == '_' || c == '-' || c == ':'
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
