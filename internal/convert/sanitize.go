package convert

import (
	"regexp"
	"strings"
)

const (
	blockOpener = "do"
	blockCloser = "end"
	curlyCloser = "}"
)

// delimiter is the kind of Ruby block a fragment opens
type delimiter int

const (
	noDelimiter delimiter = iota
	curlyDelimiter
	keywordDelimiter
)

func (d delimiter) closer() string {
	switch d {
	case curlyDelimiter:
		return curlyCloser
	case keywordDelimiter:
		return blockCloser
	}
	return ""
}

var (
	// `render 'x', name:` at the end of a fragment
	danglingKeyword = regexp.MustCompile(`\b[A-Za-z_]\w*:$`)
	keywordOpener   = regexp.MustCompile(`\bdo(\s*\|[^|]*\|)?$`)
	curlyOpener     = regexp.MustCompile(`\{(\s*\|[^|]*\|)?$`)
)

// sanitize repairs artifacts of the template syntax so a fragment parses
// as Ruby on its own
func sanitize(code string) string {
	return completeDanglingKeyword(stripLeadingQuote(code))
}

// stripLeadingQuote removes the quote left behind by `='` and `="`
// (output with trailing whitespace). A quote that appears again later in
// the fragment opens a real string literal and is kept.
func stripLeadingQuote(code string) string {
	trimmed := strings.TrimLeft(code, " \t")
	if trimmed == "" {
		return code
	}
	q := trimmed[0]
	if q != '\'' && q != '"' {
		return code
	}
	if strings.IndexByte(trimmed[1:], q) >= 0 {
		return code
	}
	return strings.TrimLeft(trimmed[1:], " \t")
}

// completeDanglingKeyword gives a trailing keyword argument a nil value.
// Slim fills such arguments from the nested block, which Ruby cannot see.
func completeDanglingKeyword(code string) string {
	body, newline := splitTrailingNewline(code)
	if !danglingKeyword.MatchString(body) {
		return code
	}
	return body + " nil" + newline
}

// openBlock turns a block-less call into one that opens a keyword block
func openBlock(code string) string {
	body, newline := splitTrailingNewline(code)
	return body + " " + blockOpener + newline
}

// detectDelimiter reports which block, if any, the fragment leaves open.
// A trailing comment on the last line is ignored.
func detectDelimiter(code string) delimiter {
	body := strings.TrimRight(stripTrailingComment(code), " \t\r\n")
	switch {
	case curlyOpener.MatchString(body):
		return curlyDelimiter
	case keywordOpener.MatchString(body):
		return keywordDelimiter
	}
	return noDelimiter
}

func splitTrailingNewline(code string) (string, string) {
	newline := ""
	if strings.HasSuffix(code, "\n") {
		newline = "\n"
	}
	return strings.TrimRight(code, " \t\r\n"), newline
}

// stripTrailingComment cuts a `#` comment from the last line of code.
// Hashes inside string literals and interpolation markers are not comments.
func stripTrailingComment(code string) string {
	lineStart := strings.LastIndexByte(strings.TrimRight(code, "\n"), '\n') + 1
	var quote byte
	for i := lineStart; i < len(code); i++ {
		c := code[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '#' && (i+1 >= len(code) || code[i+1] != '{'):
			return code[:i]
		}
	}
	return code
}

// isComment reports whether a fragment is a Ruby comment
func isComment(code string) bool {
	return strings.HasPrefix(strings.TrimSpace(code), "#")
}

// leadingKeyword returns the first whitespace-separated word of code
func leadingKeyword(code string) string {
	fields := strings.Fields(code)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
