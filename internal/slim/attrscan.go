package slim

import (
	"errors"
	"strings"
)

// attrScanner walks attribute text. In multiline mode (wrapped attributes)
// it pulls further template lines into buf when it runs out of input.
type attrScanner struct {
	p         *parser
	buf       string
	j         int
	multiline bool
}

func (sc *attrScanner) eof() bool {
	return sc.j >= len(sc.buf)
}

func (sc *attrScanner) peek() byte {
	return sc.buf[sc.j]
}

func (sc *attrScanner) more() bool {
	if !sc.multiline || sc.p.pos+1 >= len(sc.p.lines) {
		return false
	}
	sc.p.pos++
	sc.buf += "\n" + sc.p.lines[sc.p.pos]
	return true
}

func (sc *attrScanner) skipSpace() {
	for !sc.eof() && isSpace(sc.peek()) {
		sc.j++
	}
}

// name scans an attribute name up to whitespace, `=`, a quote or closer
func (sc *attrScanner) name(closer byte) string {
	start := sc.j
	for !sc.eof() {
		c := sc.peek()
		if isSpace(c) || c == '=' || c == '"' || c == '\'' || c == closer {
			break
		}
		sc.j++
	}
	return sc.buf[start:sc.j]
}

// value scans a quoted string or a Ruby expression. Expressions end at
// whitespace or at closer outside any brackets or strings.
func (sc *attrScanner) value(closer byte) (string, bool, error) {
	if sc.eof() {
		return "", false, errors.New("Invalid empty attribute")
	}

	if q := sc.peek(); q == '"' || q == '\'' {
		start := sc.j
		if err := sc.skipString(); err != nil {
			return "", false, err
		}
		return sc.buf[start+1 : sc.j-1], true, nil
	}

	start := sc.j
	depth := 0
	for {
		if sc.eof() {
			if depth > 0 && sc.more() {
				continue
			}
			break
		}
		c := sc.peek()
		if depth == 0 && (isSpace(c) || c == closer) {
			break
		}
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				return sc.finishValue(start)
			}
			depth--
		case '"', '\'':
			if err := sc.skipString(); err != nil {
				return "", false, err
			}
			continue
		}
		sc.j++
	}
	if depth > 0 {
		return "", false, errors.New("Expected closing delimiter")
	}
	return sc.finishValue(start)
}

func (sc *attrScanner) finishValue(start int) (string, bool, error) {
	v := strings.TrimSpace(sc.buf[start:sc.j])
	if v == "" {
		return "", false, errors.New("Invalid empty attribute")
	}
	return v, false, nil
}

// skipString advances past the quoted string at the cursor, honouring
// backslash escapes
func (sc *attrScanner) skipString() error {
	q := sc.peek()
	sc.j++
	for {
		if sc.eof() {
			if sc.more() {
				continue
			}
			return errors.New("Unterminated string")
		}
		c := sc.peek()
		sc.j++
		if c == '\\' {
			sc.j++
			continue
		}
		if c == q {
			return nil
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}
