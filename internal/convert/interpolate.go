package convert

import "strings"

const interpolationStart = "#{"

// ExtractInterpolations returns the trimmed Ruby expressions of every
// #{...} marker in text. Braces inside the expression are balanced, so
// "#{a(b{c:1})}" yields "a(b{c:1})". Escaped markers (`\#{`) are literal
// text. An unterminated marker ends the scan; what it buffered is dropped.
func ExtractInterpolations(text string) []string {
	var exprs []string
	i := 0
	for {
		k := strings.Index(text[i:], interpolationStart)
		if k < 0 {
			return exprs
		}
		marker := i + k
		start := marker + len(interpolationStart)
		if marker > 0 && text[marker-1] == '\\' {
			i = start
			continue
		}

		depth := 1
		j := start
		for ; j < len(text); j++ {
			switch text[j] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				break
			}
		}
		if depth > 0 {
			return exprs
		}

		exprs = append(exprs, strings.TrimSpace(text[start:j]))
		i = j + 1
	}
}
