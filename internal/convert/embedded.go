package convert

import "strings"

// EmbeddedLine is one retained line of an embedded Ruby block
type EmbeddedLine struct {
	Code string
	// Line is the block's start line plus the line's offset within the block
	Line int
}

// ExtractEmbedded splits a raw block into lines, drops blank ones and
// removes the indentation common to the rest. Offsets count every line of
// the block, blank or not, so Line stays faithful to the template.
func ExtractEmbedded(text string, start int) []EmbeddedLine {
	var kept []EmbeddedLine
	minIndent := -1
	for offset, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if indent := leadingWhitespace(line); minIndent < 0 || indent < minIndent {
			minIndent = indent
		}
		kept = append(kept, EmbeddedLine{Code: line, Line: start + offset})
	}

	for i := range kept {
		kept[i].Code = kept[i].Code[minIndent:]
	}
	return kept
}

func leadingWhitespace(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
