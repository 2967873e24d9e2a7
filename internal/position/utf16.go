// Package position converts between LSP's UTF-16 columns and Go byte offsets
package position

import (
	"unicode/utf16"
	"unicode/utf8"
)

// UTF16ToByteOffset converts a UTF-16 column on line into a byte offset.
// A column inside a surrogate pair clamps to the start of its rune, and a
// column past the end clamps to len(line).
func UTF16ToByteOffset(line string, col int) int {
	units := 0
	for i, r := range line {
		if units >= col {
			return i
		}
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		if units+n > col {
			return i
		}
		units += n
	}
	return len(line)
}

// ByteOffsetToUTF16 converts a byte offset on line into a UTF-16 column.
// Offsets inside a multi-byte rune count up to the start of that rune.
func ByteOffsetToUTF16(line string, offset int) int {
	if offset > len(line) {
		offset = len(line)
	}
	units := 0
	for i := 0; i < offset; {
		r, size := utf8.DecodeRuneInString(line[i:])
		if i+size > offset {
			break
		}
		if n := utf16.RuneLen(r); n > 0 {
			units += n
		} else {
			units++
		}
		i += size
	}
	return units
}

// StringLengthUTF16 returns the length of s in UTF-16 code units
func StringLengthUTF16(s string) int {
	return ByteOffsetToUTF16(s, len(s))
}
