package slim

import (
	"errors"
	"fmt"
)

// ErrSyntax is the sentinel wrapped by every SyntaxError
var ErrSyntax = errors.New("slim syntax error")

// SyntaxError reports malformed template markup
type SyntaxError struct {
	Message string
	// Line is 1-based
	Line int
	// Column is 1-based; 0 when unknown
	Column int
	// Source is the offending line as written
	Source string
}

func (e *SyntaxError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("%s at line %d, column %d", e.Message, e.Line, e.Column)
	}
	return fmt.Sprintf("%s at line %d", e.Message, e.Line)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

func newSyntaxError(message string, line, column int, source string) error {
	return &SyntaxError{
		Message: message,
		Line:    line,
		Column:  column,
		Source:  source,
	}
}
