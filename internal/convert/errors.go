package convert

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTemplateSyntax is the sentinel for templates that cannot be parsed
var ErrTemplateSyntax = errors.New("template syntax error")

// TemplateSyntaxError is a parse failure located in a named template.
// Line and Column are 1-based; 0 means unknown.
type TemplateSyntaxError struct {
	FileID  string
	Line    int
	Column  int
	Message string
}

// NewTemplateSyntaxError creates a TemplateSyntaxError
func NewTemplateSyntaxError(fileID string, line, column int, message string) *TemplateSyntaxError {
	return &TemplateSyntaxError{
		FileID:  fileID,
		Line:    line,
		Column:  column,
		Message: message,
	}
}

// Error renders "file:line:column - message", leaving out unknown parts
func (e *TemplateSyntaxError) Error() string {
	var location []string
	if e.FileID != "" {
		location = append(location, e.FileID)
	}
	if e.Line > 0 {
		location = append(location, fmt.Sprint(e.Line))
	}
	if e.Column > 0 {
		location = append(location, fmt.Sprint(e.Column))
	}
	if len(location) == 0 {
		return e.Message
	}
	return strings.Join(location, ":") + " - " + e.Message
}

func (e *TemplateSyntaxError) Unwrap() error {
	return ErrTemplateSyntax
}
