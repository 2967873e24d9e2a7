// Package analysis runs the Ruby extracted from a Slim template through the
// Ruby checker and reports findings against template lines.
package analysis

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"bennypowers.dev/slimls/internal/collections"
	"bennypowers.dev/slimls/internal/convert"
	"bennypowers.dev/slimls/internal/ruby"
)

// templateExtensions are the file extensions handled as Slim templates
var templateExtensions = collections.NewSet(".slim")

// IsTemplatePath reports whether path names a Slim template
func IsTemplatePath(path string) bool {
	return templateExtensions.Has(strings.ToLower(filepath.Ext(path)))
}

// Issue is a Ruby syntax problem located in the template
type Issue struct {
	ruby.SyntaxIssue
	TemplateLine int `json:"templateLine"`
}

// Reference is a constant reference located in the template
type Reference struct {
	ruby.ConstantRef
	TemplateLine int `json:"templateLine"`
}

// Report is the outcome of analysing one template
type Report struct {
	FileID string
	// Conversion is nil when the template failed to parse
	Conversion *convert.Result
	// SyntaxError is set when the template itself is malformed
	SyntaxError *convert.TemplateSyntaxError
	Issues      []Issue
	References  []Reference
}

// HasRuby reports whether any Ruby was extracted
func (r *Report) HasRuby() bool {
	return r.Conversion != nil && !r.Conversion.Empty()
}

// Clean reports whether the template parsed and its Ruby has no issues
func (r *Report) Clean() bool {
	return r.SyntaxError == nil && len(r.Issues) == 0
}

// ReferenceNames returns the distinct constant names, in first-seen order
func (r *Report) ReferenceNames() []string {
	seen := collections.NewSet[string]()
	var names []string
	for _, ref := range r.References {
		if seen.Has(ref.Name) {
			continue
		}
		seen.Add(ref.Name)
		names = append(names, ref.Name)
	}
	return names
}

// ReferencesAt returns the references that come from a template line
func (r *Report) ReferencesAt(templateLine int) []Reference {
	var out []Reference
	for _, ref := range r.References {
		if ref.TemplateLine == templateLine {
			out = append(out, ref)
		}
	}
	return out
}

// Analyzer analyses templates with a given converter
type Analyzer struct {
	converter *convert.Converter
}

// New creates an Analyzer. A nil converter selects the default one.
func New(converter *convert.Converter) *Analyzer {
	if converter == nil {
		converter = convert.New(nil)
	}
	return &Analyzer{converter: converter}
}

// Analyze analyses content with the default converter
func Analyze(content, fileID string) (*Report, error) {
	return New(nil).Analyze(content, fileID)
}

// Analyze converts content and checks the resulting Ruby. A malformed
// template is not an error: it is recorded in Report.SyntaxError. Templates
// without Ruby are never handed to the Ruby parser.
func (a *Analyzer) Analyze(content, fileID string) (*Report, error) {
	report := &Report{FileID: fileID}

	result, err := a.converter.Convert(content, fileID)
	if err != nil {
		var syntaxErr *convert.TemplateSyntaxError
		if !errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("converting %s: %w", fileID, err)
		}
		report.SyntaxError = syntaxErr
		return report, nil
	}
	report.Conversion = result

	if result.Empty() {
		return report, nil
	}

	parsed, err := ruby.Analyze(result.Code)
	if err != nil {
		return nil, fmt.Errorf("checking Ruby from %s: %w", fileID, err)
	}

	for _, issue := range parsed.Issues {
		report.Issues = append(report.Issues, Issue{
			SyntaxIssue:  issue,
			TemplateLine: templateLine(result, issue.Line),
		})
	}
	for _, ref := range parsed.Constants {
		report.References = append(report.References, Reference{
			ConstantRef:  ref,
			TemplateLine: templateLine(result, ref.Line),
		})
	}
	return report, nil
}

// templateLine maps a generated line to the template. Lines past the last
// mapping (a missing `end` at end of input, say) use the nearest mapped
// line above them.
func templateLine(result *convert.Result, outputLine int) int {
	for line := outputLine; line > 0; line-- {
		if source, ok := result.SourceLine(line); ok {
			return source
		}
	}
	return 0
}
