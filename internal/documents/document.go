package documents

import (
	"fmt"
	"strings"

	"bennypowers.dev/slimls/internal/analysis"
)

// Document is an open template as the editor sees it
type Document struct {
	uri        string
	languageID string
	content    string
	version    int
	// report caches the analysis of content; reset whenever content changes
	report *analysis.Report
}

// NewDocument creates a new document
func NewDocument(uri, languageID string, version int, content string) *Document {
	return &Document{
		uri:        uri,
		languageID: languageID,
		version:    version,
		content:    content,
	}
}

// URI returns the document's URI
func (d *Document) URI() string {
	return d.uri
}

// LanguageID returns the document's language identifier
func (d *Document) LanguageID() string {
	return d.languageID
}

// Version returns the document's version
func (d *Document) Version() int {
	return d.version
}

// Content returns the document's current content
func (d *Document) Content() string {
	return d.content
}

// Line returns the text of a 0-based line, or "" past the end
func (d *Document) Line(n int) string {
	lines := strings.Split(d.content, "\n")
	if n < 0 || n >= len(lines) {
		return ""
	}
	return strings.TrimSuffix(lines[n], "\r")
}

// SetContent updates the document's content and version.
// Updates older than the current version are rejected.
func (d *Document) SetContent(content string, version int) error {
	if version < d.version {
		return fmt.Errorf("rejected stale update: document version is %d but update version is %d", d.version, version)
	}
	d.content = content
	d.version = version
	d.report = nil
	return nil
}
