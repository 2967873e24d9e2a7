package types

import (
	"fmt"

	"bennypowers.dev/slimls/internal/analysis"
	"bennypowers.dev/slimls/internal/documents"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// RequestContext is what a handler sees for one LSP message: the server,
// the glsp context of the message, and the warnings the handler collected.
// Middleware logs the warnings once the handler has succeeded.
type RequestContext struct {
	Server   ServerContext
	GLSP     *glsp.Context
	warnings []error
}

// NewRequestContext creates a request context. glsp may be nil for
// messages the server sends itself.
func NewRequestContext(server ServerContext, glsp *glsp.Context) *RequestContext {
	return &RequestContext{
		Server: server,
		GLSP:   glsp,
	}
}

// Template returns an open document together with its analysis. Both are
// nil when the document is not open or is not a template the server
// analyses.
func (r *RequestContext) Template(uri string) (*documents.Document, *analysis.Report, error) {
	doc := r.Server.Document(uri)
	if !IsTemplateDocument(r.Server, doc) {
		return nil, nil, nil
	}
	report, err := r.Server.Report(uri)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to analyse %s: %w", uri, err)
	}
	return doc, report, nil
}

// HoverFormat is the markup kind hovers are rendered in. Markdown unless
// the client said it only renders plain text.
func (r *RequestContext) HoverFormat() protocol.MarkupKind {
	if caps := r.Server.ClientCapabilities(); caps != nil && !caps.HoverMarkdown {
		return protocol.MarkupKindPlainText
	}
	return protocol.MarkupKindMarkdown
}

// AddWarning records a problem that did not stop the handler. Nil is ignored.
func (r *RequestContext) AddWarning(err error) {
	if err != nil {
		r.warnings = append(r.warnings, err)
	}
}

// Warnings returns the collected warnings in the order they were added
func (r *RequestContext) Warnings() []error {
	return r.warnings
}

// HasWarnings reports whether the handler recorded any warning
func (r *RequestContext) HasWarnings() bool {
	return len(r.warnings) > 0
}
