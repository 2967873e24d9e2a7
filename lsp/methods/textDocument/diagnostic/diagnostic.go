package diagnostic

import (
	"fmt"
	"strings"

	"bennypowers.dev/slimls/internal/analysis"
	"bennypowers.dev/slimls/internal/documents"
	"bennypowers.dev/slimls/internal/log"
	"bennypowers.dev/slimls/internal/position"
	"bennypowers.dev/slimls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	// SourceTemplate labels problems in the Slim markup itself
	SourceTemplate = "slim"
	// SourceRuby labels problems in the Ruby extracted from the template
	SourceRuby = "ruby"
)

// DocumentDiagnostic handles the textDocument/diagnostic request (pull diagnostics).
// It is dispatched by CustomHandler since glsp v0.2.2 has no field for it.
func DocumentDiagnostic(req *types.RequestContext, params *DocumentDiagnosticParams) (any, error) {
	uri := params.TextDocument.URI
	log.Debug("Pull diagnostics requested for: %s", uri)

	diagnostics, err := GetDiagnostics(req.Server, uri)
	if err != nil {
		return nil, err
	}

	return newFullReport(diagnostics), nil
}

// GetDiagnostics returns diagnostics for a document. A malformed template
// yields a single error; otherwise each Ruby syntax issue is reported on
// the template line its code came from, as a warning or, in strict mode,
// an error.
func GetDiagnostics(ctx types.ServerContext, uri string) ([]protocol.Diagnostic, error) {
	diagnostics := []protocol.Diagnostic{}

	doc := ctx.Document(uri)
	if !types.IsTemplateDocument(ctx, doc) {
		return diagnostics, nil
	}

	report, err := ctx.Report(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to analyse %s: %w", uri, err)
	}

	if syntaxErr := report.SyntaxError; syntaxErr != nil {
		line := max(syntaxErr.Line-1, 0)
		text := doc.Line(line)
		start := len(text) - len(strings.TrimLeft(text, " \t"))
		if syntaxErr.Column > 0 {
			start = min(syntaxErr.Column-1, len(text))
		}
		severity := protocol.DiagnosticSeverityError
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    lineRange(text, line, start),
			Severity: &severity,
			Source:   strPtr(SourceTemplate),
			Message:  syntaxErr.Message,
		})
		return diagnostics, nil
	}

	severity := protocol.DiagnosticSeverityWarning
	if ctx.GetConfig().Strict {
		severity = protocol.DiagnosticSeverityError
	}
	for _, issue := range report.Issues {
		diagnostics = append(diagnostics, issueDiagnostic(doc, issue, severity))
	}
	return diagnostics, nil
}

// issueDiagnostic spans the template line's content, since columns in the
// generated Ruby do not correspond to template columns
func issueDiagnostic(doc *documents.Document, issue analysis.Issue, severity protocol.DiagnosticSeverity) protocol.Diagnostic {
	line := max(issue.TemplateLine-1, 0)
	text := doc.Line(line)
	start := len(text) - len(strings.TrimLeft(text, " \t"))
	return protocol.Diagnostic{
		Range:    lineRange(text, line, start),
		Severity: &severity,
		Source:   strPtr(SourceRuby),
		Message:  issue.Message,
	}
}

// lineRange runs from a byte offset to the end of line, in UTF-16 columns
func lineRange(text string, line, start int) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      protocol.UInteger(line),
			Character: protocol.UInteger(position.ByteOffsetToUTF16(text, start)),
		},
		End: protocol.Position{
			Line:      protocol.UInteger(line),
			Character: protocol.UInteger(position.StringLengthUTF16(text)),
		},
	}
}

func strPtr(s string) *string {
	return &s
}
