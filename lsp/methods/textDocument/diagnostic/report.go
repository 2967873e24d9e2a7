package diagnostic

import (
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Pull diagnostics arrived in LSP 3.17; glsp v0.2.2 stops at 3.16, so the
// request, report and capability shapes for textDocument/diagnostic live here.

// DocumentDiagnosticParams is the textDocument/diagnostic request
type DocumentDiagnosticParams struct {
	TextDocument     protocol.TextDocumentIdentifier `json:"textDocument"`
	Identifier       string                          `json:"identifier,omitempty"`
	PreviousResultID string                          `json:"previousResultId,omitempty"`
}

// ReportKindFull marks a report that carries every diagnostic for the document
const ReportKindFull = "full"

// FullReport is a full document diagnostic report. Items is never nil, so
// an empty report clears the client's diagnostics.
type FullReport struct {
	Kind     string                `json:"kind"`
	ResultID string                `json:"resultId,omitempty"`
	Items    []protocol.Diagnostic `json:"items"`
}

func newFullReport(items []protocol.Diagnostic) FullReport {
	if items == nil {
		items = []protocol.Diagnostic{}
	}
	return FullReport{Kind: ReportKindFull, Items: items}
}

// Options is the diagnosticProvider server capability. Templates are
// checked one at a time, so there are no inter-file dependencies and no
// workspace-wide pass.
type Options struct {
	InterFileDependencies bool `json:"interFileDependencies"`
	WorkspaceDiagnostics  bool `json:"workspaceDiagnostics"`
}
