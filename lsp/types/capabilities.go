package types

import (
	"encoding/json"
	"slices"
)

// ClientCapabilities is what the server adapts to from the client's
// initialize request. glsp v0.2.2 models LSP 3.16, so these are read from
// the raw params rather than from protocol.InitializeParams.
type ClientCapabilities struct {
	// PullDiagnostics is set when the client declares textDocument.diagnostic (LSP 3.17)
	PullDiagnostics bool
	// HoverMarkdown is set when the client renders markdown hovers
	HoverMarkdown bool
}

// DefaultClientCapabilities assumes push diagnostics and markdown hovers
func DefaultClientCapabilities() ClientCapabilities {
	return ClientCapabilities{HoverMarkdown: true}
}

// DetectClientCapabilities reads the capabilities slimls cares about from
// raw initialize params. Unparseable params yield the defaults. A declared
// diagnostic capability means pull diagnostics even when it is empty. A hover
// contentFormat list without "markdown" means plain text hovers; an absent
// list keeps markdown.
func DetectClientCapabilities(rawParams json.RawMessage) ClientCapabilities {
	caps := DefaultClientCapabilities()

	var params struct {
		Capabilities struct {
			TextDocument *struct {
				Diagnostic *json.RawMessage `json:"diagnostic"`
				Hover      *struct {
					ContentFormat []string `json:"contentFormat"`
				} `json:"hover"`
			} `json:"textDocument"`
		} `json:"capabilities"`
	}
	if err := json.Unmarshal(rawParams, &params); err != nil {
		return caps
	}

	textDocument := params.Capabilities.TextDocument
	if textDocument == nil {
		return caps
	}
	caps.PullDiagnostics = textDocument.Diagnostic != nil
	if hover := textDocument.Hover; hover != nil && len(hover.ContentFormat) > 0 {
		caps.HoverMarkdown = slices.Contains(hover.ContentFormat, "markdown")
	}
	return caps
}
