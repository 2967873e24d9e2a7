package textDocument

import (
	"bennypowers.dev/slimls/internal/log"
	"bennypowers.dev/slimls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidOpen handles the textDocument/didOpen notification
func DidOpen(req *types.RequestContext, params *protocol.DidOpenTextDocumentParams) error {
	log.Info("Document opened: %s (language: %s, version: %d)",
		params.TextDocument.URI, params.TextDocument.LanguageID, int(params.TextDocument.Version))

	err := req.Server.DocumentManager().DidOpen(params.TextDocument.URI, params.TextDocument.LanguageID,
		int(params.TextDocument.Version), params.TextDocument.Text)
	if err != nil {
		return err
	}

	publish(req, params.TextDocument.URI)
	return nil
}

// DidChange handles the textDocument/didChange notification
func DidChange(req *types.RequestContext, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	version := int(params.TextDocument.Version)

	log.Debug("Document changed: %s (version: %d, changes: %d)", uri, version, len(params.ContentChanges))

	// glsp decodes each change as either a ranged or a whole-document event
	changes := make([]protocol.TextDocumentContentChangeEvent, 0, len(params.ContentChanges))
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEvent:
			changes = append(changes, c)
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, protocol.TextDocumentContentChangeEvent{Text: c.Text})
		}
	}

	if err := req.Server.DocumentManager().DidChange(uri, version, changes); err != nil {
		return err
	}

	publish(req, uri)
	return nil
}

// DidClose handles the textDocument/didClose notification. Diagnostics
// pushed for the document are cleared.
func DidClose(req *types.RequestContext, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	log.Info("Document closed: %s", uri)

	if err := req.Server.DocumentManager().DidClose(uri); err != nil {
		return err
	}

	if !req.Server.UsePullDiagnostics() {
		if glspCtx := req.Server.GLSPContext(); glspCtx != nil && glspCtx.Notify != nil {
			glspCtx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
				URI:         uri,
				Diagnostics: []protocol.Diagnostic{},
			})
		}
	}
	return nil
}

// publish pushes diagnostics for uri unless the client pulls them
func publish(req *types.RequestContext, uri string) {
	if req.Server.UsePullDiagnostics() {
		return
	}
	if glspCtx := req.Server.GLSPContext(); glspCtx != nil {
		if err := req.Server.PublishDiagnostics(glspCtx, uri); err != nil {
			log.Warn("failed to publish diagnostics for %s: %v", uri, err)
		}
	}
}
