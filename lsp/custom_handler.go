package lsp

import (
	"encoding/json"

	"bennypowers.dev/slimls/lsp/methods/textDocument/diagnostic"
	generatedsource "bennypowers.dev/slimls/lsp/methods/textDocument/generatedSource"
	"bennypowers.dev/slimls/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const diagnosticMethod = "textDocument/diagnostic"

// CustomHandler wraps protocol.Handler to add methods it does not model.
//
// glsp v0.2.2 implements LSP 3.16, so protocol.Handler has no field for
// textDocument/diagnostic (3.17) or for our own slimls/generatedSource
// request. Both are intercepted here before falling through.
type CustomHandler struct {
	*protocol.Handler // Pointer to avoid copying embedded mutex
	server            *Server
}

// Handle implements glsp.Handler interface
func (h *CustomHandler) Handle(context *glsp.Context) (r any, validMethod bool, validParams bool, err error) {
	switch context.Method {
	case "initialize":
		// InitializeParams in 3.16 lacks the diagnostic capability, so
		// capabilities are read from the raw JSON before the normal handler runs
		h.server.SetClientCapabilities(types.DetectClientCapabilities(context.Params))

	case diagnosticMethod:
		return dispatch(context, method(h.server, diagnosticMethod, diagnostic.DocumentDiagnostic))

	case generatedsource.Method:
		return dispatch(context, method(h.server, generatedsource.Method, generatedsource.GeneratedSource))
	}

	return h.Handler.Handle(context)
}

// dispatch decodes the raw params for a method protocol.Handler does not know
func dispatch[P, R any](context *glsp.Context, handler func(*glsp.Context, *P) (R, error)) (any, bool, bool, error) {
	var params P
	if err := json.Unmarshal(context.Params, &params); err != nil {
		return nil, true, false, err
	}
	result, err := handler(context, &params)
	if err != nil {
		return nil, true, true, err
	}
	return result, true, true, nil
}
