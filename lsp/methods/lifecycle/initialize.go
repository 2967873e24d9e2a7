package lifecycle

import (
	"bennypowers.dev/slimls/internal/log"
	"bennypowers.dev/slimls/internal/uriutil"
	"bennypowers.dev/slimls/internal/version"
	"bennypowers.dev/slimls/lsp/methods/textDocument/diagnostic"
	"bennypowers.dev/slimls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ServerName is reported to clients in serverInfo
const ServerName = "slimls"

// InitializeResult mirrors protocol.InitializeResult with untyped
// capabilities, so LSP 3.17 fields glsp v0.2.2 does not model can be sent
type InitializeResult struct {
	Capabilities map[string]any                       `json:"capabilities"`
	ServerInfo   *protocol.InitializeResultServerInfo `json:"serverInfo,omitempty"`
}

// Initialize handles the LSP initialize request
func Initialize(req *types.RequestContext, params *protocol.InitializeParams) (any, error) {
	clientName := "unknown"
	if params.ClientInfo != nil {
		clientName = params.ClientInfo.Name
	}
	log.Info("Initializing for client: %s", clientName)

	// The CustomHandler inspects the raw params for the 3.17 diagnostic
	// capability before this handler runs; clients without it get push diagnostics.
	supportsPullDiagnostics := false
	if caps := req.Server.ClientCapabilities(); caps != nil {
		supportsPullDiagnostics = caps.PullDiagnostics
	}
	req.Server.SetUsePullDiagnostics(supportsPullDiagnostics)

	if supportsPullDiagnostics {
		log.Info("Using pull diagnostics model (LSP 3.17)")
	} else {
		log.Info("Using push diagnostics model")
	}

	if params.RootURI != nil {
		req.Server.SetRootURI(*params.RootURI)
		req.Server.SetRootPath(uriutil.URIToPath(*params.RootURI))
		log.Info("Workspace root: %s", req.Server.RootPath())
	} else if params.RootPath != nil {
		req.Server.SetRootPath(*params.RootPath)
		req.Server.SetRootURI(uriutil.PathToURI(*params.RootPath))
		log.Info("Workspace root (from rootPath): %s", req.Server.RootPath())
	}

	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities := map[string]any{
		"textDocumentSync": protocol.TextDocumentSyncOptions{
			OpenClose: boolPtr(true),
			Change:    &syncKind,
		},
		"hoverProvider": true,
	}
	if supportsPullDiagnostics {
		capabilities["diagnosticProvider"] = diagnostic.Options{
			InterFileDependencies: false,
			WorkspaceDiagnostics:  false,
		}
	}

	return InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    ServerName,
			Version: strPtr(version.GetVersion()),
		},
	}, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func strPtr(s string) *string {
	return &s
}
