package lifecycle

import (
	"fmt"

	"bennypowers.dev/slimls/internal/log"
	"bennypowers.dev/slimls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Initialized handles the LSP initialized notification. Failing to load
// the workspace config or to register watchers does not fail startup.
func Initialized(req *types.RequestContext, params *protocol.InitializedParams) error {
	log.Info("Server initialized")

	// Store context for later use (diagnostics)
	req.Server.SetGLSPContext(req.GLSP)

	if err := req.Server.LoadWorkspaceConfig(); err != nil {
		req.AddWarning(fmt.Errorf("failed to load workspace config: %w", err))
	}

	if err := req.Server.RegisterFileWatchers(req.GLSP); err != nil {
		req.AddWarning(fmt.Errorf("failed to register file watchers: %w", err))
	}

	return nil
}
