package workspace

import (
	"fmt"

	"bennypowers.dev/slimls/internal/log"
	"bennypowers.dev/slimls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidChangeConfiguration handles the workspace/didChangeConfiguration notification.
// Editor settings are overlaid on the current config; invalid settings
// are reported and otherwise ignored.
func DidChangeConfiguration(req *types.RequestContext, params *protocol.DidChangeConfigurationParams) error {
	log.Info("Configuration changed")

	cfg, err := req.Server.GetConfig().WithSettings(params.Settings)
	if err != nil {
		req.AddWarning(fmt.Errorf("ignoring settings: %w", err))
		return nil
	}

	req.Server.SetConfig(cfg)
	log.SetLevel(cfg.Level())
	log.Debug("New configuration: %+v", cfg)

	RepublishDiagnostics(req)
	return nil
}

// RepublishDiagnostics pushes fresh diagnostics for every open document
func RepublishDiagnostics(req *types.RequestContext) {
	if req.Server.UsePullDiagnostics() {
		return
	}
	glspCtx := req.Server.GLSPContext()
	if glspCtx == nil {
		return
	}
	for _, doc := range req.Server.AllDocuments() {
		if err := req.Server.PublishDiagnostics(glspCtx, doc.URI()); err != nil {
			req.AddWarning(fmt.Errorf("failed to publish diagnostics for %s: %w", doc.URI(), err))
		}
	}
}
