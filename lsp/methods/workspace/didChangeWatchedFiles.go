package workspace

import (
	"fmt"
	"path/filepath"
	"slices"

	"bennypowers.dev/slimls/internal/config"
	"bennypowers.dev/slimls/internal/log"
	"bennypowers.dev/slimls/internal/uriutil"
	"bennypowers.dev/slimls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidChangeWatchedFiles handles the workspace/didChangeWatchedFiles notification.
// Changes to a workspace config file reload the config and refresh diagnostics.
func DidChangeWatchedFiles(req *types.RequestContext, params *protocol.DidChangeWatchedFilesParams) error {
	log.Info("Watched files changed: %d files", len(params.Changes))

	reload := false
	for _, change := range params.Changes {
		path := uriutil.URIToPath(change.URI)
		log.Debug("File change: %s (type: %d)", path, change.Type)
		if IsConfigFile(req.Server.RootPath(), path) {
			reload = true
		}
	}
	if !reload {
		return nil
	}

	log.Info("Reloading workspace config")
	if err := req.Server.LoadWorkspaceConfig(); err != nil {
		req.AddWarning(fmt.Errorf("failed to reload config: %w", err))
	}

	RepublishDiagnostics(req)
	return nil
}

// IsConfigFile reports whether path is a config file at the workspace root
func IsConfigFile(rootPath, path string) bool {
	if !slices.Contains(config.FileNames, filepath.Base(path)) {
		return false
	}
	if rootPath == "" {
		return true
	}
	return filepath.Clean(filepath.Dir(path)) == filepath.Clean(rootPath)
}
