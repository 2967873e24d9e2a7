package lifecycle

import (
	"bennypowers.dev/slimls/internal/log"
	"bennypowers.dev/slimls/internal/ruby"
	"bennypowers.dev/slimls/lsp/types"
)

// Shutdown handles the LSP shutdown request
func Shutdown(req *types.RequestContext) error {
	log.Info("Server shutting down")

	// Release pooled tree-sitter parsers; the pool refills on demand
	ruby.ClosePool()
	return nil
}
