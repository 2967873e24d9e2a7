package lifecycle

import (
	"bennypowers.dev/slimls/internal/log"
	"bennypowers.dev/slimls/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// SetTrace handles the $/setTrace notification. A verbose trace turns on
// debug logging; any other value restores the configured level.
func SetTrace(req *types.RequestContext, params *protocol.SetTraceParams) error {
	log.Info("Trace level set to: %s", params.Value)

	if params.Value == "verbose" {
		log.SetLevel(log.LevelDebug)
	} else {
		log.SetLevel(req.Server.GetConfig().Level())
	}
	return nil
}
