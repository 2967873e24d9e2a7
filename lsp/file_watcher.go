package lsp

import (
	"path/filepath"
	"strings"

	"bennypowers.dev/slimls/internal/config"
	"bennypowers.dev/slimls/internal/log"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// configWatcherID identifies the config file watcher registration
const configWatcherID = "slimls-config-watcher"

// configGlobPattern matches the workspace config files under root, or
// anywhere when root is empty
func configGlobPattern(root string) string {
	names := strings.Join(config.FileNames, ",")
	if root == "" {
		return "**/{" + names + "}"
	}
	return filepath.ToSlash(filepath.Clean(root)) + "/{" + names + "}"
}

// RegisterFileWatchers asks the client to report changes to the workspace config file
func (s *Server) RegisterFileWatchers(context *glsp.Context) error {
	// An empty context (created with &glsp.Context{}) has no Call function
	if context == nil || context.Call == nil {
		log.Info("Skipping file watcher registration (no client context)")
		return nil
	}

	params := protocol.RegistrationParams{
		Registrations: []protocol.Registration{
			{
				ID:     configWatcherID,
				Method: "workspace/didChangeWatchedFiles",
				RegisterOptions: protocol.DidChangeWatchedFilesRegistrationOptions{
					Watchers: []protocol.FileSystemWatcher{
						{GlobPattern: configGlobPattern(s.RootPath())},
					},
				},
			},
		},
	}

	// client/registerCapability is a request. Calling it synchronously from a
	// handler would block the message loop that must read the client's reply.
	go func(ctx *glsp.Context) {
		var result any
		ctx.Call("client/registerCapability", params, &result)
		log.Debug("File watcher registration completed")
	}(context)

	log.Info("Sent config file watcher registration request")
	return nil
}
