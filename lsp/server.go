package lsp

import (
	"fmt"
	"sync"

	"bennypowers.dev/slimls/internal/analysis"
	"bennypowers.dev/slimls/internal/config"
	"bennypowers.dev/slimls/internal/documents"
	"bennypowers.dev/slimls/internal/log"
	"bennypowers.dev/slimls/internal/ruby"
	"bennypowers.dev/slimls/lsp/methods/lifecycle"
	"bennypowers.dev/slimls/lsp/methods/textDocument"
	"bennypowers.dev/slimls/lsp/methods/textDocument/diagnostic"
	"bennypowers.dev/slimls/lsp/methods/textDocument/hover"
	"bennypowers.dev/slimls/lsp/methods/workspace"
	"bennypowers.dev/slimls/lsp/types"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"
)

// Verify that Server implements ServerContext interface
var _ types.ServerContext = (*Server)(nil)

// Server is the Slim language server
type Server struct {
	documents          *documents.Manager
	glspServer         *server.Server
	context            *glsp.Context
	rootURI            string                    // Workspace root URI
	rootPath           string                    // Workspace root path (file system)
	config             config.Config             // Server configuration
	configPath         string                    // Config file the configuration came from, if any
	configMu           sync.RWMutex              // Protects the fields above and the client state below
	clientCapabilities *types.ClientCapabilities // Detected from raw initialize params (nil = not detected yet)
	usePullDiagnostics bool                      // Pull diagnostics (LSP 3.17) vs push
}

// NewServer creates a new Slim language server
func NewServer() (*Server, error) {
	s := &Server{
		documents: documents.NewManager(),
		config:    config.Default(),
	}

	protocolHandler := protocol.Handler{
		Initialize:                      method(s, "initialize", lifecycle.Initialize),
		Initialized:                     notify(s, "initialized", lifecycle.Initialized),
		Shutdown:                        noParam(s, "shutdown", lifecycle.Shutdown),
		SetTrace:                        notify(s, "$/setTrace", lifecycle.SetTrace),
		WorkspaceDidChangeConfiguration: notify(s, "workspace/didChangeConfiguration", workspace.DidChangeConfiguration),
		WorkspaceDidChangeWatchedFiles:  notify(s, "workspace/didChangeWatchedFiles", workspace.DidChangeWatchedFiles),
		TextDocumentDidOpen:             notify(s, "textDocument/didOpen", textDocument.DidOpen),
		TextDocumentDidChange:           notify(s, "textDocument/didChange", textDocument.DidChange),
		TextDocumentDidClose:            notify(s, "textDocument/didClose", textDocument.DidClose),
		TextDocumentHover:               method(s, "textDocument/hover", hover.Hover),
	}

	// glsp v0.2.2 only knows LSP 3.16; CustomHandler dispatches the methods
	// protocol.Handler has no field for before falling through to it
	customHandler := &CustomHandler{
		Handler: &protocolHandler,
		server:  s,
	}

	s.glspServer = server.NewServer(customHandler, lifecycle.ServerName, false)

	return s, nil
}

// RunStdio starts the LSP server using stdio transport
func (s *Server) RunStdio() error {
	return s.glspServer.RunStdio()
}

// Close releases server resources including the Ruby parser pool.
// It is safe to call Close multiple times.
func (s *Server) Close() error {
	ruby.ClosePool()
	return nil
}

// Document returns the document with the given URI
func (s *Server) Document(uri string) *documents.Document {
	return s.documents.Get(uri)
}

// DocumentManager returns the document manager
func (s *Server) DocumentManager() *documents.Manager {
	return s.documents
}

// AllDocuments returns all tracked documents
func (s *Server) AllDocuments() []*documents.Document {
	return s.documents.GetAll()
}

// Report returns the analysis of an open document
func (s *Server) Report(uri string) (*analysis.Report, error) {
	return s.documents.Report(uri)
}

// RootURI returns the workspace root URI
func (s *Server) RootURI() string {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.rootURI
}

// RootPath returns the workspace root path
func (s *Server) RootPath() string {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.rootPath
}

// SetRootURI sets the workspace root URI
func (s *Server) SetRootURI(uri string) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.rootURI = uri
}

// SetRootPath sets the workspace root path
func (s *Server) SetRootPath(path string) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.rootPath = path
}

// GLSPContext returns the GLSP context
func (s *Server) GLSPContext() *glsp.Context {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.context
}

// SetGLSPContext sets the GLSP context
func (s *Server) SetGLSPContext(ctx *glsp.Context) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.context = ctx
}

// ClientCapabilities returns what was detected from the initialize params,
// or nil before initialize
func (s *Server) ClientCapabilities() *types.ClientCapabilities {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.clientCapabilities
}

// SetClientCapabilities records the capabilities detected from the raw initialize params
func (s *Server) SetClientCapabilities(caps types.ClientCapabilities) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.clientCapabilities = &caps
}

// UsePullDiagnostics returns whether the client pulls diagnostics (LSP 3.17).
// If true, the server does not send textDocument/publishDiagnostics.
func (s *Server) UsePullDiagnostics() bool {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return s.usePullDiagnostics
}

// SetUsePullDiagnostics sets whether to use pull diagnostics based on client capabilities
func (s *Server) SetUsePullDiagnostics(use bool) {
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.usePullDiagnostics = use
}

// PublishDiagnostics publishes diagnostics for a document
func (s *Server) PublishDiagnostics(context *glsp.Context, uri string) error {
	log.Debug("Publishing diagnostics for: %s", uri)

	// Prefer the passed-in context, falling back to the one stored at initialized
	workingContext := context
	if workingContext == nil {
		workingContext = s.GLSPContext()
	}
	if workingContext == nil {
		return fmt.Errorf("cannot publish diagnostics: no client context available")
	}

	// Pull clients request diagnostics themselves
	if s.UsePullDiagnostics() {
		return nil
	}

	diagnostics, err := diagnostic.GetDiagnostics(s, uri)
	if err != nil {
		return err
	}

	if workingContext.Notify == nil {
		return fmt.Errorf("cannot publish diagnostics: client context cannot notify")
	}
	workingContext.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
	return nil
}
