package types

import (
	"bennypowers.dev/slimls/internal/analysis"
	"bennypowers.dev/slimls/internal/config"
	"bennypowers.dev/slimls/internal/documents"
	"github.com/tliron/glsp"
)

// ServerContext provides all dependencies needed for LSP handlers.
// Handlers depend on this interface rather than on the server so they
// can be exercised against a mock in tests.
type ServerContext interface {
	// Document operations
	Document(uri string) *documents.Document
	DocumentManager() *documents.Manager
	AllDocuments() []*documents.Document
	// Report returns the cached analysis of an open document
	Report(uri string) (*analysis.Report, error)

	// Workspace operations
	RootURI() string
	RootPath() string
	SetRootURI(uri string)
	SetRootPath(path string)

	// Configuration
	GetConfig() config.Config
	SetConfig(cfg config.Config)
	// IsTemplateFile reports whether a path is a Slim template selected by the config
	IsTemplateFile(path string) bool

	// Workspace initialization (called by the initialized handler)
	LoadWorkspaceConfig() error
	RegisterFileWatchers(ctx *glsp.Context) error

	// LSP context (for publishing diagnostics, etc.)
	GLSPContext() *glsp.Context
	SetGLSPContext(ctx *glsp.Context)

	// Diagnostics
	// ClientCapabilities is nil until initialize has been received
	ClientCapabilities() *ClientCapabilities
	UsePullDiagnostics() bool
	SetUsePullDiagnostics(use bool)
	PublishDiagnostics(context *glsp.Context, uri string) error
}
