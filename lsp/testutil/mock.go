package testutil

import (
	"sync"

	"bennypowers.dev/slimls/internal/analysis"
	"bennypowers.dev/slimls/internal/config"
	"bennypowers.dev/slimls/internal/documents"
	"bennypowers.dev/slimls/lsp/types"
	"github.com/tliron/glsp"
)

var _ types.ServerContext = (*MockServerContext)(nil)

// MockServerContext implements types.ServerContext for testing.
// It provides a minimal implementation with configurable behavior via callback functions.
type MockServerContext struct {
	docs               *documents.Manager
	rootURI            string
	rootPath           string
	config             config.Config
	glspContext        *glsp.Context
	usePullDiagnostics bool
	clientCaps         *types.ClientCapabilities

	// Optional callbacks for custom behavior in tests
	LoadConfigFunc         func() error
	RegisterWatchersFunc   func(*glsp.Context) error
	PublishDiagnosticsFunc func(*glsp.Context, string) error

	// Tracking for tests that need to verify methods were called
	LoadConfigCalled       bool
	RegisterWatchersCalled bool
	mu                     sync.Mutex
	published              []string
}

// NewMockServerContext creates a new mock server context with default behavior
func NewMockServerContext() *MockServerContext {
	return &MockServerContext{
		docs:   documents.NewManager(),
		config: config.Default(),
	}
}

// Document returns the document with the given URI
func (m *MockServerContext) Document(uri string) *documents.Document {
	return m.docs.Get(uri)
}

// DocumentManager returns the document manager
func (m *MockServerContext) DocumentManager() *documents.Manager {
	return m.docs
}

// AllDocuments returns all tracked documents
func (m *MockServerContext) AllDocuments() []*documents.Document {
	return m.docs.GetAll()
}

// Report returns the analysis of an open document
func (m *MockServerContext) Report(uri string) (*analysis.Report, error) {
	return m.docs.Report(uri)
}

// RootURI returns the workspace root URI
func (m *MockServerContext) RootURI() string {
	return m.rootURI
}

// RootPath returns the workspace root path
func (m *MockServerContext) RootPath() string {
	return m.rootPath
}

// SetRootURI sets the workspace root URI
func (m *MockServerContext) SetRootURI(uri string) {
	m.rootURI = uri
}

// SetRootPath sets the workspace root path
func (m *MockServerContext) SetRootPath(path string) {
	m.rootPath = path
}

// GetConfig returns the server configuration
func (m *MockServerContext) GetConfig() config.Config {
	return m.config
}

// SetConfig sets the server configuration
func (m *MockServerContext) SetConfig(cfg config.Config) {
	m.config = cfg
}

// IsTemplateFile checks the path against the config relative to the root
func (m *MockServerContext) IsTemplateFile(path string) bool {
	return analysis.IsTemplatePath(path) && m.config.MatchesPath(m.rootPath, path)
}

// LoadWorkspaceConfig records the call and runs LoadConfigFunc when set
func (m *MockServerContext) LoadWorkspaceConfig() error {
	m.LoadConfigCalled = true
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc()
	}
	return nil
}

// RegisterFileWatchers registers file watchers with the client
func (m *MockServerContext) RegisterFileWatchers(ctx *glsp.Context) error {
	m.RegisterWatchersCalled = true
	if m.RegisterWatchersFunc != nil {
		return m.RegisterWatchersFunc(ctx)
	}
	return nil
}

// GLSPContext returns the GLSP context
func (m *MockServerContext) GLSPContext() *glsp.Context {
	return m.glspContext
}

// SetGLSPContext sets the GLSP context
func (m *MockServerContext) SetGLSPContext(ctx *glsp.Context) {
	m.glspContext = ctx
}

// ClientCapabilities returns the capabilities set with SetClientCapabilities
func (m *MockServerContext) ClientCapabilities() *types.ClientCapabilities {
	return m.clientCaps
}

// SetClientCapabilities simulates capability detection during initialize
func (m *MockServerContext) SetClientCapabilities(caps types.ClientCapabilities) {
	m.clientCaps = &caps
}

// UsePullDiagnostics returns whether pull diagnostics are in use
func (m *MockServerContext) UsePullDiagnostics() bool {
	return m.usePullDiagnostics
}

// SetUsePullDiagnostics sets whether pull diagnostics are in use
func (m *MockServerContext) SetUsePullDiagnostics(use bool) {
	m.usePullDiagnostics = use
}

// PublishDiagnostics records the URI and runs PublishDiagnosticsFunc when set
func (m *MockServerContext) PublishDiagnostics(context *glsp.Context, uri string) error {
	m.mu.Lock()
	m.published = append(m.published, uri)
	m.mu.Unlock()
	if m.PublishDiagnosticsFunc != nil {
		return m.PublishDiagnosticsFunc(context, uri)
	}
	return nil
}

// Published returns the URIs passed to PublishDiagnostics, in call order
func (m *MockServerContext) Published() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.published...)
}
