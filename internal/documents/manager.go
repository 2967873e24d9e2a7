package documents

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"bennypowers.dev/slimls/internal/analysis"
	"bennypowers.dev/slimls/internal/position"
	"bennypowers.dev/slimls/internal/uriutil"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ErrDocumentNotFound is returned for URIs that are not open
var ErrDocumentNotFound = errors.New("document not found")

// Manager tracks the documents open in the editor
type Manager struct {
	documents map[string]*Document
	analyzer  *analysis.Analyzer
	mu        sync.RWMutex
}

// NewManager creates a document manager using the default analyzer
func NewManager() *Manager {
	return NewManagerWithAnalyzer(analysis.New(nil))
}

// NewManagerWithAnalyzer creates a document manager using the given analyzer
func NewManagerWithAnalyzer(analyzer *analysis.Analyzer) *Manager {
	return &Manager{
		documents: make(map[string]*Document),
		analyzer:  analyzer,
	}
}

// Get retrieves a document by URI
func (m *Manager) Get(uri string) *Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.documents[uri]
}

// GetAll returns all managed documents
func (m *Manager) GetAll() []*Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make([]*Document, 0, len(m.documents))
	for _, doc := range m.documents {
		docs = append(docs, doc)
	}
	return docs
}

// DidOpen handles the textDocument/didOpen notification
func (m *Manager) DidOpen(uri, languageID string, version int, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.documents[uri] = NewDocument(uri, languageID, version, content)
	return nil
}

// DidClose handles the textDocument/didClose notification
func (m *Manager) DidClose(uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.documents[uri]; !exists {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}
	delete(m.documents, uri)
	return nil
}

// DidChange handles the textDocument/didChange notification. Changes
// without a range replace the whole document.
func (m *Manager) DidChange(uri string, version int, changes []protocol.TextDocumentContentChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, exists := m.documents[uri]
	if !exists {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}

	content := doc.Content()
	for _, change := range changes {
		if change.Range == nil {
			content = change.Text
			continue
		}
		next, err := applyChange(content, *change.Range, change.Text)
		if err != nil {
			return fmt.Errorf("failed to apply changes: %w", err)
		}
		content = next
	}

	if err := doc.SetContent(content, version); err != nil {
		return fmt.Errorf("failed to set document content: %w", err)
	}
	return nil
}

// Report returns the analysis of the document's current content,
// computing it at most once per version
func (m *Manager) Report(uri string) (*analysis.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, exists := m.documents[uri]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}
	if doc.report != nil {
		return doc.report, nil
	}

	report, err := m.analyzer.Analyze(doc.Content(), uriutil.URIToPath(uri))
	if err != nil {
		return nil, err
	}
	doc.report = report
	return report, nil
}

// applyChange replaces the text between two LSP positions
func applyChange(content string, r protocol.Range, text string) (string, error) {
	start, err := offsetOf(content, r.Start)
	if err != nil {
		return "", fmt.Errorf("start %w", err)
	}
	end, err := offsetOf(content, r.End)
	if err != nil {
		return "", fmt.Errorf("end %w", err)
	}
	if end < start {
		return "", fmt.Errorf("range end %d:%d precedes start %d:%d",
			r.End.Line, r.End.Character, r.Start.Line, r.Start.Character)
	}
	return content[:start] + text + content[end:], nil
}

// offsetOf converts an LSP position into a byte offset. The line after the
// last one is accepted at character 0 so clients can append at EOF.
func offsetOf(content string, pos protocol.Position) (int, error) {
	lineStart := 0
	for line := protocol.UInteger(0); line < pos.Line; line++ {
		nl := strings.IndexByte(content[lineStart:], '\n')
		if nl < 0 {
			if line+1 == pos.Line && pos.Character == 0 {
				return len(content), nil
			}
			return 0, fmt.Errorf("line %d out of bounds", pos.Line)
		}
		lineStart += nl + 1
	}

	lineEnd := len(content)
	if nl := strings.IndexByte(content[lineStart:], '\n'); nl >= 0 {
		lineEnd = lineStart + nl
	}
	return lineStart + position.UTF16ToByteOffset(content[lineStart:lineEnd], int(pos.Character)), nil
}
