package diagnostic_test

import (
	"encoding/json"
	"testing"

	"bennypowers.dev/slimls/lsp/methods/textDocument/diagnostic"
	"bennypowers.dev/slimls/lsp/testutil"
	"bennypowers.dev/slimls/lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func open(t *testing.T, ctx *testutil.MockServerContext, uri, languageID, content string) {
	t.Helper()
	require.NoError(t, ctx.DocumentManager().DidOpen(uri, languageID, 1, content))
}

func TestGetDiagnostics_CleanTemplate(t *testing.T) {
	ctx := testutil.NewMockServerContext()
	uri := "file:///app/views/show.slim"
	open(t, ctx, uri, "slim", "h1 = @user.name\n- if @user.admin?\n  p Admin")

	diagnostics, err := diagnostic.GetDiagnostics(ctx, uri)
	require.NoError(t, err)
	assert.NotNil(t, diagnostics, "clean templates report an empty list")
	assert.Empty(t, diagnostics)
}

func TestGetDiagnostics_TemplateSyntaxError(t *testing.T) {
	ctx := testutil.NewMockServerContext()
	uri := "file:///app/views/show.slim"
	open(t, ctx, uri, "slim", "div\n    p one\n  p two")

	diagnostics, err := diagnostic.GetDiagnostics(ctx, uri)
	require.NoError(t, err)
	require.Len(t, diagnostics, 1)

	d := diagnostics[0]
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	assert.Equal(t, diagnostic.SourceTemplate, *d.Source)
	assert.Equal(t, "Malformed indentation", d.Message)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 2, Character: 2},
		End:   protocol.Position{Line: 2, Character: 7},
	}, d.Range)
}

func TestGetDiagnostics_RubyIssues(t *testing.T) {
	tests := []struct {
		name         string
		strict       bool
		wantSeverity protocol.DiagnosticSeverity
	}{
		{"warnings by default", false, protocol.DiagnosticSeverityWarning},
		{"errors in strict mode", true, protocol.DiagnosticSeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.NewMockServerContext()
			cfg := ctx.GetConfig()
			cfg.Strict = tt.strict
			ctx.SetConfig(cfg)

			uri := "file:///app/views/show.slim"
			open(t, ctx, uri, "slim", "div\n  = link_to(root_path")

			diagnostics, err := diagnostic.GetDiagnostics(ctx, uri)
			require.NoError(t, err)
			require.NotEmpty(t, diagnostics)

			for _, d := range diagnostics {
				assert.Equal(t, tt.wantSeverity, *d.Severity)
				assert.Equal(t, diagnostic.SourceRuby, *d.Source)
				assert.Equal(t, protocol.Range{
					Start: protocol.Position{Line: 1, Character: 2},
					End:   protocol.Position{Line: 1, Character: 21},
				}, d.Range)
			}
		})
	}
}

func TestGetDiagnostics_SkippedDocuments(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		languageID string
		exclude    []string
	}{
		{name: "unknown document", uri: "file:///missing.slim"},
		{name: "other language", uri: "file:///app/models/user.rb", languageID: "ruby"},
		{name: "excluded template", uri: "file:///vendor/gems/show.slim", languageID: "slim", exclude: []string{"vendor/**"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.NewMockServerContext()
			ctx.SetRootPath("/")
			if tt.exclude != nil {
				cfg := ctx.GetConfig()
				cfg.Exclude = tt.exclude
				ctx.SetConfig(cfg)
			}
			if tt.languageID != "" {
				open(t, ctx, tt.uri, tt.languageID, "= link_to(")
			}

			diagnostics, err := diagnostic.GetDiagnostics(ctx, tt.uri)
			require.NoError(t, err)
			assert.Empty(t, diagnostics)
		})
	}
}

func TestGetDiagnostics_SlimLanguageWithoutExtension(t *testing.T) {
	ctx := testutil.NewMockServerContext()
	uri := "untitled:Untitled-1"
	open(t, ctx, uri, "slim", "= link_to(")

	diagnostics, err := diagnostic.GetDiagnostics(ctx, uri)
	require.NoError(t, err)
	assert.NotEmpty(t, diagnostics)
}

func TestDocumentDiagnostic(t *testing.T) {
	ctx := testutil.NewMockServerContext()
	uri := "file:///app/views/show.slim"
	open(t, ctx, uri, "slim", "div\n    p one\n  p two")
	req := types.NewRequestContext(ctx, &glsp.Context{})

	result, err := diagnostic.DocumentDiagnostic(req, &diagnostic.DocumentDiagnosticParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)

	report, ok := result.(diagnostic.FullReport)
	require.True(t, ok)
	assert.Equal(t, "full", report.Kind)
	assert.Len(t, report.Items, 1)

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"full"`)
	assert.Contains(t, string(data), `"source":"slim"`)
}

func TestDocumentDiagnostic_CleanTemplate(t *testing.T) {
	ctx := testutil.NewMockServerContext()
	uri := "file:///app/views/index.slim"
	open(t, ctx, uri, "slim", "p = title")
	req := types.NewRequestContext(ctx, &glsp.Context{})

	result, err := diagnostic.DocumentDiagnostic(req, &diagnostic.DocumentDiagnosticParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.NoError(t, err)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"full","items":[]}`, string(data))
}
