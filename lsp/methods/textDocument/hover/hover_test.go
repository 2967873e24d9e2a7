package hover_test

import (
	"testing"

	"bennypowers.dev/slimls/lsp/methods/textDocument/hover"
	"bennypowers.dev/slimls/lsp/testutil"
	"bennypowers.dev/slimls/lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	uri      = "file:///app/views/users/show.slim"
	template = "h1 = User.find(params[:id]).name\n" +
		"- if current_user.admin?\n" +
		"  p = Role::ADMIN\n" +
		"p Static text"
)

func hoverAt(t *testing.T, ctx *testutil.MockServerContext, line uint32) *protocol.Hover {
	t.Helper()
	result, err := hover.Hover(types.NewRequestContext(ctx, &glsp.Context{}), &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: line, Character: 3},
		},
	})
	require.NoError(t, err)
	return result
}

func newContext(t *testing.T, content string) *testutil.MockServerContext {
	t.Helper()
	ctx := testutil.NewMockServerContext()
	require.NoError(t, ctx.DocumentManager().DidOpen(uri, "slim", 1, content))
	return ctx
}

func TestHover(t *testing.T) {
	ctx := newContext(t, template)

	t.Run("output line", func(t *testing.T) {
		result := hoverAt(t, ctx, 0)
		require.NotNil(t, result)

		content, ok := result.Contents.(protocol.MarkupContent)
		require.True(t, ok)
		assert.Equal(t, protocol.MarkupKindMarkdown, content.Kind)
		assert.Contains(t, content.Value, "```ruby\nUser.find(params[:id]).name\n```")
		assert.Contains(t, content.Value, "Generated Ruby, line 1")
		assert.Contains(t, content.Value, "**Constants**: `User`")

		require.NotNil(t, result.Range)
		assert.Equal(t, protocol.Position{Line: 0, Character: 0}, result.Range.Start)
		assert.Equal(t, protocol.Position{Line: 0, Character: 32}, result.Range.End)
	})

	t.Run("control line shows its closer", func(t *testing.T) {
		result := hoverAt(t, ctx, 1)
		require.NotNil(t, result)

		content := result.Contents.(protocol.MarkupContent)
		assert.Contains(t, content.Value, "if current_user.admin?\nend\n")
		assert.Contains(t, content.Value, "Generated Ruby, line 2")
		assert.NotContains(t, content.Value, "Constants")
	})

	t.Run("nested line", func(t *testing.T) {
		result := hoverAt(t, ctx, 2)
		require.NotNil(t, result)

		content := result.Contents.(protocol.MarkupContent)
		assert.Contains(t, content.Value, "Role::ADMIN")
		assert.Contains(t, content.Value, "**Constants**: `Role::ADMIN`")
		assert.Equal(t, protocol.UInteger(2), result.Range.Start.Character)
	})

	t.Run("line without Ruby", func(t *testing.T) {
		assert.Nil(t, hoverAt(t, ctx, 3))
	})

	t.Run("past the end", func(t *testing.T) {
		assert.Nil(t, hoverAt(t, ctx, 40))
	})
}

func TestHover_PlainTextClient(t *testing.T) {
	ctx := newContext(t, template)
	ctx.SetClientCapabilities(types.ClientCapabilities{HoverMarkdown: false})

	result := hoverAt(t, ctx, 0)
	require.NotNil(t, result)

	content, ok := result.Contents.(protocol.MarkupContent)
	require.True(t, ok)
	assert.Equal(t, protocol.MarkupKindPlainText, content.Kind)
	assert.Equal(t, "User.find(params[:id]).name\nGenerated Ruby, line 1\nConstants: User\n", content.Value)
	assert.NotContains(t, content.Value, "```")
}

func TestHover_MarkdownClient(t *testing.T) {
	ctx := newContext(t, template)
	ctx.SetClientCapabilities(types.DefaultClientCapabilities())

	content := hoverAt(t, ctx, 0).Contents.(protocol.MarkupContent)
	assert.Equal(t, protocol.MarkupKindMarkdown, content.Kind)
}

func TestHover_RubyIssue(t *testing.T) {
	ctx := newContext(t, "p Hi\np = link_to(root_path")

	result := hoverAt(t, ctx, 1)
	require.NotNil(t, result)

	content := result.Contents.(protocol.MarkupContent)
	assert.Contains(t, content.Value, "link_to(root_path")
	assert.Contains(t, content.Value, "⚠️")
}

func TestHover_NoResult(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"template without Ruby", "p Hello\ndiv.box"},
		{"malformed template", "div\n    p one\n  p two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, hoverAt(t, newContext(t, tt.content), 0))
		})
	}

	t.Run("unknown document", func(t *testing.T) {
		assert.Nil(t, hoverAt(t, testutil.NewMockServerContext(), 0))
	})
}
