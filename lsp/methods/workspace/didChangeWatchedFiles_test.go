package workspace_test

import (
	"errors"
	"path/filepath"
	"testing"

	"bennypowers.dev/slimls/internal/uriutil"
	"bennypowers.dev/slimls/lsp/methods/workspace"
	"bennypowers.dev/slimls/lsp/testutil"
	"bennypowers.dev/slimls/lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestDidChangeWatchedFiles(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name       string
		path       string
		wantReload bool
	}{
		{"yaml config at root", filepath.Join(root, ".slimls.yaml"), true},
		{"json config at root", filepath.Join(root, ".slimls.json"), true},
		{"config in a subdirectory", filepath.Join(root, "sub", ".slimls.yaml"), false},
		{"template file", filepath.Join(root, "app", "show.slim"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.NewMockServerContext()
			ctx.SetRootPath(root)
			ctx.SetGLSPContext(&glsp.Context{})
			require.NoError(t, ctx.DocumentManager().DidOpen("file:///a.slim", "slim", 1, "p = a"))

			req := types.NewRequestContext(ctx, nil)
			err := workspace.DidChangeWatchedFiles(req, &protocol.DidChangeWatchedFilesParams{
				Changes: []protocol.FileEvent{{URI: uriutil.PathToURI(tt.path), Type: protocol.FileChangeTypeChanged}},
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantReload, ctx.LoadConfigCalled)
			if tt.wantReload {
				assert.Equal(t, []string{"file:///a.slim"}, ctx.Published())
			} else {
				assert.Empty(t, ctx.Published())
			}
		})
	}
}

func TestDidChangeWatchedFiles_ReloadFailureIsAWarning(t *testing.T) {
	root := t.TempDir()
	ctx := testutil.NewMockServerContext()
	ctx.SetRootPath(root)
	ctx.LoadConfigFunc = func() error { return errors.New("invalid configuration") }

	req := types.NewRequestContext(ctx, nil)
	err := workspace.DidChangeWatchedFiles(req, &protocol.DidChangeWatchedFilesParams{
		Changes: []protocol.FileEvent{{
			URI:  uriutil.PathToURI(filepath.Join(root, ".slimls.yml")),
			Type: protocol.FileChangeTypeDeleted,
		}},
	})
	require.NoError(t, err)
	require.True(t, req.HasWarnings())
	assert.Contains(t, req.Warnings()[0].Error(), "invalid configuration")
}

func TestIsConfigFile(t *testing.T) {
	assert.True(t, workspace.IsConfigFile("", "/any/where/.slimls.yaml"))
	assert.True(t, workspace.IsConfigFile("/proj", "/proj/.slimls.json"))
	assert.False(t, workspace.IsConfigFile("/proj", "/other/.slimls.json"))
	assert.False(t, workspace.IsConfigFile("/proj", "/proj/slimls.yaml"))
}
