package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCLI("-version")
	assert.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(stdout, "slimconv "), stdout)
}

func TestUnknownFormat(t *testing.T) {
	code, _, stderr := runCLI("-format", "xml", ".")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, `unknown format "xml"`)
}

func TestUnknownFlag(t *testing.T) {
	code, _, _ := runCLI("-nope")
	assert.Equal(t, exitUsage, code)
}

func TestMissingTarget(t *testing.T) {
	code, _, stderr := runCLI(filepath.Join(t.TempDir(), "missing.slim"))
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "Error:")
}

func TestConvertSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"show.slim": "- items.each do |item|\n  p = item.name\np done",
	})

	code, stdout, _ := runCLI(filepath.Join(dir, "show.slim"))
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "items.each do |item|\nitem.name\nend\n", stdout)
}

func TestConvertDirectoryHonoursConfig(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		".slimls.yaml":            "include:\n  - \"app/**/*.slim\"\nexclude:\n  - \"app/legacy/**\"\n",
		"app/views/a.slim":        "= a",
		"app/views/nested/b.slim": "= b",
		"app/legacy/c.slim":       "= c",
		"other/d.slim":            "= d",
		"app/views/notes.txt":     "= e",
	})

	code, stdout, _ := runCLI(dir)
	assert.Equal(t, exitOK, code)

	assert.Contains(t, stdout, "# "+filepath.Join(dir, "app", "views", "a.slim")+"\na\n")
	assert.Contains(t, stdout, "# "+filepath.Join(dir, "app", "views", "nested", "b.slim")+"\nb\n")
	assert.NotContains(t, stdout, "c.slim")
	assert.NotContains(t, stdout, "d.slim")
	assert.NotContains(t, stdout, "notes.txt")
}

func TestConfigFlagOverridesDirectoryConfig(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		".slimls.yaml": "include:\n  - \"app/**/*.slim\"\n",
		"app/a.slim":   "= a",
		"lib/b.slim":   "= b",
	})
	override := filepath.Join(t.TempDir(), "override.json")
	require.NoError(t, os.WriteFile(override, []byte(`{
  // only library templates
  "include": ["lib/**/*.slim"]
}`), 0o644))

	code, stdout, _ := runCLI("-config", override, dir)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "b\n", stdout)
}

func TestInvalidConfigFlag(t *testing.T) {
	override := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(override, []byte("include: []\n"), 0o644))

	code, _, stderr := runCLI("-config", override, ".")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "invalid configuration")
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name     string
		template string
		wantCode int
		want     string
	}{
		{
			name:     "clean",
			template: "- if user?\n  p = user.name",
			wantCode: exitOK,
		},
		{
			name:     "template syntax error",
			template: "p\n%div",
			wantCode: exitProblems,
			want:     ":2:1 - Unknown line indicator",
		},
		{
			name:     "ruby issue",
			template: "p Hello\n= link_to(root_path",
			wantCode: exitProblems,
			want:     ".slim:2 - ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, map[string]string{"view.slim": tt.template})

			code, stdout, _ := runCLI("-check", filepath.Join(dir, "view.slim"))
			assert.Equal(t, tt.wantCode, code)
			if tt.want == "" {
				assert.Empty(t, stdout)
			} else {
				assert.Contains(t, stdout, tt.want)
			}
		})
	}
}

func TestProblemsWithoutCheckExitZero(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"view.slim": "p\n%div"})

	code, stdout, _ := runCLI(filepath.Join(dir, "view.slim"))
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "Unknown line indicator")
}

func TestConstants(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.slim")
	writeFiles(t, dir, map[string]string{
		"users.slim": "= User.first\n- if Admin.check?\n  p= Admin::Role.name\n= User.last",
	})

	code, stdout, _ := runCLI("-constants", path)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, path+": Admin, Admin::Role, User\n", stdout)
}

func TestJSONFormat(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"good.slim": "- items.each do |item|\n  p = Item.label(item)",
		"bad.slim":  "div\n    p one\n  p two",
	})

	code, stdout, _ := runCLI("-format", "json", "-check", dir)
	assert.Equal(t, exitProblems, code)

	var reports []fileReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &reports))
	require.Len(t, reports, 2)

	// discovery order is sorted
	bad, good := reports[0], reports[1]
	assert.Equal(t, filepath.Join(dir, "bad.slim"), bad.Path)
	assert.Contains(t, bad.SyntaxError, "Malformed indentation")
	assert.Empty(t, bad.Code)
	assert.Empty(t, bad.Mappings)

	assert.Equal(t, filepath.Join(dir, "good.slim"), good.Path)
	assert.Equal(t, "items.each do |item|\nItem.label(item)\nend", good.Code)
	assert.Len(t, good.Mappings, 3)
	assert.Empty(t, good.Issues)
	assert.Equal(t, []string{"Item"}, good.Constants)
}

func TestFindTemplatesDeduplicatesPatterns(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.slim":       "= a",
		"views/b.slim": "= b",
	})

	code, stdout, _ := runCLI("-config", writeConfig(t, "include:\n  - \"**/*.slim\"\n  - \"views/*.slim\"\n"), dir)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, 1, strings.Count(stdout, "b.slim"))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".slimls.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
