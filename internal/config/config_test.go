package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/slimls/internal/config"
	"bennypowers.dev/slimls/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, log.LevelInfo, cfg.Level())
	assert.False(t, cfg.Strict)
}

func TestLoadFile(t *testing.T) {
	t.Run("yaml", func(t *testing.T) {
		cfg, err := config.LoadFile("testdata/project.yaml")
		require.NoError(t, err)
		assert.Equal(t, []string{"app/views/**/*.slim"}, cfg.Include)
		assert.Equal(t, []string{"app/views/legacy/**"}, cfg.Exclude)
		assert.Equal(t, log.LevelDebug, cfg.Level())
		assert.True(t, cfg.Strict)
	})

	t.Run("json with comments keeps unset defaults", func(t *testing.T) {
		cfg, err := config.LoadFile("testdata/project.json")
		require.NoError(t, err)
		assert.Equal(t, []string{"app/views/admin/**/*.slim"}, cfg.Include)
		assert.Equal(t, config.Default().Exclude, cfg.Exclude)
		assert.Equal(t, log.LevelWarn, cfg.Level())
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := config.LoadFile("testdata/bad-pattern.yaml")
		require.Error(t, err)
		assert.True(t, errors.Is(err, config.ErrInvalidConfig))

		var verr *config.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "testdata/bad-pattern.yaml", verr.Source)
		assert.Len(t, verr.Problems, 2)
		assert.Contains(t, err.Error(), `invalid pattern "app/[views/**/*.slim"`)
		assert.Contains(t, err.Error(), "logLevel must be one of")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".slimls.yaml")
		require.NoError(t, os.WriteFile(path, []byte("include: [unclosed"), 0o644))

		_, err := config.LoadFile(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, config.ErrInvalidConfig))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadFile("testdata/nope.yaml")
		require.Error(t, err)
		assert.False(t, errors.Is(err, config.ErrInvalidConfig))
	})
}

func TestLoad(t *testing.T) {
	t.Run("no config file", func(t *testing.T) {
		cfg, path, err := config.Load(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("yaml wins over json", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".slimls.json"), []byte(`{"strict": false}`), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".slimls.yaml"), []byte("strict: true\n"), 0o644))

		cfg, path, err := config.Load(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, ".slimls.yaml"), path)
		assert.True(t, cfg.Strict)
	})
}

func TestMatches(t *testing.T) {
	cfg := config.Config{
		Include: []string{"app/views/**/*.slim"},
		Exclude: []string{"app/views/legacy/**"},
	}

	tests := []struct {
		path string
		want bool
	}{
		{"app/views/users/show.html.slim", true},
		{"app/views/index.slim", true},
		{"app/views/legacy/old.slim", false},
		{"lib/templates/mail.slim", false},
		{"app/views/users/show.html.erb", false},
		{filepath.Join("app", "views", "home.slim"), true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.Matches(tt.path))
		})
	}
}

func TestMatchesPath(t *testing.T) {
	cfg := config.Config{
		Include: []string{"app/views/**/*.slim"},
		Exclude: []string{"app/views/legacy/**"},
	}
	root := filepath.Join(string(filepath.Separator), "srv", "shop")

	tests := []struct {
		name string
		root string
		path string
		want bool
	}{
		{"under root", root, filepath.Join(root, "app", "views", "show.slim"), true},
		{"excluded under root", root, filepath.Join(root, "app", "views", "legacy", "a.slim"), false},
		{"outside root", root, filepath.Join(string(filepath.Separator), "elsewhere", "app", "views", "show.slim"), false},
		{"no root", "", "/app/views/show.slim", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.MatchesPath(tt.root, tt.path))
		})
	}
}

func TestWithSettings(t *testing.T) {
	base := config.Default()

	t.Run("nested section", func(t *testing.T) {
		cfg, err := base.WithSettings(map[string]any{
			"slimls": map[string]any{"strict": true, "logLevel": "error"},
		})
		require.NoError(t, err)
		assert.True(t, cfg.Strict)
		assert.Equal(t, log.LevelError, cfg.Level())
		assert.Equal(t, base.Include, cfg.Include)
	})

	t.Run("bare section", func(t *testing.T) {
		cfg, err := base.WithSettings(map[string]any{"include": []any{"views/**/*.slim"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"views/**/*.slim"}, cfg.Include)
	})

	t.Run("nil settings", func(t *testing.T) {
		cfg, err := base.WithSettings(nil)
		require.NoError(t, err)
		assert.Equal(t, base, cfg)
	})

	t.Run("invalid settings keep the original", func(t *testing.T) {
		cfg, err := base.WithSettings(map[string]any{
			"slimls": map[string]any{"include": []any{}},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, config.ErrInvalidConfig))
		assert.Equal(t, base, cfg)
	})

	t.Run("rejected pattern leaves the receiver untouched", func(t *testing.T) {
		cfg := config.Default()
		include := append([]string(nil), cfg.Include...)
		exclude := append([]string(nil), cfg.Exclude...)

		_, err := cfg.WithSettings(map[string]any{
			"slimls": map[string]any{
				"include": []any{"[broken"},
				"exclude": []any{"also/[broken"},
			},
		})
		require.Error(t, err)
		assert.Equal(t, include, cfg.Include)
		assert.Equal(t, exclude, cfg.Exclude)
		assert.True(t, cfg.MatchesPath("/app", "/app/views/show.slim"))
	})

	t.Run("accepted overlay does not alias the receiver", func(t *testing.T) {
		cfg := config.Default()
		merged, err := cfg.WithSettings(map[string]any{"include": []any{"app/**/*.slim"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"app/**/*.slim"}, merged.Include)
		assert.Equal(t, []string{"**/*.slim"}, cfg.Include)
	})

	t.Run("wrong types", func(t *testing.T) {
		_, err := base.WithSettings(map[string]any{"slimls": map[string]any{"strict": "yes"}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, config.ErrInvalidConfig))
	})
}
