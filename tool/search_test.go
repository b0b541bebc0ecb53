package tool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchTool(t *testing.T) {
	root := t.TempDir()
	g := allowedGuard(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"),
		[]byte("package main\n// TODO: fix this\nfunc main() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"),
		[]byte("# Notes\ntodo item\n"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "secret"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret", "hidden.txt"),
		[]byte("TODO: secret work\n"), 0o644))

	_, h := NewSearchTool(g)

	t.Run("finds matches case-insensitively by default", func(t *testing.T) {
		var result searchResult
		require.NoError(t, runTool(t, h, map[string]any{
			"pattern":   "todo",
			"directory": root,
		}, &result))

		assert.Equal(t, 3, result.MatchCount)
	})

	t.Run("case_sensitive narrows matches", func(t *testing.T) {
		var result searchResult
		require.NoError(t, runTool(t, h, map[string]any{
			"pattern":        "TODO",
			"directory":      root,
			"case_sensitive": true,
		}, &result))

		assert.Equal(t, 2, result.MatchCount)
	})

	t.Run("file_pattern filters by name", func(t *testing.T) {
		var result searchResult
		require.NoError(t, runTool(t, h, map[string]any{
			"pattern":      "todo",
			"directory":    root,
			"file_pattern": "*.go",
		}, &result))

		require.Equal(t, 1, result.MatchCount)
		assert.Contains(t, result.Matches[0].File, "main.go")
		assert.Equal(t, 2, result.Matches[0].Line)
	})

	t.Run("never descends into a forbidden directory", func(t *testing.T) {
		require.NoError(t, g.Forbid(filepath.Join(root, "secret")))

		var result searchResult
		require.NoError(t, runTool(t, h, map[string]any{
			"pattern":   "todo",
			"directory": root,
		}, &result))

		assert.Equal(t, 2, result.MatchCount)
		for _, m := range result.Matches {
			assert.NotContains(t, m.File, "secret")
		}
	})

	t.Run("max_results caps and flags truncation", func(t *testing.T) {
		var result searchResult
		require.NoError(t, runTool(t, h, map[string]any{
			"pattern":     "todo",
			"directory":   root,
			"max_results": 1,
		}, &result))

		assert.Len(t, result.Matches, 1)
		assert.True(t, result.Truncated)
	})

	t.Run("denied search root fails", func(t *testing.T) {
		err := runTool(t, h, map[string]any{
			"pattern":   "x",
			"directory": "/etc",
		}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "permission denied")
	})

	t.Run("invalid pattern fails", func(t *testing.T) {
		err := runTool(t, h, map[string]any{
			"pattern":   "([",
			"directory": root,
		}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid pattern")
	})

	t.Run("binary files are skipped", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, "bin.dat"),
			[]byte{0x00, 0x01, 'T', 'O', 'D', 'O'}, 0o644))

		var result searchResult
		require.NoError(t, runTool(t, h, map[string]any{
			"pattern":   "todo",
			"directory": root,
		}, &result))

		for _, m := range result.Matches {
			assert.NotContains(t, m.File, "bin.dat")
		}
	})
}

func TestAgentTools(t *testing.T) {
	g := allowedGuard(t, t.TempDir())

	t.Run("bundle contains all six tools", func(t *testing.T) {
		regs := AgentTools(g, nil, nil)
		names := make([]string, 0, len(regs))
		for _, reg := range regs {
			names = append(names, reg.Tool.Name)
		}
		assert.ElementsMatch(t, []string{
			"read_file", "write_file", "update_file",
			"search_files", "list_directory", "file_info",
		}, names)
	})

	t.Run("RegisterAgentTools fills a registry", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, RegisterAgentTools(r, g, nil, nil))
		assert.Equal(t, 6, r.Len())
	})
}
