package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ai "github.com/spetersoncode/chatter"
	"github.com/spetersoncode/chatter/permission"
)

// listDirArgs defines arguments for the list directory tool.
type listDirArgs struct {
	Path       string `json:"path" desc:"Directory path to list" required:"true"`
	Recursive  bool   `json:"recursive" desc:"Include subdirectories"`
	ShowHidden bool   `json:"show_hidden" desc:"Include entries whose names start with a dot"`
}

type dirEntry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size,omitempty"`
}

type listDirResult struct {
	Path    string     `json:"path"`
	Count   int        `json:"count"`
	Entries []dirEntry `json:"entries"`
}

// NewListDirTool creates a permission-checked tool for listing directory
// contents. Recursive listings never descend into a directory the guard
// denies.
func NewListDirTool(guard *permission.Guard, opts ...FileToolOption) (ai.Tool, Handler) {
	cfg := applyFileOpts(guard, opts)

	t := ai.Tool{
		Name:        "list_directory",
		Description: "List the contents of a directory",
		Parameters:  MustSchemaFor[listDirArgs](),
	}

	handler := func(ctx context.Context, call ai.ToolCall) (string, error) {
		var args listDirArgs
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}

		path, err := cfg.checkPath(args.Path)
		if err != nil {
			return "", err
		}

		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		if !info.IsDir() {
			return "", fmt.Errorf("%s is not a directory", path)
		}

		var entries []dirEntry

		if args.Recursive {
			err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return nil
				}
				if p == path {
					return nil
				}

				hidden := strings.HasPrefix(info.Name(), ".")
				if info.IsDir() {
					if !cfg.guard.IsAllowed(p) || (hidden && !args.ShowHidden) {
						return filepath.SkipDir
					}
				} else if hidden && !args.ShowHidden {
					return nil
				}

				relPath, _ := filepath.Rel(path, p)
				e := dirEntry{
					Name:  info.Name(),
					Path:  relPath,
					IsDir: info.IsDir(),
				}
				if !info.IsDir() {
					e.Size = info.Size()
				}
				entries = append(entries, e)
				return nil
			})
			if err != nil {
				return "", err
			}
		} else {
			dirEntries, err := os.ReadDir(path)
			if err != nil {
				return "", err
			}

			for _, de := range dirEntries {
				if strings.HasPrefix(de.Name(), ".") && !args.ShowHidden {
					continue
				}
				info, err := de.Info()
				if err != nil {
					continue
				}
				e := dirEntry{
					Name:  de.Name(),
					Path:  de.Name(),
					IsDir: de.IsDir(),
				}
				if !de.IsDir() {
					e.Size = info.Size()
				}
				entries = append(entries, e)
			}
		}

		sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

		return jsonResult(listDirResult{
			Path:    path,
			Count:   len(entries),
			Entries: entries,
		})
	}

	return t, handler
}
