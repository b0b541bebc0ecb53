package tool

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	ai "github.com/spetersoncode/chatter"
	"github.com/spetersoncode/chatter/permission"
)

// SearchToolOption configures the search tool.
type SearchToolOption func(*searchToolConfig)

type searchToolConfig struct {
	guard           *permission.Guard
	maxResults      int
	maxFileSize     int64
	excludePatterns []string
}

// WithSearchMaxResults limits the number of search results.
// Default is 100.
func WithSearchMaxResults(n int) SearchToolOption {
	return func(c *searchToolConfig) {
		c.maxResults = n
	}
}

// WithSearchExcludePatterns sets glob patterns for file names to skip.
func WithSearchExcludePatterns(patterns ...string) SearchToolOption {
	return func(c *searchToolConfig) {
		c.excludePatterns = patterns
	}
}

func applySearchOpts(guard *permission.Guard, opts []SearchToolOption) *searchToolConfig {
	cfg := &searchToolConfig{
		guard:       guard,
		maxResults:  100,
		maxFileSize: 10 * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *searchToolConfig) excluded(name string) bool {
	for _, pattern := range c.excludePatterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// searchArgs defines arguments for the search tool.
type searchArgs struct {
	Pattern       string `json:"pattern" desc:"Regex pattern to search for" required:"true"`
	Directory     string `json:"directory" desc:"Directory to search in (defaults to the current directory)"`
	FilePattern   string `json:"file_pattern" desc:"Glob pattern for file names (e.g., *.go)"`
	CaseSensitive bool   `json:"case_sensitive" desc:"Match case exactly (default is case-insensitive)"`
	MaxResults    *int   `json:"max_results" desc:"Maximum number of matches to return"`
}

type searchMatch struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Content string `json:"content"`
}

type searchResult struct {
	Pattern    string        `json:"pattern"`
	Directory  string        `json:"directory"`
	MatchCount int           `json:"match_count"`
	Truncated  bool          `json:"truncated,omitempty"`
	Matches    []searchMatch `json:"matches"`
}

// NewSearchTool creates a permission-checked tool for recursive regex search.
// The walk never descends into a directory the guard denies, and the match
// list is capped with an explicit truncated flag.
func NewSearchTool(guard *permission.Guard, opts ...SearchToolOption) (ai.Tool, Handler) {
	cfg := applySearchOpts(guard, opts)

	t := ai.Tool{
		Name:        "search_files",
		Description: "Search for a regex pattern in files under a directory",
		Parameters:  MustSchemaFor[searchArgs](),
	}

	handler := func(ctx context.Context, call ai.ToolCall) (string, error) {
		var args searchArgs
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}

		pattern := args.Pattern
		if !args.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return "", fmt.Errorf("invalid pattern: %w", err)
		}

		dir := args.Directory
		if dir == "" {
			dir = "."
		}
		root, err := permission.Canonicalize(dir)
		if err != nil {
			return "", err
		}
		if err := cfg.guard.Check(root); err != nil {
			return "", err
		}

		limit := cfg.maxResults
		if args.MaxResults != nil && *args.MaxResults > 0 && *args.MaxResults < limit {
			limit = *args.MaxResults
		}

		result := searchResult{
			Pattern:   args.Pattern,
			Directory: root,
			Matches:   make([]searchMatch, 0),
		}

		err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil // skip unreadable entries
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if info.IsDir() {
				if path != root && !cfg.guard.IsAllowed(path) {
					return filepath.SkipDir
				}
				return nil
			}

			if !cfg.guard.IsAllowed(path) {
				return nil
			}
			if cfg.excluded(info.Name()) {
				return nil
			}
			if args.FilePattern != "" {
				if matched, _ := filepath.Match(args.FilePattern, info.Name()); !matched {
					return nil
				}
			}
			if info.Size() > cfg.maxFileSize {
				return nil
			}

			matches, err := grepFile(path, re, limit-len(result.Matches))
			if err != nil {
				return nil
			}
			result.Matches = append(result.Matches, matches...)
			result.MatchCount += len(matches)

			if len(result.Matches) >= limit {
				result.Truncated = true
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			return "", err
		}

		return jsonResult(result)
	}

	return t, handler
}

// grepFile scans a file line by line and returns up to limit matches.
// Files that look binary (NUL in the first chunk) are skipped.
func grepFile(path string, re *regexp.Regexp, limit int) ([]searchMatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := f.Read(head)
	if bytes.IndexByte(head[:n], 0) >= 0 {
		return nil, nil
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}

	var matches []searchMatch
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if re.MatchString(line) {
			matches = append(matches, searchMatch{
				File:    path,
				Line:    lineNum,
				Content: line,
			})
			if len(matches) >= limit {
				break
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}
