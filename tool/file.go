package tool

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	ai "github.com/spetersoncode/chatter"
	"github.com/spetersoncode/chatter/permission"
)

// FileToolOption configures the guarded file tools.
type FileToolOption func(*fileToolConfig)

// Mode holds execution switches shared by the file tools that can be
// toggled while a session is running. The zero value has every switch off.
type Mode struct {
	dryRun atomic.Bool
}

// SetDryRun turns dry-run on or off. With dry-run on, write_file and
// update_file validate and report their would-be result without touching
// the filesystem.
func (m *Mode) SetDryRun(enabled bool) { m.dryRun.Store(enabled) }

// DryRun reports whether dry-run is on.
func (m *Mode) DryRun() bool { return m.dryRun.Load() }

type fileToolConfig struct {
	guard             *permission.Guard
	mode              *Mode
	allowedExtensions []string
	maxFileSize       int64
	readLimit         int64
}

// dryRun reports whether mutations should be simulated.
func (c *fileToolConfig) dryRun() bool {
	return c.mode != nil && c.mode.DryRun()
}

// WithMode attaches a shared Mode so callers can flip switches like
// dry-run after the tools are built.
func WithMode(mode *Mode) FileToolOption {
	return func(c *fileToolConfig) {
		c.mode = mode
	}
}

// WithAllowedExtensions restricts file operations to specific file extensions.
func WithAllowedExtensions(exts ...string) FileToolOption {
	return func(c *fileToolConfig) {
		c.allowedExtensions = exts
	}
}

// WithMaxFileSize sets the maximum file size for write/update operations.
// Default is 10MB.
func WithMaxFileSize(bytes int64) FileToolOption {
	return func(c *fileToolConfig) {
		c.maxFileSize = bytes
	}
}

// WithReadLimit sets how much file content read_file returns before
// truncating. Default is 256KB.
func WithReadLimit(bytes int64) FileToolOption {
	return func(c *fileToolConfig) {
		c.readLimit = bytes
	}
}

func applyFileOpts(guard *permission.Guard, opts []FileToolOption) *fileToolConfig {
	cfg := &fileToolConfig{
		guard:       guard,
		maxFileSize: 10 * 1024 * 1024, // 10MB default
		readLimit:   256 * 1024,       // 256KB default
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// checkPath canonicalizes the path and consults the guard.
func (c *fileToolConfig) checkPath(path string) (string, error) {
	canonical, err := permission.Canonicalize(path)
	if err != nil {
		return "", err
	}
	if err := c.guard.Check(canonical); err != nil {
		return "", err
	}
	return canonical, nil
}

func (c *fileToolConfig) checkExtension(path string) error {
	if len(c.allowedExtensions) == 0 {
		return nil
	}

	ext := filepath.Ext(path)
	for _, allowed := range c.allowedExtensions {
		if ext == allowed || ext == "."+allowed {
			return nil
		}
	}

	return fmt.Errorf("extension %q not allowed", ext)
}

func jsonResult(v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// readFileArgs defines arguments for the read file tool.
type readFileArgs struct {
	Path      string `json:"path" desc:"Path to the file to read" required:"true"`
	StartLine *int   `json:"start_line" desc:"1-based line number to start reading from"`
	EndLine   *int   `json:"end_line" desc:"1-based line number to stop reading at (inclusive)"`
}

type readFileResult struct {
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	Content   string `json:"content"`
	Truncated bool   `json:"truncated,omitempty"`
	Notice    string `json:"notice,omitempty"`
}

// NewReadFileTool creates a permission-checked tool for reading file contents.
// Oversized files return a truncated prefix plus an explicit notice rather
// than failing.
func NewReadFileTool(guard *permission.Guard, opts ...FileToolOption) (ai.Tool, Handler) {
	cfg := applyFileOpts(guard, opts)

	t := ai.Tool{
		Name:        "read_file",
		Description: "Read the contents of a file",
		Parameters:  MustSchemaFor[readFileArgs](),
	}

	handler := func(ctx context.Context, call ai.ToolCall) (string, error) {
		var args readFileArgs
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}

		path, err := cfg.checkPath(args.Path)
		if err != nil {
			return "", err
		}
		if err := cfg.checkExtension(path); err != nil {
			return "", err
		}

		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		if info.IsDir() {
			return "", fmt.Errorf("%s is a directory", path)
		}

		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()

		var content []byte
		if args.StartLine != nil || args.EndLine != nil {
			content, err = readLineRange(f, args.StartLine, args.EndLine, cfg.readLimit)
			if err != nil {
				return "", err
			}
		} else {
			content, err = io.ReadAll(io.LimitReader(f, cfg.readLimit))
			if err != nil {
				return "", err
			}
		}

		result := readFileResult{
			Path:    path,
			Size:    info.Size(),
			Content: string(content),
		}
		if info.Size() > cfg.readLimit && args.StartLine == nil && args.EndLine == nil {
			result.Truncated = true
			result.Notice = fmt.Sprintf("file is %d bytes; only the first %d bytes are shown", info.Size(), cfg.readLimit)
		}
		return jsonResult(result)
	}

	return t, handler
}

// readLineRange reads specific lines from a reader.
// startLine and endLine are 1-based and inclusive.
// If startLine is nil, starts from line 1.
// If endLine is nil, reads to the end of file.
func readLineRange(r io.Reader, startLine, endLine *int, maxSize int64) ([]byte, error) {
	start := 1
	if startLine != nil {
		start = *startLine
	}
	if start < 1 {
		return nil, fmt.Errorf("start_line must be >= 1, got %d", start)
	}

	end := -1 // -1 means read to end
	if endLine != nil {
		end = *endLine
		if end < start {
			return nil, fmt.Errorf("end_line (%d) must be >= start_line (%d)", end, start)
		}
	}

	scanner := bufio.NewScanner(r)
	var result strings.Builder
	lineNum := 0
	bytesRead := int64(0)

	for scanner.Scan() {
		lineNum++

		if lineNum < start {
			continue
		}
		if end > 0 && lineNum > end {
			break
		}

		line := scanner.Text()
		lineLen := int64(len(line) + 1)
		if bytesRead+lineLen > maxSize {
			return nil, fmt.Errorf("line range content exceeds maximum size %d", maxSize)
		}
		bytesRead += lineLen

		if result.Len() > 0 {
			result.WriteByte('\n')
		}
		result.WriteString(line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if lineNum < start {
		return nil, fmt.Errorf("start_line %d is beyond file length (%d lines)", start, lineNum)
	}

	return []byte(result.String()), nil
}

// writeFileArgs defines arguments for the write file tool.
type writeFileArgs struct {
	Path       string `json:"path" desc:"Path to the file to write" required:"true"`
	Content    string `json:"content" desc:"Content to write to the file" required:"true"`
	CreateDirs bool   `json:"create_dirs" desc:"Create missing parent directories"`
}

type writeFileResult struct {
	Path         string `json:"path"`
	BytesWritten int    `json:"bytes_written"`
	Created      bool   `json:"created"`
	DryRun       bool   `json:"dry_run,omitempty"`
}

// NewWriteFileTool creates a permission-checked tool for writing file
// contents. Existing files are overwritten. Parent directories are only
// created when create_dirs is set.
func NewWriteFileTool(guard *permission.Guard, opts ...FileToolOption) (ai.Tool, Handler) {
	cfg := applyFileOpts(guard, opts)

	t := ai.Tool{
		Name:        "write_file",
		Description: "Write content to a file, creating or overwriting it",
		Parameters:  MustSchemaFor[writeFileArgs](),
	}

	handler := func(ctx context.Context, call ai.ToolCall) (string, error) {
		var args writeFileArgs
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}

		path, err := cfg.checkPath(args.Path)
		if err != nil {
			return "", err
		}
		if err := cfg.checkExtension(path); err != nil {
			return "", err
		}
		if int64(len(args.Content)) > cfg.maxFileSize {
			return "", fmt.Errorf("content size %d exceeds maximum %d", len(args.Content), cfg.maxFileSize)
		}

		dir := filepath.Dir(path)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if !args.CreateDirs {
				return "", fmt.Errorf("parent directory %s does not exist (set create_dirs to create it)", dir)
			}
			if !cfg.dryRun() {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return "", err
				}
			}
		}

		_, statErr := os.Stat(path)
		created := os.IsNotExist(statErr)

		result := writeFileResult{
			Path:         path,
			BytesWritten: len(args.Content),
			Created:      created,
		}

		if cfg.dryRun() {
			result.DryRun = true
			return jsonResult(result)
		}

		if err := os.WriteFile(path, []byte(args.Content), 0o644); err != nil {
			return "", err
		}

		return jsonResult(result)
	}

	return t, handler
}

// updateFileArgs defines arguments for the update file tool.
type updateFileArgs struct {
	Path        string `json:"path" desc:"Path to the file to update" required:"true"`
	Operation   string `json:"operation" desc:"Update operation" enum:"replace,append,prepend,insert_at_line" required:"true"`
	Search      string `json:"search" desc:"Text to find (replace operation)"`
	Replacement string `json:"replacement" desc:"Text to insert or substitute" required:"true"`
	ReplaceAll  bool   `json:"replace_all" desc:"Replace every occurrence instead of requiring a unique match"`
	LineNumber  *int   `json:"line_number" desc:"1-based line for insert_at_line"`
}

type updateFileResult struct {
	Path         string `json:"path"`
	Operation    string `json:"operation"`
	Replacements int    `json:"replacements,omitempty"`
	BytesWritten int    `json:"bytes_written"`
	DryRun       bool   `json:"dry_run,omitempty"`
}

// NewUpdateFileTool creates a permission-checked tool for targeted file
// edits. The replace operation fails when the search text is missing or,
// without replace_all, when it matches more than once.
func NewUpdateFileTool(guard *permission.Guard, opts ...FileToolOption) (ai.Tool, Handler) {
	cfg := applyFileOpts(guard, opts)

	t := ai.Tool{
		Name:        "update_file",
		Description: "Apply a targeted edit to an existing file",
		Parameters:  MustSchemaFor[updateFileArgs](),
	}

	handler := func(ctx context.Context, call ai.ToolCall) (string, error) {
		var args updateFileArgs
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}

		path, err := cfg.checkPath(args.Path)
		if err != nil {
			return "", err
		}
		if err := cfg.checkExtension(path); err != nil {
			return "", err
		}

		info, err := os.Stat(path)
		if err != nil {
			return "", err
		}
		if info.Size() > cfg.maxFileSize {
			return "", fmt.Errorf("file size %d exceeds maximum %d", info.Size(), cfg.maxFileSize)
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		content := string(raw)

		result := updateFileResult{Path: path, Operation: args.Operation}

		switch args.Operation {
		case "replace":
			if args.Search == "" {
				return "", fmt.Errorf("replace requires a non-empty search string")
			}
			count := strings.Count(content, args.Search)
			switch {
			case count == 0:
				return "", fmt.Errorf("search text not found in %s", path)
			case count > 1 && !args.ReplaceAll:
				return "", fmt.Errorf("search text matches %d times in %s; set replace_all or narrow the search", count, path)
			case args.ReplaceAll:
				content = strings.ReplaceAll(content, args.Search, args.Replacement)
				result.Replacements = count
			default:
				content = strings.Replace(content, args.Search, args.Replacement, 1)
				result.Replacements = 1
			}

		case "append":
			content += args.Replacement

		case "prepend":
			content = args.Replacement + content

		case "insert_at_line":
			if args.LineNumber == nil {
				return "", fmt.Errorf("insert_at_line requires line_number")
			}
			content, err = insertAtLine(content, *args.LineNumber, args.Replacement)
			if err != nil {
				return "", err
			}

		default:
			return "", fmt.Errorf("unknown operation %q", args.Operation)
		}

		if int64(len(content)) > cfg.maxFileSize {
			return "", fmt.Errorf("updated content size %d exceeds maximum %d", len(content), cfg.maxFileSize)
		}

		result.BytesWritten = len(content)

		if cfg.dryRun() {
			result.DryRun = true
			return jsonResult(result)
		}

		if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
			return "", err
		}

		return jsonResult(result)
	}

	return t, handler
}

// insertAtLine inserts text as a new line before the given 1-based line.
// A line number one past the last line appends.
func insertAtLine(content string, lineNumber int, text string) (string, error) {
	if lineNumber < 1 {
		return "", fmt.Errorf("line_number must be >= 1, got %d", lineNumber)
	}

	lines := strings.Split(content, "\n")
	if lineNumber > len(lines)+1 {
		return "", fmt.Errorf("line_number %d is beyond file length (%d lines)", lineNumber, len(lines))
	}

	idx := lineNumber - 1
	lines = append(lines[:idx], append([]string{text}, lines[idx:]...)...)
	return strings.Join(lines, "\n"), nil
}

// fileInfoArgs defines arguments for the file info tool.
type fileInfoArgs struct {
	Path string `json:"path" desc:"Path to inspect" required:"true"`
}

type fileInfoResult struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	IsDir    bool   `json:"is_dir"`
	Mode     string `json:"mode"`
	Modified string `json:"modified"`
}

// NewFileInfoTool creates a permission-checked tool for file metadata queries.
func NewFileInfoTool(guard *permission.Guard, opts ...FileToolOption) (ai.Tool, Handler) {
	cfg := applyFileOpts(guard, opts)

	t := ai.Tool{
		Name:        "file_info",
		Description: "Get metadata about a file or directory",
		Parameters:  MustSchemaFor[fileInfoArgs](),
	}

	handler := func(ctx context.Context, call ai.ToolCall) (string, error) {
		var args fileInfoArgs
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

		return jsonResult(fileInfoResult{
			Path:     path,
			Name:     info.Name(),
			Size:     info.Size(),
			IsDir:    info.IsDir(),
			Mode:     info.Mode().String(),
			Modified: info.ModTime().UTC().Format(time.RFC3339),
		})
	}

	return t, handler
}
