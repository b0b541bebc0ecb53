package permission

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// DeniedError is returned by Check when a path is not accessible.
type DeniedError struct {
	// Path is the canonical form of the requested path.
	Path string
	// Reason describes why access was denied.
	Reason string
}

// Error returns a human-readable description of the denial.
func (e *DeniedError) Error() string {
	return fmt.Sprintf("permission denied for %s: %s", e.Path, e.Reason)
}

// sensitiveNames are basenames that are never accessible, even under an
// allowed root. Matched after containment checks.
var sensitiveNames = map[string]bool{
	"passwd":      true,
	"shadow":      true,
	"sudoers":     true,
	".env":        true,
	".netrc":      true,
	".htpasswd":   true,
	"id_rsa":      true,
	"id_dsa":      true,
	"id_ecdsa":    true,
	"id_ed25519":  true,
	"credentials": true,
}

// Status is a point-in-time snapshot of a Guard's configuration.
type Status struct {
	Enabled   bool     `json:"enabled"`
	Allowed   []string `json:"allowed"`
	Forbidden []string `json:"forbidden"`
}

// Guard answers path-accessibility queries for tool handlers.
//
// A path is accessible when it has an ancestor among the allowed roots and
// no equal-or-closer ancestor among the forbidden roots (longest-path match,
// forbid wins ties). With no allowed roots configured every path is denied.
//
// Guard is safe for concurrent use: allow/forbid mutations are atomic with
// respect to in-flight queries.
type Guard struct {
	mu        sync.RWMutex
	enabled   bool
	allowed   map[string]struct{}
	forbidden map[string]struct{}
}

// NewGuard creates an enabled Guard with empty allow and forbid sets.
func NewGuard() *Guard {
	return &Guard{
		enabled:   true,
		allowed:   make(map[string]struct{}),
		forbidden: make(map[string]struct{}),
	}
}

// Allow adds a root to the allowed set. The root is canonicalized first.
// Allowing the same root twice is a no-op.
func (g *Guard) Allow(root string) error {
	canonical, err := Canonicalize(root)
	if err != nil {
		return fmt.Errorf("allow %s: %w", root, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.allowed[canonical] = struct{}{}
	return nil
}

// Forbid adds a root to the forbidden set. The root is canonicalized first.
// Forbidding a path under an allowed root creates an exception that is
// re-evaluated on every query.
func (g *Guard) Forbid(root string) error {
	canonical, err := Canonicalize(root)
	if err != nil {
		return fmt.Errorf("forbid %s: %w", root, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.forbidden[canonical] = struct{}{}
	return nil
}

// SetEnabled toggles the guard. A disabled guard denies every query.
func (g *Guard) SetEnabled(enabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.enabled = enabled
}

// Enabled reports whether the guard is accepting queries.
func (g *Guard) Enabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.enabled
}

// IsAllowed reports whether the given path is accessible.
func (g *Guard) IsAllowed(path string) bool {
	return g.Check(path) == nil
}

// Check returns nil if the path is accessible, or a *DeniedError describing
// why it is not.
func (g *Guard) Check(path string) error {
	canonical, err := Canonicalize(path)
	if err != nil {
		return &DeniedError{Path: path, Reason: fmt.Sprintf("cannot resolve path: %v", err)}
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.enabled {
		return &DeniedError{Path: canonical, Reason: "tool access is disabled"}
	}

	allowedDepth := -1
	for root := range g.allowed {
		if d := ancestorDepth(root, canonical); d > allowedDepth {
			allowedDepth = d
		}
	}
	if allowedDepth < 0 {
		return &DeniedError{Path: canonical, Reason: "path is not under any allowed root"}
	}

	for root := range g.forbidden {
		if d := ancestorDepth(root, canonical); d >= allowedDepth {
			return &DeniedError{Path: canonical, Reason: fmt.Sprintf("path is under forbidden root %s", root)}
		}
	}

	if sensitiveNames[strings.ToLower(filepath.Base(canonical))] {
		return &DeniedError{Path: canonical, Reason: "file name is on the sensitive list"}
	}

	return nil
}

// Status returns a snapshot of the guard's configuration with the root sets
// sorted for stable display.
func (g *Guard) Status() Status {
	g.mu.RLock()
	defer g.mu.RUnlock()

	status := Status{
		Enabled:   g.enabled,
		Allowed:   make([]string, 0, len(g.allowed)),
		Forbidden: make([]string, 0, len(g.forbidden)),
	}
	for root := range g.allowed {
		status.Allowed = append(status.Allowed, root)
	}
	for root := range g.forbidden {
		status.Forbidden = append(status.Forbidden, root)
	}
	sort.Strings(status.Allowed)
	sort.Strings(status.Forbidden)
	return status
}

// Canonicalize resolves a path to its absolute, symlink-free form. Symlinks
// are resolved against the nearest existing ancestor so that paths which do
// not exist yet (pending writes) still canonicalize.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	remainder := ""
	dir := abs
	for {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Clean(filepath.Join(resolved, remainder)), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return filepath.Clean(abs), nil
		}
		remainder = filepath.Join(filepath.Base(dir), remainder)
		dir = parent
	}
}

// ancestorDepth returns the number of components in root if root is path or
// an ancestor of path, or -1 otherwise. Both arguments must be canonical.
func ancestorDepth(root, path string) int {
	if root != path && !strings.HasPrefix(path, withTrailingSep(root)) {
		return -1
	}
	if root == string(filepath.Separator) {
		return 1
	}
	return strings.Count(root, string(filepath.Separator)) + 1
}

func withTrailingSep(root string) string {
	if strings.HasSuffix(root, string(filepath.Separator)) {
		return root
	}
	return root + string(filepath.Separator)
}
