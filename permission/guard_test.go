package permission

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardDefaultDeny(t *testing.T) {
	t.Run("denies everything with no allowed roots", func(t *testing.T) {
		g := NewGuard()
		assert.False(t, g.IsAllowed("/etc/passwd"))
		assert.False(t, g.IsAllowed(t.TempDir()))
	})

	t.Run("denial error mentions permission", func(t *testing.T) {
		g := NewGuard()
		err := g.Check("/etc/hosts")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "permission denied")

		var denied *DeniedError
		require.ErrorAs(t, err, &denied)
		assert.Contains(t, denied.Reason, "allowed root")
	})
}

func TestGuardAllow(t *testing.T) {
	t.Run("allows paths under an allowed root", func(t *testing.T) {
		root := t.TempDir()
		g := NewGuard()
		require.NoError(t, g.Allow(root))

		assert.True(t, g.IsAllowed(root))
		assert.True(t, g.IsAllowed(filepath.Join(root, "sub", "file.txt")))
	})

	t.Run("denies paths outside the allowed root", func(t *testing.T) {
		g := NewGuard()
		require.NoError(t, g.Allow(t.TempDir()))
		assert.False(t, g.IsAllowed(t.TempDir()))
	})

	t.Run("sibling with shared prefix is not contained", func(t *testing.T) {
		base := t.TempDir()
		root := filepath.Join(base, "work")
		sibling := filepath.Join(base, "workspace")
		require.NoError(t, os.Mkdir(root, 0o755))
		require.NoError(t, os.Mkdir(sibling, 0o755))

		g := NewGuard()
		require.NoError(t, g.Allow(root))
		assert.False(t, g.IsAllowed(filepath.Join(sibling, "file.txt")))
	})

	t.Run("allow is idempotent", func(t *testing.T) {
		root := t.TempDir()
		g := NewGuard()
		require.NoError(t, g.Allow(root))
		require.NoError(t, g.Allow(root))
		assert.Len(t, g.Status().Allowed, 1)
	})
}

func TestGuardForbid(t *testing.T) {
	t.Run("forbid under an allowed root creates an exception", func(t *testing.T) {
		root := t.TempDir()
		secret := filepath.Join(root, "secret")
		require.NoError(t, os.Mkdir(secret, 0o755))

		g := NewGuard()
		require.NoError(t, g.Allow(root))
		require.NoError(t, g.Forbid(secret))

		assert.True(t, g.IsAllowed(filepath.Join(root, "open.txt")))
		assert.False(t, g.IsAllowed(filepath.Join(secret, "key.txt")))
		assert.False(t, g.IsAllowed(secret))
	})

	t.Run("forbid wins at equal depth", func(t *testing.T) {
		root := t.TempDir()
		g := NewGuard()
		require.NoError(t, g.Allow(root))
		require.NoError(t, g.Forbid(root))
		assert.False(t, g.IsAllowed(filepath.Join(root, "file.txt")))
	})

	t.Run("closer allow wins over shallower forbid", func(t *testing.T) {
		root := t.TempDir()
		inner := filepath.Join(root, "inner")
		require.NoError(t, os.Mkdir(inner, 0o755))

		g := NewGuard()
		require.NoError(t, g.Forbid(root))
		require.NoError(t, g.Allow(inner))

		assert.False(t, g.IsAllowed(filepath.Join(root, "file.txt")))
		assert.True(t, g.IsAllowed(filepath.Join(inner, "file.txt")))
	})

	t.Run("forbid after allow narrows, never widens", func(t *testing.T) {
		root := t.TempDir()
		sub := filepath.Join(root, "sub")
		require.NoError(t, os.Mkdir(sub, 0o755))

		g := NewGuard()
		require.NoError(t, g.Allow(root))

		before := g.IsAllowed(filepath.Join(sub, "file.txt"))
		require.NoError(t, g.Forbid(sub))
		after := g.IsAllowed(filepath.Join(sub, "file.txt"))

		assert.True(t, before)
		assert.False(t, after)
	})
}

func TestGuardCanonicalization(t *testing.T) {
	t.Run("dot-dot segments resolve before matching", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(root, "secret"), 0o755))

		g := NewGuard()
		require.NoError(t, g.Allow(root))

		// secret/../config.json canonicalizes to a path inside the root.
		// Built by concatenation so filepath.Join does not pre-clean it.
		assert.True(t, g.IsAllowed(root+"/secret/../config.json"))
	})

	t.Run("escape via dot-dot is denied", func(t *testing.T) {
		root := t.TempDir()
		g := NewGuard()
		require.NoError(t, g.Allow(root))
		assert.False(t, g.IsAllowed(filepath.Join(root, "..", "outside.txt")))
	})

	t.Run("symlink out of the allowed root is denied", func(t *testing.T) {
		root := t.TempDir()
		outside := t.TempDir()
		link := filepath.Join(root, "link")
		require.NoError(t, os.Symlink(outside, link))

		g := NewGuard()
		require.NoError(t, g.Allow(root))
		assert.False(t, g.IsAllowed(filepath.Join(link, "file.txt")))
	})

	t.Run("nonexistent paths still canonicalize", func(t *testing.T) {
		root := t.TempDir()
		g := NewGuard()
		require.NoError(t, g.Allow(root))
		assert.True(t, g.IsAllowed(filepath.Join(root, "does", "not", "exist.txt")))
	})
}

func TestGuardSensitiveNames(t *testing.T) {
	root := t.TempDir()
	g := NewGuard()
	require.NoError(t, g.Allow(root))

	tests := []string{".env", "id_rsa", "passwd", "credentials"}
	for _, name := range tests {
		t.Run(name+" is denied inside an allowed root", func(t *testing.T) {
			err := g.Check(filepath.Join(root, name))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "sensitive")
		})
	}

	t.Run("ordinary names pass", func(t *testing.T) {
		assert.True(t, g.IsAllowed(filepath.Join(root, "main.go")))
	})
}

func TestGuardEnabled(t *testing.T) {
	root := t.TempDir()
	g := NewGuard()
	require.NoError(t, g.Allow(root))

	t.Run("disabled guard denies allowed paths", func(t *testing.T) {
		g.SetEnabled(false)
		defer g.SetEnabled(true)

		assert.False(t, g.Enabled())
		err := g.Check(filepath.Join(root, "file.txt"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disabled")
	})

	t.Run("re-enabling restores access", func(t *testing.T) {
		g.SetEnabled(true)
		assert.True(t, g.IsAllowed(filepath.Join(root, "file.txt")))
	})
}

func TestGuardStatus(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()

	g := NewGuard()
	require.NoError(t, g.Allow(a))
	require.NoError(t, g.Allow(b))
	require.NoError(t, g.Forbid(filepath.Join(a, "secret")))

	status := g.Status()
	assert.True(t, status.Enabled)
	assert.Len(t, status.Allowed, 2)
	assert.Len(t, status.Forbidden, 1)
	assert.IsIncreasing(t, status.Allowed)
}

func TestGuardConcurrency(t *testing.T) {
	root := t.TempDir()
	g := NewGuard()
	require.NoError(t, g.Allow(root))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				g.IsAllowed(filepath.Join(root, "file.txt"))
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sub := filepath.Join(root, "sub")
			for j := 0; j < 50; j++ {
				_ = g.Forbid(sub)
				_ = g.Allow(root)
			}
		}(i)
	}
	wg.Wait()
}
