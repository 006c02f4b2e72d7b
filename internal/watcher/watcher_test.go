package watcher

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type collector struct {
	mu    sync.Mutex
	calls [][]string
}

func (c *collector) onChange(_ context.Context, changed []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, changed)
}

func (c *collector) seen(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if slices.Contains(call, path) {
			return true
		}
	}
	return false
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func startWatch(t *testing.T, root string, ignore []string, c *collector) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, Config{
			Root:     root,
			Ignore:   ignore,
			Debounce: 50 * time.Millisecond,
			OnChange: c.onChange,
		})
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Watch: %v", err)
		}
	})
	time.Sleep(100 * time.Millisecond)
}

func TestWatch_NewFileTriggersChange(t *testing.T) {
	root := t.TempDir()
	c := &collector{}
	startWatch(t, root, nil, c)

	_ = os.WriteFile(filepath.Join(root, "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return c.seen("new.md")
	}, "expected new.md change")
}

func TestWatch_Debounces(t *testing.T) {
	root := t.TempDir()
	c := &collector{}
	startWatch(t, root, nil, c)

	for _, name := range []string{"a.md", "b.md", "c.md"} {
		_ = os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644)
	}

	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return c.seen("a.md") && c.seen("b.md") && c.seen("c.md")
	}, "expected all writes to be reported")
	if n := c.count(); n > 2 {
		t.Errorf("burst of writes produced %d callbacks, want it coalesced", n)
	}
}

func TestWatch_NewDirWatched(t *testing.T) {
	root := t.TempDir()
	c := &collector{}
	startWatch(t, root, nil, c)

	sub := filepath.Join(root, "subdir")
	_ = os.MkdirAll(sub, 0o755)
	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return c.seen("subdir")
	}, "expected subdir creation")

	_ = os.WriteFile(filepath.Join(sub, "deep.md"), []byte("# Deep"), 0o644)
	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return c.seen(filepath.Join("subdir", "deep.md"))
	}, "file in new subdir not reported")
}

func TestWatch_IgnoredPaths(t *testing.T) {
	root := t.TempDir()
	_ = os.MkdirAll(filepath.Join(root, "build"), 0o755)
	c := &collector{}
	startWatch(t, root, []string{"build"}, c)

	_ = os.WriteFile(filepath.Join(root, "build", "out.html"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(root, ".swap"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(root, "kept.md"), []byte("x"), 0o644)

	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return c.seen("kept.md")
	}, "expected kept.md change")
	if c.seen(filepath.Join("build", "out.html")) || c.seen(".swap") {
		t.Error("ignored paths must not be reported")
	}
}
