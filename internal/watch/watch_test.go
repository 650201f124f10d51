package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun_TriggersOnWrite(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, []string{dir}, 50*time.Millisecond, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher a moment to register.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.md"), []byte("# Home"), 0o644))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestRun_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 16)
	go func() {
		_ = Run(ctx, []string{dir}, 200*time.Millisecond, func() {
			calls <- struct{}{}
		})
	}()

	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "page.md"), []byte("# v"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a rebuild after the burst settled")
	}

	// The burst must have collapsed into a single call.
	select {
	case <-calls:
		t.Fatal("burst was not debounced")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestRun_QuietPeriodPrecedesRebuild(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const debounce = 300 * time.Millisecond
	calls := make(chan time.Time, 16)
	go func() {
		_ = Run(ctx, []string{dir}, debounce, func() {
			calls <- time.Now()
		})
	}()

	time.Sleep(100 * time.Millisecond)

	// Two well-separated writes. Each rebuild must come a full quiet
	// period after its write; a stale expiry left in the timer channel
	// from the previous cycle would fire the second one early.
	for i := 0; i < 2; i++ {
		wrote := time.Now()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "page.md"), []byte("# v"), 0o644))

		select {
		case fired := <-calls:
			require.GreaterOrEqual(t, fired.Sub(wrote), debounce-50*time.Millisecond)
		case <-time.After(3 * time.Second):
			t.Fatal("expected a rebuild")
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func TestRun_MissingPathFails(t *testing.T) {
	err := Run(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, time.Second, func() {})
	require.Error(t, err)
}
