package configwatcher

import (
	"context"
	"hrm_backend/internal/config"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  mode: release\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mode atomic.Value
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, path, func(cfg *config.Config) {
			mode.Store(cfg.Server.Mode)
		})
	}()

	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("server:\n  mode: debug\n"), 0o644))

	assert.Eventually(t, func() bool {
		v, _ := mode.Load().(string)
		return v == "debug"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
