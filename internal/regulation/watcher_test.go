package regulation

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestWatcher_ReloadOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeRules(t, dir, "country_kr.json", krFile)

	s := NewStore(nil)
	require.NoError(t, s.LoadDir(dir))

	w, err := NewWatcher(dir, s)
	require.NoError(t, err)
	w.debounceDur = 50 * time.Millisecond // keep the test fast

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// Add an airline file; the watcher should pick it up
	writeRules(t, dir, "airline_ke.json", `{
	  "scope": "airline", "code": "KE",
	  "rules": [{"item_category": "power_bank", "severity": "warn", "constraints": {"max_pieces": 5}}]
	}`)

	require.Eventually(t, func() bool {
		return len(s.Find(ScopeAirline, "KE", "power_bank")) == 1
	}, 3*time.Second, 20*time.Millisecond)
	assert.GreaterOrEqual(t, w.Reloads(), 1)
}

func TestWatcher_BadEditKeepsServing(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeRules(t, dir, "country_kr.json", krFile)

	s := NewStore(nil)
	require.NoError(t, s.LoadDir(dir))

	w, err := NewWatcher(dir, s)
	require.NoError(t, err)
	w.debounceDur = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	// Break the file on disk; live queries must keep the old snapshot
	require.NoError(t, os.WriteFile(filepath.Join(dir, "country_kr.json"), []byte("{broken"), 0644))

	require.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.reloadErrors >= 1
	}, 3*time.Second, 20*time.Millisecond)

	assert.Len(t, s.Find(ScopeCountry, "KR", "knife"), 1)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	s := NewStore(nil)
	w, err := NewWatcher(dir, s)
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}
