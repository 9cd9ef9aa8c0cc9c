package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flowdeck/flowdeck/internal/infrastructure/sqlite"
)

func TestStoreWatcher_FlushesOnExternalWrite(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "flowdeck.db")

	db, err := sqlite.NewDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewService(db.DefinitionRepository())
	ctx := context.Background()

	id, err := svc.CreateWorkflow(ctx, dailyReport())
	require.NoError(t, err)
	_, err = svc.GetWorkflow(ctx, id)
	require.NoError(t, err)
	require.NotEmpty(t, svc.workflows.Keys(ctx), "Cache should be warm before the external write")

	watcher, err := NewStoreWatcher(svc, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { watcher.Close() })

	// Simulate another process touching the store file.
	f, err := os.OpenFile(dbPath, os.O_APPEND|os.O_WRONLY, 0600)
	require.NoError(t, err)
	_, err = f.Write([]byte{0})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool {
		return len(svc.workflows.Keys(ctx)) == 0
	}, 3*time.Second, 50*time.Millisecond, "External write should flush the cache")
}

func TestStoreWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "flowdeck.db")

	db, err := sqlite.NewDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewService(db.DefinitionRepository())
	ctx := context.Background()

	id, err := svc.CreateWorkflow(ctx, dailyReport())
	require.NoError(t, err)
	_, err = svc.GetWorkflow(ctx, id)
	require.NoError(t, err)

	watcher, err := NewStoreWatcher(svc, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { watcher.Close() })

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "unrelated.txt"), []byte("x"), 0600))

	time.Sleep(2 * watchDebounce)
	require.NotEmpty(t, svc.workflows.Keys(ctx), "Unrelated files must not flush the cache")
}

func TestStoreWatcher_Matches(t *testing.T) {
	w := &StoreWatcher{path: filepath.Clean("/data/flowdeck.db")}

	require.True(t, w.matches("/data/flowdeck.db"))
	require.True(t, w.matches("/data/flowdeck.db-wal"))
	require.True(t, w.matches("/data/flowdeck.db-shm"))
	require.False(t, w.matches("/data/other.db"))
	require.False(t, w.matches("/data/flowdeck.db.bak"))
}
