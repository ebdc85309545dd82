package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driving"
)

type recordingIngestion struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingIngestion) IngestPDF(context.Context, string, []byte) (*driving.IngestResult, error) {
	panic("watcher must use IngestFile")
}

func (r *recordingIngestion) IngestFile(_ context.Context, path string) (*driving.IngestResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return &driving.IngestResult{Filename: filepath.Base(path), Chunks: 1}, nil
}

func (r *recordingIngestion) ingested() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func TestWatcherIngestsNewPDF(t *testing.T) {
	dir := t.TempDir()
	ing := &recordingIngestion{}
	w := New(dir, ing, WithSettleDelay(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	// Give the watcher a moment to register.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "new-bylaws.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 x"), 0o644))

	require.Eventually(t, func() bool {
		got := ing.ingested()
		return len(got) == 1 && got[0] == path
	}, 3*time.Second, 25*time.Millisecond)

	cancel()
	<-done
}

func TestWatcherIgnoresNonPDF(t *testing.T) {
	dir := t.TempDir()
	ing := &recordingIngestion{}
	w := New(dir, ing, WithSettleDelay(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Empty(t, ing.ingested())
}

func TestWatcherCoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	ing := &recordingIngestion{}
	w := New(dir, ing, WithSettleDelay(150*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	// Simulate a slow copy: several writes to the same file.
	path := filepath.Join(dir, "slow.pdf")
	f, err := os.Create(path)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = f.Write([]byte("%PDF chunk "))
		require.NoError(t, err)
		require.NoError(t, f.Sync())
		time.Sleep(30 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool {
		return len(ing.ingested()) == 1
	}, 3*time.Second, 25*time.Millisecond)

	// No second ingestion should follow.
	time.Sleep(300 * time.Millisecond)
	assert.Len(t, ing.ingested(), 1)
}

// uploadingIngestion simulates the upload pipeline: IngestPDF writes
// the file into the watched directory the way the document store does,
// then records the ingestion.
type uploadingIngestion struct {
	recordingIngestion
	dir string
}

func (u *uploadingIngestion) IngestPDF(ctx context.Context, filename string, content []byte) (*driving.IngestResult, error) {
	path := filepath.Join(u.dir, filepath.Base(filename))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, err
	}
	return u.IngestFile(ctx, path)
}

func TestGuardedUploadIngestsOnce(t *testing.T) {
	dir := t.TempDir()
	ing := &uploadingIngestion{dir: dir}
	w := New(dir, ing, WithSettleDelay(50*time.Millisecond))
	guarded := w.GuardUploads(ing)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	_, err := guarded.IngestPDF(ctx, "bylaws.pdf", []byte("%PDF-1.4 x"))
	require.NoError(t, err)

	// Wait well past the settle delay: the watcher must not ingest
	// the upload a second time.
	time.Sleep(400 * time.Millisecond)
	assert.Len(t, ing.ingested(), 1)

	// A PDF dropped manually afterwards is still picked up, even with
	// the same filename as a consumed ignore mark.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dropped.pdf"), []byte("%PDF-1.4 y"), 0o644))
	require.Eventually(t, func() bool {
		return len(ing.ingested()) == 2
	}, 3*time.Second, 25*time.Millisecond)
}

func TestGuardedUploadPassesThroughIngestFile(t *testing.T) {
	dir := t.TempDir()
	ing := &uploadingIngestion{dir: dir}
	w := New(dir, ing)

	path := filepath.Join(dir, "direct.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	_, err := w.GuardUploads(ing).IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, ing.ingested())
}

func TestWatcherStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, &recordingIngestion{})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
