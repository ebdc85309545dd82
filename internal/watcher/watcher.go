// Package watcher ingests PDFs dropped directly into the documents
// directory, so documents can be added without the upload endpoint.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driving"
	"github.com/hoalabs/bylaws-assistant/internal/logger"
)

// DefaultSettleDelay is how long a file must stay quiet before it is
// ingested. Copies and downloads emit many write events; ingesting on
// the first one would read a half-written PDF.
const DefaultSettleDelay = 2 * time.Second

// ignoreWindow is how long an Ignore mark stays valid. Long enough to
// outlast writing a large upload to disk plus the settle delay, short
// enough that a manual re-drop of the same filename minutes later is
// still picked up.
const ignoreWindow = time.Minute

// Watcher watches a directory and ingests new PDFs.
type Watcher struct {
	dir       string
	ingestion driving.IngestionService
	settle    time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	ignore  map[string]time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettleDelay overrides the quiet period before ingestion.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// New creates a watcher for dir. Call Run to start it.
func New(dir string, ingestion driving.IngestionService, opts ...Option) *Watcher {
	w := &Watcher{
		dir:       dir,
		ingestion: ingestion,
		settle:    DefaultSettleDelay,
		pending:   make(map[string]*time.Timer),
		ignore:    make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. Ingestion failures are logged
// and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}
	logger.Info("Watching %s for new PDFs", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

// schedule (re)arms the settle timer for path. Every new event on the
// same file pushes ingestion back by the settle delay.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		deadline, marked := w.ignore[path]
		if marked {
			delete(w.ignore, path)
		}
		w.mu.Unlock()

		if marked && time.Now().Before(deadline) {
			logger.Debug("skipping %s: already ingested via upload", filepath.Base(path))
			return
		}
		if ctx.Err() != nil {
			return
		}
		if res, err := w.ingestion.IngestFile(ctx, path); err != nil {
			logger.Warn("failed to ingest %s: %v", filepath.Base(path), err)
		} else if res.Warning != "" {
			logger.Warn("ingested %s: %s", res.Filename, res.Warning)
		} else {
			logger.Info("Ingested %s from watch directory (%d chunks)", res.Filename, res.Chunks)
		}
	})
}

// Ignore suppresses the next watcher-triggered ingestion of path.
// The upload endpoint writes into the watched directory; without this
// the watcher would index every upload a second time.
func (w *Watcher) Ignore(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
	w.ignore[path] = time.Now().Add(ignoreWindow)
}

// GuardUploads wraps svc so that uploads ingested through it are
// marked ignored before they hit the watched directory.
func (w *Watcher) GuardUploads(svc driving.IngestionService) driving.IngestionService {
	return &guardedIngestion{svc: svc, watcher: w}
}

type guardedIngestion struct {
	svc     driving.IngestionService
	watcher *Watcher
}

func (g *guardedIngestion) IngestPDF(ctx context.Context, filename string, content []byte) (*driving.IngestResult, error) {
	// Mark before the save so the watcher's event for the written
	// file always finds the mark, even when embedding is slow.
	g.watcher.Ignore(filepath.Join(g.watcher.dir, filepath.Base(filename)))
	return g.svc.IngestPDF(ctx, filename, content)
}

func (g *guardedIngestion) IngestFile(ctx context.Context, path string) (*driving.IngestResult, error) {
	return g.svc.IngestFile(ctx, path)
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}
