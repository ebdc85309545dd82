// Package sqlite provides the persisted vector index. Chunk text and
// embeddings live in a single SQLite database file; similarity search
// runs brute-force over an in-memory snapshot that is rebuilt on load
// and extended on ingest.
//
// SQLite gives the two properties the index needs without a separate
// index file format: per-document atomicity (one transaction per
// ingest) and crash safety for readers (WAL journal), so a restart
// never observes a partially written index.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/hoalabs/bylaws-assistant/internal/adapters/driven/index/sqlite/migrations"
	"github.com/hoalabs/bylaws-assistant/internal/core/domain"
	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driven"
)

// Ensure Index implements the port.
var _ driven.VectorIndex = (*Index)(nil)

// Index is the SQLite-backed vector index.
type Index struct {
	db   *sql.DB
	path string

	// mu guards the snapshot and serialises ingest+persist cycles
	// against each other; searches take the read lock and never block
	// one another.
	mu      sync.RWMutex
	entries []entry
	docs    map[string]string // document ID -> filename
}

// entry pairs a chunk with its citation filename and insertion order.
type entry struct {
	chunk    domain.Chunk
	filename string
	seq      int64
}

// New opens (or creates) the index under dataDir and loads the
// in-memory snapshot, so a restart does not re-embed any document.
func New(dataDir string) (*Index, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	idx := &Index{
		db:   db,
		path: dbPath,
		docs: make(map[string]string),
	}

	if err := idx.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if err := idx.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("loading index: %w", err)
	}

	return idx, nil
}

// Close closes the database connection.
func (x *Index) Close() error {
	return x.db.Close()
}

// Path returns the database file path.
func (x *Index) Path() string {
	return x.path
}

// migrate runs all pending migrations.
func (x *Index) migrate(fsys embed.FS) error {
	_, err := x.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := x.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			upFiles = append(upFiles, e.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := x.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := x.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// load rebuilds the in-memory snapshot from the database.
func (x *Index) load() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.entries = nil
	x.docs = make(map[string]string)

	docRows, err := x.db.Query("SELECT id, filename FROM documents")
	if err != nil {
		return fmt.Errorf("querying documents: %w", err)
	}
	defer docRows.Close()

	for docRows.Next() {
		var id, filename string
		if err := docRows.Scan(&id, &filename); err != nil {
			return fmt.Errorf("scanning document: %w", err)
		}
		x.docs[id] = filename
	}
	if err := docRows.Err(); err != nil {
		return fmt.Errorf("iterating documents: %w", err)
	}

	rows, err := x.db.Query(`
		SELECT c.seq, c.id, c.document_id, c.position, c.content, c.embedding, d.filename
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		ORDER BY c.seq
	`)
	if err != nil {
		return fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e entry
		var blob []byte
		if err := rows.Scan(&e.seq, &e.chunk.ID, &e.chunk.DocumentID,
			&e.chunk.Position, &e.chunk.Content, &blob, &e.filename); err != nil {
			return fmt.Errorf("scanning chunk: %w", err)
		}
		e.chunk.Embedding = bytesToFloat32Slice(blob)
		x.entries = append(x.entries, e)
	}
	return rows.Err()
}

// Ingest appends a document's chunks in a single transaction. On any
// failure the transaction rolls back and neither the document nor any
// chunk becomes visible to searches.
func (x *Index) Ingest(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) (int, error) {
	if doc == nil || doc.ID == "" {
		return 0, fmt.Errorf("%w: document is required", domain.ErrValidation)
	}

	dims := 0
	for i, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			return 0, fmt.Errorf("%w: chunk %d has no embedding", domain.ErrValidation, i)
		}
		if dims == 0 {
			dims = len(chunk.Embedding)
		} else if len(chunk.Embedding) != dims {
			return 0, fmt.Errorf("%w: chunk %d dimension %d does not match %d",
				domain.ErrValidation, i, len(chunk.Embedding), dims)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if dims > 0 && len(x.entries) > 0 {
		if existing := len(x.entries[0].chunk.Embedding); existing != dims {
			return 0, fmt.Errorf("%w: embedding dimension %d does not match indexed dimension %d (reindex required)",
				domain.ErrValidation, dims, existing)
		}
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, filename, pages, status, chunk_count, embedder, dimensions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Filename, doc.Pages, doc.Status, len(chunks), doc.Embedder, dims, doc.CreatedAt); err != nil {
		return 0, fmt.Errorf("saving document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, position, content, embedding)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	seqs := make([]int64, len(chunks))
	for i, chunk := range chunks {
		res, err := stmt.ExecContext(ctx, chunk.ID, doc.ID, chunk.Position,
			chunk.Content, float32SliceToBytes(chunk.Embedding))
		if err != nil {
			return 0, fmt.Errorf("saving chunk %d: %w", i, err)
		}
		seqs[i], err = res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("reading chunk seq: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	// Committed; extend the snapshot under the same write lock.
	x.docs[doc.ID] = doc.Filename
	for i, chunk := range chunks {
		chunk.DocumentID = doc.ID
		x.entries = append(x.entries, entry{
			chunk:    chunk,
			filename: doc.Filename,
			seq:      seqs[i],
		})
	}

	return len(chunks), nil
}

// Search returns the k nearest chunks to the query vector by cosine
// similarity, best first. Ties are broken by insertion order. k larger
// than the number of indexed chunks returns everything available.
func (x *Index) Search(_ context.Context, query []float32, k int) ([]driven.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrValidation, k)
	}
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: query vector is empty", domain.ErrValidation)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	scored := make([]driven.ScoredChunk, 0, len(x.entries))
	order := make(map[string]int64, len(x.entries))
	for _, e := range x.entries {
		if len(e.chunk.Embedding) != len(query) {
			continue
		}
		scored = append(scored, driven.ScoredChunk{
			Chunk:    e.chunk,
			Filename: e.filename,
			Score:    cosineSimilarity(query, e.chunk.Embedding),
		})
		order[e.chunk.ID] = e.seq
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return order[scored[i].Chunk.ID] < order[scored[j].Chunk.ID]
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Ready reports whether any chunks are indexed.
func (x *Index) Ready() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries) > 0
}

// Documents returns the number of ingested documents.
func (x *Index) Documents() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.docs)
}

// Reset removes all persisted state. Used by reindexing.
func (x *Index) Reset(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	x.entries = nil
	x.docs = make(map[string]string)
	return nil
}

// cosineSimilarity computes the cosine of the angle between a and b.
// Returns 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		na += av * av
		nb += bv * bv
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// float32SliceToBytes encodes a vector as little-endian bytes.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice decodes a little-endian byte blob to a vector.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
