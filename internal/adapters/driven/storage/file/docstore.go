// Package file implements filesystem-backed storage for uploaded
// documents and modification requests.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driven"
)

var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore keeps uploaded PDFs as plain files in a directory.
type DocumentStore struct {
	dir string
}

// NewDocumentStore creates the directory if needed.
func NewDocumentStore(dir string) (*DocumentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating documents directory: %w", err)
	}
	return &DocumentStore{dir: dir}, nil
}

// Save writes the uploaded bytes under the base name of filename,
// overwriting any previous upload with the same name. Path components
// in the client-supplied filename are stripped so uploads cannot
// escape the documents directory.
func (s *DocumentStore) Save(_ context.Context, filename string, content []byte) (string, error) {
	name := filepath.Base(filepath.Clean(filename))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("invalid filename %q", filename)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("writing document: %w", err)
	}
	return path, nil
}

// List returns the paths of all stored PDFs, sorted by name.
func (s *DocumentStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading documents directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			paths = append(paths, filepath.Join(s.dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Path returns where a document with the given filename would be stored.
func (s *DocumentStore) Path(filename string) string {
	return filepath.Join(s.dir, filepath.Base(filepath.Clean(filename)))
}
