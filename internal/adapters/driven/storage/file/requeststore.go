package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hoalabs/bylaws-assistant/internal/core/domain"
	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driven"
)

var _ driven.RequestStore = (*RequestStore)(nil)

// RequestStore persists each modification request as a pretty-printed
// JSON file named after its request ID. One file per request keeps the
// records independently readable and avoids any shared-file locking.
type RequestStore struct {
	dir string
}

// NewRequestStore creates the directory if needed. Requests can carry
// contact details, so the directory is not world-readable.
func NewRequestStore(dir string) (*RequestStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating requests directory: %w", err)
	}
	return &RequestStore{dir: dir}, nil
}

// Save writes the request to <dir>/<request-id>.json. A request ID
// that already exists on disk is refused rather than overwritten.
func (s *RequestStore) Save(_ context.Context, req *domain.ModificationRequest) error {
	if req == nil || req.RequestID == "" {
		return fmt.Errorf("%w: request ID is required", domain.ErrValidation)
	}

	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(s.dir, req.RequestID+".json")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("creating request file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing request file: %w", err)
	}
	return f.Close()
}
