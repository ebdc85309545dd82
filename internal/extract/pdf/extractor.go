// Package pdf extracts text from PDF files using the poppler
// pdftotext tool. Shelling out keeps the module CGO-free and leans on
// a battle-tested extractor instead of a partial pure-Go parser.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hoalabs/bylaws-assistant/internal/core/ports/driven"
)

// Ensure Extractor implements the port.
var _ driven.Extractor = (*Extractor)(nil)

// CommandRunner executes an external command and returns its stdout.
// It exists so tests can substitute a fake pdftotext.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs real commands.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor extracts text content from PDFs via pdftotext.
type Extractor struct {
	runner CommandRunner
}

// New creates an extractor that shells out to pdftotext.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates an extractor with a custom command runner.
func NewWithRunner(r CommandRunner) *Extractor {
	return &Extractor{runner: r}
}

// Extract returns the plain text and page count of the PDF at path.
// pdftotext separates pages with form feeds; the page count is derived
// from them. Empty output (e.g. a scanned-image-only PDF) is not an
// error.
func (e *Extractor) Extract(ctx context.Context, path string) (string, int, error) {
	out, err := e.runner.Run(ctx, "pdftotext", "-enc", "UTF-8", path, "-")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", 0, fmt.Errorf("pdftotext not found: %w\n%s", err, InstallInstructions())
		}
		return "", 0, fmt.Errorf("pdftotext: %w", err)
	}

	text := string(out)
	if strings.TrimSpace(text) == "" {
		return "", 0, nil
	}

	pages := strings.Count(text, "\f")
	if !strings.HasSuffix(text, "\f") {
		pages++
	}

	return text, pages, nil
}

// Available reports whether pdftotext is on PATH.
func Available() bool {
	_, err := exec.LookPath("pdftotext")
	return err == nil
}

// InstallInstructions returns guidance for installing pdftotext.
func InstallInstructions() string {
	return strings.Join([]string{
		"pdftotext is required for PDF ingestion:",
		"  macOS:  brew install poppler",
		"  Debian: apt install poppler-utils",
	}, "\n")
}
