package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Sentinel errors for workspace operations.
var (
	ErrWorkspaceClosed = errors.New("workspace is closed")
	ErrInvalidFileName = errors.New("invalid workspace file name")
)

// workspacePattern names every run directory so leftovers are recognizable.
const workspacePattern = "mmd2pdf-*"

// Workspace is a scoped temp directory owning every transient file of one
// conversion run. Close removes the directory and everything in it.
// Safe for concurrent use.
type Workspace struct {
	dir    string
	mu     sync.Mutex
	closed bool
}

// NewWorkspace creates a fresh directory under parent.
// An empty parent means os.TempDir().
func NewWorkspace(parent string) (*Workspace, error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0o750); err != nil {
			return nil, fmt.Errorf("creating work directory: %w", err)
		}
	}
	dir, err := os.MkdirTemp(parent, workspacePattern)
	if err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns the absolute path of name inside the workspace.
// Names are flat: separators and traversal are rejected.
func (w *Workspace) Path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	return filepath.Join(w.dir, name), nil
}

// WriteFile writes content to name inside the workspace and returns its path.
func (w *Workspace) WriteFile(name, content string) (string, error) {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return "", ErrWorkspaceClosed
	}

	path, err := w.Path(name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}

// Close removes the workspace and its contents. Calling Close twice is a no-op.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("removing workspace: %w", err)
	}
	return nil
}
