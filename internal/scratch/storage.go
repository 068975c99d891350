package scratch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const copyChunkSize = 32 * 1024

// Storage hands out request scopes inside one scratch directory
type Storage struct {
	basePath string
}

// NewStorage creates the scratch directory if needed
func NewStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "uploads"
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

// BasePath returns the scratch directory
func (s *Storage) BasePath() string {
	return s.basePath
}

// NewScope starts a scope that owns every file created through it
func (s *Storage) NewScope() *Scope {
	return &Scope{storage: s}
}

// Token returns a timestamp plus short uuid, unique across concurrent requests
func Token() string {
	return fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
}

// UniqueName appends a fresh token to the base name of filename
func UniqueName(filename string) string {
	filename = filepath.Base(filename)
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	return fmt.Sprintf("%s_%s%s", base, Token(), ext)
}

// Scope tracks the scratch files of one request so they can be released
// together. It is safe for concurrent use.
type Scope struct {
	storage *Storage

	mu    sync.Mutex
	paths []string
}

// Store copies src into the scratch directory under a unique name
func (sc *Scope) Store(src io.Reader, filename string) (string, error) {
	filePath := filepath.Join(sc.storage.basePath, UniqueName(filename))

	destFile, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	sc.Track(filePath)
	defer destFile.Close()

	buf := make([]byte, copyChunkSize)
	if _, err := io.CopyBuffer(destFile, src, buf); err != nil {
		return "", fmt.Errorf("failed to copy file contents: %w", err)
	}
	return filePath, nil
}

// Path reserves a path for name inside the scratch directory. The file is
// not created but will be removed on Release.
func (sc *Scope) Path(name string) string {
	filePath := filepath.Join(sc.storage.basePath, filepath.Base(name))
	sc.Track(filePath)
	return filePath
}

// Track adds an existing path to the scope
func (sc *Scope) Track(path string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.paths = append(sc.paths, path)
}

// Paths returns the tracked paths in creation order
func (sc *Scope) Paths() []string {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	out := make([]string, len(sc.paths))
	copy(out, sc.paths)
	return out
}

// Release removes every tracked file. Files that are already gone are
// ignored; the first other failure is returned after all removals ran.
func (sc *Scope) Release() error {
	sc.mu.Lock()
	paths := sc.paths
	sc.paths = nil
	sc.mu.Unlock()

	var firstErr error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = fmt.Errorf("failed to delete file: %w", err)
		}
	}
	return firstErr
}
