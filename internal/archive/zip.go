package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"

	"gradesheet/internal/errors"
)

// ContentType is the MIME type of archives produced here
const ContentType = "application/zip"

// WriteZip writes every file in paths into dest as a deflated entry named by
// the file's base name. Entry order follows paths.
func WriteZip(dest io.Writer, paths []string) error {
	zw := zip.NewWriter(dest)
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		if seen[name] {
			_ = zw.Close()
			return errors.ArchiveError(fmt.Errorf("duplicate archive entry %q", name))
		}
		seen[name] = true

		if err := addFile(zw, p, name); err != nil {
			_ = zw.Close()
			return errors.ArchiveError(err)
		}
	}
	if err := zw.Close(); err != nil {
		return errors.ArchiveError(fmt.Errorf("failed to finalize archive: %w", err))
	}
	return nil
}

// CreateZip writes the archive to path. A partially written file is removed
// on failure.
func CreateZip(path string, paths []string) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return errors.ArchiveError(fmt.Errorf("failed to create archive: %w", err))
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.ArchiveError(cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return WriteZip(out, paths)
}

func addFile(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer src.Close()

	modified := time.Now()
	if info, err := src.Stat(); err == nil {
		modified = info.ModTime()
	}
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
