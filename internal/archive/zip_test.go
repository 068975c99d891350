package archive

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradesheet/internal/errors"
)

func writeFiles(t *testing.T, files map[string]string) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.xlsx", "b.xlsx", "c.xlsx"} {
		body, ok := files[name]
		if !ok {
			continue
		}
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		paths = append(paths, p)
	}
	return paths
}

func TestWriteZipEntries(t *testing.T) {
	paths := writeFiles(t, map[string]string{"a.xlsx": "alpha", "b.xlsx": "beta", "c.xlsx": "gamma"})

	var buf bytes.Buffer
	require.NoError(t, WriteZip(&buf, paths))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)

	want := []string{"alpha", "beta", "gamma"}
	for i, f := range zr.File {
		assert.Equal(t, filepath.Base(paths[i]), f.Name)
		assert.Equal(t, zip.Deflate, f.Method)

		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, rc.Close())
		require.NoError(t, err)
		assert.Equal(t, want[i], string(data))
	}
}

func TestWriteZipMissingFile(t *testing.T) {
	var buf bytes.Buffer
	err := WriteZip(&buf, []string{filepath.Join(t.TempDir(), "missing.xlsx")})
	require.Error(t, err)
	assert.Equal(t, errors.CodeArchiveError, errors.GetCode(err))
}

func TestWriteZipDuplicateNames(t *testing.T) {
	paths := writeFiles(t, map[string]string{"a.xlsx": "alpha"})
	var buf bytes.Buffer
	err := WriteZip(&buf, []string{paths[0], paths[0]})
	assert.Error(t, err)
}

func TestCreateZipRemovesPartialOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "bundle.zip")
	err := CreateZip(out, []string{filepath.Join(t.TempDir(), "missing.xlsx")})
	require.Error(t, err)
	assert.NoFileExists(t, out)

	paths := writeFiles(t, map[string]string{"a.xlsx": "alpha", "b.xlsx": "beta"})
	require.NoError(t, CreateZip(out, paths))
	zr, err := zip.OpenReader(out)
	require.NoError(t, err)
	defer zr.Close()
	assert.Len(t, zr.File, 2)
}
