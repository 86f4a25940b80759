package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{999, "999 B"},
		{1000, "1.00 KB"},
		{1500, "1.50 KB"},
		{2 * MB, "2.00 MB"},
		{1500 * MB, "1.50 GB"},
		{3 * TB, "3.00 TB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.in))
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "jpg", Extension("Photo.JPG"))
	assert.Equal(t, "gz", Extension("a.tar.gz"))
	assert.Equal(t, "", Extension("Makefile"))
	assert.Equal(t, "", Extension(".bashrc"))
	assert.Equal(t, "bak", Extension(".env.bak"))
}

func TestSHA256File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(p, []byte("abc"), 0o644))

	sum, err := SHA256File(p)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)

	_, err = SHA256File(p + ".missing")
	assert.Error(t, err)
}

func TestCopyFilePreservesContentAndTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o600))
	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))

	require.NoError(t, CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
}

func TestValidateDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	assert.NoError(t, ValidateDirectory(dir))
	assert.ErrorIs(t, ValidateDirectory(""), ErrPathEmpty)
	assert.ErrorIs(t, ValidateDirectory(file), ErrNotDirectory)
	assert.ErrorIs(t, ValidateDirectory(filepath.Join(dir, "missing")), ErrSourceNotExist)
}
