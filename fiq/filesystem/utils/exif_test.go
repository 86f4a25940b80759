package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasEXIF(t *testing.T) {
	assert.True(t, HasEXIF("jpg"))
	assert.True(t, HasEXIF("tiff"))
	assert.False(t, HasEXIF("png"))
	assert.False(t, HasEXIF(""))
}

func TestCaptureTimeWithoutEXIF(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "fake.jpg")
	require.NoError(t, os.WriteFile(p, []byte("not really a jpeg"), 0o644))

	_, ok := CaptureTime(p)
	assert.False(t, ok)

	_, ok = CaptureTime(filepath.Join(dir, "missing.jpg"))
	assert.False(t, ok)
}
