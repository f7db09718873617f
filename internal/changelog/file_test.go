package changelog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFile(t *testing.T) {
	assert.Equal(t, filepath.Join("/repo", "CHANGELOG.md"), NewFile("/repo", "").Path)
	assert.Equal(t, filepath.Join("/repo", "docs", "HISTORY.md"), NewFile("/repo", "docs/HISTORY.md").Path)
	assert.Equal(t, "/abs/CHANGES.md", NewFile("/repo", "/abs/CHANGES.md").Path)
}

func TestFile_ReadMissingIsEmpty(t *testing.T) {
	f := NewFile(t.TempDir(), "")

	text, err := f.Read()
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestFile_PrependCreatesFile(t *testing.T) {
	f := NewFile(t.TempDir(), "")

	require.NoError(t, f.Prepend("## 0.1.0 (2026-10-19)\n"))

	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, "## 0.1.0 (2026-10-19)\n", string(data))
}

// TestFile_PrependKeepsHistory verifies prior content survives unchanged
// below the new section.
func TestFile_PrependKeepsHistory(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(dir, "")
	prior := "# Changelog\n\nSome hand-written intro.\n"
	require.NoError(t, os.WriteFile(f.Path, []byte(prior), 0o600))

	require.NoError(t, f.Prepend("## 0.2.0 (2026-10-19)\n"))

	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	assert.Equal(t, "## 0.2.0 (2026-10-19)\n\n"+prior, string(data))

	info, err := os.Stat(f.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFile_ReadDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	f := File{Path: dir}

	_, err := f.Read()
	assert.Error(t, err)
}
