package changelog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultFileName is the changelog file written at the repository root.
const DefaultFileName = "CHANGELOG.md"

// File is a changelog on disk.
type File struct {
	// Path is the absolute path to the changelog file.
	Path string
}

// NewFile returns the changelog file for a repository. An empty name uses
// DefaultFileName; relative names are resolved against repoPath.
func NewFile(repoPath, name string) File {
	if name == "" {
		name = DefaultFileName
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(repoPath, name)
	}
	return File{Path: name}
}

// Read returns the current changelog text. A missing file is not an error;
// it reads as empty text.
func (f File) Read() (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read changelog %s: %w", f.Path, err)
	}
	return string(data), nil
}

// Prepend writes section above the existing content, creating the file if
// needed. Existing permissions are preserved.
func (f File) Prepend(section string) error {
	prior, err := f.Read()
	if err != nil {
		return err
	}

	mode := fs.FileMode(0o644)
	if info, statErr := os.Stat(f.Path); statErr == nil {
		mode = info.Mode().Perm()
	}

	if err := os.WriteFile(f.Path, []byte(Merge(section, prior)), mode); err != nil {
		return fmt.Errorf("write changelog %s: %w", f.Path, err)
	}
	return nil
}
