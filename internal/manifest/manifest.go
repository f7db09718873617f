// Package manifest reads and writes the version field of package manifests.
//
// Two formats are supported:
//   - Cargo.toml, including [workspace] members (Rust crates)
//   - package.json, including "workspaces" (npm packages)
//
// Workspaces are walked as an explicit tree. Member paths may be globs.
// A visited set keyed by absolute directory guards against members that
// point back at an ancestor, so a misconfigured workspace cannot recurse
// forever.
//
// Rewrites only touch the version value of each manifest; formatting,
// comments and key order are preserved.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/shinji-kodama/semrel/internal/model"
)

// AllPackages selects every workspace member.
const AllPackages = "all"

// Kind identifies a manifest format.
type Kind string

const (
	// KindCargo is a Rust Cargo.toml manifest.
	KindCargo Kind = "cargo"

	// KindNPM is a package.json manifest.
	KindNPM Kind = "npm"
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	return string(k)
}

// node is the part of a manifest the walker needs.
type node struct {
	// version is the package version, empty when the manifest has none
	// (virtual workspace roots).
	version string

	// members are workspace member paths relative to the manifest directory.
	members []string
}

// format is implemented once per manifest file type.
type format interface {
	kind() Kind
	fileName() string
	parse(data []byte) (node, error)
	// rewrite returns data with the package version replaced. ok is false
	// when the manifest has no version field to replace.
	rewrite(data []byte, version string) (out []byte, ok bool, err error)
}

// formats lists supported formats in detection order.
var formats = []format{cargoFormat{}, npmFormat{}}

// Manifest is a package manifest (and its workspace) rooted at a directory.
type Manifest struct {
	dir    string
	format format
}

// Detect finds the manifest in dir. Cargo.toml takes precedence over
// package.json when both exist.
func Detect(dir string) (*Manifest, error) {
	for _, f := range formats {
		path := filepath.Join(dir, f.fileName())
		if _, err := os.Stat(path); err == nil {
			return &Manifest{dir: dir, format: f}, nil
		}
	}
	return nil, model.NewCLIError(model.ExitFilesystemError,
		fmt.Sprintf("no Cargo.toml or package.json found in %s", dir))
}

// Kind reports the manifest format.
func (m *Manifest) Kind() Kind {
	return m.format.kind()
}

// Path returns the root manifest file path.
func (m *Manifest) Path() string {
	return filepath.Join(m.dir, m.format.fileName())
}

// Versions returns the versions of the selected package manifests. Members
// are listed depth-first before the manifest that declares them, so the
// first entry is the version of the first selected member (or of the root
// package when there is no workspace).
func (m *Manifest) Versions(pkg string) ([]string, error) {
	var versions []string
	err := m.walk(pkg, func(_ string, _ []byte, n node) error {
		if n.version != "" {
			versions = append(versions, n.version)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return versions, nil
}

// CurrentVersion returns the first version from Versions.
func (m *Manifest) CurrentVersion(pkg string) (string, error) {
	versions, err := m.Versions(pkg)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", model.NewCLIError(model.ExitFilesystemError,
			fmt.Sprintf("no package version found in %s", m.Path()))
	}
	return versions[0], nil
}

// SetVersion writes version into every selected manifest that declares a
// version and returns the paths it modified, in write order. A manifest
// whose version was read but cannot be located for rewriting is an error,
// so a release never commits without its version bump. Nothing is written
// unless every manifest can be rewritten.
func (m *Manifest) SetVersion(pkg, version string) ([]string, error) {
	type update struct {
		path string
		data []byte
	}
	var updates []update
	err := m.walk(pkg, func(path string, data []byte, n node) error {
		out, ok, err := m.format.rewrite(data, version)
		if err != nil {
			return model.WrapCLIError(model.ExitFilesystemError, fmt.Sprintf("failed to update %s", path), err)
		}
		if !ok {
			if n.version != "" {
				return model.NewCLIError(model.ExitFilesystemError,
					fmt.Sprintf("failed to update %s: version %s is declared in a form semrel cannot rewrite", path, n.version))
			}
			return nil
		}
		updates = append(updates, update{path: path, data: out})
		return nil
	})
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(updates))
	for _, u := range updates {
		if err := writePreservingMode(u.path, u.data); err != nil {
			return written, model.WrapCLIError(model.ExitFilesystemError, fmt.Sprintf("failed to write %s", u.path), err)
		}
		written = append(written, u.path)
	}
	return written, nil
}

// visitFunc is called for each manifest, members before their parent.
type visitFunc func(path string, data []byte, n node) error

// walk visits the root manifest and its selected workspace members.
func (m *Manifest) walk(pkg string, visit visitFunc) error {
	if pkg == "" {
		pkg = AllPackages
	}
	visited := make(map[string]bool)
	return m.walkDir(m.dir, pkg, visited, visit)
}

func (m *Manifest) walkDir(dir, pkg string, visited map[string]bool, visit visitFunc) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return model.WrapCLIError(model.ExitFilesystemError, fmt.Sprintf("failed to resolve %s", dir), err)
	}
	if visited[abs] {
		return nil
	}
	visited[abs] = true

	path := filepath.Join(abs, m.format.fileName())
	data, err := os.ReadFile(path)
	if err != nil {
		return model.WrapCLIError(model.ExitFilesystemError, fmt.Sprintf("failed to read %s", path), err)
	}

	n, err := m.format.parse(data)
	if err != nil {
		return model.WrapCLIError(model.ExitFilesystemError, fmt.Sprintf("failed to parse %s", path), err)
	}

	members, err := expandMembers(abs, n.members, m.format.fileName())
	if err != nil {
		return err
	}
	for _, member := range members {
		if pkg != AllPackages && member.name != pkg {
			continue
		}
		if err := m.walkDir(member.dir, pkg, visited, visit); err != nil {
			return err
		}
	}

	return visit(path, data, n)
}

// member is a resolved workspace member.
type member struct {
	// name is the member path as written in the manifest, or the matched
	// path relative to the workspace root for glob entries.
	name string
	dir  string
}

// expandMembers resolves member entries (which may be globs) to directories
// that contain a manifest of the same format. Glob matches are sorted so
// the walk order is stable.
func expandMembers(root string, entries []string, fileName string) ([]member, error) {
	var out []member
	for _, entry := range entries {
		pattern := filepath.Join(root, filepath.FromSlash(entry))
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitFilesystemError,
				fmt.Sprintf("invalid workspace member pattern %q", entry), err)
		}
		if !hasGlobMeta(entry) {
			// Literal members must exist; a missing one is a broken workspace.
			out = append(out, member{name: entry, dir: pattern})
			continue
		}
		sort.Strings(matches)
		for _, match := range matches {
			if _, statErr := os.Stat(filepath.Join(match, fileName)); statErr != nil {
				continue
			}
			rel, relErr := filepath.Rel(root, match)
			if relErr != nil {
				rel = match
			}
			out = append(out, member{name: filepath.ToSlash(rel), dir: match})
		}
	}
	return out, nil
}

func hasGlobMeta(s string) bool {
	for _, c := range s {
		switch c {
		case '*', '?', '[':
			return true
		}
	}
	return false
}

// writePreservingMode overwrites path with data, keeping its permissions.
func writePreservingMode(path string, data []byte) error {
	mode := fs.FileMode(0o644)
	info, err := os.Stat(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}
