package manifest

import (
	"bytes"
	"regexp"

	"github.com/BurntSushi/toml"
)

// cargoVersionLine matches a `version = "x.y.z"` assignment line, with a
// basic or a literal string. The prefix (indentation, key, `=` and opening
// quote) and suffix are kept when the value is replaced.
var cargoVersionLine = regexp.MustCompile(`^(\s*version\s*=\s*(?:"|'))([^"']*)((?:"|').*)$`)

// cargoTableHeader matches any TOML table header, e.g. [package] or
// [[bin]].
var cargoTableHeader = regexp.MustCompile(`^\s*\[`)

// cargoPackageHeader matches the [package] header, including the spaced
// `[ package ]` form and a trailing comment.
var cargoPackageHeader = regexp.MustCompile(`^\[\s*package\s*\]\s*(?:#.*)?$`)

// cargoManifest is the subset of Cargo.toml the walker reads.
type cargoManifest struct {
	Package *struct {
		Name string `toml:"name"`
		// Version is usually a string, but can be a table such as
		// { workspace = true } when the version is inherited.
		Version any `toml:"version"`
	} `toml:"package"`

	Workspace *struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
}

type cargoFormat struct{}

func (cargoFormat) kind() Kind       { return KindCargo }
func (cargoFormat) fileName() string { return "Cargo.toml" }

func (cargoFormat) parse(data []byte) (node, error) {
	var m cargoManifest
	if _, err := toml.Decode(string(data), &m); err != nil {
		return node{}, err
	}

	var n node
	if m.Package != nil {
		if v, ok := m.Package.Version.(string); ok {
			n.version = v
		}
	}
	if m.Workspace != nil {
		n.members = m.Workspace.Members
	}
	return n, nil
}

// rewrite replaces the first version assignment inside the [package]
// table. Dependency tables are never touched even when they carry an
// inline version key.
func (cargoFormat) rewrite(data []byte, version string) ([]byte, bool, error) {
	lines := bytes.SplitAfter(data, []byte("\n"))
	inPackage := false

	for i, line := range lines {
		trimmed := bytes.TrimSpace(line)
		if cargoTableHeader.Match(trimmed) {
			inPackage = cargoPackageHeader.Match(trimmed)
			continue
		}
		if !inPackage {
			continue
		}

		body, eol := splitEOL(line)
		m := cargoVersionLine.FindSubmatch(body)
		if m == nil {
			continue
		}

		var out bytes.Buffer
		out.Write(m[1])
		out.WriteString(version)
		out.Write(m[3])
		out.Write(eol)
		lines[i] = out.Bytes()
		return bytes.Join(lines, nil), true, nil
	}

	return data, false, nil
}

// splitEOL separates a line from its trailing "\n" or "\r\n".
func splitEOL(line []byte) (body, eol []byte) {
	switch {
	case bytes.HasSuffix(line, []byte("\r\n")):
		return line[:len(line)-2], line[len(line)-2:]
	case bytes.HasSuffix(line, []byte("\n")):
		return line[:len(line)-1], line[len(line)-1:]
	default:
		return line, nil
	}
}
