package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/semrel/internal/model"
)

// writeFile creates parent directories and writes content to dir/rel.
func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

const singleCrate = `[package]
name = "widget"
version = "0.4.0" # current
edition = "2021"

[dependencies]
serde = { version = "1.0.0", features = ["derive"] }
`

func TestDetect(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  Kind
	}{
		{name: "cargo", files: map[string]string{"Cargo.toml": singleCrate}, want: KindCargo},
		{name: "npm", files: map[string]string{"package.json": `{"version": "1.0.0"}`}, want: KindNPM},
		{
			name:  "cargo wins over npm",
			files: map[string]string{"Cargo.toml": singleCrate, "package.json": `{"version": "1.0.0"}`},
			want:  KindCargo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, dir, name, content)
			}

			m, err := Detect(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Kind())
		})
	}
}

func TestDetect_NoManifest(t *testing.T) {
	_, err := Detect(t.TempDir())
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitFilesystemError, cliErr.Code)
}

func TestCargo_SingleCrate(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Cargo.toml", singleCrate)

	m, err := Detect(dir)
	require.NoError(t, err)

	current, err := m.CurrentVersion(AllPackages)
	require.NoError(t, err)
	assert.Equal(t, "0.4.0", current)

	written, err := m.SetVersion(AllPackages, "0.4.1")
	require.NoError(t, err)
	assert.Len(t, written, 1)

	got := readFile(t, path)
	assert.Contains(t, got, `version = "0.4.1" # current`, "the trailing comment is preserved")
	assert.Contains(t, got, `serde = { version = "1.0.0"`, "dependency versions are untouched")
}

// TestCargo_Workspace checks member-before-root ordering, package
// selection and that a virtual root without a version is skipped.
func TestCargo_Workspace(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Cargo.toml", `[workspace]
members = ["core", "plugins/*"]
`)
	writeFile(t, dir, "core/Cargo.toml", "[package]\nname = \"core\"\nversion = \"1.2.0\"\n")
	writeFile(t, dir, "plugins/a/Cargo.toml", "[package]\nname = \"a\"\nversion = \"1.2.0\"\n")
	writeFile(t, dir, "plugins/b/Cargo.toml", "[package]\nname = \"b\"\nversion = \"0.9.0\"\n")
	// A directory without a manifest is not a member even if the glob matches it.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "plugins", "docs"), 0o755))

	m, err := Detect(dir)
	require.NoError(t, err)

	versions, err := m.Versions(AllPackages)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.2.0", "1.2.0", "0.9.0"}, versions)

	versions, err = m.Versions("plugins/b")
	require.NoError(t, err)
	assert.Equal(t, []string{"0.9.0"}, versions)

	written, err := m.SetVersion("core", "1.3.0")
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.Contains(t, readFile(t, filepath.Join(dir, "core", "Cargo.toml")), `version = "1.3.0"`)
	assert.Contains(t, readFile(t, filepath.Join(dir, "plugins", "a", "Cargo.toml")), `version = "1.2.0"`)
}

func TestCargo_WorkspaceCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Cargo.toml", `[package]
name = "root"
version = "2.0.0"

[workspace]
members = ["child"]
`)
	writeFile(t, dir, "child/Cargo.toml", `[package]
name = "child"
version = "2.0.1"

[workspace]
members = [".."]
`)

	m, err := Detect(dir)
	require.NoError(t, err)

	versions, err := m.Versions(AllPackages)
	require.NoError(t, err)
	assert.Equal(t, []string{"2.0.1", "2.0.0"}, versions, "each manifest is visited once")
}

func TestCargo_MissingMember(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Cargo.toml", "[workspace]\nmembers = [\"gone\"]\n")

	m, err := Detect(dir)
	require.NoError(t, err)

	_, err = m.Versions(AllPackages)
	assert.Error(t, err)
}

func TestCargo_InheritedVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Cargo.toml", "[package]\nname = \"x\"\nversion.workspace = true\n")

	m, err := Detect(dir)
	require.NoError(t, err)

	_, err = m.CurrentVersion(AllPackages)
	assert.Error(t, err, "an inherited version is not a concrete version")
}

func TestCargoRewrite_CRLF(t *testing.T) {
	in := "[package]\r\nname = \"x\"\r\nversion = \"0.1.0\"\r\n"

	out, ok, err := cargoFormat{}.rewrite([]byte(in), "0.2.0")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[package]\r\nname = \"x\"\r\nversion = \"0.2.0\"\r\n", string(out))
}

func TestCargoRewrite_PackageHeaderForms(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "plain", header: "[package]"},
		{name: "trailing comment", header: "[package] # the crate"},
		{name: "spaced", header: "[ package ]"},
		{name: "indented", header: "  [package]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeFile(t, dir, "Cargo.toml", tt.header+"\nname = \"x\"\nversion = \"0.1.0\"\n")

			m, err := Detect(dir)
			require.NoError(t, err)

			written, err := m.SetVersion(AllPackages, "0.1.1")
			require.NoError(t, err)
			assert.Equal(t, []string{path}, written)
			assert.Contains(t, readFile(t, path), `version = "0.1.1"`)
		})
	}
}

func TestCargoRewrite_LiteralString(t *testing.T) {
	out, ok, err := cargoFormat{}.rewrite([]byte("[package]\nversion = '0.1.0'\n"), "0.2.0")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[package]\nversion = '0.2.0'\n", string(out))
}

// TestCargo_UnrewritableVersion covers a version that toml reads but the
// line rewrite cannot find. SetVersion must fail and write nothing.
func TestCargo_UnrewritableVersion(t *testing.T) {
	dir := t.TempDir()
	member := writeFile(t, dir, "core/Cargo.toml", "[package]\nname = \"core\"\nversion = \"0.1.0\"\n")
	// A dotted key outside a [package] table header.
	writeFile(t, dir, "Cargo.toml", "package.name = \"root\"\npackage.version = \"0.1.0\"\n\n[workspace]\nmembers = [\"core\"]\n")

	m, err := Detect(dir)
	require.NoError(t, err)

	current, err := m.CurrentVersion(AllPackages)
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", current)

	written, err := m.SetVersion(AllPackages, "0.1.1")
	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitFilesystemError, cliErr.Code)
	assert.Empty(t, written)
	assert.Contains(t, readFile(t, member), `version = "0.1.0"`, "no manifest is written when one cannot be rewritten")
}

func TestNPM_VersionAndWorkspaces(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "package.json", `{
  // monorepo root
  "name": "acme",
  "version": "3.1.0",
  "dependencies": {"left-pad": "1.0.0"},
  "workspaces": ["packages/*"],
}
`)
	writeFile(t, dir, "packages/ui/package.json", `{"name": "ui", "version": "3.1.0"}`)

	m, err := Detect(dir)
	require.NoError(t, err)

	versions, err := m.Versions(AllPackages)
	require.NoError(t, err)
	assert.Equal(t, []string{"3.1.0", "3.1.0"}, versions)

	written, err := m.SetVersion(AllPackages, "3.2.0")
	require.NoError(t, err)
	assert.Len(t, written, 2)
	assert.Equal(t, root, written[1], "the root is written after its members")

	got := readFile(t, root)
	assert.Contains(t, got, `"version": "3.2.0"`)
	assert.Contains(t, got, "// monorepo root", "comments survive the rewrite")
}

func TestNPMWorkspaces_YarnForm(t *testing.T) {
	members, err := npmWorkspaces([]byte(`{"packages": ["a", "b"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, members)
}

func TestNPMRewrite(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
		ok   bool
	}{
		{name: "simple", doc: `{"version": "1.0.0"}`, want: `{"version": "1.1.0"}`, ok: true},
		{
			name: "nested key ignored",
			doc:  `{"engines": {"version": "9"}, "version": "2.0.0"}`,
			want: `{"engines": {"version": "9"}, "version": "1.1.0"}`,
			ok:   true,
		},
		{
			name: "value equal to key",
			doc:  `{"name": "version", "version": "3.0.0"}`,
			want: `{"name": "version", "version": "1.1.0"}`,
			ok:   true,
		},
		{
			name: "comments keep their offsets",
			doc:  "{\n  // \"version\": \"0\"\n  /* old */ \"version\": \"4.0.0\", // current\n}",
			want: "{\n  // \"version\": \"0\"\n  /* old */ \"version\": \"1.1.0\", // current\n}",
			ok:   true,
		},
		{
			name: "escaped quote",
			doc:  `{"description": "say \"version\"", "version": "5.0.0"}`,
			want: `{"description": "say \"version\"", "version": "1.1.0"}`,
			ok:   true,
		},
		{name: "absent", doc: `{"name": "x"}`, want: `{"name": "x"}`, ok: false},
		{name: "not a string", doc: `{"version": 1}`, want: `{"version": 1}`, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ok, err := npmFormat{}.rewrite([]byte(tt.doc), "1.1.0")
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, string(out))
		})
	}
}
