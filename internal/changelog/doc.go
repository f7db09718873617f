// Package changelog renders release notes from classified commits and
// merges them into an existing changelog file.
//
// Rendering is deterministic: the same commits, versions and date always
// produce byte-identical markdown. The package never rewrites text it did
// not generate; a new release section is only ever prepended above the
// prior content.
//
// An HTML preview of the markdown is available through HTML, which uses
// github.com/yuin/goldmark.
package changelog
