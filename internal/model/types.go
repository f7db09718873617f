package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// ChangeKind is the severity of a single commit. The numeric order of the
// constants is the severity order used for aggregation:
//
//	Breaking > Feature > Fix > Unannotated
//
// Aggregation is a plain max over this order, so the values must never be
// reordered.
type ChangeKind int

const (
	// KindUnannotated is a commit that does not affect versioning: either a
	// recognized non-release type (chore, docs, ...) or a message that does
	// not follow the convention at all.
	KindUnannotated ChangeKind = iota

	// KindFix is a bug fix ("fix:").
	KindFix

	// KindFeature is a new feature ("feat:").
	KindFeature

	// KindBreaking is a breaking change ("!" before the colon, or a
	// BREAKING CHANGE footer).
	KindBreaking
)

// kindNames maps each ChangeKind to its stable textual form. The text form is
// used in CLI output and JSON, so it must not change between releases.
var kindNames = map[ChangeKind]string{
	KindUnannotated: "unannotated",
	KindFix:         "fix",
	KindFeature:     "feature",
	KindBreaking:    "breaking",
}

// String returns the string representation of ChangeKind.
// This method satisfies the fmt.Stringer interface.
func (k ChangeKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// IsValid checks whether the ChangeKind value is one of the predefined kinds.
func (k ChangeKind) IsValid() bool {
	_, ok := kindNames[k]
	return ok
}

// MarshalText encodes the kind by name so plans serialize as
// {"dominantKind": "feature"} rather than a bare integer.
func (k ChangeKind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("invalid change kind: %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (k *ChangeKind) UnmarshalText(text []byte) error {
	parsed, err := ParseChangeKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseChangeKind converts a string to a ChangeKind.
// Returns an error if the string does not match any valid kind.
func ParseChangeKind(s string) (ChangeKind, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for kind, name := range kindNames {
		if name == want {
			return kind, nil
		}
	}
	return KindUnannotated, fmt.Errorf("invalid change kind: %q (valid: breaking, feature, fix, unannotated)", s)
}

// MaxKind returns the more severe of two kinds.
func MaxKind(a, b ChangeKind) ChangeKind {
	if a > b {
		return a
	}
	return b
}

// CommitRecord is a raw commit as read from version control. It is produced
// by the repository reader and never mutated afterwards.
type CommitRecord struct {
	// ID is the full commit hash.
	ID string `json:"id"`

	// Message is the full commit message: subject line plus optional body.
	Message string `json:"message"`

	// Author is the commit author in "Name <email>" form.
	Author string `json:"author"`

	// Timestamp is the author date.
	Timestamp time.Time `json:"timestamp"`
}

// ShortID returns the first 7 characters of the commit hash, the same
// abbreviation git uses by default.
func (c CommitRecord) ShortID() string {
	if len(c.ID) > 7 {
		return c.ID[:7]
	}
	return c.ID
}

// FirstLine returns the first line of the commit message.
func (c CommitRecord) FirstLine() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(subject)
}

// ClassifiedCommit is a CommitRecord annotated with its ChangeKind and the
// parts of the conventional header used for display.
type ClassifiedCommit struct {
	CommitRecord

	// Kind is the severity of this commit.
	Kind ChangeKind `json:"kind"`

	// Scope is the text inside the header parentheses, empty when absent.
	Scope string `json:"scope,omitempty"`

	// Subject is the cleaned display text (header prefix removed).
	Subject string `json:"subject"`
}

// ReleasePlan is the engine's complete output for one invocation.
//
// NextVersion is nil if and only if DominantKind is KindUnannotated,
// which means "no release".
type ReleasePlan struct {
	// CurrentVersion is the version read from the package manifest.
	CurrentVersion *semver.Version `json:"currentVersion"`

	// NextVersion is the computed release version, or nil for no release.
	NextVersion *semver.Version `json:"nextVersion"`

	// DominantKind is the maximum ChangeKind across eligible commits.
	DominantKind ChangeKind `json:"dominantKind"`

	// Commits holds every classified commit that survived the release-marker
	// filter, in the order the repository reader supplied them (newest first).
	Commits []ClassifiedCommit `json:"commits"`
}

// HasRelease reports whether the plan calls for a new release.
func (p *ReleasePlan) HasRelease() bool {
	return p.NextVersion != nil
}

// ChangelogSection is one group of changelog entries under a heading.
type ChangelogSection struct {
	// Kind is the ChangeKind this section collects.
	Kind ChangeKind

	// Heading is the display title, e.g. "Bug Fixes".
	Heading string

	// Entries are rendered display lines in input order.
	Entries []string
}

// Signature identifies the committer used for release commits and tags.
type Signature struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// IsComplete reports whether both name and email are set.
func (s Signature) IsComplete() bool {
	return strings.TrimSpace(s.Name) != "" && strings.TrimSpace(s.Email) != ""
}

// String formats the signature as "Name <email>".
func (s Signature) String() string {
	return fmt.Sprintf("%s <%s>", s.Name, s.Email)
}
