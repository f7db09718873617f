package analyzer

import (
	"fmt"
	"regexp"
	"strings"
)

// ReleaseCommitPrefix starts the subject of every version-bump commit semrel
// creates. The same constant drives both writing the commit and recognizing
// it later, so the two can never drift apart.
const ReleaseCommitPrefix = "Bump version to "

// releaseMarkerRegex matches "Bump version to 1.2.3" with an optional "v"
// and optional prerelease/build suffix. Matching is case-insensitive.
var releaseMarkerRegex = regexp.MustCompile(
	`(?i)^` + regexp.QuoteMeta(ReleaseCommitPrefix) + `v?\d+\.\d+\.\d+(?:[-+][0-9A-Za-z.+-]*)?\s*$`,
)

// ReleaseCommitMessage returns the subject used for the version-bump commit.
func ReleaseCommitMessage(version string) string {
	return fmt.Sprintf("%s%s", ReleaseCommitPrefix, version)
}

// IsReleaseMarker reports whether a commit message was produced by a prior
// automated release. Such commits must never feed the next release decision,
// or every release would trigger another one.
func IsReleaseMarker(message string) bool {
	subject, _, _ := strings.Cut(normalizeNewlines(message), "\n")
	return releaseMarkerRegex.MatchString(strings.TrimSpace(subject))
}
