// Package bump computes the next semantic version from the dominant
// ChangeKind of a release.
package bump

import (
	"github.com/Masterminds/semver/v3"

	"github.com/shinji-kodama/semrel/internal/model"
)

// Next returns the version that follows current for a release of the given
// kind, or nil when kind calls for no release.
//
// Major version zero is the initial development phase: breaking changes
// bump the minor component and features bump the patch component, so the
// major version stays at zero until the public API is declared stable.
//
//	major == 0: fix -> patch, feature -> patch, breaking -> minor
//	major >= 1: fix -> patch, feature -> minor, breaking -> major
//
// The input is never modified. The result carries no prerelease or build
// metadata.
func Next(current *semver.Version, kind model.ChangeKind) *semver.Version {
	if current == nil {
		return nil
	}
	major, minor, patch := current.Major(), current.Minor(), current.Patch()

	if kind == model.KindUnannotated || !kind.IsValid() {
		return nil
	}

	if major == 0 {
		switch kind {
		case model.KindFix, model.KindFeature:
			return semver.New(major, minor, patch+1, "", "")
		case model.KindBreaking:
			return semver.New(major, minor+1, 0, "", "")
		}
		return nil
	}

	switch kind {
	case model.KindFix:
		return semver.New(major, minor, patch+1, "", "")
	case model.KindFeature:
		return semver.New(major, minor+1, 0, "", "")
	case model.KindBreaking:
		return semver.New(major+1, 0, 0, "", "")
	}
	return nil
}

// Parse parses a manifest version string. A leading "v" is accepted.
func Parse(raw string) (*semver.Version, error) {
	return semver.NewVersion(raw)
}
