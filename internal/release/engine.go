// Package release is the release decision engine. It turns the current
// version and the commits since the last release into a ReleasePlan.
//
// The engine performs no I/O and holds no state. Calling Decide twice with
// the same input returns equal plans, which is what makes dry runs safe.
package release

import (
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/shinji-kodama/semrel/internal/analyzer"
	"github.com/shinji-kodama/semrel/internal/bump"
	"github.com/shinji-kodama/semrel/internal/changelog"
	"github.com/shinji-kodama/semrel/internal/model"
)

// Decide filters out release-marker commits, classifies the rest, derives
// the dominant kind and computes the next version.
//
// records must be the complete, ordered commit list (newest first); the
// plan keeps that order.
func Decide(current *semver.Version, records []model.CommitRecord) model.ReleasePlan {
	commits := analyzer.Analyze(records)
	dominant := analyzer.Aggregate(commits)

	return model.ReleasePlan{
		CurrentVersion: current,
		NextVersion:    bump.Next(current, dominant),
		DominantKind:   dominant,
		Commits:        commits,
	}
}

// Changelog renders the plan's changelog section. It returns an empty
// string when the plan has no release.
func Changelog(plan model.ReleasePlan, date time.Time) string {
	if !plan.HasRelease() {
		return ""
	}
	from := ""
	if plan.CurrentVersion != nil {
		from = plan.CurrentVersion.String()
	}
	return changelog.Render(plan.Commits, from, plan.NextVersion.String(), date)
}
