package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/semrel/internal/bump"
	"github.com/shinji-kodama/semrel/internal/changelog"
	"github.com/shinji-kodama/semrel/internal/config"
	"github.com/shinji-kodama/semrel/internal/manifest"
	"github.com/shinji-kodama/semrel/internal/model"
	"github.com/shinji-kodama/semrel/internal/release"
	"github.com/shinji-kodama/semrel/internal/repo"
)

// Changelog preview formats accepted by --format.
const (
	formatText = "text"
	formatHTML = "html"
)

// now is the clock used for changelog dates.
var now = time.Now

// session bundles what every command needs: the resolved configuration,
// the repository and its manifest.
type session struct {
	cfg      *config.Config
	repo     *repo.Repository
	manifest *manifest.Manifest
}

// decision is a computed release plan plus the values derived from it.
type decision struct {
	plan model.ReleasePlan

	// since is the tag the commit range starts after, "" for the whole
	// history.
	since string

	// section is the rendered changelog section, "" without a release.
	section string
}

// openSession opens the repository at flags.path and builds the Config
// with the repository's top-level directory as its root.
func openSession(cmd *cobra.Command, flags *runFlags) (*session, error) {
	ctx := cmd.Context()

	r, err := repo.Open(ctx, flags.path)
	if err != nil {
		return nil, err
	}
	VerboseLog("Repository: %s", r.Path)

	overrides := config.Overrides{
		RepositoryPath: r.Path,
		Branch:         flags.branch,
		Package:        flags.pkg,
		Summarize:      flags.summarize,
	}
	if cmd.Flags().Changed("write") {
		overrides.Write = &flags.write
	}
	if cmd.Flags().Changed("release") {
		overrides.Release = &flags.release
	}

	cfg, err := config.Load(os.LookupEnv, overrides)
	if err != nil {
		return nil, err
	}
	if cfg.ConfigFile != "" {
		VerboseLog("Loaded configuration from %s", cfg.ConfigFile)
	}

	m, err := manifest.Detect(r.Path)
	if err != nil {
		return nil, err
	}
	VerboseLog("Manifest: %s (%s)", m.Path(), m.Kind())

	return &session{cfg: cfg, repo: r, manifest: m}, nil
}

// decide reads the current version and the commits since the last
// release tag and runs the release engine over them.
func (s *session) decide(ctx context.Context) (*decision, error) {
	raw, err := s.manifest.CurrentVersion(s.cfg.Package)
	if err != nil {
		return nil, err
	}
	current, err := bump.Parse(raw)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitFilesystemError,
			fmt.Sprintf("%s holds an invalid version %q", s.manifest.Path(), raw), err)
	}
	Info("Current version: %s", current)

	since, err := s.repo.LatestTag(ctx, s.cfg.TagPrefix)
	if err != nil {
		return nil, err
	}
	if since == "" {
		VerboseLog("No previous release tag; analyzing the whole history")
	} else {
		VerboseLog("Analyzing commits since %s", since)
	}

	records, err := s.repo.CommitsSince(ctx, since)
	if err != nil {
		return nil, err
	}

	Info("Analyzing commits")
	plan := release.Decide(current, records)
	VerboseLog("%d commits analyzed, %d after removing release commits", len(records), len(plan.Commits))

	return &decision{
		plan:    plan,
		since:   since,
		section: release.Changelog(plan, now()),
	}, nil
}

// changelogFile returns the configured changelog file.
func (s *session) changelogFile() changelog.File {
	return changelog.NewFile(s.repo.Path, s.cfg.ChangelogFile)
}

// renderPreview formats a changelog section for display.
func renderPreview(section, format string) (string, error) {
	if format == formatHTML {
		return changelog.HTML(section)
	}
	return section, nil
}

func validateFormat(format string) error {
	switch format {
	case formatText, formatHTML:
		return nil
	default:
		return model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("invalid --format %q: valid values are text, html", format))
	}
}
