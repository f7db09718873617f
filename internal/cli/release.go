package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/semrel/internal/analyzer"
	"github.com/shinji-kodama/semrel/internal/config"
	"github.com/shinji-kodama/semrel/internal/hosting"
	"github.com/shinji-kodama/semrel/internal/manifest"
	"github.com/shinji-kodama/semrel/internal/model"
	"github.com/shinji-kodama/semrel/internal/publish"
	"github.com/shinji-kodama/semrel/internal/repo"
	"github.com/shinji-kodama/semrel/internal/summary"
)

// tagSettleDelay is the pause between pushing the tag and creating the
// GitHub release, giving the host time to index the new tag.
var tagSettleDelay = time.Second

// committerHelp explains where the release commit's identity comes from.
const committerHelp = `Failed to get the committer's name and email address.
semrel looks them up in this order:
  1. the GIT_COMMITTER_NAME and GIT_COMMITTER_EMAIL environment variables
  2. user.name and user.email in the repository's git config
  3. user.name and user.email in the user's global git config
  4. user.name and user.email in the system git config`

// releaseResult is the JSON document printed by the root command.
type releaseResult struct {
	Released       bool     `json:"released"`
	DryRun         bool     `json:"dryRun"`
	CurrentVersion string   `json:"currentVersion,omitempty"`
	NextVersion    string   `json:"nextVersion,omitempty"`
	Tag            string   `json:"tag,omitempty"`
	Files          []string `json:"files,omitempty"`
	Pushed         bool     `json:"pushed"`
	GitHubRelease  string   `json:"githubRelease,omitempty"`
	Crate          bool     `json:"cratePublished"`
	Image          string   `json:"image,omitempty"`
	Changelog      string   `json:"changelog,omitempty"`
	Reason         string   `json:"reason,omitempty"`
}

// runRelease is the release pipeline behind the root command.
//
// Order of operations:
//  1. release branch check and preflight warnings
//  2. version decision (exits cleanly when there is nothing to release)
//  3. dry run: print the changelog and stop
//  4. resolve the committer, write manifests and changelog, commit, tag
//  5. release mode: push, GitHub release, crates.io, container image
func runRelease(cmd *cobra.Command, flags *runFlags) error {
	ctx := cmd.Context()

	s, err := openSession(cmd, flags)
	if err != nil {
		return err
	}
	cfg := s.cfg
	result := &releaseResult{DryRun: !cfg.Write}

	branch, err := s.repo.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if branch != cfg.Branch {
		Info("Current branch is '%s', releases are only done from branch '%s'", branch, cfg.Branch)
		Info("No release done from a pull request either.")
		result.Reason = fmt.Sprintf("not on release branch %s", cfg.Branch)
		return printReleaseResult(cmd, result)
	}

	remote, remoteErr := s.resolveRemote(ctx)

	Info("Performing preflight checks now")
	warnings := config.Preflight(cfg, remoteErr)
	if len(warnings) == 0 {
		Info("Checks done. Everything is ok")
	}
	for _, w := range warnings {
		Warn("%s", w)
	}

	d, err := s.decide(ctx)
	if err != nil {
		return err
	}
	plan := d.plan
	result.CurrentVersion = plan.CurrentVersion.String()

	verb := "would be"
	if cfg.Write {
		verb = "will be"
	}
	Info("Commits analyzed. Bump %s %s", verb, plan.DominantKind)

	if !plan.HasRelease() {
		Info("No version bump. Nothing to do.")
		result.Reason = "no releasable commits"
		return printReleaseResult(cmd, result)
	}

	next := plan.NextVersion.String()
	result.NextVersion = next
	result.Tag = cfg.TagName(next)
	result.Changelog = d.section

	if !cfg.Write {
		Info("New version would be: %s", next)
		Info("Would write the following Changelog:")
		if !IsJSONOutput() {
			preview, err := renderPreview(d.section, flags.format)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "====================================")
			fmt.Fprint(out, preview)
			fmt.Fprintln(out, "====================================")
		}
		Info("Would create annotated git tag %s", result.Tag)
		return printReleaseResult(cmd, result)
	}

	if err := s.writeRelease(ctx, d, result); err != nil {
		return err
	}

	if cfg.Release {
		if err := s.publishRelease(ctx, d, remote, result); err != nil {
			return err
		}
	}

	result.Released = true
	return printReleaseResult(cmd, result)
}

// writeRelease performs the local, repository-modifying half of a release.
// The committer is resolved before anything is written.
func (s *session) writeRelease(ctx context.Context, d *decision, result *releaseResult) error {
	cfg := s.cfg
	next := d.plan.NextVersion.String()

	sig, err := repo.ResolveSignature(ctx, s.repo.DefaultSignatureProviders()...)
	if err != nil {
		if errors.Is(err, repo.ErrNoSignature) {
			return model.WrapCLIError(model.ExitSignatureError, committerHelp, repo.ErrNoSignature)
		}
		return err
	}
	VerboseLog("Committing as %s", sig)

	Info("New version: %s", next)

	written, err := s.manifest.SetVersion(cfg.Package, next)
	if err != nil {
		return err
	}
	for _, f := range written {
		VerboseLog("Updated %s", f)
	}

	Info("Writing Changelog")
	file := s.changelogFile()
	if err := file.Prepend(d.section); err != nil {
		return model.WrapCLIError(model.ExitFilesystemError, "failed to write the changelog", err)
	}

	files := append(written, file.Path)

	if cfg.Release && s.manifest.Kind() == manifest.KindCargo {
		Info("Updating lockfile")
		if err := publish.NewCargo(s.repo.Path).UpdateLockfile(ctx); err != nil {
			ErrorLog("`cargo fetch` failed: %v", err)
		}
	}
	if lock := s.lockfile(); lock != "" {
		files = append(files, lock)
	}
	result.Files = relativeTo(s.repo.Path, files)

	if err := s.repo.CommitFiles(ctx, sig, analyzer.ReleaseCommitMessage(next), files...); err != nil {
		return err
	}

	Info("Creating annotated git tag")
	if err := s.repo.Tag(ctx, sig, result.Tag, d.section); err != nil {
		return err
	}
	return nil
}

// publishRelease performs the outward-facing half of a release: push,
// hosted release and registry uploads. A failed hosted release or summary
// only warns; a failed push or registry upload aborts.
func (s *session) publishRelease(ctx context.Context, d *decision, remote *config.Remote, result *releaseResult) error {
	cfg := s.cfg
	next := d.plan.NextVersion.String()

	if remote == nil {
		Info("No %s remote. Skipping push and GitHub release", cfg.Remote)
	} else {
		Info("Pushing new commit and tag")
		auth := repo.PushAuth{Username: cfg.GitHubUsername, Token: cfg.GitHubToken}
		if !strings.HasPrefix(remote.URL, "https://") {
			auth = repo.PushAuth{}
		}
		if err := s.repo.Push(ctx, cfg.Remote, cfg.Branch, result.Tag, auth); err != nil {
			return err
		}
		result.Pushed = true

		Info("Waiting a tiny bit, so GitHub can store the git tag")
		if err := settle(ctx, tagSettleDelay); err != nil {
			return err
		}

		s.releaseOnGitHub(ctx, d, remote, result)
	}

	if s.manifest.Kind() == manifest.KindCargo && cfg.CanPublishCargo() {
		cargo := publish.NewCargo(s.repo.Path)
		Info("Package crate")
		if err := cargo.Package(ctx); err != nil {
			ErrorLog("`cargo package` failed: %v", err)
		}
		Info("Publishing crate on crates.io")
		if err := cargo.Publish(ctx, cfg.CargoToken); err != nil {
			return err
		}
		result.Crate = true
	}

	if cfg.CanPublishDocker() {
		ref, err := s.publishImage(ctx, next)
		if err != nil {
			return err
		}
		result.Image = ref
	}

	name := filepath.Base(s.repo.Path)
	if remote != nil && remote.Repo != "" {
		name = remote.Repo
	}
	Info("%s v%s is released. 🚀🚀🚀", name, next)
	return nil
}

// releaseOnGitHub creates the hosted release when the remote is on GitHub
// and a token is available. Failures are logged, not returned: the tag is
// already pushed and the release can be created by hand.
func (s *session) releaseOnGitHub(ctx context.Context, d *decision, remote *config.Remote, result *releaseResult) {
	cfg := s.cfg
	if !remote.IsGitHub() {
		Info("Project not hosted on GitHub. Skipping release step")
		return
	}
	if cfg.GitHubToken == "" {
		Info("GH_TOKEN is not set. Skipping release step")
		return
	}

	body := d.section
	if cfg.CanSummarize() {
		body = summary.ReleaseBody(s.highlights(ctx, d.section), d.section)
	}

	gh, err := hosting.NewGitHub(cfg.GitHubToken, "")
	if err != nil {
		ErrorLog("%v", err)
		return
	}

	Info("Creating GitHub release")
	url, err := gh.CreateRelease(ctx, hosting.Release{
		Owner:  remote.Owner,
		Repo:   remote.Repo,
		Tag:    result.Tag,
		Target: cfg.Branch,
		Body:   body,
	})
	if err != nil {
		ErrorLog("Failed to create GitHub release: %v", err)
		return
	}
	result.GitHubRelease = url
	VerboseLog("GitHub release: %s", url)
}

// settle waits for d or until ctx is done, whichever comes first.
func settle(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// highlights asks the summarizer for release highlights. Any failure
// yields "" so the release body falls back to the plain changelog.
func (s *session) highlights(ctx context.Context, section string) string {
	client, err := summary.NewOpenAI(summary.Settings{
		APIKey:  s.cfg.OpenAIAPIKey,
		Model:   s.cfg.SummaryModel,
		BaseURL: s.cfg.SummaryBaseURL,
	})
	if err != nil {
		Warn("%v", err)
		return ""
	}

	Info("Generating release highlights with %s", s.cfg.SummaryModel)
	text, err := summary.Highlights(ctx, client, section)
	if err != nil {
		Warn("%v", err)
		return ""
	}
	return text
}

// publishImage retags and pushes the configured container image.
func (s *session) publishImage(ctx context.Context, version string) (string, error) {
	cfg := s.cfg

	d, err := publish.NewDocker()
	if err != nil {
		return "", err
	}
	defer func() { _ = d.Close() }()

	if err := d.Ping(ctx); err != nil {
		return "", err
	}
	if verbose {
		d.Progress = logOut
	}

	Info("Publishing container image %s:%s", cfg.DockerImage, version)
	return d.PublishImage(ctx, cfg.DockerImage, version, publish.RegistryAuth{
		Username:      cfg.DockerUsername,
		Password:      cfg.DockerPassword,
		ServerAddress: cfg.DockerRegistry,
	})
}

// resolveRemote looks up and parses the push remote. A missing remote is
// returned as an error the caller treats as a warning. GitHub credentials
// are dropped for remotes that are not on GitHub.
func (s *session) resolveRemote(ctx context.Context) (*config.Remote, error) {
	url, err := s.repo.RemoteURL(ctx, s.cfg.Remote)
	if err != nil {
		s.cfg.GitHubUsername, s.cfg.GitHubToken = "", ""
		return nil, err
	}

	remote, err := config.ParseRemote(url)
	if err != nil {
		// Local paths and other host-less URLs can still be pushed to;
		// they just cannot have a hosted release.
		Warn("Could not extract user and repository name from %s: %v", url, err)
		remote = config.Remote{URL: url}
	}
	if !remote.IsGitHub() {
		s.cfg.GitHubUsername, s.cfg.GitHubToken = "", ""
	}
	VerboseLog("Remote %s: %s on %s", s.cfg.Remote, remote, remote.Host)
	return &remote, nil
}

// lockfile returns the lockfile next to the root manifest when it exists.
func (s *session) lockfile() string {
	name := "Cargo.lock"
	if s.manifest.Kind() == manifest.KindNPM {
		name = "package-lock.json"
	}
	path := filepath.Join(filepath.Dir(s.manifest.Path()), name)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// relativeTo converts paths to repository-relative slash paths for display.
func relativeTo(root string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if rel, err := filepath.Rel(root, p); err == nil {
			p = rel
		}
		out = append(out, filepath.ToSlash(p))
	}
	return out
}

// printReleaseResult prints the JSON result document in --json mode.
func printReleaseResult(cmd *cobra.Command, result *releaseResult) error {
	if !IsJSONOutput() {
		return nil
	}
	return printJSON(cmd.OutOrStdout(), result)
}
