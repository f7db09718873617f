package repo

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/shinji-kodama/semrel/internal/model"
)

// Field and record separators used in the `git log` format string. Commit
// messages cannot contain these control characters in practice, so they
// split the output unambiguously.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// logFormat yields: hash, "author <email>", ISO-8601 author date, raw body.
const logFormat = "--format=%H%x1f%an <%ae>%x1f%aI%x1f%B%x1e"

// Repository is a git working tree on disk.
type Repository struct {
	// Path is the absolute path to the top-level directory of the
	// working tree.
	Path string
}

// Open returns the repository containing path. It fails with ExitGitError
// when path is not inside a git working tree.
func Open(ctx context.Context, path string) (*Repository, error) {
	out, err := runGit(ctx, path, nil, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGitError,
			fmt.Sprintf("could not open the git repository at %s", path), err)
	}
	return &Repository{Path: strings.TrimSpace(out)}, nil
}

// CurrentBranch returns the short name of the checked-out branch.
// A detached HEAD is reported as an error because releases only happen
// from a named branch.
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	branch := strings.TrimSpace(out)
	if branch == "HEAD" {
		return "", model.NewCLIError(model.ExitGitError, "HEAD is detached; could not determine current branch")
	}
	return branch, nil
}

// LatestTag returns the most recent tag reachable from HEAD whose name
// starts with prefix. It returns "" without error when no such tag exists,
// which means the whole history is eligible for the first release.
func (r *Repository) LatestTag(ctx context.Context, prefix string) (string, error) {
	out, err := r.git(ctx, "describe", "--tags", "--abbrev=0", "--match", prefix+"*", "HEAD")
	if err != nil {
		// git describe reports "No names found" / "No tags can describe"
		// when there is nothing to describe HEAD with.
		msg := err.Error()
		if strings.Contains(msg, "No names found") || strings.Contains(msg, "No tags can describe") ||
			strings.Contains(msg, "cannot describe") {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CommitsSince lists commits reachable from HEAD but not from sinceRef,
// newest first. An empty sinceRef lists the whole history. Merge commits
// are included; the engine classifies them like any other message.
func (r *Repository) CommitsSince(ctx context.Context, sinceRef string) ([]model.CommitRecord, error) {
	rangeSpec := "HEAD"
	if sinceRef != "" {
		rangeSpec = sinceRef + "..HEAD"
	}

	out, err := r.git(ctx, "log", logFormat, rangeSpec)
	if err != nil {
		return nil, err
	}
	return parseLog(out)
}

// RemoteURL returns the fetch URL of the named remote.
func (r *Repository) RemoteURL(ctx context.Context, remote string) (string, error) {
	out, err := r.git(ctx, "remote", "get-url", remote)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CommitFiles stages paths and records a commit with the given message,
// authored and committed as sig.
func (r *Repository) CommitFiles(ctx context.Context, sig model.Signature, message string, paths ...string) error {
	if len(paths) == 0 {
		return model.NewCLIError(model.ExitGitError, "no files to commit")
	}

	addArgs := append([]string{"add", "--"}, paths...)
	if _, err := r.git(ctx, addArgs...); err != nil {
		return err
	}

	_, err := runGit(ctx, r.Path, signatureEnv(sig), "commit", "-m", message)
	return err
}

// Tag creates an annotated tag at HEAD. The message is stored verbatim:
// git's default cleanup would strip the markdown headings as comments.
func (r *Repository) Tag(ctx context.Context, sig model.Signature, name, message string) error {
	_, err := runGit(ctx, r.Path, signatureEnv(sig), "tag", "-a", "--cleanup=verbatim", name, "-m", message)
	return err
}

// PushAuth holds optional HTTP credentials for pushing to an https remote.
// When empty, git's own credential configuration is used.
type PushAuth struct {
	Username string
	Token    string
}

// Push pushes HEAD to branch on remote together with the given tag.
func (r *Repository) Push(ctx context.Context, remote, branch, tag string, auth PushAuth) error {
	var args []string
	if auth.Token != "" {
		user := auth.Username
		if user == "" {
			user = "x-access-token"
		}
		// An extra header keeps the token out of the remote URL and therefore
		// out of .git/config and of git's own error messages.
		cred := base64.StdEncoding.EncodeToString([]byte(user + ":" + auth.Token))
		args = append(args, "-c", "http.extraHeader=Authorization: Basic "+cred)
	}
	args = append(args, "push", remote, "HEAD:refs/heads/"+branch, "refs/tags/"+tag)

	_, err := r.git(ctx, args...)
	return err
}

// git runs a git command in the repository with the process environment.
func (r *Repository) git(ctx context.Context, args ...string) (string, error) {
	return runGit(ctx, r.Path, nil, args...)
}

// signatureEnv returns the environment variables that make git use sig for
// both author and committer.
func signatureEnv(sig model.Signature) []string {
	return []string{
		"GIT_AUTHOR_NAME=" + sig.Name,
		"GIT_AUTHOR_EMAIL=" + sig.Email,
		"GIT_COMMITTER_NAME=" + sig.Name,
		"GIT_COMMITTER_EMAIL=" + sig.Email,
	}
}

// runGit executes a git command with the given arguments in the specified directory.
//
// It captures both stdout and stderr. On success, it returns the stdout
// output. On failure, it returns a model.CLIError with ExitGitError code,
// including the stderr output in the error message for debugging.
//
// extraEnv entries are appended to the current process environment.
func runGit(ctx context.Context, repoPath string, extraEnv []string, args ...string) (string, error) {
	// -C makes git change into repoPath itself, so the process working
	// directory never changes.
	fullArgs := append([]string{"-C", repoPath}, args...)

	// #nosec G204 -- args are constructed internally, not from user input
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("git %s failed", gitCommandName(args))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitGitError, message, err)
	}

	return stdout.String(), nil
}

// gitCommandName returns the subcommand for error messages, skipping
// leading "-c key=value" pairs so credentials never end up in logs.
func gitCommandName(args []string) string {
	for i := 0; i < len(args); i++ {
		if args[i] == "-c" {
			i++
			continue
		}
		return strings.Join(args[i:], " ")
	}
	return ""
}

// parseLog splits `git log` output produced with logFormat into records.
func parseLog(output string) ([]model.CommitRecord, error) {
	var records []model.CommitRecord

	for _, raw := range strings.Split(output, recordSep) {
		raw = strings.TrimLeft(raw, "\n")
		if strings.TrimSpace(raw) == "" {
			continue
		}

		parts := strings.SplitN(raw, fieldSep, 4)
		if len(parts) != 4 {
			return nil, model.WrapCLIError(model.ExitGitError, "unexpected git log output",
				errors.New("record has fewer than 4 fields"))
		}

		ts, err := time.Parse(time.RFC3339, strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, model.WrapCLIError(model.ExitGitError,
				fmt.Sprintf("invalid commit date for %s", parts[0]), err)
		}

		records = append(records, model.CommitRecord{
			ID:        strings.TrimSpace(parts[0]),
			Author:    strings.TrimSpace(parts[1]),
			Timestamp: ts,
			Message:   strings.TrimRight(parts[3], "\n"),
		})
	}

	return records, nil
}
