// Package repo provides the git operations semrel needs around a release:
// reading commits since the last release tag, resolving the committer
// signature, committing the version bump, tagging and pushing.
//
// All Git operations are performed via os/exec calls to the git binary,
// rather than using a Git library like go-git. This approach:
//   - Avoids CGO dependencies (libgit2)
//   - Uses the exact same Git behavior the user sees in their terminal,
//     including their credential helpers and config scopes
//
// Every failure is wrapped in model.CLIError with ExitGitError so the CLI
// can report which boundary failed.
package repo
