// Package cli implements the cobra-based CLI for semrel.
//
// The root command runs the release pipeline. The plan and changelog
// subcommands expose the read-only parts of it (version decision and
// changelog preview) and never modify the repository. This file defines
// the root command, its flags and exit code handling.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/semrel/internal/model"
)

// Global flag variables shared across all subcommands.
// They are bound to persistent flags on the root command, so plan and
// changelog see the same values without declaring them again.
var (
	// jsonOutput switches result output to JSON for machine consumption.
	// Progress and warnings stay on stderr in both modes; only the final
	// document on stdout changes shape.
	jsonOutput bool

	// verbose enables [verbose] trace lines on stderr, such as the files
	// written, the commit range and the committer identity.
	verbose bool
)

// Version, Commit and Date are set at build time via ldflags.
// They are injected from the main package and shown by --version.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// runFlags holds the values of the flags that select the repository and
// shape the run. Write and release are kept as raw answers and only
// forwarded to config when the user set them.
type runFlags struct {
	// path is any directory inside the repository; it is resolved to the
	// top-level directory when the repository is opened.
	path string

	// pkg selects one workspace member by name, or "all".
	pkg string

	// format is the changelog preview format, text or html.
	format string

	// branch is the only branch releases are made from.
	branch string

	// write and release are yes/no answers, parsed by config.StringToBool.
	write   string
	release string

	// summarize asks for LLM highlights in the GitHub release body.
	summarize bool
}

// NewRootCommand creates the root command with every subcommand attached.
//
// Unlike a pure command group, the root command does work of its own: it
// runs the release pipeline. The subcommands share its flag values through
// a single runFlags value.
func NewRootCommand() *cobra.Command {
	flags := &runFlags{}

	rootCmd := &cobra.Command{
		// Use is the one-line usage pattern shown in help output.
		Use:   "semrel",
		Short: "Automated semantic releases from conventional commits",
		Long: `semrel reads the commits since the last release, decides the next
semantic version and writes it to Cargo.toml or package.json together with a
CHANGELOG.md entry, a release commit and an annotated tag.

Outside CI it runs in dry-run mode and only prints what it would do.
With --release it also pushes, creates a GitHub release and publishes the
crate and container image when credentials are configured.

Examples:
  semrel                      # dry run, print the changelog
  semrel --write yes          # bump, commit and tag locally
  semrel -w yes -r yes        # full release (as run in CI)
  semrel plan --json          # machine-readable release decision`,

		// The repository is selected with --path, never positionally.
		Args: cobra.NoArgs,

		// SilenceUsage and SilenceErrors hand error reporting to Execute,
		// which formats it as text or JSON.
		SilenceUsage:  true,
		SilenceErrors: true,

		// Version is displayed when the --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		// PersistentPreRunE runs before every command, subcommands included.
		// Log output follows cmd.SetErr so tests can capture it, and an
		// invalid --format fails before the repository is touched.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logOut = cmd.ErrOrStderr()
			return validateFormat(flags.format)
		},

		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRelease(cmd, flags)
		},
	}

	// Persistent flags are inherited by plan and changelog: output shape
	// and the repository/package selection apply to every command.
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&flags.path, "path", "p", ".", "Repository path")
	rootCmd.PersistentFlags().StringVar(&flags.pkg, "package", "", "Workspace member to release (default: all)")
	rootCmd.PersistentFlags().StringVar(&flags.format, "format", formatText, "Changelog preview format: text or html")

	// Local flags only make sense for the release pipeline itself. write
	// and release take yes/no strings rather than booleans so an explicit
	// "no" can override the CI default.
	rootCmd.Flags().StringVarP(&flags.write, "write", "w", "",
		"Write changes to files: yes or no (default: yes if CI is set, otherwise no)")
	rootCmd.Flags().StringVarP(&flags.release, "release", "r", "",
		"Push, create a GitHub release and publish (only in write mode): yes or no (default: no)")
	rootCmd.Flags().StringVarP(&flags.branch, "branch", "b", "",
		"The branch on which releases should happen (default: master)")
	rootCmd.Flags().BoolVar(&flags.summarize, "summarize", false,
		"Add LLM-written highlights to the GitHub release (needs OPENAI_API_KEY)")

	// Read-only subcommands. Each is defined in its own file and returns a
	// *cobra.Command.
	rootCmd.AddCommand(NewPlanCommand(flags))
	rootCmd.AddCommand(NewChangelogCommand(flags))

	return rootCmd
}

// Execute runs the root command and translates errors into exit codes.
// This is the entry point called from main.go.
//
// CLIError values carry their own code; anything else exits with 1. A run
// with nothing to release is not an error and exits with 0.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(int(reportError(err)))
	}
}

// reportError prints err and returns the exit code it maps to.
func reportError(err error) model.ExitCode {
	// errors.As rather than a type assertion: collaborators may wrap a
	// CLIError with fmt.Errorf on its way up.
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		printError(cliErr.Message, cliErr.Err)
		return cliErr.Code
	}

	// Generic error, e.g. a cobra flag parsing failure.
	printError(err.Error(), nil)
	return model.ExitGeneralError
}
