package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewChangelogCommand creates the "changelog" command, which prints the
// changelog section the next release would write.
func NewChangelogCommand(flags *runFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "changelog",
		Short: "Print the changelog section for the next release",
		Long: `Print the changelog section the next release would prepend to
CHANGELOG.md. Nothing is written.

Examples:
  semrel changelog
  semrel changelog --format html > notes.html`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, flags)
			if err != nil {
				return err
			}
			d, err := s.decide(cmd.Context())
			if err != nil {
				return err
			}

			if !d.plan.HasRelease() {
				Info("No version bump. Nothing to do.")
				if IsJSONOutput() {
					return printJSON(cmd.OutOrStdout(), map[string]string{"changelog": ""})
				}
				return nil
			}

			out, err := renderPreview(d.section, flags.format)
			if err != nil {
				return err
			}
			if IsJSONOutput() {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"version":   d.plan.NextVersion.String(),
					"format":    flags.format,
					"changelog": out,
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
