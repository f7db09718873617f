package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/semrel/internal/model"
)

// NewPlanCommand creates the "plan" command. It prints the release
// decision without touching the repository.
func NewPlanCommand(flags *runFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the next version and the commits that decide it",
		Long: `Show the release decision for the commits since the last release tag:
the current and next version, the dominant change kind and every
classified commit. Nothing is written.

Examples:
  semrel plan
  semrel plan --json`,
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

			if IsJSONOutput() {
				return printJSON(cmd.OutOrStdout(), newPlanJSON(d, s.cfg.TagName))
			}
			printPlanText(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

// planJSON is the JSON form of a release decision.
type planJSON struct {
	CurrentVersion string           `json:"currentVersion"`
	NextVersion    *string          `json:"nextVersion"`
	Tag            string           `json:"tag,omitempty"`
	Since          string           `json:"since,omitempty"`
	DominantKind   model.ChangeKind `json:"dominantKind"`
	Commits        []planCommitJSON `json:"commits"`
}

type planCommitJSON struct {
	ID      string           `json:"id"`
	Kind    model.ChangeKind `json:"kind"`
	Scope   string           `json:"scope,omitempty"`
	Subject string           `json:"subject"`
}

func newPlanJSON(d *decision, tagName func(string) string) planJSON {
	out := planJSON{
		CurrentVersion: d.plan.CurrentVersion.String(),
		Since:          d.since,
		DominantKind:   d.plan.DominantKind,
		Commits:        make([]planCommitJSON, 0, len(d.plan.Commits)),
	}
	if d.plan.HasRelease() {
		next := d.plan.NextVersion.String()
		out.NextVersion = &next
		out.Tag = tagName(next)
	}
	for _, c := range d.plan.Commits {
		out.Commits = append(out.Commits, planCommitJSON{
			ID:      c.ID,
			Kind:    c.Kind,
			Scope:   c.Scope,
			Subject: c.Subject,
		})
	}
	return out
}

func printPlanText(w io.Writer, d *decision) {
	plan := d.plan

	next := "none (no release)"
	if plan.HasRelease() {
		next = plan.NextVersion.String()
	}
	since := d.since
	if since == "" {
		since = "(beginning of history)"
	}

	fmt.Fprintln(w, titleStyle.Render("Release plan"))
	fmt.Fprintf(w, "  Current version: %s\n", plan.CurrentVersion)
	fmt.Fprintf(w, "  Next version:    %s\n", next)
	fmt.Fprintf(w, "  Bump:            %s\n", plan.DominantKind)
	fmt.Fprintf(w, "  Since:           %s\n", since)

	if len(plan.Commits) == 0 {
		fmt.Fprintln(w, "\nNo commits since the last release.")
		return
	}

	fmt.Fprintln(w)
	for _, c := range plan.Commits {
		fmt.Fprintf(w, "  %s  %-11s  %s\n", c.ShortID(), c.Kind, c.FirstLine())
	}
}
