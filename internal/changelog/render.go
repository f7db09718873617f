package changelog

import (
	"fmt"
	"strings"
	"time"

	"github.com/shinji-kodama/semrel/internal/model"
)

// DateLayout is the date format used in release headings.
const DateLayout = "2006-01-02"

// sectionOrder is the fixed display order of changelog sections.
// Unannotated commits never appear in the changelog.
var sectionOrder = []struct {
	kind    model.ChangeKind
	heading string
}{
	{model.KindBreaking, "Breaking Changes"},
	{model.KindFeature, "Features"},
	{model.KindFix, "Bug Fixes"},
}

// Sections groups commits by kind in display order. Entries keep the order
// of the input slice. Empty sections are omitted.
func Sections(commits []model.ClassifiedCommit) []model.ChangelogSection {
	var sections []model.ChangelogSection
	for _, s := range sectionOrder {
		var entries []string
		for i := range commits {
			if commits[i].Kind == s.kind {
				entries = append(entries, Entry(commits[i]))
			}
		}
		if len(entries) == 0 {
			continue
		}
		sections = append(sections, model.ChangelogSection{
			Kind:    s.kind,
			Heading: s.heading,
			Entries: entries,
		})
	}
	return sections
}

// Entry renders one changelog line for a commit:
//
//	* **scope:** subject (abc1234)
//	* subject (abc1234)
func Entry(c model.ClassifiedCommit) string {
	var b strings.Builder
	b.WriteString("* ")
	if c.Scope != "" {
		fmt.Fprintf(&b, "**%s:** ", c.Scope)
	}
	b.WriteString(c.Subject)
	if id := c.ShortID(); id != "" {
		fmt.Fprintf(&b, " (%s)", id)
	}
	return b.String()
}

// Render produces the markdown section for one release. fromVersion may be
// empty for a first release, in which case no compare line is written.
//
// The output always ends with a single newline.
func Render(commits []model.ClassifiedCommit, fromVersion, toVersion string, date time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s (%s)\n", toVersion, date.Format(DateLayout))
	if fromVersion != "" {
		fmt.Fprintf(&b, "\nCompare: %s...%s\n", fromVersion, toVersion)
	}

	for _, s := range Sections(commits) {
		fmt.Fprintf(&b, "\n### %s\n\n", s.Heading)
		for _, e := range s.Entries {
			b.WriteString(e)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Merge prepends a rendered section above prior changelog text. The prior
// text is kept byte-for-byte; an empty prior yields the section alone.
func Merge(section, prior string) string {
	if prior == "" {
		return section
	}
	if !strings.HasSuffix(section, "\n") {
		section += "\n"
	}
	return section + "\n" + prior
}
