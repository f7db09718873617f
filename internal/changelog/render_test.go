package changelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/semrel/internal/model"
)

var releaseDate = time.Date(2026, 10, 19, 15, 4, 5, 0, time.UTC)

// classified is a shorthand for building a classified commit in tests.
func classified(id string, kind model.ChangeKind, scope, subject string) model.ClassifiedCommit {
	return model.ClassifiedCommit{
		CommitRecord: model.CommitRecord{ID: id},
		Kind:         kind,
		Scope:        scope,
		Subject:      subject,
	}
}

func TestEntry(t *testing.T) {
	tests := []struct {
		name   string
		commit model.ClassifiedCommit
		want   string
	}{
		{
			name:   "with scope",
			commit: classified("0123456789", model.KindFix, "parser", "handle empty input"),
			want:   "* **parser:** handle empty input (0123456)",
		},
		{
			name:   "without scope",
			commit: classified("0123456789", model.KindFeature, "", "add flag"),
			want:   "* add flag (0123456)",
		},
		{
			name:   "without id",
			commit: classified("", model.KindFix, "", "orphan"),
			want:   "* orphan",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Entry(tt.commit))
		})
	}
}

// TestRender checks the exact layout: heading, compare line and sections
// in fixed order with unannotated commits left out.
func TestRender(t *testing.T) {
	commits := []model.ClassifiedCommit{
		classified("aaaaaaa111", model.KindFix, "", "a"),
		classified("bbbbbbb222", model.KindFeature, "cli", "b"),
		classified("ccccccc333", model.KindUnannotated, "", "chore stuff"),
		classified("ddddddd444", model.KindBreaking, "api", "remove v1"),
		classified("eeeeeee555", model.KindFix, "", "c"),
	}

	got := Render(commits, "1.4.2", "2.0.0", releaseDate)

	want := "## 2.0.0 (2026-10-19)\n" +
		"\n" +
		"Compare: 1.4.2...2.0.0\n" +
		"\n" +
		"### Breaking Changes\n" +
		"\n" +
		"* **api:** remove v1 (ddddddd)\n" +
		"\n" +
		"### Features\n" +
		"\n" +
		"* **cli:** b (bbbbbbb)\n" +
		"\n" +
		"### Bug Fixes\n" +
		"\n" +
		"* a (aaaaaaa)\n" +
		"* c (eeeeeee)\n"
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "chore stuff")
}

func TestRender_OmitsEmptySections(t *testing.T) {
	commits := []model.ClassifiedCommit{
		classified("aaaaaaa111", model.KindFix, "", "only a fix"),
	}

	got := Render(commits, "0.1.0", "0.1.1", releaseDate)

	assert.Contains(t, got, "### Bug Fixes")
	assert.NotContains(t, got, "### Features")
	assert.NotContains(t, got, "### Breaking Changes")
}

func TestRender_FirstReleaseHasNoCompareLine(t *testing.T) {
	got := Render(nil, "", "0.1.0", releaseDate)
	assert.Equal(t, "## 0.1.0 (2026-10-19)\n", got)
}

func TestRender_Idempotent(t *testing.T) {
	commits := []model.ClassifiedCommit{
		classified("aaaaaaa111", model.KindFix, "x", "a"),
		classified("bbbbbbb222", model.KindFeature, "", "b"),
	}

	first := Render(commits, "1.0.0", "1.1.0", releaseDate)
	second := Render(commits, "1.0.0", "1.1.0", releaseDate)

	assert.Equal(t, first, second)
}

func TestSections(t *testing.T) {
	commits := []model.ClassifiedCommit{
		classified("aaaaaaa111", model.KindFix, "", "a"),
		classified("bbbbbbb222", model.KindUnannotated, "", "b"),
		classified("ccccccc333", model.KindFix, "", "c"),
	}

	sections := Sections(commits)

	require.Len(t, sections, 1)
	assert.Equal(t, model.KindFix, sections[0].Kind)
	assert.Equal(t, "Bug Fixes", sections[0].Heading)
	assert.Equal(t, []string{"* a (aaaaaaa)", "* c (ccccccc)"}, sections[0].Entries)

	assert.Empty(t, Sections(nil))
}

func TestMerge(t *testing.T) {
	section := "## 1.1.0 (2026-10-19)\n"

	assert.Equal(t, section, Merge(section, ""))

	prior := "## 1.0.0 (2026-01-01)\n\n* hand edited   \n"
	merged := Merge(section, prior)
	assert.Equal(t, section+"\n"+prior, merged)

	// A section without a trailing newline still gets a blank separator line.
	assert.Equal(t, "## x\n\n"+prior, Merge("## x", prior))
}
