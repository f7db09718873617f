package bump

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/semrel/internal/model"
)

// TestNext walks the full version table for both the pre-1.0 and the
// stable phase.
func TestNext(t *testing.T) {
	tests := []struct {
		current string
		kind    model.ChangeKind
		want    string // empty means no release
	}{
		{"0.2.0", model.KindUnannotated, ""},
		{"0.2.0", model.KindFix, "0.2.1"},
		{"0.2.0", model.KindFeature, "0.2.1"},
		{"0.2.0", model.KindBreaking, "0.3.0"},
		{"0.2.7", model.KindBreaking, "0.3.0"},
		{"0.4.1", model.KindFeature, "0.4.2"},
		{"0.0.0", model.KindFix, "0.0.1"},
		{"1.0.0", model.KindUnannotated, ""},
		{"1.0.0", model.KindBreaking, "2.0.0"},
		{"1.4.2", model.KindFeature, "1.5.0"},
		{"1.4.2", model.KindFix, "1.4.3"},
		{"1.4.2", model.KindBreaking, "2.0.0"},
		{"3.9.9", model.KindFeature, "3.10.0"},
		{"1.4.2-rc.1", model.KindFix, "1.4.3"},
		{"1.4.2+build.5", model.KindFeature, "1.5.0"},
	}

	for _, tt := range tests {
		t.Run(tt.current+"/"+tt.kind.String(), func(t *testing.T) {
			got := Next(semver.MustParse(tt.current), tt.kind)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

// TestNext_UnannotatedNeverReleases checks the no-release rule over a
// spread of versions.
func TestNext_UnannotatedNeverReleases(t *testing.T) {
	for _, v := range []string{"0.0.0", "0.1.0", "0.9.9", "1.0.0", "2.3.4", "10.0.0-alpha"} {
		assert.Nil(t, Next(semver.MustParse(v), model.KindUnannotated), v)
	}
}

func TestNext_DoesNotMutateInput(t *testing.T) {
	current := semver.MustParse("1.4.2")

	_ = Next(current, model.KindBreaking)
	_ = Next(current, model.KindFeature)

	assert.Equal(t, "1.4.2", current.String())
}

func TestNext_InvalidInput(t *testing.T) {
	assert.Nil(t, Next(nil, model.KindFix))
	assert.Nil(t, Next(semver.MustParse("1.0.0"), model.ChangeKind(99)))
}

func TestParse(t *testing.T) {
	v, err := Parse("v1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v.String())

	_, err = Parse("not-a-version")
	assert.Error(t, err)
}
