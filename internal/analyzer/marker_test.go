package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsReleaseMarker(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"Bump version to 1.2.3", true},
		{"Bump version to v1.2.3", true},
		{"bump VERSION to 0.1.0", true},
		{"Bump version to 1.0.0-rc.1", true},
		{"Bump version to 1.2.3\n\nchangelog body", true},
		{"  Bump version to 2.0.0  ", true},
		{"Bump version to 1.2", false},
		{"Bump version to latest", false},
		{"chore: Bump version to 1.2.3", false},
		{"fix: Bump version parsing", false},
		{"feat: a\n\nBump version to 1.2.3", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, IsReleaseMarker(tt.message))
		})
	}
}

// TestReleaseCommitMessage_IsMarker guards the round trip: the message
// written for a release commit must always be recognized as a marker.
func TestReleaseCommitMessage_IsMarker(t *testing.T) {
	for _, v := range []string{"0.0.1", "1.2.3", "10.20.30"} {
		msg := ReleaseCommitMessage(v)
		assert.Equal(t, "Bump version to "+v, msg)
		assert.True(t, IsReleaseMarker(msg))
	}
}
