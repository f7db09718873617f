package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/semrel/internal/model"
)

func TestHTML(t *testing.T) {
	md := Render([]model.ClassifiedCommit{
		classified("aaaaaaa111", model.KindFix, "parser", "handle empty input"),
	}, "0.1.0", "0.1.1", releaseDate)

	html, err := HTML(md)
	require.NoError(t, err)

	assert.Contains(t, html, "<h2>0.1.1 (2026-10-19)</h2>")
	assert.Contains(t, html, "<h3>Bug Fixes</h3>")
	assert.Contains(t, html, "<li><strong>parser:</strong> handle empty input (aaaaaaa)</li>")
}
