package changelog

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
)

// HTML converts rendered changelog markdown to an HTML fragment.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render changelog html: %w", err)
	}
	return buf.String(), nil
}
