package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

// npmManifest is the subset of package.json the walker reads.
type npmManifest struct {
	Version    string          `json:"version"`
	Workspaces json.RawMessage `json:"workspaces"`
}

type npmFormat struct{}

func (npmFormat) kind() Kind       { return KindNPM }
func (npmFormat) fileName() string { return "package.json" }

// parse accepts comments and trailing commas, which some tooling leaves in
// package.json even though npm itself rejects them.
func (npmFormat) parse(data []byte) (node, error) {
	var m npmManifest
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return node{}, err
	}

	members, err := npmWorkspaces(m.Workspaces)
	if err != nil {
		return node{}, err
	}
	return node{version: m.Version, members: members}, nil
}

// npmWorkspaces decodes "workspaces", which is either an array of paths or
// an object with a "packages" array (the yarn form).
func npmWorkspaces(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("invalid workspaces field: %w", err)
	}
	return obj.Packages, nil
}

// rewrite replaces the value of the top-level "version" key in place.
// jsonc.ToJSON blanks comments and trailing commas without shifting any
// byte, so offsets found in its output index the original document.
func (npmFormat) rewrite(data []byte, version string) ([]byte, bool, error) {
	res := gjson.GetBytes(jsonc.ToJSON(data), "version")
	if !res.Exists() || res.Type != gjson.String {
		return data, false, nil
	}
	// Index is zero when gjson cannot place the value; a top-level value
	// never starts the document.
	start, end := res.Index, res.Index+len(res.Raw)
	if start <= 0 || end > len(data) || data[start] != '"' || data[end-1] != '"' {
		return nil, false, errors.New(`cannot locate the "version" value`)
	}

	var out bytes.Buffer
	out.Grow(len(data) + len(version))
	out.Write(data[:start+1])
	out.WriteString(version)
	out.Write(data[end-1:])
	return out.Bytes(), true, nil
}
