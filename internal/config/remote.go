package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Remote describes a git remote URL split into its hosting parts.
type Remote struct {
	// URL is the remote URL as configured in git.
	URL string

	Host  string
	Owner string
	Repo  string
}

// ParseRemote extracts host, owner and repository name from a git remote
// URL. Accepted forms:
//
//	https://github.com/owner/repo(.git)
//	ssh://git@github.com/owner/repo(.git)
//	git@github.com:owner/repo(.git)
//
// The owner may contain further path segments (GitLab subgroups); the
// repository is always the last segment.
func ParseRemote(raw string) (Remote, error) {
	raw = strings.TrimSpace(raw)
	r := Remote{URL: raw}

	var host, path string
	switch {
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil {
			return r, fmt.Errorf("invalid remote URL %q: %w", raw, err)
		}
		host, path = u.Hostname(), u.Path
	case strings.Contains(raw, ":"):
		// scp-like syntax: [user@]host:path
		hostPart, pathPart, _ := strings.Cut(raw, ":")
		if i := strings.LastIndex(hostPart, "@"); i >= 0 {
			hostPart = hostPart[i+1:]
		}
		host, path = hostPart, pathPart
	default:
		return r, fmt.Errorf("remote URL %q has no host", raw)
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	i := strings.LastIndex(path, "/")
	if host == "" || i <= 0 || i == len(path)-1 {
		return r, fmt.Errorf("could not extract owner and repository from %q", raw)
	}

	r.Host = strings.ToLower(host)
	r.Owner = path[:i]
	r.Repo = path[i+1:]
	return r, nil
}

// IsGitHub reports whether the remote is hosted on github.com.
func (r Remote) IsGitHub() bool {
	return r.Host == "github.com"
}

// String returns "owner/repo".
func (r Remote) String() string {
	return r.Owner + "/" + r.Repo
}
