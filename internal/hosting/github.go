// Package hosting creates releases on the code hosting service.
//
// Only GitHub is supported. The release is attached to the tag that was
// pushed by the release run and uses the changelog section as its body.
package hosting

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"

	"github.com/shinji-kodama/semrel/internal/model"
)

// Release describes a hosted release to create.
type Release struct {
	Owner string
	Repo  string

	// Tag is the existing tag the release points at.
	Tag string

	// Target is the branch or commit the tag is created from if the host
	// does not know it yet.
	Target string

	Body       string
	Prerelease bool
}

// GitHub creates releases through the GitHub REST API.
type GitHub struct {
	client *github.Client
}

// NewGitHub returns a client authenticated with token. A non-empty
// baseURL points it at a GitHub Enterprise (or test) API endpoint.
func NewGitHub(token, baseURL string) (*GitHub, error) {
	client := github.NewClient(nil).WithAuthToken(token)

	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("invalid GitHub API URL %q", baseURL), err)
		}
		client.BaseURL = u
	}

	return &GitHub{client: client}, nil
}

// CreateRelease publishes r and returns the release page URL.
func (g *GitHub) CreateRelease(ctx context.Context, r Release) (string, error) {
	created, _, err := g.client.Repositories.CreateRelease(ctx, r.Owner, r.Repo, &github.RepositoryRelease{
		TagName:         github.String(r.Tag),
		Name:            github.String(r.Tag),
		Body:            github.String(r.Body),
		TargetCommitish: github.String(r.Target),
		Draft:           github.Bool(false),
		Prerelease:      github.Bool(r.Prerelease),
	})
	if err != nil {
		return "", model.WrapCLIError(model.ExitNetworkError,
			fmt.Sprintf("failed to create GitHub release %s for %s/%s", r.Tag, r.Owner, r.Repo), err)
	}
	return created.GetHTMLURL(), nil
}
