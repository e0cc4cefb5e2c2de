// Package release reads the release list of a repository from a GitHub-compatible API.
package release

import (
	"context"
	"net/http"

	"github.com/ImSingee/go-ex/ee"
	"github.com/levigross/grequests"

	"github.com/ImSingee/relsync/internal/version"
)

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
}

type Release struct {
	Tag    string  `json:"tag_name"`
	Notes  string  `json:"body"`
	Assets []Asset `json:"assets"`
}

type Fetcher struct {
	URL string

	// Client is used for every request; nil means a client built by grequests.
	Client *http.Client
}

func NewFetcher(url string, client *http.Client) *Fetcher {
	return &Fetcher{URL: url, Client: client}
}

// Fetch returns the releases in the order the API lists them (newest first on GitHub).
// Only the first page is read.
func (f *Fetcher) Fetch(ctx context.Context) ([]Release, error) {
	resp, err := grequests.Get(f.URL, &grequests.RequestOptions{
		Context:    ctx,
		HTTPClient: f.Client,
		UserAgent:  version.UserAgent(),
		Headers: map[string]string{
			"Accept": "application/vnd.github+json",
		},
	})
	if err != nil {
		return nil, ee.Wrapf(err, "cannot get releases from %s", f.URL)
	}
	defer resp.Close()

	if !resp.Ok {
		return nil, ee.Errorf("cannot get releases from %s: status code = %d", f.URL, resp.StatusCode)
	}

	var releases []Release
	err = resp.JSON(&releases)
	if err != nil {
		return nil, ee.Wrapf(err, "cannot decode releases from %s", f.URL)
	}

	return releases, nil
}
