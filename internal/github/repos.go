package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// GetUser returns the identity the token belongs to.
func (c *Client) GetUser(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.do(ctx, c.api(http.MethodGet, "/user", token), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUserRepos returns up to 100 repositories the user can access,
// most recently updated first.
func (c *Client) ListUserRepos(ctx context.Context, token string) ([]Repository, error) {
	var repos []Repository
	r := c.api(http.MethodGet, "/user/repos?sort=updated&per_page=100", token)
	if err := c.do(ctx, r, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

// GetRepository fetches repository metadata. A missing repository (or
// one the token cannot see) yields a 404 APIError.
func (c *Client) GetRepository(ctx context.Context, token, owner, repo string) (*Repository, error) {
	path := fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(repo))
	var out Repository
	if err := c.do(ctx, c.api(http.MethodGet, path, token), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInstallations returns the app installations accessible to a
// user-to-server token.
func (c *Client) ListInstallations(ctx context.Context, token string) (*InstallationList, error) {
	var out InstallationList
	if err := c.do(ctx, c.api(http.MethodGet, "/user/installations", token), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListInstallationRepos returns the repositories granted to installation id.
func (c *Client) ListInstallationRepos(ctx context.Context, token string, id int64) (*InstallationRepos, error) {
	path := fmt.Sprintf("/user/installations/%d/repositories", id)
	var out InstallationRepos
	if err := c.do(ctx, c.api(http.MethodGet, path, token), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
