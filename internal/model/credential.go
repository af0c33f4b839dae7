package model

// AuthType identifies which authorization strategy produced a credential.
type AuthType string

const (
	AuthTypePAT   AuthType = "pat"
	AuthTypeOAuth AuthType = "oauth"
)

// Credential is the single stored identity used to talk to the remote
// repository. AccessToken, RepoOwner and RepoName are either all set or
// all empty.
type Credential struct {
	AccessToken    string   `json:"access_token"`
	Username       string   `json:"username"`
	RepoOwner      string   `json:"repo_owner"`
	RepoName       string   `json:"repo_name"`
	AuthType       AuthType `json:"auth_type"`
	InstallationID string   `json:"installation_id,omitempty"`
}

// HasRepo reports whether a target repository is configured.
func (c *Credential) HasRepo() bool {
	return c != nil && c.RepoOwner != "" && c.RepoName != ""
}

// RepoFullName returns "owner/name", or "" when no repository is set.
func (c *Credential) RepoFullName() string {
	if !c.HasRepo() {
		return ""
	}
	return c.RepoOwner + "/" + c.RepoName
}
