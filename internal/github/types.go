package github

// User is the authenticated identity returned by GET /user.
type User struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Owner is the account that owns a repository.
type Owner struct {
	Login string `json:"login"`
}

// Repository is the subset of repository metadata the client uses.
type Repository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
	Owner    Owner  `json:"owner"`
}

// Installation is a binding between the GitHub App and an account.
type Installation struct {
	ID      int64 `json:"id"`
	Account Owner `json:"account"`
}

// InstallationList is the response of GET /user/installations.
type InstallationList struct {
	TotalCount    int            `json:"total_count"`
	Installations []Installation `json:"installations"`
}

// InstallationRepos is the response of GET /user/installations/{id}/repositories.
type InstallationRepos struct {
	TotalCount   int          `json:"total_count"`
	Repositories []Repository `json:"repositories"`
}

// FileContent is a file returned by the contents API. Content is base64
// and may contain line breaks.
type FileContent struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

// DirectoryEntry is one element of a contents API directory listing.
type DirectoryEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // file, dir, symlink, submodule
	Size int64  `json:"size"`
}

// CreateFileRequest is the body of PUT /repos/{owner}/{repo}/contents/{path}.
type CreateFileRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

// CreateFileResponse is the response of a successful file creation.
type CreateFileResponse struct {
	Content *FileRef `json:"content"`
}

// FileRef identifies a file written by the contents API.
type FileRef struct {
	Name string `json:"name"`
	Path string `json:"path"`
	SHA  string `json:"sha"`
}

// DeviceCode is the response of POST /login/device/code.
type DeviceCode struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

// AccessTokenResponse is the response of the OAuth token endpoint. During
// device polling it carries either a token or an error code.
type AccessTokenResponse struct {
	AccessToken      string `json:"access_token,omitempty"`
	TokenType        string `json:"token_type,omitempty"`
	Scope            string `json:"scope,omitempty"`
	Interval         int    `json:"interval,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// errorResponse is GitHub's JSON error body.
type errorResponse struct {
	Message string `json:"message"`
}
