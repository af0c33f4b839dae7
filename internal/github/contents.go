package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

func contentsPath(owner, repo, path string) string {
	p := fmt.Sprintf("/repos/%s/%s/contents", url.PathEscape(owner), url.PathEscape(repo))
	if escaped := escapePath(path); escaped != "" {
		p += "/" + escaped
	}
	return p
}

// GetFileContent fetches a single file.
func (c *Client) GetFileContent(ctx context.Context, token, owner, repo, path string) (*FileContent, error) {
	var out FileContent
	r := c.api(http.MethodGet, contentsPath(owner, repo, path), token)
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDirectory lists a directory; an empty dir means the repository root.
func (c *Client) ListDirectory(ctx context.Context, token, owner, repo, dir string) ([]DirectoryEntry, error) {
	var out []DirectoryEntry
	r := c.api(http.MethodGet, contentsPath(owner, repo, dir), token)
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateFile creates a file at path. Without a SHA in req, an existing
// file at path produces a conflict (see IsConflict).
func (c *Client) CreateFile(ctx context.Context, token, owner, repo, path string, req CreateFileRequest) (*CreateFileResponse, error) {
	var out CreateFileResponse
	r := c.api(http.MethodPut, contentsPath(owner, repo, path), token)
	r.body = req
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DecodeContent decodes the base64 payload of a contents API file,
// ignoring the line breaks GitHub inserts every 60 characters.
func DecodeContent(encoded string) ([]byte, error) {
	clean := strings.NewReplacer("\n", "", "\r", "").Replace(encoded)
	data, err := base64.StdEncoding.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("decoding file content: %w", err)
	}
	return data, nil
}

// EncodeContent encodes raw file bytes for CreateFileRequest.Content.
func EncodeContent(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
