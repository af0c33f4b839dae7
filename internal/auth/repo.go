package auth

import (
	"regexp"
	"strings"
)

var repoURLPattern = regexp.MustCompile(`(?:https?://)?github\.com/([^/]+)/([^/]+)`)

// ParseRepo extracts owner and repository name from free-form input:
// "owner/repo", "github.com/owner/repo" or
// "https://github.com/owner/repo[.git][/]". A URL-shaped input wins over
// a plain slash split.
func ParseRepo(input string) (owner, repo string, err error) {
	trimmed := strings.TrimSpace(input)
	trimmed = strings.TrimSuffix(trimmed, "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")
	trimmed = strings.TrimSuffix(trimmed, "/")

	if m := repoURLPattern.FindStringSubmatch(trimmed); m != nil {
		owner, repo = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if owner != "" && repo != "" {
			return owner, repo, nil
		}
	}

	parts := strings.Split(trimmed, "/")
	if len(parts) == 2 {
		owner, repo = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if owner != "" && repo != "" && !strings.ContainsAny(owner+repo, " \t") {
			return owner, repo, nil
		}
	}

	return "", "", ErrInvalidRepoFormat
}

// splitFullName splits "owner/name" as returned in a repository's
// full_name field.
func splitFullName(fullName string) (owner, name string, ok bool) {
	owner, name, ok = strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	return owner, name, true
}
