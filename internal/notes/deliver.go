// Package notes turns user text into files in the configured repository,
// falling back to a durable local queue when delivery fails transiently.
package notes

import (
	"context"
	"time"

	"github.com/nhle/gitjot/internal/github"
	"github.com/nhle/gitjot/internal/model"
)

const (
	// InboxDir is the repository directory notes are written to.
	InboxDir = "inbox"

	// TopicFile is the control file at the repository root naming the
	// current topic.
	TopicFile = ".current_topic"

	// FilenameLayout formats a note's creation time into its filename.
	FilenameLayout = "2006-01-02T150405-0700"

	// conflictSuffix is appended to the filename when the primary path is
	// already taken.
	conflictSuffix = "-1"
)

// ContentAPI is the slice of the GitHub client used for note delivery
// and browsing.
type ContentAPI interface {
	CreateFile(ctx context.Context, token, owner, repo, path string, req github.CreateFileRequest) (*github.CreateFileResponse, error)
	GetFileContent(ctx context.Context, token, owner, repo, path string) (*github.FileContent, error)
	ListDirectory(ctx context.Context, token, owner, repo, dir string) ([]github.DirectoryEntry, error)
}

// Filename derives the filename of a note created at t.
func Filename(t time.Time) string {
	return t.Format(FilenameLayout)
}

// NotePath returns the repository path of a note file.
func NotePath(filename string) string {
	return InboxDir + "/" + filename + ".md"
}

// CommitMessage returns the commit message used when creating filename.
func CommitMessage(filename string) string {
	return "Add note " + filename
}

// Deliver creates the note file at inbox/<filename>.md. If that path is
// already taken it tries inbox/<filename>-1.md once, and the outcome of
// that attempt is final. It returns the path that was written.
//
// Both the immediate submission and the queue drain go through Deliver,
// so re-delivering a note whose earlier attempt actually landed does not
// create a third copy.
func Deliver(ctx context.Context, api ContentAPI, cred *model.Credential, filename, text string) (string, error) {
	content := github.EncodeContent([]byte(text))

	path := NotePath(filename)
	err := createFile(ctx, api, cred, path, filename, content)
	if !github.IsConflict(err) {
		return path, err
	}

	alt := filename + conflictSuffix
	path = NotePath(alt)
	return path, createFile(ctx, api, cred, path, alt, content)
}

func createFile(ctx context.Context, api ContentAPI, cred *model.Credential, path, name, content string) error {
	_, err := api.CreateFile(ctx, cred.AccessToken, cred.RepoOwner, cred.RepoName, path,
		github.CreateFileRequest{Message: CommitMessage(name), Content: content})
	return err
}
