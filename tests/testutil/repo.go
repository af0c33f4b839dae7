package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/nhle/gitjot/internal/github"
)

// FakeRepo is an in-memory repository behind the contents API. Creating
// a file at an existing path fails with 422 like GitHub does.
type FakeRepo struct {
	mu       sync.Mutex
	files    map[string][]byte
	messages map[string]string
	calls    []string
	fail     map[string]error
	failAll  error
}

// NewFakeRepo returns an empty repository.
func NewFakeRepo() *FakeRepo {
	return &FakeRepo{
		files:    make(map[string][]byte),
		messages: make(map[string]string),
		fail:     make(map[string]error),
	}
}

// Unreachable is the error a transport failure produces.
func Unreachable() error {
	return &github.NetworkError{Method: http.MethodPut, Path: "/", Err: fmt.Errorf("dial tcp: connection refused")}
}

// Status returns an API error with the given status code.
func Status(code int) error {
	return &github.APIError{StatusCode: code, Method: http.MethodPut, Path: "/", Message: http.StatusText(code)}
}

// FailAll makes every call fail with err; nil restores normal behaviour.
func (f *FakeRepo) FailAll(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAll = err
}

// FailPath makes writes to path fail with err; nil clears it.
func (f *FakeRepo) FailPath(path string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, path)
		return
	}
	f.fail[path] = err
}

// Put stores a file directly.
func (f *FakeRepo) Put(path string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = data
}

// File returns the content at path.
func (f *FakeRepo) File(path string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	return data, ok
}

// Message returns the commit message that created path.
func (f *FakeRepo) Message(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[path]
}

// Paths lists every stored path in sorted order.
func (f *FakeRepo) Paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	paths := make([]string, 0, len(f.files))
	for p := range f.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Calls returns the paths of every CreateFile call, in order.
func (f *FakeRepo) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeRepo) CreateFile(ctx context.Context, token, owner, repo, path string, req github.CreateFileRequest) (*github.CreateFileResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, path)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.failAll != nil {
		return nil, f.failAll
	}
	if err := f.fail[path]; err != nil {
		return nil, err
	}
	if _, ok := f.files[path]; ok {
		return nil, &github.APIError{StatusCode: http.StatusUnprocessableEntity, Method: http.MethodPut, Path: path, Message: `Invalid request. "sha" wasn't supplied.`}
	}

	data, err := github.DecodeContent(req.Content)
	if err != nil {
		return nil, Status(http.StatusBadRequest)
	}
	f.files[path] = data
	f.messages[path] = req.Message

	name := path[strings.LastIndex(path, "/")+1:]
	return &github.CreateFileResponse{Content: &github.FileRef{Name: name, Path: path}}, nil
}

func (f *FakeRepo) GetFileContent(ctx context.Context, token, owner, repo, path string) (*github.FileContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll != nil {
		return nil, f.failAll
	}
	data, ok := f.files[path]
	if !ok {
		return nil, Status(http.StatusNotFound)
	}

	// GitHub wraps base64 content at 60 columns.
	enc := github.EncodeContent(data)
	var b strings.Builder
	for len(enc) > 60 {
		b.WriteString(enc[:60] + "\n")
		enc = enc[60:]
	}
	b.WriteString(enc + "\n")

	name := path[strings.LastIndex(path, "/")+1:]
	return &github.FileContent{Name: name, Path: path, Encoding: "base64", Content: b.String()}, nil
}

func (f *FakeRepo) ListDirectory(ctx context.Context, token, owner, repo, dir string) ([]github.DirectoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAll != nil {
		return nil, f.failAll
	}

	prefix := strings.Trim(dir, "/")
	if prefix != "" {
		prefix += "/"
	}

	seen := make(map[string]bool)
	var out []github.DirectoryEntry
	for p := range f.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		name, _, isDir := strings.Cut(rest, "/")
		if seen[name] {
			continue
		}
		seen[name] = true
		entry := github.DirectoryEntry{Name: name, Path: prefix + name, Type: "file", Size: int64(len(f.files[p]))}
		if isDir {
			entry.Type, entry.Size = "dir", 0
		}
		out = append(out, entry)
	}
	if len(out) == 0 && prefix != "" {
		return nil, Status(http.StatusNotFound)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
