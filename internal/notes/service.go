package notes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nhle/gitjot/internal/github"
	"github.com/nhle/gitjot/internal/model"
)

// Result is the outcome of a successful Submit.
type Result string

const (
	// Sent means the note file now exists in the repository.
	Sent Result = "sent"

	// Queued means delivery failed transiently and the note waits in the
	// local queue.
	Queued Result = "queued"
)

// Credentials supplies the current credential snapshot.
type Credentials interface {
	Get() *model.Credential
}

// Deps wires a Service to its collaborators.
type Deps struct {
	API         ContentAPI
	Credentials Credentials
	Queue       *Queue
	History     *History
	Logger      *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time

	// OnQueued, when set, is called after a note has been queued, so
	// the caller can schedule a drain.
	OnQueued func()
}

// Service submits notes and reads back repository state.
type Service struct {
	Deps
}

// NewService creates a Service.
func NewService(d Deps) *Service {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Service{Deps: d}
}

// credential returns the credential, or the error explaining why notes
// cannot be delivered.
func (s *Service) credential() (*model.Credential, error) {
	cred := s.Credentials.Get()
	if cred == nil || cred.AccessToken == "" {
		return nil, ErrNotAuthenticated
	}
	if !cred.HasRepo() {
		return nil, ErrNoRepoConfigured
	}
	return cred, nil
}

// Submit tries to deliver text now. A transient failure queues the note
// and reports Queued; any other failure is recorded and returned.
func (s *Service) Submit(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyNote
	}
	cred, err := s.credential()
	if err != nil {
		return "", err
	}

	created := s.Now()
	filename := Filename(created)
	logger := s.Logger.With("filename", filename)

	path, err := Deliver(ctx, s.API, cred, filename, text)
	switch {
	case err == nil:
		s.record(ctx, text, true)
		logger.Info("note sent", "path", path)
		return Sent, nil

	case github.IsRetryable(err):
		// The request context may be what failed; the queue write must
		// still happen.
		if _, qErr := s.Queue.Enqueue(context.WithoutCancel(ctx), text, filename, created); qErr != nil {
			return "", fmt.Errorf("queueing note after %v: %w", err, qErr)
		}
		logger.Warn("note queued", "error", err)
		if s.OnQueued != nil {
			s.OnQueued()
		}
		return Queued, nil

	default:
		s.record(ctx, text, false)
		logger.Error("note rejected", "error", err)
		return "", fmt.Errorf("sending note: %w", err)
	}
}

func (s *Service) record(ctx context.Context, text string, success bool) {
	if err := s.History.Record(context.WithoutCancel(ctx), text, success, s.Now()); err != nil {
		s.Logger.Warn("recording submission", "error", err)
	}
}

// CurrentTopic reads the topic named by the control file at the
// repository root. Any failure yields ok == false.
func (s *Service) CurrentTopic(ctx context.Context) (topic string, ok bool) {
	cred, err := s.credential()
	if err != nil {
		return "", false
	}

	file, err := s.API.GetFileContent(ctx, cred.AccessToken, cred.RepoOwner, cred.RepoName, TopicFile)
	if err != nil {
		s.Logger.Debug("reading current topic", "error", err)
		return "", false
	}
	data, err := github.DecodeContent(file.Content)
	if err != nil {
		s.Logger.Debug("decoding current topic", "error", err)
		return "", false
	}

	topic = strings.TrimSpace(string(data))
	return topic, topic != ""
}

// ListDirectory lists a repository directory; "" is the root.
func (s *Service) ListDirectory(ctx context.Context, dir string) ([]github.DirectoryEntry, error) {
	cred, err := s.credential()
	if err != nil {
		return nil, err
	}
	entries, err := s.API.ListDirectory(ctx, cred.AccessToken, cred.RepoOwner, cred.RepoName, dir)
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", dir, err)
	}
	return entries, nil
}

// ReadFile returns the decoded content of a repository file.
func (s *Service) ReadFile(ctx context.Context, path string) ([]byte, error) {
	cred, err := s.credential()
	if err != nil {
		return nil, err
	}
	file, err := s.API.GetFileContent(ctx, cred.AccessToken, cred.RepoOwner, cred.RepoName, path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return github.DecodeContent(file.Content)
}

// PendingCount returns the number of queued notes.
func (s *Service) PendingCount() int { return s.Queue.Count() }

// PendingNotes returns the queued notes in delivery order.
func (s *Service) PendingNotes(ctx context.Context) ([]model.PendingNote, error) {
	return s.Queue.Notes(ctx)
}

// RecentSubmissions returns the submission log, newest first.
func (s *Service) RecentSubmissions() []model.SubmissionRecord {
	return s.History.Recent()
}

// ObservePending emits the queue size now and after every change.
func (s *Service) ObservePending(ctx context.Context) <-chan int {
	return s.Queue.ObserveCount(ctx)
}

// ObserveHistory emits the submission log now and after every change.
func (s *Service) ObserveHistory(ctx context.Context) <-chan []model.SubmissionRecord {
	return s.History.Observe(ctx)
}
