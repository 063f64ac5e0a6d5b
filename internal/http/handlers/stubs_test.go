package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"vidmorph/internal/domain"
	"vidmorph/internal/events"
	"vidmorph/internal/providers/cloudinary"
	"vidmorph/internal/providers/fal"
)

type stubVideoRepo struct {
	mu        sync.Mutex
	jobs      map[string]*domain.VideoJob // keyed by request id
	createErr error
	listErr   error
}

func newStubVideoRepo() *stubVideoRepo {
	return &stubVideoRepo{jobs: make(map[string]*domain.VideoJob)}
}

func (s *stubVideoRepo) Create(ctx context.Context, job *domain.VideoJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	copied := *job
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now()
	}
	copied.UpdatedAt = copied.CreatedAt
	s.jobs[job.RequestID] = &copied
	return nil
}

func (s *stubVideoRepo) CompleteByRequestID(ctx context.Context, requestID, resultURL string) (*domain.VideoJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[requestID]
	if !ok || job.Status != domain.VideoStatusProcessing {
		return nil, domain.ErrNotFound
	}
	job.Status = domain.VideoStatusCompleted
	job.ResultURL = resultURL
	job.UpdatedAt = time.Now()
	copied := *job
	return &copied, nil
}

func (s *stubVideoRepo) FailByRequestID(ctx context.Context, requestID, message string) (*domain.VideoJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[requestID]
	if !ok || job.Status != domain.VideoStatusProcessing {
		return nil, domain.ErrNotFound
	}
	job.Status = domain.VideoStatusFailed
	job.ErrorMessage = message
	job.UpdatedAt = time.Now()
	copied := *job
	return &copied, nil
}

func (s *stubVideoRepo) ListByOwner(ctx context.Context, owner string) ([]domain.VideoJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []domain.VideoJob
	for _, job := range s.jobs {
		if job.Owner == owner {
			out = append(out, *job)
		}
	}
	// Newest first, same contract as the pg repository.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *stubVideoRepo) FailStale(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, job := range s.jobs {
		if job.Status == domain.VideoStatusProcessing && job.CreatedAt.Before(olderThan) {
			job.Status = domain.VideoStatusFailed
			n++
		}
	}
	return n, nil
}

func (s *stubVideoRepo) byRequestID(requestID string) *domain.VideoJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[requestID]; ok {
		copied := *job
		return &copied
	}
	return nil
}

func (s *stubVideoRepo) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

type stubSubmitter struct {
	fn   func(ctx context.Context, req fal.SubmitRequest) (string, error)
	last fal.SubmitRequest
}

func (s *stubSubmitter) Submit(ctx context.Context, req fal.SubmitRequest) (string, error) {
	s.last = req
	if s.fn != nil {
		return s.fn(ctx, req)
	}
	return "req-1", nil
}

type stubMirror struct {
	fn    func(ctx context.Context, remoteURL, folder string) (*cloudinary.UploadResult, error)
	calls []string
}

func (s *stubMirror) UploadVideoURL(ctx context.Context, remoteURL, folder string) (*cloudinary.UploadResult, error) {
	s.calls = append(s.calls, folder+"|"+remoteURL)
	if s.fn != nil {
		return s.fn(ctx, remoteURL, folder)
	}
	return &cloudinary.UploadResult{
		SecureURL: "https://res.cloudinary.com/mirror/" + folder,
		PublicID:  folder + "/asset",
	}, nil
}

type stubGuard struct {
	held       bool // next Acquire reports a duplicate in flight
	acquireErr error
	acquired   []string
	released   []string
}

func (g *stubGuard) Acquire(ctx context.Context, owner, assetURL string) (bool, error) {
	g.acquired = append(g.acquired, owner+"|"+assetURL)
	if g.acquireErr != nil {
		return false, g.acquireErr
	}
	return !g.held, nil
}

func (g *stubGuard) Release(ctx context.Context, owner, assetURL string) error {
	g.released = append(g.released, owner+"|"+assetURL)
	return nil
}

func newTestApp(repo *stubVideoRepo, submitter *stubSubmitter, mirror *stubMirror) *App {
	return &App{
		Logger:     zerolog.Nop(),
		Videos:     repo,
		Fal:        submitter,
		Mirror:     mirror,
		Guard:      &stubGuard{},
		Events:     events.NewBroker(),
		WebhookURL: "https://app.example.com/v1/webhooks/fal",
	}
}
