package domain

import (
	"context"
	"time"
)

// VideoRepository defines persistence for transformation job records.
//
// CompleteByRequestID and FailByRequestID are single conditional updates
// guarded by status = processing, so the terminal transition is atomic and
// monotonic even under concurrent callback deliveries. Both return
// ErrNotFound when no processing record matches the request id.
type VideoRepository interface {
	Create(ctx context.Context, job *VideoJob) error
	CompleteByRequestID(ctx context.Context, requestID, resultURL string) (*VideoJob, error)
	FailByRequestID(ctx context.Context, requestID, message string) (*VideoJob, error)
	ListByOwner(ctx context.Context, owner string) ([]VideoJob, error)
	FailStale(ctx context.Context, olderThan time.Time) (int64, error)
}
