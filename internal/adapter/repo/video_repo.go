package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vidmorph/internal/domain"
)

const videoColumns = `id, owner_id, file_name, source_url, mirror_url, result_url, prompt, status, request_id, params, error_message, created_at, updated_at`

// VideoRepositoryPG implements domain.VideoRepository using PostgreSQL.
type VideoRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewVideoRepository creates a new video job repository backed by PostgreSQL.
func NewVideoRepository(pool *pgxpool.Pool) *VideoRepositoryPG {
	return &VideoRepositoryPG{pool: pool}
}

// Create inserts a new job record.
func (r *VideoRepositoryPG) Create(ctx context.Context, job *domain.VideoJob) error {
	paramsJSON, err := json.Marshal(job.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	query := `
INSERT INTO videos (id, owner_id, file_name, source_url, mirror_url, result_url, prompt, status, request_id, params, error_message)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
`
	_, err = r.pool.Exec(ctx, query,
		job.ID,
		job.Owner,
		job.FileName,
		job.SourceURL,
		job.MirrorURL,
		job.ResultURL,
		job.Prompt,
		job.Status,
		job.RequestID,
		paramsJSON,
		job.ErrorMessage,
	)
	return err
}

// CompleteByRequestID transitions the matching processing record to completed
// and sets the result URL. The status guard in the WHERE clause makes the
// transition atomic and keeps it from reversing a terminal state.
func (r *VideoRepositoryPG) CompleteByRequestID(ctx context.Context, requestID, resultURL string) (*domain.VideoJob, error) {
	query := `
UPDATE videos
SET status = 'completed',
    result_url = $2,
    updated_at = NOW()
WHERE request_id = $1 AND status = 'processing'
RETURNING ` + videoColumns + `;`
	return r.scanOne(r.pool.QueryRow(ctx, query, requestID, resultURL))
}

// FailByRequestID transitions the matching processing record to failed with
// the given provider message.
func (r *VideoRepositoryPG) FailByRequestID(ctx context.Context, requestID, message string) (*domain.VideoJob, error) {
	query := `
UPDATE videos
SET status = 'failed',
    error_message = $2,
    updated_at = NOW()
WHERE request_id = $1 AND status = 'processing'
RETURNING ` + videoColumns + `;`
	return r.scanOne(r.pool.QueryRow(ctx, query, requestID, message))
}

// ListByOwner returns all job records for the owner, newest first.
func (r *VideoRepositoryPG) ListByOwner(ctx context.Context, owner string) ([]domain.VideoJob, error) {
	query := `
SELECT ` + videoColumns + `
FROM videos
WHERE owner_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []domain.VideoJob
	for rows.Next() {
		job, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

// FailStale marks processing records created before olderThan as failed.
// It backs the reaper sweep and reports how many records it transitioned.
func (r *VideoRepositoryPG) FailStale(ctx context.Context, olderThan time.Time) (int64, error) {
	query := `
UPDATE videos
SET status = 'failed',
    error_message = 'timed out waiting for provider callback',
    updated_at = NOW()
WHERE status = 'processing' AND created_at < $1;
`
	tag, err := r.pool.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *VideoRepositoryPG) scanOne(row pgx.Row) (*domain.VideoJob, error) {
	job, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

func scanVideo(row pgx.Row) (*domain.VideoJob, error) {
	var job domain.VideoJob
	var paramsJSON []byte
	if err := row.Scan(
		&job.ID,
		&job.Owner,
		&job.FileName,
		&job.SourceURL,
		&job.MirrorURL,
		&job.ResultURL,
		&job.Prompt,
		&job.Status,
		&job.RequestID,
		&paramsJSON,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(paramsJSON) > 0 {
		if err := json.Unmarshal(paramsJSON, &job.Params); err != nil {
			return nil, fmt.Errorf("unmarshal params: %w", err)
		}
	}
	return &job, nil
}

var _ domain.VideoRepository = (*VideoRepositoryPG)(nil)
