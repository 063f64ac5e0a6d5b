package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"vidmorph/internal/domain"
	"vidmorph/internal/events"
	"vidmorph/internal/idempotency"
	"vidmorph/internal/infra"
	"vidmorph/internal/middleware"
	"vidmorph/internal/providers/cloudinary"
	"vidmorph/internal/providers/fal"
)

// VideoSubmitter enqueues one transformation job with the inference provider.
type VideoSubmitter interface {
	Submit(ctx context.Context, req fal.SubmitRequest) (string, error)
}

// MediaMirror re-uploads a remote asset into the media host.
type MediaMirror interface {
	UploadVideoURL(ctx context.Context, remoteURL, folder string) (*cloudinary.UploadResult, error)
}

// SubmitGuard holds one in-flight submission per (owner, asset) pair.
type SubmitGuard interface {
	Acquire(ctx context.Context, owner, assetURL string) (bool, error)
	Release(ctx context.Context, owner, assetURL string) error
}

var _ SubmitGuard = (*idempotency.Guard)(nil)

// App bundles the collaborators every handler needs.
type App struct {
	Logger infra.Logger
	Videos domain.VideoRepository
	Fal    VideoSubmitter
	Mirror MediaMirror
	Guard  SubmitGuard
	Events *events.Broker

	// WebhookURL is handed to the provider on submission; WebhookSecret, when
	// set, gates callback payloads behind signature verification.
	WebhookURL    string
	WebhookSecret string
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
