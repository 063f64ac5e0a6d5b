package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"vidmorph/internal/domain"
	"vidmorph/internal/providers/fal"
	"vidmorph/internal/providers/prompt"
)

type transformRequest struct {
	VideoURL      string `json:"videoUrl"`
	Prompt        string `json:"prompt"`
	FileName      string `json:"fileName"`
	CloudinaryURL string `json:"cloudinaryUrl"`
}

type transformResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

type paramsDTO struct {
	NumInferenceSteps int     `json:"num_inference_steps"`
	AspectRatio       string  `json:"aspect_ratio"`
	Resolution        string  `json:"resolution"`
	NumFrames         int     `json:"num_frames"`
	Strength          float64 `json:"strength"`
	RequestID         string  `json:"requestId"`
}

type videoDTO struct {
	ID            string    `json:"id"`
	FileName      string    `json:"fileName"`
	SourceURL     string    `json:"sourceUrl"`
	CloudinaryURL string    `json:"cloudinaryUrl"`
	ProcessedURL  string    `json:"processedUrl,omitempty"`
	Prompt        string    `json:"prompt"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	Params        paramsDTO `json:"transformationParams"`
	Timestamp     time.Time `json:"timestamp"`
}

// VideosCreate submits a transformation job: one outbound job enters the
// provider queue per call, and the record is persisted only after the
// provider has accepted the submission.
func (a *App) VideosCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req transformRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Prompt == "" || req.VideoURL == "" || req.CloudinaryURL == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt, videoUrl and cloudinaryUrl are required")
		return
	}

	acquired, err := a.Guard.Acquire(r.Context(), userID, req.CloudinaryURL)
	if err != nil {
		// Dedupe is best effort; a broken guard must not block submissions.
		a.Logger.Warn().Err(err).Msg("dedupe guard unavailable")
	} else if !acquired {
		a.error(w, http.StatusConflict, "duplicate_submission", "a job for this asset is already in flight")
		return
	}

	params := domain.DefaultTransformParams()
	requestID, err := a.Fal.Submit(r.Context(), fal.SubmitRequest{
		Prompt:              prompt.Normalize(req.Prompt),
		VideoURL:            req.CloudinaryURL,
		WebhookURL:          a.WebhookURL,
		NumInferenceSteps:   params.NumInferenceSteps,
		AspectRatio:         params.AspectRatio,
		Resolution:          params.Resolution,
		NumFrames:           params.NumFrames,
		Strength:            params.Strength,
		EnableSafetyChecker: true,
	})
	if err != nil {
		if relErr := a.Guard.Release(r.Context(), userID, req.CloudinaryURL); relErr != nil {
			a.Logger.Warn().Err(relErr).Msg("dedupe guard release failed")
		}
		a.Logger.Error().Err(err).Msg("provider submission failed")
		a.error(w, http.StatusInternalServerError, "upstream", err.Error())
		return
	}

	job := &domain.VideoJob{
		ID:        uuid.NewString(),
		Owner:     userID,
		FileName:  req.FileName,
		SourceURL: req.VideoURL,
		MirrorURL: req.CloudinaryURL,
		Prompt:    req.Prompt,
		Status:    domain.VideoStatusProcessing,
		RequestID: requestID,
		Params:    params,
	}
	if err := a.Videos.Create(r.Context(), job); err != nil {
		// The provider job is already queued; without a record its callback
		// will land as a 404 and the mirror asset stays orphaned. The dedupe
		// key must not outlive the record it was guarding.
		if relErr := a.Guard.Release(r.Context(), userID, req.CloudinaryURL); relErr != nil {
			a.Logger.Warn().Err(relErr).Msg("dedupe guard release failed")
		}
		a.Logger.Error().Err(err).Str("request_id", requestID).Msg("failed to persist job record")
		a.error(w, http.StatusInternalServerError, "internal", "failed to persist job")
		return
	}

	a.json(w, http.StatusAccepted, transformResponse{Message: "Processing started", RequestID: requestID})
}

// VideosHistory returns all job records owned by the caller, newest first.
func (a *App) VideosHistory(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	jobs, err := a.Videos.ListByOwner(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("history query failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to fetch videos")
		return
	}
	items := make([]videoDTO, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, renderVideo(job))
	}
	a.json(w, http.StatusOK, items)
}

func renderVideo(job domain.VideoJob) videoDTO {
	return videoDTO{
		ID:            job.ID,
		FileName:      job.FileName,
		SourceURL:     job.SourceURL,
		CloudinaryURL: job.MirrorURL,
		ProcessedURL:  job.ResultURL,
		Prompt:        job.Prompt,
		Status:        string(job.Status),
		Error:         job.ErrorMessage,
		Params: paramsDTO{
			NumInferenceSteps: job.Params.NumInferenceSteps,
			AspectRatio:       job.Params.AspectRatio,
			Resolution:        job.Params.Resolution,
			NumFrames:         job.Params.NumFrames,
			Strength:          job.Params.Strength,
			RequestID:         job.RequestID,
		},
		Timestamp: job.CreatedAt,
	}
}
