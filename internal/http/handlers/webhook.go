package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"vidmorph/internal/domain"
	"vidmorph/internal/events"
	"vidmorph/internal/providers/cloudinary"
)

const signatureHeader = "X-Fal-Signature"

type webhookPayload struct {
	VideoURL  string `json:"video_url"`
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
	Error     string `json:"error"`
}

type webhookResponse struct {
	Success bool   `json:"success"`
	VideoID string `json:"videoId"`
}

// WebhookFal receives the provider's asynchronous completion callback. The
// result asset is mirrored before the record lookup, so a callback for an
// unknown request id leaves an orphaned mirror upload behind; that matches
// the provider's at-least-once delivery contract, where redelivery after a
// local failure is the provider's responsibility.
func (a *App) WebhookFal(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable payload")
		return
	}
	if a.WebhookSecret != "" && !verifySignature(a.WebhookSecret, body, r.Header.Get(signatureHeader)) {
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid webhook signature")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid webhook payload")
		return
	}
	if payload.RequestID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "requestId is required")
		return
	}

	if strings.EqualFold(payload.Status, "error") || (payload.Error != "" && payload.VideoURL == "") {
		a.failJob(w, r, payload)
		return
	}
	if payload.VideoURL == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "video_url is required")
		return
	}

	result, err := a.Mirror.UploadVideoURL(r.Context(), payload.VideoURL, cloudinary.FolderProcessed)
	if err != nil {
		// The record stays processing; provider redelivery retries the mirror.
		a.Logger.Error().Err(err).Str("request_id", payload.RequestID).Msg("result mirror failed")
		a.error(w, http.StatusInternalServerError, "upstream", err.Error())
		return
	}

	job, err := a.Videos.CompleteByRequestID(r.Context(), payload.RequestID, result.SecureURL)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "no job matches requestId")
			return
		}
		a.Logger.Error().Err(err).Str("request_id", payload.RequestID).Msg("completion update failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update job")
		return
	}

	a.Events.Publish(job.Owner, events.Event{
		VideoID:   job.ID,
		RequestID: job.RequestID,
		Status:    string(job.Status),
		ResultURL: job.ResultURL,
	})
	a.json(w, http.StatusOK, webhookResponse{Success: true, VideoID: job.ID})
}

func (a *App) failJob(w http.ResponseWriter, r *http.Request, payload webhookPayload) {
	message := payload.Error
	if message == "" {
		message = "provider reported failure"
	}
	job, err := a.Videos.FailByRequestID(r.Context(), payload.RequestID, message)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "no job matches requestId")
			return
		}
		a.Logger.Error().Err(err).Str("request_id", payload.RequestID).Msg("failure update failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to update job")
		return
	}

	a.Events.Publish(job.Owner, events.Event{
		VideoID:   job.ID,
		RequestID: job.RequestID,
		Status:    string(job.Status),
		Error:     job.ErrorMessage,
	})
	a.json(w, http.StatusOK, webhookResponse{Success: true, VideoID: job.ID})
}

// WebhookPreflight answers the provider's CORS preflight permissively.
func (a *App) WebhookPreflight(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST")
	h.Set("Access-Control-Allow-Headers", "Content-Type, "+signatureHeader)
	w.WriteHeader(http.StatusOK)
}

func verifySignature(secret string, body []byte, header string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(header)))
}
