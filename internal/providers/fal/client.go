package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ModelPath identifies the hunyuan video-to-video pipeline on the queue API.
const ModelPath = "fal-ai/hunyuan-video/video-to-video"

type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client submits transformation jobs to the fal queue API. Completion is
// reported asynchronously through the webhook URL supplied per request, so
// Submit returns as soon as the queue has accepted the job.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://queue.fal.run"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		apiKey:     strings.TrimSpace(opts.APIKey),
	}
}

// SubmitRequest carries one video-to-video submission.
type SubmitRequest struct {
	Prompt              string
	VideoURL            string
	WebhookURL          string
	NumInferenceSteps   int
	AspectRatio         string
	Resolution          string
	NumFrames           int
	Strength            float64
	EnableSafetyChecker bool
}

type submitPayload struct {
	Prompt              string  `json:"prompt"`
	NumInferenceSteps   int     `json:"num_inference_steps"`
	AspectRatio         string  `json:"aspect_ratio"`
	Resolution          string  `json:"resolution"`
	NumFrames           int     `json:"num_frames"`
	EnableSafetyChecker bool    `json:"enable_safety_checker"`
	VideoURL            string  `json:"video_url"`
	Strength            float64 `json:"strength"`
}

type submitResponse struct {
	RequestID string `json:"request_id"`
	Detail    string `json:"detail"`
}

// Submit enqueues one job and returns the provider-issued request id.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if c == nil {
		return "", errors.New("fal client not configured")
	}
	if c.apiKey == "" {
		return "", errors.New("fal: API key is missing")
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		return "", errors.New("fal: video url required")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return "", errors.New("fal: prompt required")
	}

	body, err := json.Marshal(submitPayload{
		Prompt:              req.Prompt,
		NumInferenceSteps:   req.NumInferenceSteps,
		AspectRatio:         req.AspectRatio,
		Resolution:          req.Resolution,
		NumFrames:           req.NumFrames,
		EnableSafetyChecker: req.EnableSafetyChecker,
		VideoURL:            req.VideoURL,
		Strength:            req.Strength,
	})
	if err != nil {
		return "", err
	}

	endpoint := c.baseURL + "/" + ModelPath
	if req.WebhookURL != "" {
		endpoint += "?fal_webhook=" + url.QueryEscape(req.WebhookURL)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Key "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("fal: submit request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("fal: read response: %w", err)
	}
	var parsed submitResponse
	if err := json.Unmarshal(raw, &parsed); err != nil && resp.StatusCode < 300 {
		return "", fmt.Errorf("fal: decode response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := strings.TrimSpace(parsed.Detail)
		if detail == "" {
			detail = strings.TrimSpace(string(raw))
		}
		return "", fmt.Errorf("fal: submit status %d: %s", resp.StatusCode, detail)
	}
	if parsed.RequestID == "" {
		return "", errors.New("fal: response missing request_id")
	}
	return parsed.RequestID, nil
}
