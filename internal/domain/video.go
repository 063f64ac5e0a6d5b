package domain

import "time"

// VideoStatus enumerates transformation lifecycle states. A job starts at
// processing and transitions exactly once, to completed or failed.
type VideoStatus string

const (
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusCompleted  VideoStatus = "completed"
	VideoStatusFailed     VideoStatus = "failed"
)

// TransformParams holds the inference settings submitted with a job.
type TransformParams struct {
	NumInferenceSteps int     `json:"num_inference_steps"`
	AspectRatio       string  `json:"aspect_ratio"`
	Resolution        string  `json:"resolution"`
	NumFrames         int     `json:"num_frames"`
	Strength          float64 `json:"strength"`
}

// DefaultTransformParams returns the fixed parameter set every submission uses.
func DefaultTransformParams() TransformParams {
	return TransformParams{
		NumInferenceSteps: 30,
		AspectRatio:       "16:9",
		Resolution:        "720p",
		NumFrames:         129,
		Strength:          0.85,
	}
}

// VideoJob tracks one transformation request end-to-end. RequestID is the
// provider-issued correlation key used to match an incoming callback to its
// record; it is unique per job and known at creation time because a record
// is only persisted after the provider has accepted the submission.
type VideoJob struct {
	ID           string
	Owner        string
	FileName     string
	SourceURL    string
	MirrorURL    string
	ResultURL    string
	Prompt       string
	Status       VideoStatus
	RequestID    string
	Params       TransformParams
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
