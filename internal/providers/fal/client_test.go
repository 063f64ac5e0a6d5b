package fal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientSubmit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Key test-key" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		if !strings.HasSuffix(r.URL.Path, ModelPath) {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("fal_webhook"); got != "https://app.example.com/v1/webhooks/fal" {
			t.Fatalf("unexpected webhook param: %s", got)
		}
		var payload submitPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if payload.Prompt != "stylish walk" {
			t.Fatalf("prompt mismatch: %s", payload.Prompt)
		}
		if payload.VideoURL != "https://cdn.example.com/in.mp4" {
			t.Fatalf("video url mismatch: %s", payload.VideoURL)
		}
		if payload.NumInferenceSteps != 30 || payload.NumFrames != 129 || payload.Strength != 0.85 {
			t.Fatalf("parameter mismatch: %+v", payload)
		}
		if !payload.EnableSafetyChecker {
			t.Fatalf("safety checker should be enabled")
		}
		_ = json.NewEncoder(w).Encode(submitResponse{RequestID: "req-123"})
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "test-key", BaseURL: ts.URL})
	got, err := client.Submit(context.Background(), SubmitRequest{
		Prompt:              "stylish walk",
		VideoURL:            "https://cdn.example.com/in.mp4",
		WebhookURL:          "https://app.example.com/v1/webhooks/fal",
		NumInferenceSteps:   30,
		AspectRatio:         "16:9",
		Resolution:          "720p",
		NumFrames:           129,
		Strength:            0.85,
		EnableSafetyChecker: true,
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if got != "req-123" {
		t.Fatalf("unexpected request id: %s", got)
	}
}

func TestClientSubmitMissingKey(t *testing.T) {
	client := NewClient(Options{})
	_, err := client.Submit(context.Background(), SubmitRequest{Prompt: "p", VideoURL: "u"})
	if err == nil {
		t.Fatalf("expected error when api key missing")
	}
}

func TestClientSubmitValidation(t *testing.T) {
	client := NewClient(Options{APIKey: "k"})
	if _, err := client.Submit(context.Background(), SubmitRequest{Prompt: "p"}); err == nil {
		t.Fatalf("expected error for missing video url")
	}
	if _, err := client.Submit(context.Background(), SubmitRequest{VideoURL: "u"}); err == nil {
		t.Fatalf("expected error for missing prompt")
	}
}

func TestClientSubmitUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "prompt rejected"})
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "k", BaseURL: ts.URL})
	_, err := client.Submit(context.Background(), SubmitRequest{Prompt: "p", VideoURL: "u"})
	if err == nil {
		t.Fatalf("expected error for non-2xx status")
	}
	if !strings.Contains(err.Error(), "prompt rejected") {
		t.Fatalf("error should carry upstream detail, got: %v", err)
	}
}

func TestClientSubmitMissingRequestID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "k", BaseURL: ts.URL})
	if _, err := client.Submit(context.Background(), SubmitRequest{Prompt: "p", VideoURL: "u"}); err == nil {
		t.Fatalf("expected error when response lacks request_id")
	}
}
