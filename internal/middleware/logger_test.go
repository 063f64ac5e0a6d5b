package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type deadlineRecorder struct {
	*httptest.ResponseRecorder
	deadline time.Time
}

func (d *deadlineRecorder) SetWriteDeadline(t time.Time) error {
	d.deadline = t
	return nil
}

func TestLoggerRecordsStatus(t *testing.T) {
	handler := Logger(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", rec.Code)
	}
}

func TestLoggerWriterSupportsWriteDeadline(t *testing.T) {
	want := time.Now().Add(time.Minute)
	handler := Logger(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := http.NewResponseController(w).SetWriteDeadline(want); err != nil {
			t.Fatalf("SetWriteDeadline through logger wrapper: %v", err)
		}
	}))

	rec := &deadlineRecorder{ResponseRecorder: httptest.NewRecorder()}
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/videos/events", nil))
	if !rec.deadline.Equal(want) {
		t.Fatalf("deadline = %v, want %v", rec.deadline, want)
	}
}

func TestLoggerWriterForwardsFlush(t *testing.T) {
	handler := Logger(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		if !ok {
			t.Fatalf("logger wrapper should remain flushable")
		}
		f.Flush()
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/videos/events", nil))
	if !rec.Flushed {
		t.Fatalf("flush was not forwarded to the underlying writer")
	}
}
