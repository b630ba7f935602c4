package alerting

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
)

func highSeverityBatch() []anomaly.Result {
	return []anomaly.Result{
		{
			ResourceID:   "vm-1",
			Date:         time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
			ActualCost:   1000,
			ExpectedCost: 100,
			ZScore:       180,
			Severity:     anomaly.SeverityHigh,
		},
		{
			ResourceID:   "vm-2",
			Date:         time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
			ActualCost:   10,
			ExpectedCost: 80,
			ZScore:       -3.5,
			Severity:     anomaly.SeverityHigh,
		},
	}
}

func TestSlackNotifier_NotifyHighSeverity(t *testing.T) {
	var received slackMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("webhook received invalid JSON: %v", err)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s, want application/json", ct)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(server.URL, testLogger())

	if err := notifier.NotifyHighSeverity(context.Background(), highSeverityBatch()); err != nil {
		t.Fatalf("NotifyHighSeverity() error = %v", err)
	}

	if received.Text == "" {
		t.Error("webhook message has no text")
	}
	if len(received.Attachments) != 2 {
		t.Errorf("webhook message has %d attachments, want 2", len(received.Attachments))
	}
}

func TestSlackNotifier_NotifyHighSeverity_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(server.URL, testLogger())

	if err := notifier.NotifyHighSeverity(context.Background(), highSeverityBatch()); err == nil {
		t.Error("NotifyHighSeverity() error = nil, want error for non-200 response")
	}
}

func TestSlackNotifier_NotifyHighSeverity_NoWebhook(t *testing.T) {
	notifier := NewSlackNotifier("", testLogger())

	if err := notifier.NotifyHighSeverity(context.Background(), highSeverityBatch()); err == nil {
		t.Error("NotifyHighSeverity() error = nil, want error when no webhook configured")
	}
}

func TestLogNotifier_NotifyHighSeverity(t *testing.T) {
	notifier := NewLogNotifier(testLogger())

	if err := notifier.NotifyHighSeverity(context.Background(), highSeverityBatch()); err != nil {
		t.Errorf("NotifyHighSeverity() error = %v, want nil", err)
	}
}
