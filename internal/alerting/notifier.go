package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/costwatch/costwatch/internal/domain/anomaly"
	"github.com/costwatch/costwatch/internal/pkg/logger"
)

// Notifier is the active notification path for high-severity anomalies.
// One call carries the full high-severity batch of a run.
type Notifier interface {
	NotifyHighSeverity(ctx context.Context, anomalies []anomaly.Result) error
}

// SlackNotifier posts high-severity anomaly batches to a Slack incoming
// webhook.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewSlackNotifier creates a Slack notifier for the given webhook URL.
func NewSlackNotifier(webhookURL string, log *logger.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: log,
	}
}

type slackMessage struct {
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments,omitempty"`
}

type slackAttachment struct {
	Color string `json:"color"`
	Text  string `json:"text"`
}

// NotifyHighSeverity posts the batch to the webhook. Failure is returned to
// the caller and aborts the dispatch step.
func (n *SlackNotifier) NotifyHighSeverity(ctx context.Context, anomalies []anomaly.Result) error {
	if n.webhookURL == "" {
		return fmt.Errorf("no Slack webhook URL configured")
	}

	message := slackMessage{
		Text: fmt.Sprintf("High severity cost anomalies detected: %d", len(anomalies)),
	}
	for _, a := range anomalies {
		message.Attachments = append(message.Attachments, slackAttachment{
			Color: "danger",
			Text: fmt.Sprintf("%s on %s: $%.2f (expected $%.2f), z-score %.2f",
				a.ResourceID, a.Date.Format("2006-01-02"), a.ActualCost, a.ExpectedCost, a.ZScore),
		})
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Slack message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Slack API error: %s", string(body))
	}

	return nil
}

// LogNotifier is the active path used when no webhook is configured; it
// writes the batch to the service log at warning level.
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

// NotifyHighSeverity logs each anomaly in the batch.
func (n *LogNotifier) NotifyHighSeverity(_ context.Context, anomalies []anomaly.Result) error {
	n.logger.Warnf("HIGH SEVERITY ANOMALIES DETECTED: %d anomalies", len(anomalies))
	for _, a := range anomalies {
		n.logger.Warnf("  - %s: $%.2f (expected: $%.2f), z-score: %.2f",
			a.ResourceID, a.ActualCost, a.ExpectedCost, a.ZScore)
	}
	return nil
}
