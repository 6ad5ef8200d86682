package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"muxsystem/internal/config"
)

const userAgent = "muxsystem/1"

// RunReport summarises a finished mux run.
type RunReport struct {
	Show      string
	Requested int
	Processed int
	Skipped   int
	Failed    int
	Duration  time.Duration
}

// Service is the notification surface the mux pipeline uses.
type Service interface {
	NotifyRunCompleted(ctx context.Context, report RunReport) error
	NotifyRunFailed(ctx context.Context, show string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy notifier, or a no-op when no topic is configured.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notify.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notify.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, report RunReport) error {
	show := strings.TrimSpace(report.Show)
	message := fmt.Sprintf("✅ Muxed %d of %d episodes of %s", report.Processed, report.Requested, show)
	if report.Skipped > 0 || report.Failed > 0 {
		message += fmt.Sprintf(" (%d skipped, %d failed)", report.Skipped, report.Failed)
	}
	if report.Duration > 0 {
		message += " in " + report.Duration.Round(time.Second).String()
	}

	data := payload{
		title:   "muxsystem - Run Complete",
		message: message,
		tags:    []string{"muxsystem", "mux", "completed"},
	}
	if report.Processed == 0 {
		data.title = "muxsystem - Nothing Muxed"
		data.message = fmt.Sprintf("⚠️ No episode of %s was muxed (%d skipped, %d failed)", show, report.Skipped, report.Failed)
		data.tags = []string{"muxsystem", "mux", "warning"}
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, show string, err error) error {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return n.send(ctx, payload{
		title:    "muxsystem - Error",
		message:  fmt.Sprintf("❌ Mux run failed for %s: %s", strings.TrimSpace(show), reason),
		tags:     []string{"muxsystem", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:   "muxsystem - Test",
		message: "🔔 Test notification from muxsystem",
		tags:    []string{"muxsystem", "test"},
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, RunReport) error  { return nil }
func (noopService) NotifyRunFailed(context.Context, string, error) error { return nil }
func (noopService) TestNotification(context.Context) error               { return nil }
