package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aegminer/internal/config"
)

const userAgent = "Aegminer/0.1.0"

// Service defines the push notification surface exposed to the daemon.
type Service interface {
	NotifyMiningStarted(ctx context.Context, address string) error
	NotifyBlockMilestone(ctx context.Context, blocks int64) error
	NotifyMiningStopped(ctx context.Context, blocks int64) error
	NotifyError(ctx context.Context, message string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
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

func (n *ntfyService) NotifyMiningStarted(ctx context.Context, address string) error {
	data := payload{
		title:   "Aegminer - Mining Started",
		message: fmt.Sprintf("Mining to %s", strings.TrimSpace(address)),
		tags:    []string{"aegminer", "mining", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBlockMilestone(ctx context.Context, blocks int64) error {
	data := payload{
		title:   "Aegminer - Blocks Mined",
		message: fmt.Sprintf("%d blocks mined this session", blocks),
		tags:    []string{"aegminer", "blocks"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyMiningStopped(ctx context.Context, blocks int64) error {
	data := payload{
		title:   "Aegminer - Mining Stopped",
		message: fmt.Sprintf("Session ended with %d blocks mined", blocks),
		tags:    []string{"aegminer", "mining", "stopped"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, message string) error {
	data := payload{
		title:    "Aegminer - Error",
		message:  strings.TrimSpace(message),
		tags:     []string{"aegminer", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:   "Aegminer - Test",
		message: "Notifications are working",
		tags:    []string{"aegminer", "test"},
	}
	return n.send(ctx, data)
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

func (noopService) NotifyMiningStarted(context.Context, string) error  { return nil }
func (noopService) NotifyBlockMilestone(context.Context, int64) error  { return nil }
func (noopService) NotifyMiningStopped(context.Context, int64) error   { return nil }
func (noopService) NotifyError(context.Context, string) error          { return nil }
func (noopService) TestNotification(context.Context) error             { return nil }
