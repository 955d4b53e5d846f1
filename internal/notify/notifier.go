package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dormi-app/dormi-api/pkg/config"
	"github.com/dormi-app/dormi-api/pkg/jobs"
)

// Message is a push notification addressed to one account.
type Message struct {
	UserID string `json:"user_id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Pusher delivers a message to a device token.
type Pusher interface {
	Push(ctx context.Context, token string, msg Message) error
}

// TokenSource resolves the device token for an account.
type TokenSource interface {
	FCMToken(ctx context.Context, userID string) (string, error)
}

// Dispatcher queues notifications for asynchronous delivery. Failures are
// logged and retried by the queue; they never reach the caller.
type Dispatcher struct {
	queue   *jobs.Queue
	tokens  TokenSource
	pusher  Pusher
	enabled bool
	logger  *zap.Logger
}

// NewDispatcher builds a dispatcher backed by an in-memory worker queue.
func NewDispatcher(cfg config.NotifierConfig, tokens TokenSource, pusher Pusher, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		tokens:  tokens,
		pusher:  pusher,
		enabled: cfg.Enabled,
		logger:  logger,
	}
	d.queue = jobs.NewQueue("notifications", d.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	return d
}

// Start launches the delivery workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the workers.
func (d *Dispatcher) Stop() {
	d.queue.Stop()
}

// Send enqueues a notification. It never returns an error; delivery problems
// are handled out of band.
func (d *Dispatcher) Send(msg Message) {
	if !d.enabled {
		return
	}
	if err := d.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "push",
		Payload: msg,
	}); err != nil {
		d.logger.Sugar().Warnw("notification dropped", "user_id", msg.UserID, "error", err)
	}
}

func (d *Dispatcher) handle(ctx context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(Message)
	if !ok {
		d.logger.Sugar().Errorw("invalid notification payload", "job_id", job.ID)
		return nil
	}

	token, err := d.tokens.FCMToken(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("resolve token for %s: %w", msg.UserID, err)
	}
	if token == "" {
		d.logger.Sugar().Debugw("no device token, skipping notification", "user_id", msg.UserID)
		return nil
	}

	if err := d.pusher.Push(ctx, token, msg); err != nil {
		return fmt.Errorf("push to %s: %w", msg.UserID, err)
	}
	return nil
}

// HTTPPusher posts messages to a push gateway.
type HTTPPusher struct {
	endpoint  string
	serverKey string
	client    *http.Client
}

// NewHTTPPusher builds a pusher against the configured gateway endpoint.
func NewHTTPPusher(cfg config.NotifierConfig) *HTTPPusher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPPusher{
		endpoint:  cfg.Endpoint,
		serverKey: cfg.ServerKey,
		client:    &http.Client{Timeout: timeout},
	}
}

type pushRequest struct {
	To           string           `json:"to"`
	Notification pushNotification `json:"notification"`
}

type pushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Push sends a single notification to the gateway.
func (p *HTTPPusher) Push(ctx context.Context, token string, msg Message) error {
	body, err := json.Marshal(pushRequest{
		To:           token,
		Notification: pushNotification{Title: msg.Title, Body: msg.Body},
	})
	if err != nil {
		return fmt.Errorf("encode push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.serverKey != "" {
		req.Header.Set("Authorization", "key="+p.serverKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway returned %d", resp.StatusCode)
	}
	return nil
}
