// Package webhook forwards waitlist submissions to the spreadsheet-backed
// webhook. Delivery is fire-and-forget: the caller never waits on the
// network and never sees a transport failure.
package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sherpa/waitlist/internal/config"
	"github.com/sherpa/waitlist/internal/domain"
	"github.com/sherpa/waitlist/internal/pkg/logger"
)

// HTTPDoer is the interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Dispatcher posts submissions to the webhook on background goroutines.
type Dispatcher struct {
	cfg      config.WebhookConfig
	url      string
	encoding string
	timeout  time.Duration
	client   HTTPDoer

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. If client is nil, an http.Client with
// the configured timeout is used.
func NewDispatcher(cfg config.WebhookConfig, client HTTPDoer) *Dispatcher {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout()}
	}
	return &Dispatcher{
		cfg:      cfg,
		url:      strings.TrimSpace(cfg.URL),
		encoding: cfg.Encoding,
		timeout:  cfg.Timeout(),
		client:   client,
	}
}

// Configured reports whether a webhook URL is set. A blank URL counts as
// unset.
func (d *Dispatcher) Configured() bool { return d.cfg.Configured() }

// Dispatch encodes the submission and sends it in the background. It makes
// exactly one attempt; failures are logged and dropped. onFailure may be nil;
// otherwise it runs once, on the dispatch goroutine, when delivery fails.
func (d *Dispatcher) Dispatch(id string, sub domain.Submission, onFailure func()) {
	if !d.Configured() {
		logger.Warn("webhook: dispatch without endpoint", "submission_id", id)
		notify(onFailure)
		return
	}

	body, contentType, err := Encode(sub, d.encoding)
	if err != nil {
		logger.Error("webhook: encode failed", "submission_id", id, "error", err)
		notify(onFailure)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		// Detached from the request: the visitor's response has already
		// been written by the time this runs.
		ctx := context.Background()
		if d.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.timeout)
			defer cancel()
		}

		start := time.Now()
		if err := d.post(ctx, body, contentType); err != nil {
			logger.Error("webhook: delivery failed",
				"submission_id", id,
				"email", sub.Email,
				"latency", time.Since(start).String(),
				"error", err)
			notify(onFailure)
			return
		}
		logger.Info("webhook: delivered",
			"submission_id", id,
			"user_type", sub.Audience,
			"latency", time.Since(start).String())
	}()
}

func notify(fn func()) {
	if fn != nil {
		fn()
	}
}

func (d *Dispatcher) post(ctx context.Context, body []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// Drain for connection reuse
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Wait blocks until every in-flight dispatch finishes or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
