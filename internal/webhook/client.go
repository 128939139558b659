// Package webhook forwards intake form submissions and chat messages to the
// configured external webhooks.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/briefdesk/briefdesk/internal/config"
)

var (
	ErrMissingField  = errors.New("missing required field")
	ErrNotConfigured = errors.New("webhook url not configured")
	ErrUnreachable   = errors.New("webhook unreachable")
)

// DefaultTimeout bounds a single webhook call.
const DefaultTimeout = 15 * time.Second

// maxResponseBytes caps how much of a webhook response is read.
const maxResponseBytes = 1 << 20

// instanceKey stores the identifier sent with every webhook call.
const instanceKey = "briefdesk_instance_id"

// StatusError is returned when a webhook answers with a non-2xx status.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook %s returned status %d", e.URL, e.Status)
}

// Client posts JSON payloads to webhooks. Failed calls are not retried.
type Client struct {
	http       *http.Client
	instanceID string
}

// NewClient creates a webhook client with the given timeout.
func NewClient(timeout time.Duration, instanceID string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		instanceID: instanceID,
	}
}

// post sends payload to url and returns the response body.
func (c *Client) post(ctx context.Context, url string, payload interface{}) ([]byte, error) {
	if url == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.instanceID != "" {
		req.Header.Set("X-Briefdesk-Instance", c.instanceID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read webhook response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, Status: resp.StatusCode}
	}
	return respBody, nil
}

// ResolveInstanceID loads the persistent instance identifier from kv,
// generating and storing one on first use.
func ResolveInstanceID(ctx context.Context, kv config.KV) string {
	if kv != nil {
		id, err := kv.Get(ctx, instanceKey)
		if err == nil && id != "" {
			return id
		}
	}

	id := uuid.New().String()

	if kv != nil {
		_ = kv.Set(ctx, instanceKey, id)
	}
	return id
}
