package instance

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	signalTimeout = 3 * time.Second
	signalRetries = 2
)

// Client talks to the primary over the instance socket.
type Client struct {
	client *resty.Client
}

// NewClient creates a client for the primary listening on path.
func NewClient(path string) *Client {
	dialer := &net.Dialer{Timeout: dialTimeout}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			return dialer.DialContext(ctx, "unix", path)
		},
		DisableKeepAlives: true,
	}

	client := resty.New().
		SetTransport(transport).
		SetBaseURL("http://instance").
		SetTimeout(signalTimeout).
		SetRetryCount(signalRetries).
		SetRetryWaitTime(100 * time.Millisecond).
		SetHeader("Content-Type", "application/json")

	return &Client{client: client}
}

// Activate asks the primary to surface its window.
func (c *Client) Activate(ctx context.Context, args []string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(ActivateRequest{Args: args, PID: os.Getpid()}).
		Post("/activate")
	if err != nil {
		return fmt.Errorf("signal primary: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("signal primary: %s", resp.Status())
	}
	return nil
}

// Healthy reports whether the primary answers its health check.
func (c *Client) Healthy(ctx context.Context) bool {
	resp, err := c.client.R().SetContext(ctx).Get("/health")
	return err == nil && resp.IsSuccess()
}
