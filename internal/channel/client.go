package channel

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/bft-labs/warden/internal/domain"
)

// Default client timeouts.
const (
	DefaultDialTimeout     = 2 * time.Second
	DefaultResponseTimeout = 10 * time.Second
)

// Client sends one request per connection to a server.
type Client struct {
	path            string
	dialTimeout     time.Duration
	responseTimeout time.Duration
}

// NewClient creates a client for the socket at path. Zero timeouts use the defaults.
func NewClient(path string, dialTimeout, responseTimeout time.Duration) *Client {
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}
	if responseTimeout <= 0 {
		responseTimeout = DefaultResponseTimeout
	}
	return &Client{path: path, dialTimeout: dialTimeout, responseTimeout: responseTimeout}
}

// Send opens a fresh connection, writes line and returns everything the
// server writes until it closes the connection. Failing to reach the
// server, or the server not answering in time, is reported as
// domain.ErrChannelUnavailable.
func (c *Client) Send(ctx context.Context, line string) (string, error) {
	dialer := net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.path)
	if err != nil {
		return "", fmt.Errorf("%w: dial %s: %v", domain.ErrChannelUnavailable, c.path, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.responseTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("%w: set deadline: %v", domain.ErrChannelUnavailable, err)
	}

	if _, err := io.WriteString(conn, line+"\n"); err != nil {
		return "", fmt.Errorf("%w: write request: %v", domain.ErrChannelUnavailable, err)
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		_ = uc.CloseWrite()
	}

	resp, err := io.ReadAll(conn)
	if err != nil {
		return string(resp), fmt.Errorf("%w: read response: %v", domain.ErrChannelUnavailable, err)
	}
	return string(resp), nil
}
