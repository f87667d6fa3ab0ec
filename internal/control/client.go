package control

import (
	"context"
	"fmt"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
)

// Client talks to a running daemon's control endpoint.
type Client struct {
	cli *jrpc2.Client
}

// Dial connects to the local daemon. It fails fast when no daemon is
// running.
func Dial() (*Client, error) {
	conn, err := dialEndpoint()
	if err != nil {
		return nil, fmt.Errorf("daemon not reachable (is `earthwall daemon` running?): %w", err)
	}
	return &Client{
		cli: jrpc2.NewClient(channel.Line(conn, conn), nil),
	}, nil
}

// Refresh triggers a manual refresh cycle.
func (c *Client) Refresh(ctx context.Context) (*RefreshResult, error) {
	var res RefreshResult
	if err := c.cli.CallResult(ctx, MethodRefresh, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Status reports the daemon's scheduler status.
func (c *Client) Status(ctx context.Context) (*StatusResult, error) {
	var res StatusResult
	if err := c.cli.CallResult(ctx, MethodStatus, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// History lists recent refresh cycles, newest first.
func (c *Client) History(ctx context.Context, limit int) (*HistoryResult, error) {
	var res HistoryResult
	if err := c.cli.CallResult(ctx, MethodHistory, &HistoryParams{Limit: limit}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Version reports the daemon's version string.
func (c *Client) Version(ctx context.Context) (*VersionResult, error) {
	var res VersionResult
	if err := c.cli.CallResult(ctx, MethodVersion, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.cli.Close()
}
