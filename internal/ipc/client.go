package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Start requests the daemon to start monitoring.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Audioguard.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop monitoring.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Audioguard.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Audioguard.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeviceList returns the known endpoints with their ignore flags.
func (c *Client) DeviceList() (*DeviceListResponse, error) {
	var resp DeviceListResponse
	if err := c.client.Call("Audioguard.DeviceList", DeviceListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeviceSetIgnored updates one endpoint's ignore flag.
func (c *Client) DeviceSetIgnored(id string, ignored bool) (*DeviceSetIgnoredResponse, error) {
	var resp DeviceSetIgnoredResponse
	req := DeviceSetIgnoredRequest{ID: id, Ignored: ignored}
	if err := c.client.Call("Audioguard.DeviceSetIgnored", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetInterval changes the polling cadence.
func (c *Client) SetInterval(intervalMs int) (*SetIntervalResponse, error) {
	var resp SetIntervalResponse
	req := SetIntervalRequest{IntervalMs: intervalMs}
	if err := c.client.Call("Audioguard.SetInterval", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetNotifications toggles transition notifications.
func (c *Client) SetNotifications(enabled bool) (*SetNotificationsResponse, error) {
	var resp SetNotificationsResponse
	req := SetNotificationsRequest{Enabled: enabled}
	if err := c.client.Call("Audioguard.SetNotifications", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History returns recent journaled transitions.
func (c *Client) History(limit int) (*HistoryResponse, error) {
	var resp HistoryResponse
	req := HistoryRequest{Limit: limit}
	if err := c.client.Call("Audioguard.History", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HistoryClear removes all journal entries.
func (c *Client) HistoryClear() (*HistoryClearResponse, error) {
	var resp HistoryClearResponse
	if err := c.client.Call("Audioguard.HistoryClear", HistoryClearRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Audioguard.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
