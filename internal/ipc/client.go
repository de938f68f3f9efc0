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

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Aegminer.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartMining requests a new mining session.
func (c *Client) StartMining() (*StartMiningResponse, error) {
	var resp StartMiningResponse
	if err := c.client.Call("Aegminer.StartMining", StartMiningRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StopMining requests termination of the live mining session.
func (c *Client) StopMining() (*StopMiningResponse, error) {
	var resp StopMiningResponse
	if err := c.client.Call("Aegminer.StopMining", StopMiningRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Shutdown asks the daemon process to exit.
func (c *Client) Shutdown() (*ShutdownResponse, error) {
	var resp ShutdownResponse
	if err := c.client.Call("Aegminer.Shutdown", ShutdownRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Events fetches buffered events after the given cursor.
func (c *Client) Events(req EventsRequest) (*EventsResponse, error) {
	var resp EventsResponse
	if err := c.client.Call("Aegminer.Events", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Balance queries the wallet balance through the daemon.
func (c *Client) Balance() (*BalanceResponse, error) {
	var resp BalanceResponse
	if err := c.client.Call("Aegminer.Balance", BalanceRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MiningInfo queries current mining statistics through the daemon.
func (c *Client) MiningInfo() (*MiningInfoResponse, error) {
	var resp MiningInfoResponse
	if err := c.client.Call("Aegminer.MiningInfo", MiningInfoRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History retrieves recorded sessions, newest first.
func (c *Client) History(limit int) (*HistoryResponse, error) {
	var resp HistoryResponse
	if err := c.client.Call("Aegminer.History", HistoryRequest{Limit: limit}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionBlocks retrieves the blocks recorded for one session.
func (c *Client) SessionBlocks(sessionID string) (*SessionBlocksResponse, error) {
	var resp SessionBlocksResponse
	req := SessionBlocksRequest{SessionID: sessionID}
	if err := c.client.Call("Aegminer.SessionBlocks", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Aegminer.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Aegminer.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
