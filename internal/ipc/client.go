package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/dockguard/dockguard/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	// Connect to socket
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	// Set deadline
	conn.SetDeadline(time.Now().Add(c.timeout))

	// Marshal request
	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Send request
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// Read response
	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Parse response
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Check for error response
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	req := &Request{
		Command: CommandReload,
	}

	_, err := c.sendRequest(req)
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	req := &Request{
		Command: CommandGetStatus,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// GetDisplays retrieves display information
func (c *Client) GetDisplays() (*DisplaysData, error) {
	req := &Request{
		Command: CommandGetDisplays,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var displays DisplaysData
	if err := json.Unmarshal(resp.Data, &displays); err != nil {
		return nil, fmt.Errorf("failed to parse displays data: %w", err)
	}

	return &displays, nil
}

// Recompute asks the daemon to recompute the barrier immediately
func (c *Client) Recompute() error {
	req := &Request{
		Command: CommandRecompute,
	}

	_, err := c.sendRequest(req)
	return err
}

// SetPaused suspends or resumes the collision guardian
func (c *Client) SetPaused(paused bool) error {
	payload, err := json.Marshal(SetPausedPayload{
		Paused: paused,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal pause payload: %w", err)
	}

	req := &Request{
		Command: CommandSetPaused,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// SetHighlight toggles the debug tint on the barrier surface. With persist
// set, the daemon also writes debug_highlight to the config file.
func (c *Client) SetHighlight(enabled, persist bool) error {
	payload, err := json.Marshal(SetHighlightPayload{
		Enabled: enabled,
		Persist: persist,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal highlight payload: %w", err)
	}

	req := &Request{
		Command: CommandSetHighlight,
		Payload: payload,
	}

	_, err = c.sendRequest(req)
	return err
}

// GetHistory retrieves the most recent corrections, newest first
func (c *Client) GetHistory(limit int) (*HistoryData, error) {
	payload, err := json.Marshal(GetHistoryPayload{
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history payload: %w", err)
	}

	req := &Request{
		Command: CommandGetHistory,
		Payload: payload,
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	var data HistoryData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse history data: %w", err)
	}

	return &data, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
