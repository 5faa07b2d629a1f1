package ipc

import (
	"encoding/json"
	"fmt"
	"time"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload       CommandType = "RELOAD"
	CommandGetStatus    CommandType = "GET_STATUS"
	CommandGetDisplays  CommandType = "GET_DISPLAYS"
	CommandRecompute    CommandType = "RECOMPUTE"
	CommandSetPaused    CommandType = "SET_PAUSED"
	CommandSetHighlight CommandType = "SET_HIGHLIGHT"
	CommandGetHistory   CommandType = "GET_HISTORY"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// RectInfo is a rectangle in root coordinates
type RectInfo struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	InstanceID     string   `json:"instance_id"`
	UptimeSeconds  int64    `json:"uptime_seconds"`
	DaemonRunning  bool     `json:"daemon_running"`
	BarrierActive  bool     `json:"barrier_active"`
	BarrierVisible bool     `json:"barrier_visible"`
	Barrier        RectInfo `json:"barrier"`
	Highlight      bool     `json:"highlight"`
	Paused         bool     `json:"paused"`
	DisplayCount   int      `json:"display_count"`
	Ticks          uint64   `json:"ticks"`
	Corrections    uint64   `json:"corrections"`
	LastCorrection string   `json:"last_correction,omitempty"` // RFC3339, empty when none
}

// DisplayInfo represents information about a single display
type DisplayInfo struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Primary     bool     `json:"primary"`
	Bounds      RectInfo `json:"bounds"`
	Usable      RectInfo `json:"usable"`
	BottomInset int      `json:"bottom_inset"`
}

// DisplaysData represents the data returned by GET_DISPLAYS
type DisplaysData struct {
	Displays []DisplayInfo `json:"displays"`
}

// SetPausedPayload represents the payload for SET_PAUSED
type SetPausedPayload struct {
	Paused bool `json:"paused"`
}

// SetHighlightPayload represents the payload for SET_HIGHLIGHT
type SetHighlightPayload struct {
	Enabled bool `json:"enabled"`
	Persist bool `json:"persist,omitempty"` // also write debug_highlight to the config file
}

// GetHistoryPayload represents the payload for GET_HISTORY
type GetHistoryPayload struct {
	Limit int `json:"limit,omitempty"`
}

// CorrectionRecord is one applied window shrink from the history store
type CorrectionRecord struct {
	At        time.Time `json:"at"`
	WindowID  uint32    `json:"window_id"`
	Class     string    `json:"class"`
	Title     string    `json:"title,omitempty"`
	Overlap   int       `json:"overlap"`
	OldHeight int       `json:"old_height"`
	NewHeight int       `json:"new_height"`
}

// HistoryData represents the data returned by GET_HISTORY
type HistoryData struct {
	Corrections []CorrectionRecord `json:"corrections"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
