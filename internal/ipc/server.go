package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/dockguard/dockguard/internal/config"
	"github.com/dockguard/dockguard/internal/platform"
	"github.com/dockguard/dockguard/internal/runtimepath"
)

// DaemonState is the view of the running daemon the server exposes over
// the socket. Implemented by the daemon controller; defined here so the
// daemon package can depend on ipc and not the other way around.
type DaemonState interface {
	// Status reports the current barrier and guardian state. The server
	// fills in uptime before sending.
	Status() StatusData
	// Recompute schedules an immediate barrier recomputation.
	Recompute()
	// SetPaused suspends or resumes the collision guardian.
	SetPaused(paused bool)
	// SetHighlight toggles the debug tint on the barrier surface.
	SetHighlight(enabled bool)
	// History returns the most recent corrections, newest first.
	History(limit int) ([]CorrectionRecord, error)
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	cfg          *config.Config
	cfgMu        sync.RWMutex
	state        DaemonState
	backend      platform.Backend
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(cfg *config.Config, state DaemonState, backend platform.Backend, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		cfg:        cfg,
		state:      state,
		backend:    backend,
		startTime:  time.Now(),
		reloadChan: reloadChan,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	// Parse request
	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// Handle command
	resp := s.handleCommand(req)

	// Send response
	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetDisplays:
		return s.handleGetDisplays()
	case CommandRecompute:
		return s.handleRecompute()
	case CommandSetPaused:
		return s.handleSetPaused(req.Payload)
	case CommandSetHighlight:
		return s.handleSetHighlight(req.Payload)
	case CommandGetHistory:
		return s.handleGetHistory(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// handleReload reloads the configuration
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	// Load new config
	newCfg, err := config.Load()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}

	// Update config atomically
	s.cfgMu.Lock()
	s.cfg = newCfg
	s.cfgMu.Unlock()

	// Notify the main daemon via channel (non-blocking)
	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	log.Println("IPC: Config reloaded successfully")

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus() *Response {
	status := s.state.Status()
	status.UptimeSeconds = int64(time.Since(s.startTime).Seconds())
	status.DaemonRunning = true

	resp, _ := NewOKResponse(status)
	return resp
}

// handleGetDisplays returns information about all connected displays
func (s *Server) handleGetDisplays() *Response {
	displays, err := s.backend.Displays()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get displays: %v", err))
	}

	infos := make([]DisplayInfo, len(displays))
	for i, d := range displays {
		infos[i] = DisplayInfo{
			ID:      d.ID,
			Name:    d.Name,
			Primary: d.Primary,
			Bounds: RectInfo{
				X:      d.Bounds.X,
				Y:      d.Bounds.Y,
				Width:  d.Bounds.Width,
				Height: d.Bounds.Height,
			},
			Usable: RectInfo{
				X:      d.Usable.X,
				Y:      d.Usable.Y,
				Width:  d.Usable.Width,
				Height: d.Usable.Height,
			},
			BottomInset: d.Bounds.MaxY() - d.Usable.MaxY(),
		}
	}

	data := DisplaysData{
		Displays: infos,
	}

	resp, _ := NewOKResponse(data)
	return resp
}

// handleRecompute schedules an immediate barrier recomputation
func (s *Server) handleRecompute() *Response {
	log.Println("IPC: Received RECOMPUTE command")

	s.state.Recompute()

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleSetPaused suspends or resumes the collision guardian
func (s *Server) handleSetPaused(payload json.RawMessage) *Response {
	var req SetPausedPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid pause payload: %v", err))
	}

	s.state.SetPaused(req.Paused)
	if req.Paused {
		log.Println("IPC: Guardian paused")
	} else {
		log.Println("IPC: Guardian resumed")
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleSetHighlight toggles the debug tint on the barrier surface
func (s *Server) handleSetHighlight(payload json.RawMessage) *Response {
	var req SetHighlightPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid highlight payload: %v", err))
	}

	s.state.SetHighlight(req.Enabled)

	if req.Persist {
		s.cfgMu.Lock()
		s.cfg.DebugHighlight = req.Enabled
		err := s.cfg.Save()
		s.cfgMu.Unlock()
		if err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to save config: %v", err))
		}
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleGetHistory returns recent corrections from the history store
func (s *Server) handleGetHistory(payload json.RawMessage) *Response {
	var req GetHistoryPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid history payload: %v", err))
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 500 {
		limit = 500
	}

	records, err := s.state.History(limit)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to read history: %v", err))
	}

	data := HistoryData{
		Corrections: records,
	}

	resp, _ := NewOKResponse(data)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

// GetConfig returns the current config (thread-safe)
func (s *Server) GetConfig() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg
}

// UpdateConfig updates the config (thread-safe)
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.cfg = cfg
}
