package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/zonetile/internal/engine"
	"github.com/1broseidon/zonetile/internal/resolver"
	"github.com/1broseidon/zonetile/internal/runtimepath"
	"github.com/1broseidon/zonetile/internal/tracker"
	"github.com/1broseidon/zonetile/internal/zone"
)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	eng          *engine.Engine
	startTime    time.Time
	reloadChan   chan struct{}
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer(eng *engine.Engine, reloadChan chan struct{}) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		eng:        eng,
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

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

// Stop shuts the listener down and removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()
	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}

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

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, err)
		return
	}

	resp := s.handleCommand(req)

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

func (s *Server) sendError(conn net.Conn, err error) {
	data, merr := NewErrorResponse(err).Marshal()
	if merr != nil {
		return
	}
	data = append(data, '\n')
	conn.Write(data)
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandReload:
		return s.handleReload()
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetScreens:
		return s.handleGetScreens()
	case CommandListLayouts:
		return s.handleListLayouts()
	case CommandGetLayout:
		return s.handleGetLayout(req.Payload)
	case CommandCreateLayout:
		return s.handleCreateLayout(req.Payload)
	case CommandUpdateZones:
		return s.handleUpdateZones(req.Payload)
	case CommandDeleteLayout:
		return s.handleDeleteLayout(req.Payload)
	case CommandGenerateLayout:
		return s.handleGenerateLayout(req.Payload)
	case CommandBindContext:
		return s.handleBindContext(req.Payload)
	case CommandSnap:
		return s.handleSnap(req.Payload)
	case CommandSnapNumber:
		return s.handleSnapNumber(req.Payload)
	case CommandNavigate:
		return s.handleNavigate(req.Payload)
	case CommandToggleFloat:
		return s.handleToggleFloat(req.Payload)
	case CommandQueryWindow:
		return s.handleQueryWindow(req.Payload)
	case CommandOccupants:
		return s.handleOccupants(req.Payload)
	default:
		return NewErrorResponse(fmt.Errorf("unknown command: %s", req.Command))
	}
}

// handleReload asks the daemon to reload its configuration.
func (s *Server) handleReload() *Response {
	log.Println("IPC: Received RELOAD command")

	select {
	case s.reloadChan <- struct{}{}:
	default:
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		LayoutCount:    len(s.eng.ListLayouts()),
		TrackedWindows: s.eng.TrackedWindows(),
		UptimeSeconds:  int64(time.Since(s.startTime).Seconds()),
		DaemonRunning:  true,
	}
	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleGetScreens() *Response {
	screens, err := s.eng.Screens()
	if err != nil {
		return NewErrorResponse(err)
	}
	infos := make([]ScreenInfo, len(screens))
	for i, sc := range screens {
		infos[i] = ScreenInfo{
			ID:     sc.ID,
			X:      sc.Area.X,
			Y:      sc.Area.Y,
			Width:  sc.Area.Width,
			Height: sc.Area.Height,
		}
	}
	resp, _ := NewOKResponse(ScreensData{Screens: infos})
	return resp
}

func (s *Server) handleListLayouts() *Response {
	resp, _ := NewOKResponse(LayoutsData{Layouts: s.eng.ListLayouts()})
	return resp
}

func (s *Server) handleGetLayout(payload json.RawMessage) *Response {
	var p LayoutPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Errorf("invalid payload: %w", err))
	}
	l, err := s.eng.GetLayout(p.LayoutID)
	if err != nil {
		return NewErrorResponse(err)
	}
	resp, _ := NewOKResponse(l)
	return resp
}

func (s *Server) handleCreateLayout(payload json.RawMessage) *Response {
	var p CreateLayoutPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Errorf("invalid payload: %w", err))
	}
	l, err := s.eng.CreateLayout(p.Layout)
	if err != nil {
		return NewErrorResponse(err)
	}
	resp, _ := NewOKResponse(l)
	return resp
}

func (s *Server) handleUpdateZones(payload json.RawMessage) *Response {
	var p UpdateZonesPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Errorf("invalid payload: %w", err))
	}
	if err := s.eng.UpdateZones(p.LayoutID, p.Zones); err != nil {
		return NewErrorResponse(err)
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleDeleteLayout(payload json.RawMessage) *Response {
	var p LayoutPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Errorf("invalid payload: %w", err))
	}
	if err := s.eng.DeleteLayout(p.LayoutID); err != nil {
		return NewErrorResponse(err)
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleGenerateLayout(payload json.RawMessage) *Response {
	var p GenerateLayoutPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Errorf("invalid payload: %w", err))
	}
	var (
		l   zone.Layout
		err error
	)
	switch p.Kind {
	case "columns":
		l, err = s.eng.GenerateColumns(p.Count)
	case "rows":
		l, err = s.eng.GenerateRows(p.Count)
	case "grid":
		l, err = s.eng.GenerateGrid(p.Cols, p.Rows)
	default:
		return NewErrorResponse(fmt.Errorf("unknown generator kind: %s", p.Kind))
	}
	if err != nil {
		return NewErrorResponse(err)
	}
	resp, _ := NewOKResponse(l)
	return resp
}

func (s *Server) handleBindContext(payload json.RawMessage) *Response {
	var p BindContextPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Errorf("invalid payload: %w", err))
	}
	b := resolver.Binding{
		Screen:   p.Screen,
		Desktop:  p.Desktop,
		Activity: p.Activity,
		LayoutID: p.LayoutID,
	}
	if err := s.eng.BindContext(b); err != nil {
		return NewErrorResponse(err)
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleSnap(payload json.RawMessage) *Response {
	var p SnapPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Errorf("invalid payload: %w", err))
	}
	windowID, err := s.windowID(p.WindowID)
	if err != nil {
		return NewErrorResponse(err)
	}
	target, err := s.eng.SnapToZones(windowID, p.ZoneIDs)
	if err != nil {
		return NewErrorResponse(err)
	}
	resp, _ := NewOKResponse(SnapResult{WindowID: windowID, Target: target})
	return resp
}

func (s *Server) handleSnapNumber(payload json.RawMessage) *Response {
	var p SnapNumberPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Errorf("invalid payload: %w", err))
	}
	windowID, err := s.windowID(p.WindowID)
	if err != nil {
		return NewErrorResponse(err)
	}
	target, err := s.eng.SnapToZoneNumber(windowID, p.Number)
	if err != nil {
		return NewErrorResponse(err)
	}
	resp, _ := NewOKResponse(SnapResult{WindowID: windowID, Target: target})
	return resp
}

func (s *Server) handleNavigate(payload json.RawMessage) *Response {
	var p NavigatePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Errorf("invalid payload: %w", err))
	}
	dir, err := zone.ParseDirection(p.Direction)
	if err != nil {
		return NewErrorResponse(err)
	}
	windowID, err := s.windowID(p.WindowID)
	if err != nil {
		return NewErrorResponse(err)
	}
	moved, err := s.eng.Navigate(windowID, dir)
	if err != nil {
		return NewErrorResponse(err)
	}
	resp, _ := NewOKResponse(NavigateResult{Moved: moved})
	return resp
}

func (s *Server) handleToggleFloat(payload json.RawMessage) *Response {
	var p WindowPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Errorf("invalid payload: %w", err))
	}
	windowID, err := s.windowID(p.WindowID)
	if err != nil {
		return NewErrorResponse(err)
	}
	target, err := s.eng.ToggleFloat(windowID)
	if err != nil {
		return NewErrorResponse(err)
	}
	resp, _ := NewOKResponse(SnapResult{WindowID: windowID, Target: target})
	return resp
}

func (s *Server) handleQueryWindow(payload json.RawMessage) *Response {
	var p WindowPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Errorf("invalid payload: %w", err))
	}
	windowID, err := s.windowID(p.WindowID)
	if err != nil {
		return NewErrorResponse(err)
	}
	entry, err := s.eng.QueryWindowZone(windowID)
	stale := errors.Is(err, tracker.ErrStaleAssignment)
	if err != nil && !stale {
		return NewErrorResponse(err)
	}
	resp, _ := NewOKResponse(WindowZoneData{
		WindowID: entry.WindowID,
		ZoneIDs:  entry.ZoneIDs,
		LayoutID: entry.LayoutID,
		ScreenID: entry.ScreenID,
		Stale:    stale,
	})
	return resp
}

func (s *Server) handleOccupants(payload json.RawMessage) *Response {
	var p LayoutPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Errorf("invalid payload: %w", err))
	}
	occ, err := s.eng.ZoneOccupants(p.LayoutID)
	if err != nil {
		return NewErrorResponse(err)
	}
	resp, _ := NewOKResponse(OccupantsData{LayoutID: p.LayoutID, Occupants: occ})
	return resp
}

// windowID resolves an empty window id to the focused window.
func (s *Server) windowID(requested string) (string, error) {
	if requested != "" {
		return requested, nil
	}
	id, err := s.eng.ActiveWindow()
	if err != nil {
		return "", fmt.Errorf("no window id given and no active window: %w", err)
	}
	return id, nil
}
