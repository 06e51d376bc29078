//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"github.com/himanishpuri/FoodLens/pkg/foodlens"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/frame"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/scan"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/session"
	"github.com/himanishpuri/FoodLens/pkg/logger"
	"github.com/himanishpuri/FoodLens/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	maxBodyBytes     = 1 << 20
	defaultScanLimit = 50
	maxScanLimit     = 500
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	journal  foodlens.Journal
	config   *ServerConfig
	opts     []foodlens.Option
	sessions *sessionHub
	upgrader websocket.Upgrader
	log      foodlens.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	AllowedOrigins []string
}

// NewServer creates a new server instance. opts are applied to every session
// coordinator before the per-request settings.
func NewServer(journal foodlens.Journal, config *ServerConfig, opts ...foodlens.Option) *Server {
	return &Server{
		journal:  journal,
		config:   config,
		opts:     opts,
		sessions: newSessionHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(config.AllowedOrigins),
		},
		log: logger.Named("server"),
	}
}

// Close shuts down every live session
func (s *Server) Close() {
	s.sessions.closeAll()
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// decodeBody reads a JSON request body into v. An empty body leaves v as is.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "FoodLens capture API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":        "GET /health",
			"metrics":       "GET /api/health/metrics",
			"createSession": "POST /api/sessions",
			"getSession":    "GET /api/sessions/{id}",
			"deleteSession": "DELETE /api/sessions/{id}",
			"postEvents":    "POST /api/sessions/{id}/events",
			"stream":        "GET /api/sessions/{id}/stream",
			"scans":         "GET /api/scans",
			"getScan":       "GET /api/scans/{id}",
			"deleteScan":    "DELETE /api/scans/{id}",
			"validate":      "POST /api/validate",
			"frame":         "POST /api/frame",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.journal.Stats()
	if err != nil {
		s.log.Errorf("Failed to get journal stats: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:         "healthy",
		DatabasePath:   s.config.DBPath,
		ActiveSessions: s.sessions.count(),
		ScanCount:      stats.Scans,
		CaptureCount:   stats.Captures,
	})
}

// handleCreateSession handles POST /api/sessions
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := append([]foodlens.Option{}, s.opts...)
	opts = append(opts, foodlens.WithJournal(s.journal))
	if req.SessionID != "" {
		opts = append(opts, foodlens.WithSessionID(req.SessionID))
	}
	if req.Mode != "" {
		m, _ := foodlens.ParseMode(req.Mode)
		opts = append(opts, foodlens.WithMode(m))
	}
	if req.InitialZoom != nil {
		opts = append(opts, foodlens.WithInitialZoom(*req.InitialZoom))
	}

	ls, err := s.sessions.create(opts...)
	if errors.Is(err, errSessionExists) {
		s.respondError(w, http.StatusConflict, "Session "+req.SessionID+" already exists")
		return
	}
	if err != nil {
		s.log.Errorf("Failed to create session: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	if req.Ready {
		ls.mu.Lock()
		ls.coord.SetReady(true)
		ls.mu.Unlock()
	}

	snap := ls.snapshot()
	s.log.Infof("Created session %s (mode %s)", snap.ID, snap.Mode)
	s.respondJSON(w, http.StatusCreated, snap)
}

// handleGetSession handles GET /api/sessions/{id}
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ls, ok := s.sessions.get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "Session "+id+" not found")
		return
	}
	s.respondJSON(w, http.StatusOK, ls.snapshot())
}

// handleDeleteSession handles DELETE /api/sessions/{id}
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ls, ok := s.sessions.remove(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "Session "+id+" not found")
		return
	}
	if err := ls.close(); err != nil {
		s.log.Warnf("Closing session %s: %v", id, err)
	}

	s.log.Infof("Closed session %s", id)
	s.respondJSON(w, http.StatusOK, DeleteResponse{
		Message: "Session closed",
		ID:      id,
	})
}

// handlePostEvents handles POST /api/sessions/{id}/events
func (s *Server) handlePostEvents(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ls, ok := s.sessions.get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "Session "+id+" not found")
		return
	}

	var req EventsRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Events) > EventBatchWarningThreshold {
		s.log.Warnf("Large event batch for session %s: %d events", id, len(req.Events))
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	outcomes, err := ls.apply(ctx, req.Events)
	if err != nil {
		s.respondError(w, http.StatusGone, "Session "+id+" is closed")
		return
	}
	s.respondJSON(w, http.StatusOK, EventsResponse{
		SessionID: id,
		Outcomes:  outcomes,
		Summary:   session.Summarize(outcomes),
		Zoom:      ls.snapshot().Zoom,
	})
}

// handleListScans handles GET /api/scans
func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	var (
		scans []foodlens.ScanRecord
		err   error
	)
	if sessionID := r.URL.Query().Get("session"); sessionID != "" {
		scans, err = s.journal.ListScansBySession(sessionID)
	} else {
		limit := defaultScanLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, convErr := strconv.Atoi(v)
			if convErr != nil || n <= 0 {
				s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			if n > maxScanLimit {
				n = maxScanLimit
			}
			limit = n
		}
		scans, err = s.journal.ListScans(limit)
	}
	if err != nil {
		s.log.Errorf("Failed to list scans: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve scans")
		return
	}

	if scans == nil {
		scans = []foodlens.ScanRecord{}
	}
	s.respondJSON(w, http.StatusOK, ListScansResponse{
		Scans: scans,
		Count: len(scans),
	})
}

// handleGetScan handles GET /api/scans/{id}
func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !utils.IsUUID(id) {
		s.respondError(w, http.StatusBadRequest, "Invalid scan ID: "+id)
		return
	}
	rec, err := s.journal.GetScan(id)
	if foodlens.IsNotFound(err) {
		s.respondError(w, http.StatusNotFound, "Scan "+id+" not found")
		return
	}
	if err != nil {
		s.log.Errorf("Failed to get scan %s: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve scan")
		return
	}
	s.respondJSON(w, http.StatusOK, rec)
}

// handleDeleteScan handles DELETE /api/scans/{id}
func (s *Server) handleDeleteScan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !utils.IsUUID(id) {
		s.respondError(w, http.StatusBadRequest, "Invalid scan ID: "+id)
		return
	}
	err := s.journal.DeleteScan(id)
	if foodlens.IsNotFound(err) {
		s.respondError(w, http.StatusNotFound, "Scan "+id+" not found")
		return
	}
	if err != nil {
		s.log.Errorf("Failed to delete scan %s: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to delete scan")
		return
	}

	s.log.Infof("Deleted scan %s", id)
	s.respondJSON(w, http.StatusOK, DeleteResponse{
		Message: "Scan deleted successfully",
		ID:      id,
	})
}

// handleValidate handles POST /api/validate
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := scan.Validate(scan.Event{Type: req.Type, Data: req.Data}, nil); err != nil {
		s.respondJSON(w, http.StatusOK, ValidateResponse{Valid: false, Reason: err.Error()})
		return
	}
	sym, _ := scan.ParseSymbology(req.Type)
	s.respondJSON(w, http.StatusOK, ValidateResponse{Valid: true, Symbology: sym.String()})
}

// handleFrame handles POST /api/frame
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	var req FrameRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	s.respondJSON(w, http.StatusOK, FrameResponse{
		Crop: frame.ComputeRelativeFrame(req.Frame, req.Surface),
	})
}
