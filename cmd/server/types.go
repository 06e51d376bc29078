//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"fmt"

	"github.com/himanishpuri/FoodLens/pkg/foodlens"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/frame"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/session"
)

// Batch limits for POST /api/sessions/{id}/events
const (
	// MaxEventsPerBatch is the absolute maximum accepted in one request
	MaxEventsPerBatch = 1000

	// EventBatchWarningThreshold triggers logging for large batches
	EventBatchWarningThreshold = 250
)

// CreateSessionRequest is the request body for POST /api/sessions
type CreateSessionRequest struct {
	SessionID   string   `json:"session_id,omitempty"`
	Mode        string   `json:"mode,omitempty"`
	InitialZoom *float64 `json:"initial_zoom,omitempty"`
	Ready       bool     `json:"ready"`
}

// Validate checks if the request is valid
func (r *CreateSessionRequest) Validate() error {
	if r.Mode != "" {
		if _, err := foodlens.ParseMode(r.Mode); err != nil {
			return err
		}
	}
	if r.InitialZoom != nil && (*r.InitialZoom < 0 || *r.InitialZoom > 1) {
		return fmt.Errorf("initial_zoom must be within [0,1], got %g", *r.InitialZoom)
	}
	return nil
}

// SessionResponse describes a live camera session
type SessionResponse struct {
	ID            string      `json:"id"`
	Mode          string      `json:"mode"`
	Zoom          float64     `json:"zoom"`
	Ready         bool        `json:"ready"`
	Paused        bool        `json:"paused"`
	GestureActive bool        `json:"gesture_active"`
	Crop          *frame.Rect `json:"crop,omitempty"`
}

// EventsRequest is the request body for POST /api/sessions/{id}/events
type EventsRequest struct {
	Events []session.Event `json:"events"`
}

// Validate checks if the request is valid
func (r *EventsRequest) Validate() error {
	if len(r.Events) == 0 {
		return fmt.Errorf("events cannot be empty")
	}
	if len(r.Events) > MaxEventsPerBatch {
		return fmt.Errorf("too many events: %d (maximum: %d)", len(r.Events), MaxEventsPerBatch)
	}
	for i, e := range r.Events {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}

// EventsResponse is the response for POST /api/sessions/{id}/events
type EventsResponse struct {
	SessionID string            `json:"session_id"`
	Outcomes  []session.Outcome `json:"outcomes"`
	Summary   session.Summary   `json:"summary"`
	Zoom      float64           `json:"zoom"`
}

// ListScansResponse is the response for GET /api/scans
type ListScansResponse struct {
	Scans []foodlens.ScanRecord `json:"scans"`
	Count int                   `json:"count"`
}

// DeleteResponse is the response for DELETE endpoints
type DeleteResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ValidateRequest is the request body for POST /api/validate
type ValidateRequest struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// ValidateResponse is the response for POST /api/validate
type ValidateResponse struct {
	Valid     bool   `json:"valid"`
	Symbology string `json:"symbology,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// FrameRequest is the request body for POST /api/frame
type FrameRequest struct {
	Frame   *frame.Rect `json:"frame"`
	Surface *frame.Rect `json:"surface"`
}

// FrameResponse is the response for POST /api/frame. Crop is null when either
// input is missing.
type FrameResponse struct {
	Crop *frame.Rect `json:"crop"`
}

// MetricsResponse is the response for GET /api/health/metrics
type MetricsResponse struct {
	Status         string `json:"status"`
	DatabasePath   string `json:"database_path"`
	ActiveSessions int    `json:"active_sessions"`
	ScanCount      int64  `json:"scan_count"`
	CaptureCount   int64  `json:"capture_count"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// StreamMessage is the envelope for every websocket frame, in both directions
type StreamMessage struct {
	Type    string      `json:"type"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Success bool        `json:"success"`
}

// Stream message types
const (
	MsgTypeHello   = "hello"
	MsgTypeEvent   = "event"
	MsgTypeOutcome = "outcome"
	MsgTypePing    = "ping"
	MsgTypeClosed  = "closed"
)
