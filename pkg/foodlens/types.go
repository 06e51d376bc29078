package foodlens

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/himanishpuri/FoodLens/pkg/foodlens/frame"
)

var (
	// ErrBarcodeModeOff rejects scans while the camera is in photo mode.
	ErrBarcodeModeOff = errors.New("barcode mode is off")

	// ErrScanningPaused rejects scans after an accept until ResumeScanning.
	ErrScanningPaused = errors.New("scanning paused")
)

// Mode is what the camera screen is currently doing.
type Mode int

const (
	ModeBarcode Mode = iota
	ModePhoto
)

func (m Mode) String() string {
	if m == ModePhoto {
		return "photo"
	}
	return "barcode"
}

// ParseMode parses "barcode" or "photo".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "barcode", "scan":
		return ModeBarcode, nil
	case "photo", "camera":
		return ModePhoto, nil
	}
	return ModeBarcode, fmt.Errorf("unknown mode %q", s)
}

// CaptureRequest is handed to the capture device when the user takes a photo.
// Crop is relative to the camera surface and nil when no crop is possible yet.
type CaptureRequest struct {
	Zoom float64     `json:"zoom"`
	Crop *frame.Rect `json:"crop,omitempty"`
}

// Cropped reports whether the request carries a crop rectangle.
func (r CaptureRequest) Cropped() bool {
	return r.Crop != nil
}

// ScanRecord is a journalled accepted scan.
type ScanRecord struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Symbology  string    `json:"symbology"`
	Payload    string    `json:"payload"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// Stats summarises the journal.
type Stats struct {
	Scans    int64 `json:"scans"`
	Captures int64 `json:"captures"`
}
