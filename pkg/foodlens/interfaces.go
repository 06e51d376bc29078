package foodlens

import (
	"context"
	"time"

	"github.com/himanishpuri/FoodLens/pkg/foodlens/scan"
)

// CaptureDevice is the live camera. Both calls are fire-and-forget from the
// coordinator's point of view; their failures belong to the host.
type CaptureDevice interface {
	SetZoom(ctx context.Context, zoom float64) error
	CapturePhoto(ctx context.Context, req CaptureRequest) error
}

// ScanConsumer receives each accepted scan exactly once, unmodified.
type ScanConsumer interface {
	OnScanAccepted(ctx context.Context, e scan.Event) error
}

// Haptics triggers a short feedback pulse.
type Haptics interface {
	Pulse()
}

// Journal records accepted scans and capture requests.
type Journal interface {
	RecordScan(sessionID string, sym scan.Symbology, e scan.Event, at time.Time) (string, error)
	RecordCapture(sessionID string, req CaptureRequest, at time.Time) (string, error)
	ListScans(limit int) ([]ScanRecord, error)
	ListScansBySession(sessionID string) ([]ScanRecord, error)
	GetScan(id string) (*ScanRecord, error)
	DeleteScan(id string) error
	Stats() (Stats, error)
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
