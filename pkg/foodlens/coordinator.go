// Package foodlens is the camera capture coordinator of the FoodLens scanner
// screen. It turns the host view's touch, recognition and layout callbacks into
// zoom changes, accepted scans and cropped capture requests.
package foodlens

import (
	"context"
	"fmt"
	"time"

	"github.com/himanishpuri/FoodLens/pkg/foodlens/frame"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/gesture"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/scan"
	"github.com/himanishpuri/FoodLens/pkg/logger"
	"github.com/himanishpuri/FoodLens/pkg/utils"
)

// Coordinator owns the gesture, scan and layout state of one camera screen.
// The host creates one when the screen mounts and closes it on unmount.
//
// A Coordinator is not safe for concurrent use: every call is expected to come
// from the host's input thread.
type Coordinator struct {
	id         string
	config     *Config
	log        Logger
	journal    Journal
	ownJournal bool

	resolver  *gesture.Resolver
	debouncer *scan.Debouncer
	layout    frame.Layout

	zoom   float64
	ready  bool
	mode   Mode
	paused bool
}

// NewCoordinator applies opts over the defaults and opens the journal named by
// WithDBPath when no Journal is given.
func NewCoordinator(opts ...Option) (*Coordinator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Cooldown > 0 && cfg.Cooldown < time.Millisecond {
		return nil, fmt.Errorf("scan cooldown %v is below the 1ms resolution", cfg.Cooldown)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.Named("capture")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.SessionID == "" {
		cfg.SessionID = utils.GenerateUUID()
	}

	var allowed scan.Set
	if len(cfg.Symbologies) > 0 {
		set, err := scan.NewSet(cfg.Symbologies...)
		if err != nil {
			return nil, fmt.Errorf("invalid symbologies: %w", err)
		}
		allowed = set
	}

	c := &Coordinator{
		id:        cfg.SessionID,
		config:    cfg,
		log:       cfg.Logger,
		journal:   cfg.Journal,
		resolver:  gesture.NewResolver(cfg.Tuning),
		debouncer: scan.NewDebouncer(cfg.Cooldown.Milliseconds(), allowed),
		zoom:      gesture.Clamp(cfg.InitialZoom),
		mode:      cfg.Mode,
	}

	if c.journal == nil && cfg.DBPath != "" {
		j, err := openJournal(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		c.journal = j
		c.ownJournal = true
	}

	return c, nil
}

// ID identifies this camera session in the journal.
func (c *Coordinator) ID() string {
	return c.id
}

// Zoom is the current zoom level in [0,1].
func (c *Coordinator) Zoom() float64 {
	return c.zoom
}

// Gesture returns a copy of the current gesture session.
func (c *Coordinator) Gesture() gesture.Session {
	return c.resolver.Session()
}

// ScanState returns a copy of the debounce state.
func (c *Coordinator) ScanState() scan.State {
	return c.debouncer.State()
}

// Journal returns the configured journal, or nil.
func (c *Coordinator) Journal() Journal {
	return c.journal
}

// SetReady records whether the camera device reports itself ready.
func (c *Coordinator) SetReady(ready bool) {
	c.ready = ready
}

func (c *Coordinator) Ready() bool {
	return c.ready
}

// SetMode switches between barcode scanning and photo capture.
func (c *Coordinator) SetMode(m Mode) {
	if m != c.mode {
		c.log.Debugf("session %s: mode %s -> %s", c.id, c.mode, m)
	}
	c.mode = m
}

func (c *Coordinator) Mode() Mode {
	return c.mode
}

// ResumeScanning re-enables scanning after a pause-on-accept.
func (c *Coordinator) ResumeScanning() {
	c.paused = false
}

func (c *Coordinator) Paused() bool {
	return c.paused
}

// TouchStart begins a zoom gesture when exactly two fingers are down.
func (c *Coordinator) TouchStart(touches []gesture.Point) bool {
	return c.resolver.Start(touches)
}

// TouchMove feeds a movement sample. When it produces a new zoom level the
// level is applied to the device and, for large steps, a haptic pulse fires.
func (c *Coordinator) TouchMove(ctx context.Context, touches []gesture.Point) (gesture.Proposal, bool) {
	p, ok := c.resolver.Move(touches, c.zoom)
	if !ok {
		return p, false
	}

	c.zoom = p.Zoom
	if c.config.Device != nil {
		if err := c.config.Device.SetZoom(ctx, p.Zoom); err != nil {
			c.log.Warnf("session %s: set zoom %.3f: %v", c.id, p.Zoom, err)
		}
	}
	if p.Feedback && c.config.Haptics != nil {
		c.config.Haptics.Pulse()
	}
	return p, true
}

// TouchEnd releases the current gesture.
func (c *Coordinator) TouchEnd() {
	c.resolver.End()
}

// Scan handles one raw recognition callback. nowMs is the host's wall clock in
// milliseconds. Accepted events are journalled and forwarded once to the
// consumer; consumer and journal failures do not undo the accept.
func (c *Coordinator) Scan(ctx context.Context, e scan.Event, nowMs int64) scan.Result {
	if c.mode != ModeBarcode {
		return scan.Result{Decision: scan.Reject, Reason: ErrBarcodeModeOff}
	}
	if c.paused {
		return scan.Result{Decision: scan.Reject, Reason: ErrScanningPaused}
	}

	res := c.debouncer.OnRawScan(e, nowMs, c.ready)
	if !res.Accepted() {
		c.log.Debugf("session %s: rejected %s scan: %v", c.id, e.Type, res.Reason)
		return res
	}

	// Validate already resolved the type, so this cannot fail here.
	sym, _ := scan.ParseSymbology(e.Type)
	c.log.Infof("session %s: accepted %s %q", c.id, sym, e.Data)

	if c.config.PauseOnAccept {
		c.paused = true
	}
	if c.journal != nil {
		if _, err := c.journal.RecordScan(c.id, sym, e, time.UnixMilli(nowMs)); err != nil {
			c.log.Errorf("session %s: journal scan: %v", c.id, err)
		}
	}
	if c.config.Consumer != nil {
		if err := c.config.Consumer.OnScanAccepted(ctx, e); err != nil {
			c.log.Warnf("session %s: scan consumer: %v", c.id, err)
		}
	}
	return res
}

// MeasureViewfinder records a window-absolute viewfinder measurement.
func (c *Coordinator) MeasureViewfinder(r frame.Rect) {
	c.layout.MeasureViewfinder(r)
}

// MeasureSurface records a window-absolute camera surface measurement.
func (c *Coordinator) MeasureSurface(r frame.Rect) {
	c.layout.MeasureSurface(r)
}

// RelativeFrame is the current crop rectangle, or nil before both layouts
// have been measured.
func (c *Coordinator) RelativeFrame() *frame.Rect {
	return c.layout.RelativeFrame()
}

// Capture requests a photo at the current zoom, cropped to the viewfinder when
// both layouts are known and uncropped otherwise. The request is returned even
// when the device fails.
func (c *Coordinator) Capture(ctx context.Context) (CaptureRequest, error) {
	req := CaptureRequest{Zoom: c.zoom, Crop: c.layout.RelativeFrame()}
	if req.Crop == nil {
		c.log.Debugf("session %s: layout not measured yet, capturing uncropped", c.id)
	}

	if c.journal != nil {
		if _, err := c.journal.RecordCapture(c.id, req, c.config.Now()); err != nil {
			c.log.Errorf("session %s: journal capture: %v", c.id, err)
		}
	}

	if c.config.Device != nil {
		if err := c.config.Device.CapturePhoto(ctx, req); err != nil {
			return req, fmt.Errorf("capture photo: %w", err)
		}
	}
	return req, nil
}

// Close releases a journal the coordinator opened itself.
func (c *Coordinator) Close() error {
	if c.ownJournal && c.journal != nil {
		return c.journal.Close()
	}
	return nil
}
