package foodlens

import (
	"time"

	"github.com/himanishpuri/FoodLens/pkg/foodlens/gesture"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/scan"
)

// Config holds the settings a Coordinator is built from.
type Config struct {
	SessionID     string
	DBPath        string
	Tuning        gesture.Tuning
	Cooldown      time.Duration
	Symbologies   []string
	InitialZoom   float64
	Mode          Mode
	PauseOnAccept bool
	Logger        Logger
	Journal       Journal
	Device        CaptureDevice
	Consumer      ScanConsumer
	Haptics       Haptics
	Now           func() time.Time
}

// Option configures a Coordinator.
type Option func(*Config)

// WithSessionID sets the id journalled with every scan. Defaults to a new UUID.
func WithSessionID(id string) Option {
	return func(c *Config) {
		c.SessionID = id
	}
}

// WithDBPath opens a sqlite journal at path unless WithJournal is also given.
func WithDBPath(path string) Option {
	return func(c *Config) {
		c.DBPath = path
	}
}

func WithTuning(t gesture.Tuning) Option {
	return func(c *Config) {
		c.Tuning = t
	}
}

// WithCooldown sets how long a payload is ignored after it was accepted. The
// debouncer counts whole milliseconds, so NewCoordinator rejects positive
// values under 1ms; zero or less keeps the 1s default.
func WithCooldown(d time.Duration) Option {
	return func(c *Config) {
		c.Cooldown = d
	}
}

// WithSymbologies narrows the accepted symbologies.
func WithSymbologies(names ...string) Option {
	return func(c *Config) {
		c.Symbologies = names
	}
}

// WithInitialZoom sets the starting zoom, clamped to [0, 1].
func WithInitialZoom(zoom float64) Option {
	return func(c *Config) {
		c.InitialZoom = zoom
	}
}

func WithMode(m Mode) Option {
	return func(c *Config) {
		c.Mode = m
	}
}

// WithPauseOnAccept stops accepting scans after the first accept until the
// host calls ResumeScanning.
func WithPauseOnAccept(pause bool) Option {
	return func(c *Config) {
		c.PauseOnAccept = pause
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func WithJournal(j Journal) Option {
	return func(c *Config) {
		c.Journal = j
	}
}

// WithCaptureDevice sets the camera that receives zoom and capture commands.
func WithCaptureDevice(d CaptureDevice) Option {
	return func(c *Config) {
		c.Device = d
	}
}

func WithScanConsumer(sc ScanConsumer) Option {
	return func(c *Config) {
		c.Consumer = sc
	}
}

func WithHaptics(h Haptics) Option {
	return func(c *Config) {
		c.Haptics = h
	}
}

// WithClock overrides time.Now for journal timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}

func defaultConfig() *Config {
	return &Config{
		Tuning:   gesture.DefaultTuning(),
		Cooldown: time.Duration(scan.DefaultCooldownMs) * time.Millisecond,
		Mode:     ModeBarcode,
		Now:      time.Now,
	}
}
