package session

import (
	"context"
	"sync"

	"github.com/himanishpuri/FoodLens/pkg/foodlens"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/scan"
)

// CommandKind names an instruction for the host.
type CommandKind string

const (
	CmdSetZoom      CommandKind = "set_zoom"
	CmdCapture      CommandKind = "capture"
	CmdHaptic       CommandKind = "haptic"
	CmdScanAccepted CommandKind = "scan_accepted"
)

// Command is something the coordinator asked the host to do.
type Command struct {
	Kind    CommandKind              `json:"kind"`
	Zoom    *float64                 `json:"zoom,omitempty"`
	Capture *foodlens.CaptureRequest `json:"capture,omitempty"`
	Scan    *scan.Event              `json:"scan,omitempty"`
}

// Recorder stands in for the device, haptics and scan consumer of a remote
// host. It queues commands until Drain.
type Recorder struct {
	mu       sync.Mutex
	commands []Command
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Options wires the recorder into a coordinator.
func (r *Recorder) Options() []foodlens.Option {
	return []foodlens.Option{
		foodlens.WithCaptureDevice(r),
		foodlens.WithHaptics(r),
		foodlens.WithScanConsumer(r),
	}
}

func (r *Recorder) SetZoom(ctx context.Context, zoom float64) error {
	r.push(Command{Kind: CmdSetZoom, Zoom: &zoom})
	return nil
}

func (r *Recorder) CapturePhoto(ctx context.Context, req foodlens.CaptureRequest) error {
	r.push(Command{Kind: CmdCapture, Capture: &req})
	return nil
}

func (r *Recorder) Pulse() {
	r.push(Command{Kind: CmdHaptic})
}

func (r *Recorder) OnScanAccepted(ctx context.Context, e scan.Event) error {
	r.push(Command{Kind: CmdScanAccepted, Scan: &e})
	return nil
}

// Drain returns and clears the queued commands.
func (r *Recorder) Drain() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.commands
	r.commands = nil
	return out
}

func (r *Recorder) push(c Command) {
	r.mu.Lock()
	r.commands = append(r.commands, c)
	r.mu.Unlock()
}
