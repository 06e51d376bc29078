package session

import (
	"context"

	"github.com/himanishpuri/FoodLens/pkg/foodlens"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/frame"
)

// Outcome is what one event did to the coordinator.
type Outcome struct {
	Index    int         `json:"index"`
	Kind     Kind        `json:"kind"`
	Zoom     float64     `json:"zoom"`
	Gesture  string      `json:"gesture,omitempty"`
	Change   float64     `json:"change,omitempty"`
	Feedback bool        `json:"feedback,omitempty"`
	Decision string      `json:"decision,omitempty"`
	Reason   string      `json:"reason,omitempty"`
	Crop     *frame.Rect `json:"crop,omitempty"`
	Commands []Command   `json:"commands,omitempty"`
	Err      string      `json:"error,omitempty"`
}

// Apply feeds one event to c and collects what rec was asked to do. rec must
// be the recorder wired into c, or nil.
func Apply(ctx context.Context, c *foodlens.Coordinator, rec *Recorder, e Event) Outcome {
	out := Outcome{Kind: e.Kind}
	if err := e.Validate(); err != nil {
		out.Zoom = c.Zoom()
		out.Err = err.Error()
		return out
	}

	switch e.Kind {
	case KindTouchStart:
		c.TouchStart(e.Touches)
	case KindTouchMove:
		if p, ok := c.TouchMove(ctx, e.Touches); ok {
			out.Gesture = p.Kind.String()
			out.Change = p.Change
			out.Feedback = p.Feedback
		}
	case KindTouchEnd:
		c.TouchEnd()
	case KindScan:
		res := c.Scan(ctx, *e.Scan, e.AtMs)
		out.Decision = res.Decision.String()
		if res.Reason != nil {
			out.Reason = res.Reason.Error()
		}
	case KindLayout:
		if e.Target == TargetViewfinder {
			c.MeasureViewfinder(*e.Rect)
		} else {
			c.MeasureSurface(*e.Rect)
		}
		out.Crop = c.RelativeFrame()
	case KindReady:
		c.SetReady(*e.Ready)
	case KindMode:
		m, err := foodlens.ParseMode(e.Mode)
		if err != nil {
			out.Err = err.Error()
			break
		}
		c.SetMode(m)
	case KindCapture:
		req, err := c.Capture(ctx)
		out.Crop = req.Crop
		if err != nil {
			out.Err = err.Error()
		}
	}

	out.Zoom = c.Zoom()
	if rec != nil {
		out.Commands = rec.Drain()
	}
	return out
}

// Replay applies events in order and stops early if ctx is cancelled.
func Replay(ctx context.Context, c *foodlens.Coordinator, rec *Recorder, events []Event) []Outcome {
	outcomes := make([]Outcome, 0, len(events))
	for i, e := range events {
		if ctx.Err() != nil {
			break
		}
		o := Apply(ctx, c, rec, e)
		o.Index = i
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// Summary counts replay results.
type Summary struct {
	Events   int `json:"events"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Zooms    int `json:"zooms"`
	Haptics  int `json:"haptics"`
	Captures int `json:"captures"`
	Errors   int `json:"errors"`
}

func Summarize(outcomes []Outcome) Summary {
	s := Summary{Events: len(outcomes)}
	for _, o := range outcomes {
		switch o.Decision {
		case "accept":
			s.Accepted++
		case "reject":
			s.Rejected++
		}
		if o.Err != "" {
			s.Errors++
		}
		for _, cmd := range o.Commands {
			switch cmd.Kind {
			case CmdSetZoom:
				s.Zooms++
			case CmdHaptic:
				s.Haptics++
			case CmdCapture:
				s.Captures++
			}
		}
	}
	return s
}
