// Package gesture turns two-finger touch movement into zoom level proposals.
//
// Two heuristics compete for every movement sample: a pinch (change in distance
// between the touches) and a vertical slide (change in the touches' average Y).
// Pinch wins when both fire. A heuristic only advances its own baseline when it
// fires, so jitter below the thresholds never leaks into the next sample.
package gesture

import "math"

// Default tuning, in page points and zoom units.
const (
	DistanceThreshold = 3.0
	DistanceScale     = 400.0
	SlideThreshold    = 3.0
	SlideScale        = 250.0
	MinApplyThreshold = 0.005
	FeedbackThreshold = 0.03
)

// Tuning holds the thresholds and divisors used by Classify and the Resolver.
type Tuning struct {
	DistanceThreshold float64 `yaml:"distance_threshold" json:"distance_threshold"`
	DistanceScale     float64 `yaml:"distance_scale" json:"distance_scale"`
	SlideThreshold    float64 `yaml:"slide_threshold" json:"slide_threshold"`
	SlideScale        float64 `yaml:"slide_scale" json:"slide_scale"`
	MinApplyThreshold float64 `yaml:"min_apply_threshold" json:"min_apply_threshold"`
	FeedbackThreshold float64 `yaml:"feedback_threshold" json:"feedback_threshold"`
}

// DefaultTuning returns the stock thresholds.
func DefaultTuning() Tuning {
	return Tuning{
		DistanceThreshold: DistanceThreshold,
		DistanceScale:     DistanceScale,
		SlideThreshold:    SlideThreshold,
		SlideScale:        SlideScale,
		MinApplyThreshold: MinApplyThreshold,
		FeedbackThreshold: FeedbackThreshold,
	}
}

// withDefaults fills zero fields so a partially specified Tuning stays usable.
// The scales are divisors and must never be zero.
func (t Tuning) withDefaults() Tuning {
	d := DefaultTuning()
	if t.DistanceThreshold <= 0 {
		t.DistanceThreshold = d.DistanceThreshold
	}
	if t.DistanceScale <= 0 {
		t.DistanceScale = d.DistanceScale
	}
	if t.SlideThreshold <= 0 {
		t.SlideThreshold = d.SlideThreshold
	}
	if t.SlideScale <= 0 {
		t.SlideScale = d.SlideScale
	}
	if t.MinApplyThreshold <= 0 {
		t.MinApplyThreshold = d.MinApplyThreshold
	}
	if t.FeedbackThreshold <= 0 {
		t.FeedbackThreshold = d.FeedbackThreshold
	}
	return t
}

// Session is the state held across a single two-finger gesture.
type Session struct {
	LastDistance float64
	LastAverageY float64
	Active       bool
}

// Kind tags the outcome of classifying a movement.
type Kind int

const (
	Insignificant Kind = iota
	Pinch
	Slide
)

func (k Kind) String() string {
	switch k {
	case Pinch:
		return "pinch"
	case Slide:
		return "slide"
	default:
		return "insignificant"
	}
}

// Movement is a classified movement sample. Baseline is the value the firing
// heuristic's baseline advances to; it is meaningless for Insignificant.
type Movement struct {
	Kind     Kind
	Change   float64
	Baseline float64
}

// Classify decides which heuristic, if any, applies to a movement from the
// session's baselines to the given touches. It never mutates anything.
func Classify(s Session, a, b Point, t Tuning) Movement {
	t = t.withDefaults()

	distance := Distance(a, b)
	averageY := AverageY(a, b)

	distanceDelta := distance - s.LastDistance
	// Sliding up decreases Y and zooms in.
	yDelta := s.LastAverageY - averageY

	switch {
	case math.Abs(distanceDelta) > t.DistanceThreshold:
		return Movement{Kind: Pinch, Change: distanceDelta / t.DistanceScale, Baseline: distance}
	case math.Abs(yDelta) > t.SlideThreshold:
		return Movement{Kind: Slide, Change: yDelta / t.SlideScale, Baseline: averageY}
	default:
		return Movement{Kind: Insignificant}
	}
}

// Proposal is a new zoom level suggested by the Resolver.
type Proposal struct {
	Zoom     float64
	Change   float64
	Kind     Kind
	Feedback bool
}

// Resolver tracks one gesture session. It is not safe for concurrent use; the
// host drives it from its input thread and owns one per camera screen.
type Resolver struct {
	tuning  Tuning
	session Session
}

// NewResolver creates a Resolver. Zero fields in t fall back to the defaults.
func NewResolver(t Tuning) *Resolver {
	return &Resolver{tuning: t.withDefaults()}
}

// Session returns a copy of the current gesture state.
func (r *Resolver) Session() Session {
	return r.session
}

// Tuning returns the effective tuning.
func (r *Resolver) Tuning() Tuning {
	return r.tuning
}

// Start begins a gesture. Anything other than exactly two touches is ignored
// and reported as false.
func (r *Resolver) Start(touches []Point) bool {
	if len(touches) != 2 {
		return false
	}
	r.session = Session{
		LastDistance: Distance(touches[0], touches[1]),
		LastAverageY: AverageY(touches[0], touches[1]),
		Active:       true,
	}
	return true
}

// Move feeds one movement sample. ok is false when the gesture is inactive, the
// touch count is not two, or the change is too small to apply.
func (r *Resolver) Move(touches []Point, currentZoom float64) (p Proposal, ok bool) {
	if !r.session.Active || len(touches) != 2 {
		return Proposal{}, false
	}

	m := Classify(r.session, touches[0], touches[1], r.tuning)
	switch m.Kind {
	case Pinch:
		r.session.LastDistance = m.Baseline
	case Slide:
		r.session.LastAverageY = m.Baseline
	}

	if math.Abs(m.Change) <= r.tuning.MinApplyThreshold {
		return Proposal{}, false
	}

	return Proposal{
		Zoom:     Clamp(currentZoom + m.Change),
		Change:   m.Change,
		Kind:     m.Kind,
		Feedback: math.Abs(m.Change) > r.tuning.FeedbackThreshold,
	}, true
}

// End releases the gesture. Moves are ignored until the next Start.
func (r *Resolver) End() {
	r.session.Active = false
}
