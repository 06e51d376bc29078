package gesture

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func pair(x0, y0, x1, y1 float64) []Point {
	return []Point{{X: x0, Y: y0}, {X: x1, Y: y1}}
}

func startedResolver(t *testing.T, touches []Point) *Resolver {
	t.Helper()
	r := NewResolver(DefaultTuning())
	if !r.Start(touches) {
		t.Fatalf("Start(%v) = false, want true", touches)
	}
	return r
}

func TestStartRecordsBaselines(t *testing.T) {
	r := startedResolver(t, pair(0, 10, 30, 50))

	s := r.Session()
	if !s.Active {
		t.Fatal("expected active session")
	}
	if !near(s.LastDistance, 50) {
		t.Errorf("LastDistance = %v, want 50", s.LastDistance)
	}
	if !near(s.LastAverageY, 30) {
		t.Errorf("LastAverageY = %v, want 30", s.LastAverageY)
	}
}

func TestStartIgnoresOtherTouchCounts(t *testing.T) {
	r := NewResolver(DefaultTuning())

	for _, touches := range [][]Point{nil, {{X: 1, Y: 1}}, {{}, {}, {}}} {
		if r.Start(touches) {
			t.Errorf("Start with %d touches = true, want false", len(touches))
		}
		if r.Session() != (Session{}) {
			t.Errorf("Start with %d touches mutated session: %+v", len(touches), r.Session())
		}
	}
}

func TestEndToEndPinch(t *testing.T) {
	r := startedResolver(t, pair(0, 0, 100, 0))

	p, ok := r.Move(pair(0, 0, 120, 0), 0.5)
	if !ok {
		t.Fatal("expected a proposal for a 20px pinch")
	}
	if !near(p.Zoom, 0.55) {
		t.Errorf("Zoom = %v, want 0.55", p.Zoom)
	}
	if p.Kind != Pinch {
		t.Errorf("Kind = %v, want pinch", p.Kind)
	}
	if !p.Feedback {
		t.Error("expected feedback for a 0.05 change")
	}

	p, ok = r.Move(pair(0, 0, 200, 0), p.Zoom)
	if !ok {
		t.Fatal("expected a proposal for an 80px pinch")
	}
	if !near(p.Change, 0.2) {
		t.Errorf("Change = %v, want 0.2", p.Change)
	}
	if !near(p.Zoom, 0.75) {
		t.Errorf("Zoom = %v, want 0.75", p.Zoom)
	}
}

func TestPinchTakesPriorityOverSlide(t *testing.T) {
	r := startedResolver(t, pair(0, 0, 100, 0))

	// distance grows by 10 and the fingers rise by 10: both heuristics qualify.
	p, ok := r.Move(pair(0, -10, 110, -10), 0.5)
	if !ok {
		t.Fatal("expected a proposal")
	}
	if p.Kind != Pinch {
		t.Fatalf("Kind = %v, want pinch", p.Kind)
	}
	if !near(p.Change, 10.0/400) {
		t.Errorf("Change = %v, want %v", p.Change, 10.0/400)
	}
	if near(p.Change, 10.0/250) {
		t.Error("slide divisor was applied")
	}

	s := r.Session()
	if !near(s.LastDistance, 110) {
		t.Errorf("LastDistance = %v, want 110", s.LastDistance)
	}
	if !near(s.LastAverageY, 0) {
		t.Errorf("LastAverageY advanced to %v on a pinch", s.LastAverageY)
	}
}

func TestSlideUpZoomsIn(t *testing.T) {
	r := startedResolver(t, pair(0, 300, 100, 300))

	p, ok := r.Move(pair(0, 280, 100, 280), 0.2)
	if !ok {
		t.Fatal("expected a proposal")
	}
	if p.Kind != Slide {
		t.Fatalf("Kind = %v, want slide", p.Kind)
	}
	if !near(p.Change, 20.0/250) {
		t.Errorf("Change = %v, want %v", p.Change, 20.0/250)
	}
	if !near(p.Zoom, 0.28) {
		t.Errorf("Zoom = %v, want 0.28", p.Zoom)
	}

	s := r.Session()
	if !near(s.LastAverageY, 280) {
		t.Errorf("LastAverageY = %v, want 280", s.LastAverageY)
	}
	if !near(s.LastDistance, 100) {
		t.Errorf("LastDistance advanced to %v on a slide", s.LastDistance)
	}
}

func TestSlideDownZoomsOut(t *testing.T) {
	r := startedResolver(t, pair(0, 300, 100, 300))

	p, ok := r.Move(pair(0, 305, 100, 305), 0.5)
	if !ok {
		t.Fatal("expected a proposal")
	}
	if p.Change >= 0 {
		t.Errorf("Change = %v, want negative", p.Change)
	}
	if p.Feedback {
		t.Error("0.02 change should not warrant feedback")
	}
}

func TestSubThresholdMovementIsIgnored(t *testing.T) {
	r := startedResolver(t, pair(0, 0, 100, 0))
	before := r.Session()

	// distanceDelta = 1, yDelta = 1
	if p, ok := r.Move(pair(0, -1, 101, -1), 0.5); ok {
		t.Fatalf("unexpected proposal %+v", p)
	}
	if r.Session() != before {
		t.Errorf("session mutated: %+v -> %+v", before, r.Session())
	}
}

func TestJitterDoesNotAccumulate(t *testing.T) {
	r := startedResolver(t, pair(0, 0, 100, 0))

	for i := 0; i < 10; i++ {
		if _, ok := r.Move(pair(0, 0, 102, 0), 0.5); ok {
			t.Fatal("2px jitter produced a proposal")
		}
	}
	if !near(r.Session().LastDistance, 100) {
		t.Errorf("LastDistance drifted to %v", r.Session().LastDistance)
	}
}

func TestMoveGating(t *testing.T) {
	r := NewResolver(DefaultTuning())
	if _, ok := r.Move(pair(0, 0, 500, 0), 0.5); ok {
		t.Error("Move before Start produced a proposal")
	}
	if r.Session() != (Session{}) {
		t.Errorf("Move before Start mutated session: %+v", r.Session())
	}

	r = startedResolver(t, pair(0, 0, 100, 0))
	before := r.Session()
	if _, ok := r.Move([]Point{{X: 400, Y: 400}}, 0.5); ok {
		t.Error("Move with one touch produced a proposal")
	}
	if r.Session() != before {
		t.Errorf("Move with one touch mutated session")
	}

	r.End()
	if r.Session().Active {
		t.Fatal("session still active after End")
	}
	if _, ok := r.Move(pair(0, 0, 500, 0), 0.5); ok {
		t.Error("Move after End produced a proposal")
	}
}

func TestZoomIsClamped(t *testing.T) {
	r := startedResolver(t, pair(0, 0, 100, 0))
	p, ok := r.Move(pair(0, 0, 5000, 0), 0.9)
	if !ok {
		t.Fatal("expected a proposal")
	}
	if p.Zoom != 1 {
		t.Errorf("Zoom = %v, want exactly 1", p.Zoom)
	}

	r = startedResolver(t, pair(0, 0, 1000, 0))
	p, ok = r.Move(pair(0, 0, 10, 0), 0.1)
	if !ok {
		t.Fatal("expected a proposal")
	}
	if p.Zoom != 0 {
		t.Errorf("Zoom = %v, want exactly 0", p.Zoom)
	}
}

func TestZoomStaysInRangeOverSequence(t *testing.T) {
	r := startedResolver(t, pair(0, 0, 100, 0))
	zoom := 0.5
	xs := []float64{300, 20, 900, 4, 250, 251, 10, 1200, 60}
	for _, x := range xs {
		if p, ok := r.Move(pair(0, 0, x, 0), zoom); ok {
			zoom = p.Zoom
		}
		if zoom < 0 || zoom > 1 {
			t.Fatalf("zoom %v escaped [0,1]", zoom)
		}
	}
}

func TestClassifyIsPure(t *testing.T) {
	s := Session{LastDistance: 100, LastAverageY: 50, Active: true}
	tests := []struct {
		name string
		a, b Point
		kind Kind
	}{
		{"pinch", Point{0, 50}, Point{110, 50}, Pinch},
		{"slide", Point{0, 40}, Point{100, 40}, Slide},
		{"still", Point{0, 51}, Point{101, 51}, Insignificant},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := Classify(s, tc.a, tc.b, DefaultTuning())
			if m.Kind != tc.kind {
				t.Errorf("Kind = %v, want %v", m.Kind, tc.kind)
			}
			if s.LastDistance != 100 || s.LastAverageY != 50 {
				t.Error("Classify mutated its input")
			}
		})
	}
}

func TestCustomTuning(t *testing.T) {
	r := NewResolver(Tuning{DistanceScale: 100})
	if r.Tuning().SlideScale != SlideScale {
		t.Errorf("SlideScale = %v, want default", r.Tuning().SlideScale)
	}
	r.Start(pair(0, 0, 100, 0))
	p, ok := r.Move(pair(0, 0, 110, 0), 0)
	if !ok {
		t.Fatal("expected a proposal")
	}
	if !near(p.Change, 0.1) {
		t.Errorf("Change = %v, want 0.1", p.Change)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{-0.5, 0}, {0, 0}, {0.3, 0.3}, {1, 1}, {7, 1}, {math.NaN(), 0},
	}
	for _, tc := range tests {
		if got := Clamp(tc.in); got != tc.want {
			t.Errorf("Clamp(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
