// Package frame maps the on-screen viewfinder rectangle into the camera
// surface's own coordinates so a capture can be cropped to it.
//
// Both rectangles are measured window-absolute: the viewfinder overlay and the
// camera surface are siblings in the view tree, so parent-relative layout would
// not make their offset meaningful.
package frame

import "fmt"

// Rect is an axis-aligned rectangle in device points. Rects are values; a new
// measurement produces a new Rect.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) String() string {
	return fmt.Sprintf("{x:%g y:%g w:%g h:%g}", r.X, r.Y, r.Width, r.Height)
}

// ComputeRelativeFrame returns the viewfinder frame relative to the camera
// surface's top-left corner. It returns nil while either rectangle is still
// unmeasured; callers then capture without a crop.
func ComputeRelativeFrame(frame, surface *Rect) *Rect {
	if frame == nil || surface == nil {
		return nil
	}
	return &Rect{
		X:      frame.X - surface.X,
		Y:      frame.Y - surface.Y,
		Width:  frame.Width,
		Height: frame.Height,
	}
}

// Layout holds the latest measurement of each rectangle. Measurements arrive
// independently and asynchronously after layout passes.
type Layout struct {
	viewfinder *Rect
	surface    *Rect
}

// MeasureViewfinder records a new viewfinder measurement.
func (l *Layout) MeasureViewfinder(r Rect) {
	l.viewfinder = &r
}

// MeasureSurface records a new camera surface measurement.
func (l *Layout) MeasureSurface(r Rect) {
	l.surface = &r
}

// Viewfinder returns the last viewfinder measurement, or nil.
func (l *Layout) Viewfinder() *Rect {
	return copyRect(l.viewfinder)
}

// Surface returns the last surface measurement, or nil.
func (l *Layout) Surface() *Rect {
	return copyRect(l.surface)
}

// Reset forgets both measurements, as after the camera view remounts.
func (l *Layout) Reset() {
	l.viewfinder = nil
	l.surface = nil
}

// RelativeFrame is a point-in-time read of ComputeRelativeFrame over whatever
// has been measured so far.
func (l *Layout) RelativeFrame() *Rect {
	return ComputeRelativeFrame(l.viewfinder, l.surface)
}

func copyRect(r *Rect) *Rect {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
