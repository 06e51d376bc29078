package gesture

import "math"

// Point is a single touch position in page coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the euclidean distance between two touches.
func Distance(a, b Point) float64 {
	return math.Sqrt((a.X-b.X)*(a.X-b.X) + (a.Y-b.Y)*(a.Y-b.Y))
}

// AverageY returns the mean vertical position of two touches.
func AverageY(a, b Point) float64 {
	return (a.Y + b.Y) / 2
}

// Clamp limits a zoom level to [0,1]. NaN collapses to 0.
func Clamp(zoom float64) float64 {
	if zoom < 0 || math.IsNaN(zoom) {
		return 0
	}
	if zoom > 1 {
		return 1
	}
	return zoom
}
