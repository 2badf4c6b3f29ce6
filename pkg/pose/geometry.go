package pose

import "math"

// Point is a position on the normalized image plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AngleAtVertex returns the angle in degrees at vertex b formed by the rays
// b→a and b→c, measured in the image plane. The result is in [0, 180].
// It is NaN when a or c coincides with b; callers treat NaN as "not computable".
func AngleAtVertex(a, b, c Point) float64 {
	v1x, v1y := a.X-b.X, a.Y-b.Y
	v2x, v2y := c.X-b.X, c.Y-b.Y

	dot := v1x*v2x + v1y*v2y
	mag := math.Hypot(v1x, v1y) * math.Hypot(v2x, v2y)

	cos := dot / mag
	// Collinear points can overshoot ±1 by a rounding error.
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi
}

// Midpoint averages the coordinates of a and b independently.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// SideOfLine returns the sign of p relative to the directed line a→b in image
// coordinates: negative when p lies above the line (smaller Y) for a line
// drawn left to right, positive below, 0 on the line.
func SideOfLine(a, b, p Point) float64 {
	if a.X > b.X {
		a, b = b, a
	}
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
