package hexgrid

import "math"

// DefaultHexSize is the corner radius of a hex in pixels.
const DefaultHexSize = 41.0

// Point is a position in rendering space. Y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polygon holds the six corners of a flat-top hex.
type Polygon [6]Point

// Layout projects axial coordinates into pixel space.
// Flat-top orientation; switching to pointy-top also requires a 30° corner offset.
type Layout struct {
	Size float64
}

// DefaultLayout uses DefaultHexSize.
var DefaultLayout = Layout{Size: DefaultHexSize}

// ToPixel returns the center of the hex.
func (l Layout) ToPixel(c AxialCoord) Point {
	q := float64(c.Q)
	r := float64(c.R)
	return Point{
		X: l.Size * (1.5 * q),
		Y: l.Size * (math.Sqrt(3) * (r + q/2)),
	}
}

// Corners returns the corners of a hex centered at center.
// Corner 0 is due east and angles increase, which is clockwise on screen.
// Renderers rely on this winding.
func (l Layout) Corners(center Point) Polygon {
	var pts Polygon
	for i := 0; i < 6; i++ {
		angle := (math.Pi / 3) * float64(i)
		pts[i] = Point{
			X: center.X + l.Size*math.Cos(angle),
			Y: center.Y + l.Size*math.Sin(angle),
		}
	}
	return pts
}

// Polygon is shorthand for Corners(ToPixel(c)).
func (l Layout) Polygon(c AxialCoord) Polygon {
	return l.Corners(l.ToPixel(c))
}

// northAngle returns the clockwise screen angle from straight up, in [0, 2π).
func northAngle(p Point) float64 {
	raw := math.Atan2(p.X, -p.Y)
	if raw < 0 {
		raw += 2 * math.Pi
	}
	return raw
}
