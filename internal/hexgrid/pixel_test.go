package hexgrid

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestToPixel(t *testing.T) {
	tests := []struct {
		coord AxialCoord
		want  Point
	}{
		{Origin, Point{X: 0, Y: 0}},
		{AxialCoord{Q: 1, R: 0}, Point{X: 61.5, Y: 41 * math.Sqrt(3) * 0.5}},
		{AxialCoord{Q: 0, R: 1}, Point{X: 0, Y: 41 * math.Sqrt(3)}},
		{AxialCoord{Q: -2, R: 1}, Point{X: -123, Y: 0}},
	}
	for _, tt := range tests {
		got := AxialToPixel(tt.coord)
		if math.Abs(got.X-tt.want.X) > eps || math.Abs(got.Y-tt.want.Y) > eps {
			t.Errorf("AxialToPixel(%v) = %+v, want %+v", tt.coord, got, tt.want)
		}
	}

	p := AxialToPixel(AxialCoord{Q: 1, R: 0})
	if p.X != 61.5 {
		t.Errorf("x for (1,0) = %v, want exactly 61.5", p.X)
	}
	if want := 41 * math.Sqrt(3) / 2; math.Abs(p.Y-want) > eps {
		t.Errorf("y for (1,0) = %v, want %v", p.Y, want)
	}
}

func TestToPixelScalesWithSize(t *testing.T) {
	small := Layout{Size: 10}.ToPixel(AxialCoord{Q: 2, R: -1})
	big := Layout{Size: 20}.ToPixel(AxialCoord{Q: 2, R: -1})
	if math.Abs(big.X-2*small.X) > eps || math.Abs(big.Y-2*small.Y) > eps {
		t.Errorf("projection not linear in size: %+v vs %+v", small, big)
	}
}

func TestHexagonPoints(t *testing.T) {
	pts := HexagonPoints(0, 0)
	if len(pts) != 6 {
		t.Fatalf("got %d points, want 6", len(pts))
	}
	if math.Abs(pts[0].X-41) > eps || math.Abs(pts[0].Y) > eps {
		t.Errorf("first corner = %+v, want (41, 0)", pts[0])
	}

	for i := 0; i < 6; i++ {
		a := math.Atan2(pts[i].Y, pts[i].X)
		b := math.Atan2(pts[(i+1)%6].Y, pts[(i+1)%6].X)
		step := b - a
		if step < 0 {
			step += 2 * math.Pi
		}
		if math.Abs(step-math.Pi/3) > eps {
			t.Errorf("corner %d→%d spans %v rad, want π/3", i, (i+1)%6, step)
		}
		if r := math.Hypot(pts[i].X, pts[i].Y); math.Abs(r-41) > eps {
			t.Errorf("corner %d at radius %v, want 41", i, r)
		}
	}

	// Opposite corners mirror through the center.
	for i := 0; i < 3; i++ {
		o := pts[i+3]
		if math.Abs(pts[i].X+o.X) > eps || math.Abs(pts[i].Y+o.Y) > eps {
			t.Errorf("corners %d and %d not symmetric: %+v %+v", i, i+3, pts[i], o)
		}
	}
}

func TestCornersFollowCenter(t *testing.T) {
	l := Layout{Size: 41}
	c := AxialCoord{Q: 3, R: -2}
	center := l.ToPixel(c)
	poly := l.Polygon(c)
	base := l.Corners(Point{})
	for i := range poly {
		if math.Abs(poly[i].X-(base[i].X+center.X)) > eps || math.Abs(poly[i].Y-(base[i].Y+center.Y)) > eps {
			t.Errorf("corner %d = %+v, want offset of %+v by %+v", i, poly[i], base[i], center)
		}
	}
}

func TestNorthAngle(t *testing.T) {
	tests := []struct {
		p    Point
		want float64
	}{
		{Point{X: 0, Y: -1}, 0},
		{Point{X: 1, Y: 0}, math.Pi / 2},
		{Point{X: 0, Y: 1}, math.Pi},
		{Point{X: -1, Y: 0}, 3 * math.Pi / 2},
	}
	for _, tt := range tests {
		if got := northAngle(tt.p); math.Abs(got-tt.want) > eps {
			t.Errorf("northAngle(%+v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}
