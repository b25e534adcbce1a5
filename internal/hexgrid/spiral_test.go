package hexgrid

import (
	"errors"
	"sync"
	"testing"
)

func mustTable(t *testing.T, radius int, opts ...TableOption) *Table {
	t.Helper()
	tbl, err := NewTable(radius, opts...)
	if err != nil {
		t.Fatalf("NewTable(%d): %v", radius, err)
	}
	return tbl
}

func TestSpiralCountAndBijection(t *testing.T) {
	for radius := 0; radius <= 8; radius++ {
		tbl := mustTable(t, radius)
		want := TotalHexCount(radius)
		if tbl.Len() != want {
			t.Fatalf("radius %d: %d hexes, want %d", radius, tbl.Len(), want)
		}

		seen := make(map[AxialCoord]int)
		for i := 0; i < tbl.Len(); i++ {
			c := tbl.Coord(i)
			if DistanceFromOrigin(c) > radius {
				t.Errorf("radius %d: index %d → %v outside radius", radius, i, c)
			}
			if prev, dup := seen[c]; dup {
				t.Errorf("radius %d: %v at both %d and %d", radius, c, prev, i)
			}
			seen[c] = i
		}

		for q := -radius; q <= radius; q++ {
			for r := -radius; r <= radius; r++ {
				c := AxialCoord{Q: q, R: r}
				if DistanceFromOrigin(c) > radius {
					continue
				}
				if _, ok := seen[c]; !ok {
					t.Errorf("radius %d: %v missing from table", radius, c)
				}
			}
		}
	}
}

func TestSpiralOriginFirst(t *testing.T) {
	for radius := 0; radius <= 5; radius++ {
		if got := mustTable(t, radius).Coord(0); got != Origin {
			t.Errorf("radius %d: index 0 = %v, want origin", radius, got)
		}
	}
}

func TestSpiralRingsMonotonic(t *testing.T) {
	for _, radius := range []int{1, 3, 7, 22} {
		tbl := mustTable(t, radius)
		prev := 0
		for i := 0; i < tbl.Len(); i++ {
			d := DistanceFromOrigin(tbl.Coord(i))
			if d < prev {
				t.Fatalf("radius %d: ring dropped from %d to %d at index %d", radius, prev, d, i)
			}
			prev = d
		}
	}
}

func TestSpiralRingBlocks(t *testing.T) {
	tbl := mustTable(t, 2)
	wantSizes := []int{1, 6, 12}
	start := 0
	for ring, size := range wantSizes {
		for i := start; i < start+size; i++ {
			if d := DistanceFromOrigin(tbl.Coord(i)); d != ring {
				t.Errorf("index %d on ring %d, want ring %d", i, d, ring)
			}
		}
		if got := len(tbl.Ring(ring)); got != size {
			t.Errorf("Ring(%d) has %d hexes, want %d", ring, got, size)
		}
		start += size
	}
	if tbl.Ring(3) != nil || tbl.Ring(-1) != nil {
		t.Error("rings outside the table should be nil")
	}
}

func TestSpiralClockwiseFromNorth(t *testing.T) {
	tbl := mustTable(t, 2)
	want := []AxialCoord{
		{Q: 0, R: 0},
		// Ring 1
		{Q: 0, R: -1}, {Q: 1, R: -1}, {Q: 1, R: 0},
		{Q: 0, R: 1}, {Q: -1, R: 1}, {Q: -1, R: 0},
		// Ring 2
		{Q: 0, R: -2}, {Q: 1, R: -2}, {Q: 2, R: -2}, {Q: 2, R: -1},
		{Q: 2, R: 0}, {Q: 1, R: 1}, {Q: 0, R: 2}, {Q: -1, R: 2},
		{Q: -2, R: 2}, {Q: -2, R: 1}, {Q: -2, R: 0}, {Q: -1, R: -1},
	}
	for i, c := range want {
		if got := tbl.Coord(i); got != c {
			t.Errorf("index %d = %v, want %v", i, got, c)
		}
	}
}

func TestSpiralAnglesStrictlyIncreaseWithinRing(t *testing.T) {
	for _, radius := range []int{4, 10, 22} {
		tbl := mustTable(t, radius)
		for k := 1; k <= radius; k++ {
			ring := tbl.Ring(k)
			prev := -1.0
			for _, c := range ring {
				a := northAngle(referenceLayout.ToPixel(c))
				if a <= prev {
					t.Fatalf("radius %d ring %d: angle %v at %v does not exceed %v", radius, k, a, c, prev)
				}
				prev = a
			}
		}
	}
}

func TestSpiralDeterministic(t *testing.T) {
	a := BuildSpiral(12)
	b := BuildSpiral(12)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("index %d differs: %v vs %v", i, a[i], b[i])
		}
	}

	// Inner rings do not depend on the outer radius.
	small := BuildSpiral(3)
	for i := range small {
		if small[i] != a[i] {
			t.Errorf("index %d: radius 3 gives %v, radius 12 gives %v", i, small[i], a[i])
		}
	}
}

func TestCoordFallback(t *testing.T) {
	tbl := mustTable(t, DefaultMaxRadius)
	for _, idx := range []int{-1, -100, tbl.Len(), tbl.Len() + 5} {
		if got := tbl.Coord(idx); got != Origin {
			t.Errorf("Coord(%d) = %v, want origin fallback", idx, got)
		}
	}
	if got := tbl.Coord(tbl.Len() - 1); got != (AxialCoord{Q: -1, R: -21}) {
		t.Errorf("last index = %v, want (-1,-21)", got)
	}
}

func TestLookupStrict(t *testing.T) {
	tbl := mustTable(t, 3, WithStrictBounds())
	if !tbl.Strict() {
		t.Fatal("expected strict table")
	}

	c, err := tbl.Lookup(1)
	if err != nil {
		t.Fatalf("Lookup(1): %v", err)
	}
	if c != (AxialCoord{Q: 0, R: -1}) {
		t.Errorf("Lookup(1) = %v", c)
	}

	for _, idx := range []int{-1, tbl.Len()} {
		_, err := tbl.Lookup(idx)
		if !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Lookup(%d) err = %v, want ErrIndexOutOfRange", idx, err)
		}
		if got := tbl.Coord(idx); got != Origin {
			t.Errorf("Coord(%d) on a strict table = %v, want origin", idx, got)
		}
	}
}

func TestIndexRoundTrip(t *testing.T) {
	tbl := mustTable(t, 6)
	for i := 0; i < tbl.Len(); i++ {
		j, ok := tbl.Index(tbl.Coord(i))
		if !ok || j != i {
			t.Errorf("Index(Coord(%d)) = %d, %v", i, j, ok)
		}
	}
	outside := AxialCoord{Q: 7, R: 0}
	if _, ok := tbl.Index(outside); ok {
		t.Errorf("%v should not be indexed", outside)
	}
	if tbl.Contains(outside) {
		t.Errorf("%v should be outside radius 6", outside)
	}
}

func TestNewTableRejectsNegativeRadius(t *testing.T) {
	if _, err := NewTable(-1); err == nil {
		t.Error("expected error for negative radius")
	}
	if BuildSpiral(-1) != nil {
		t.Error("BuildSpiral(-1) should be nil")
	}
}

func TestCoordsIsACopy(t *testing.T) {
	tbl := mustTable(t, 1)
	coords := tbl.Coords()
	coords[0] = AxialCoord{Q: 9, R: 9}
	if tbl.Coord(0) != Origin {
		t.Error("mutating Coords() leaked into the table")
	}
}

func TestDefaultTableConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]AxialCoord, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = AxialFromIndex(7)
		}(i)
	}
	wg.Wait()

	for i, c := range results {
		if c != (AxialCoord{Q: 0, R: -2}) {
			t.Errorf("goroutine %d saw %v", i, c)
		}
	}
	if want := TotalHexCount(DefaultMaxRadius); Default().Len() != want {
		t.Errorf("default table has %d hexes, want %d", Default().Len(), want)
	}
	if Default().Len() != 1519 {
		t.Errorf("default table has %d hexes, want 1519", Default().Len())
	}
	if AxialFromIndex(-1) != Origin || AxialFromIndex(Default().Len()) != Origin {
		t.Error("default fallback should be the origin")
	}
	if got := AxialFromIndex(Default().Len() - 1); got != (AxialCoord{Q: -1, R: -21}) {
		t.Errorf("last default index = %v, want (-1,-21)", got)
	}
}
