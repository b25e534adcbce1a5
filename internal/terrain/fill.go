// Procedural terrain for hexes the sheet does not chart yet.
// Layered simplex noise gives elevation, rainfall, and temperature; terrain
// is derived from those the same way for every hex, so a board refreshed
// with the same seed always looks the same.
package terrain

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/hexmapp/internal/hexgrid"
)

// FillConfig holds procedural fill thresholds.
type FillConfig struct {
	Seed        int64   // 0 disables fill
	Radius      int     // Board radius, used for the continental falloff
	SeaLevel    float64 // Elevation threshold for ocean (0.0–1.0)
	MountainLvl float64 // Elevation threshold for mountains (0.0–1.0)
}

// DefaultFillConfig returns the thresholds used by the board service.
func DefaultFillConfig(seed int64, radius int) FillConfig {
	return FillConfig{
		Seed:        seed,
		Radius:      radius,
		SeaLevel:    0.25,
		MountainLvl: 0.72,
	}
}

// Filler derives terrain for a coordinate from seeded noise.
// A nil Filler yields Unknown everywhere.
type Filler struct {
	cfg       FillConfig
	elevNoise opensimplex.Noise
	rainNoise opensimplex.Noise
	tempNoise opensimplex.Noise
}

// unitLayout puts neighboring hex centers one unit apart.
var unitLayout = hexgrid.Layout{Size: 1 / math.Sqrt(3)}

// NewFiller returns a Filler, or nil when cfg.Seed is 0.
func NewFiller(cfg FillConfig) *Filler {
	if cfg.Seed == 0 {
		return nil
	}
	if cfg.Radius < 1 {
		cfg.Radius = 1
	}
	return &Filler{
		cfg:       cfg,
		elevNoise: opensimplex.NewNormalized(cfg.Seed),
		rainNoise: opensimplex.NewNormalized(cfg.Seed + 1),
		tempNoise: opensimplex.NewNormalized(cfg.Seed + 2),
	}
}

// At returns the procedural terrain for c.
func (f *Filler) At(c hexgrid.AxialCoord) Type {
	if f == nil {
		return Unknown
	}

	elev, rain, temp := f.sample(c)
	t := f.derive(elev, rain, temp)

	// Low land next to open water becomes coast.
	if (t == Plains || t == Forest) && elev < 0.5 {
		for _, n := range c.Neighbors() {
			ne, _, _ := f.sample(n)
			if ne < f.cfg.SeaLevel {
				return Coast
			}
		}
	}
	return t
}

func (f *Filler) sample(c hexgrid.AxialCoord) (elev, rain, temp float64) {
	p := unitLayout.ToPixel(c)
	x, y := p.X, p.Y

	elev = octaveNoise(f.elevNoise, x, y, 4, 0.08, 0.5)
	rain = octaveNoise(f.rainNoise, x, y, 3, 0.06, 0.5)
	temp = octaveNoise(f.tempNoise, x, y, 3, 0.05, 0.5)

	// Continental shaping: sink the rim of the board into ocean.
	radius := float64(f.cfg.Radius)
	distFromCenter := math.Sqrt(x*x+y*y) / radius
	edgeFalloff := 1.0 - math.Pow(distFromCenter, 3.5)
	if edgeFalloff < 0 {
		edgeFalloff = 0
	}
	elev *= edgeFalloff

	temp = temp*0.6 + (1.0-math.Min(1, math.Abs(y)/radius))*0.3 + (1.0-elev)*0.1
	return elev, rain, temp
}

func (f *Filler) derive(elev, rain, temp float64) Type {
	if elev < f.cfg.SeaLevel {
		return Ocean
	}
	if elev > f.cfg.MountainLvl {
		return Mountain
	}
	if temp < 0.25 {
		return Tundra
	}
	if rain < 0.25 && temp > 0.5 {
		return Desert
	}
	if rain > 0.7 && elev < 0.45 {
		return Swamp
	}
	if rain > 0.45 && elev > 0.45 {
		return Forest
	}
	return Plains
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
