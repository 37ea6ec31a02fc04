package world

import (
	"math"
	"math/rand"

	"lodterrain/internal/profiling"

	"github.com/go-gl/mathgl/mgl64"
)

// offsetRange bounds the per-octave sample offsets drawn from the seed.
const offsetRange = 100000.0

// NoiseSettings parameterise a DensityField.
type NoiseSettings struct {
	Seed        int64
	Scale       float64
	Octaves     int
	Persistence float64
	Lacunarity  float64
	Offset      mgl64.Vec3
	// GroundLevel and HeightFalloff add (y-GroundLevel)*HeightFalloff to
	// every sample. A zero falloff leaves pure 3D noise.
	GroundLevel   float64
	HeightFalloff float64
	// Quantize snaps samples to k/127 so the grid survives a round trip
	// through Bytes without changing sign.
	Quantize bool
}

// DefaultNoiseSettings returns the stock terrain noise.
func DefaultNoiseSettings() NoiseSettings {
	return NoiseSettings{
		Scale:       50,
		Octaves:     6,
		Persistence: 0.6,
		Lacunarity:  2,
	}
}

// Normalized returns a copy with out-of-range values clamped.
func (s NoiseSettings) Normalized() NoiseSettings {
	if s.Scale < 0.01 {
		s.Scale = 0.01
	}
	if s.Octaves < 1 {
		s.Octaves = 1
	}
	if s.Lacunarity < 1 {
		s.Lacunarity = 1
	}
	s.Persistence = math.Max(0, math.Min(1, s.Persistence))
	return s
}

// DensityField samples seeded fractal noise at world positions. Negative
// values are inside the surface. A field is immutable once built and can be
// shared by any number of workers.
type DensityField struct {
	settings NoiseSettings
	noise    *perlin
	octaves  []mgl64.Vec3
	norm     float64
}

// NewDensityField derives the permutation table and per-octave offsets from
// the seed.
func NewDensityField(settings NoiseSettings) *DensityField {
	s := settings.Normalized()
	rnd := rand.New(rand.NewSource(s.Seed))
	f := &DensityField{
		settings: s,
		noise:    newPerlin(rnd),
		octaves:  make([]mgl64.Vec3, s.Octaves),
	}
	amplitude := 1.0
	for i := range f.octaves {
		f.octaves[i] = mgl64.Vec3{
			rnd.Float64()*2*offsetRange - offsetRange,
			rnd.Float64()*2*offsetRange - offsetRange,
			rnd.Float64()*2*offsetRange - offsetRange,
		}
		f.norm += amplitude
		amplitude *= s.Persistence
	}
	return f
}

// Settings returns the normalised settings the field was built with.
func (f *DensityField) Settings() NoiseSettings {
	return f.settings
}

// Sample evaluates the field at a world position.
func (f *DensityField) Sample(x, y, z float64) float32 {
	s := &f.settings
	px := (x + s.Offset[0]) / s.Scale
	py := (y + s.Offset[1]) / s.Scale
	pz := (z + s.Offset[2]) / s.Scale

	sum := 0.0
	amplitude := 1.0
	frequency := 1.0
	for _, o := range f.octaves {
		sum += f.noise.noise3(px*frequency+o[0], py*frequency+o[1], pz*frequency+o[2]) * amplitude
		amplitude *= s.Persistence
		frequency *= s.Lacunarity
	}
	v := sum / f.norm
	if s.HeightFalloff != 0 {
		v += (y - s.GroundLevel) * s.HeightFalloff
	}
	if s.Quantize {
		v = quantize(v)
	}
	return float32(v)
}

// Generate fills a grid described by spec. Identical fields and specs give
// bit-identical grids.
func (f *DensityField) Generate(spec GridSpec) *DensityGrid {
	defer profiling.Track("world.DensityField.Generate")()
	g := NewDensityGrid(spec)
	g.Fill(f.Sample)
	return g
}

// GenerateDensity builds a one-off field and fills a w×h×d grid whose index
// (0,0,0) sits on origin and whose samples are step world units apart.
func GenerateDensity(w, h, d int, settings NoiseSettings, step int, origin [3]int) *DensityGrid {
	return NewDensityField(settings).Generate(GridSpec{
		Width: w, Height: h, Depth: d,
		Origin: origin,
		Step:   step,
	})
}

func quantize(v float64) float64 {
	v = math.Max(-1, math.Min(1, v))
	q := math.Round(v * 127)
	if q == 0 {
		// keep the sign so inside/outside survives
		if v < 0 {
			q = -1
		} else {
			q = 0
		}
	}
	return q / 127
}

// GridSpec describes the lattice a DensityGrid covers.
type GridSpec struct {
	Width, Height, Depth int
	Origin               [3]int
	Step                 int
}

// ChunkGridSpec returns the grid a chunk with the given bound and cell count
// needs: one layer behind the min corner and two past the max corner, so
// N = cells+3 samples per axis.
func ChunkGridSpec(b Bound, cells int) GridSpec {
	step := b.Size / cells
	lo := b.Min()
	n := cells + 3
	return GridSpec{
		Width: n, Height: n, Depth: n,
		Origin: [3]int{lo[0] - step, lo[1] - step, lo[2] - step},
		Step:   step,
	}
}

// DensityGrid is a dense [x][y][z] array of samples.
type DensityGrid struct {
	GridSpec
	Values []float32
}

// NewDensityGrid allocates a zeroed grid.
func NewDensityGrid(spec GridSpec) *DensityGrid {
	if spec.Step < 1 {
		spec.Step = 1
	}
	return &DensityGrid{
		GridSpec: spec,
		Values:   make([]float32, spec.Width*spec.Height*spec.Depth),
	}
}

// Index flattens grid coordinates.
func (g *DensityGrid) Index(x, y, z int) int {
	return (x*g.Height+y)*g.Depth + z
}

// At returns the sample at grid coordinates.
func (g *DensityGrid) At(x, y, z int) float32 {
	return g.Values[(x*g.Height+y)*g.Depth+z]
}

// Set stores a sample at grid coordinates.
func (g *DensityGrid) Set(x, y, z int, v float32) {
	g.Values[(x*g.Height+y)*g.Depth+z] = v
}

// WorldPoint returns the world lattice position of grid coordinates.
func (g *DensityGrid) WorldPoint(x, y, z int) [3]int {
	return [3]int{
		g.Origin[0] + x*g.Step,
		g.Origin[1] + y*g.Step,
		g.Origin[2] + z*g.Step,
	}
}

// Fill evaluates fn at every world lattice point of the grid.
func (g *DensityGrid) Fill(fn func(x, y, z float64) float32) {
	i := 0
	for x := 0; x < g.Width; x++ {
		wx := float64(g.Origin[0] + x*g.Step)
		for y := 0; y < g.Height; y++ {
			wy := float64(g.Origin[1] + y*g.Step)
			for z := 0; z < g.Depth; z++ {
				wz := float64(g.Origin[2] + z*g.Step)
				g.Values[i] = fn(wx, wy, wz)
				i++
			}
		}
	}
}

// Bytes returns the grid rescaled to the signed byte range. Values outside
// [-1, 1] saturate.
func (g *DensityGrid) Bytes() []int8 {
	out := make([]int8, len(g.Values))
	for i, v := range g.Values {
		out[i] = int8(math.Round(quantize(float64(v)) * 127))
	}
	return out
}
