package world

import (
	"math"
	"math/rand"
	"testing"
)

func e2eSettings() NoiseSettings {
	return NoiseSettings{
		Seed:        42,
		Scale:       50,
		Octaves:     4,
		Persistence: 0.6,
		Lacunarity:  2,
	}
}

// TestGenerateDeterministic verifies identical arguments give bit-identical grids.
func TestGenerateDeterministic(t *testing.T) {
	spec := ChunkGridSpec(Bound{Center: [3]int{8, 8, 8}, Size: 16}, 16)
	a := NewDensityField(e2eSettings()).Generate(spec)
	b := NewDensityField(e2eSettings()).Generate(spec)
	if len(a.Values) != 19*19*19 {
		t.Fatalf("grid size got %d, want %d", len(a.Values), 19*19*19)
	}
	for i := range a.Values {
		if math.Float32bits(a.Values[i]) != math.Float32bits(b.Values[i]) {
			t.Fatalf("sample %d differs: %v vs %v", i, a.Values[i], b.Values[i])
		}
	}
}

// TestSeedChangesField verifies different seeds give different fields.
func TestSeedChangesField(t *testing.T) {
	s := e2eSettings()
	a := NewDensityField(s)
	s.Seed = 43
	b := NewDensityField(s)
	diff := 0
	for i := 0; i < 64; i++ {
		x := float64(i * 7)
		if a.Sample(x, 3, -x) != b.Sample(x, 3, -x) {
			diff++
		}
	}
	if diff < 32 {
		t.Errorf("seeds 42 and 43 agree on %d/64 samples", 64-diff)
	}
}

// TestSharedWorldPointsAgree verifies two chunk grids return the same value
// at the world lattice points they share.
func TestSharedWorldPointsAgree(t *testing.T) {
	f := NewDensityField(e2eSettings())
	a := f.Generate(ChunkGridSpec(Bound{Center: [3]int{8, 8, 8}, Size: 16}, 16))
	b := f.Generate(ChunkGridSpec(Bound{Center: [3]int{24, 8, 8}, Size: 16}, 16))

	// a's grid index 17 on x is world x=16, which is b's index 1.
	for y := 0; y < a.Height; y++ {
		for z := 0; z < a.Depth; z++ {
			if a.WorldPoint(17, y, z) != b.WorldPoint(1, y, z) {
				t.Fatalf("world points disagree: %v vs %v", a.WorldPoint(17, y, z), b.WorldPoint(1, y, z))
			}
			if a.At(17, y, z) != b.At(1, y, z) {
				t.Fatalf("shared sample (%d,%d) differs: %v vs %v", y, z, a.At(17, y, z), b.At(1, y, z))
			}
		}
	}

	// A coarse grid samples every other fine lattice point.
	coarse := f.Generate(ChunkGridSpec(Bound{Center: [3]int{16, 16, 16}, Size: 32}, 16))
	if coarse.Step != 2 {
		t.Fatalf("coarse step got %d, want 2", coarse.Step)
	}
	// coarse index 1 is world 0, fine index 1 is world 0; coarse index 2 is world 2.
	for i := 1; i < 9; i++ {
		if coarse.At(i, 1, 1) != a.At(1+2*(i-1), 1, 1) {
			t.Errorf("coarse sample %d does not match fine lattice", i)
		}
	}
}

// TestNormalizedClamps verifies the failure conditions are clamped rather than rejected.
func TestNormalizedClamps(t *testing.T) {
	s := NoiseSettings{Scale: -3, Octaves: 0, Persistence: 4, Lacunarity: 0}.Normalized()
	if s.Scale != 0.01 {
		t.Errorf("scale got %v, want 0.01", s.Scale)
	}
	if s.Octaves != 1 {
		t.Errorf("octaves got %d, want 1", s.Octaves)
	}
	if s.Persistence != 1 {
		t.Errorf("persistence got %v, want 1", s.Persistence)
	}
	if s.Lacunarity != 1 {
		t.Errorf("lacunarity got %v, want 1", s.Lacunarity)
	}

	f := NewDensityField(NoiseSettings{Seed: 1})
	v := f.Sample(1.5, 2.5, 3.5)
	if math.IsNaN(float64(v)) {
		t.Errorf("zero settings produced NaN")
	}
}

// TestSampleRange verifies normalised noise stays near [-1, 1].
func TestSampleRange(t *testing.T) {
	f := NewDensityField(e2eSettings())
	rnd := rand.New(rand.NewSource(12345))
	for i := 0; i < 5000; i++ {
		x := rnd.Float64()*2000 - 1000
		y := rnd.Float64()*2000 - 1000
		z := rnd.Float64()*2000 - 1000
		v := f.Sample(x, y, z)
		if v < -1.1 || v > 1.1 {
			t.Fatalf("sample at (%v,%v,%v) out of range: %v", x, y, z, v)
		}
	}
}

// TestHeightFalloff verifies the ground bias puts solid below and air above.
func TestHeightFalloff(t *testing.T) {
	s := e2eSettings()
	s.GroundLevel = 8
	s.HeightFalloff = 0.2
	f := NewDensityField(s)
	for x := -32; x < 32; x += 4 {
		if v := f.Sample(float64(x), 0, 3); v >= 0 {
			t.Errorf("y=0 should be inside, got %v", v)
		}
		if v := f.Sample(float64(x), 16, 3); v <= 0 {
			t.Errorf("y=16 should be outside, got %v", v)
		}
	}
}

// TestQuantizeKeepsSign verifies quantised grids keep every sign through Bytes.
func TestQuantizeKeepsSign(t *testing.T) {
	s := e2eSettings()
	s.Quantize = true
	g := NewDensityField(s).Generate(ChunkGridSpec(Bound{Center: [3]int{8, 8, 8}, Size: 16}, 16))
	bytes := g.Bytes()
	for i, v := range g.Values {
		q := bytes[i]
		if (v < 0) != (q < 0) {
			t.Fatalf("sample %d sign changed: %v -> %d", i, v, q)
		}
		if math.Abs(float64(q)/127-float64(v)) > 1e-6 {
			t.Fatalf("sample %d not on the byte lattice: %v vs %d", i, v, q)
		}
	}
}

// TestGenerateDensityFunctional verifies the functional form matches the field.
func TestGenerateDensityFunctional(t *testing.T) {
	g := GenerateDensity(4, 5, 6, e2eSettings(), 2, [3]int{-4, 0, 4})
	if g.Width != 4 || g.Height != 5 || g.Depth != 6 {
		t.Fatalf("dims got %dx%dx%d", g.Width, g.Height, g.Depth)
	}
	f := NewDensityField(e2eSettings())
	p := g.WorldPoint(3, 4, 5)
	if p != [3]int{2, 8, 14} {
		t.Fatalf("world point got %v", p)
	}
	if g.At(3, 4, 5) != f.Sample(2, 8, 14) {
		t.Errorf("grid sample disagrees with field sample")
	}
}

func BenchmarkGenerateChunk(b *testing.B) {
	f := NewDensityField(DefaultNoiseSettings())
	spec := ChunkGridSpec(Bound{Center: [3]int{8, 8, 8}, Size: 16}, 16)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Generate(spec)
	}
}
