package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed terrain.schema.json
var schemaJSON string

const schemaURL = "mem://lodterrain/terrain.schema.json"

// NoiseConfig holds the density field parameters.
type NoiseConfig struct {
	Seed          int64      `yaml:"seed"`
	Scale         float64    `yaml:"scale"`
	Octaves       int        `yaml:"octaves"`
	Persistence   float64    `yaml:"persistence"`
	Lacunarity    float64    `yaml:"lacunarity"`
	Offset        [3]float64 `yaml:"offset"`
	GroundLevel   float64    `yaml:"ground_level"`
	HeightFalloff float64    `yaml:"height_falloff"`
	Quantize      bool       `yaml:"quantize"`
}

// MeshConfig holds chunk meshing parameters.
type MeshConfig struct {
	// ChunkSize is the number of cells along one chunk edge at every LOD.
	ChunkSize  int     `yaml:"chunk_size"`
	WorldScale float64 `yaml:"world_scale"`
	// LODThresholds are ascending viewer distances; the last one is the
	// maximum view distance.
	LODThresholds   []float64 `yaml:"lod_thresholds"`
	TransitionWidth float64   `yaml:"transition_width"`
	ColliderLOD     int       `yaml:"collider_lod"`
}

// StreamingConfig holds chunk streaming parameters.
type StreamingConfig struct {
	// RenderDistance multiplies the chunk size to give the octree root edge.
	RenderDistance      int     `yaml:"render_distance"`
	ViewerMoveThreshold float64 `yaml:"viewer_move_threshold"`
	ChunksPerBatch      int     `yaml:"chunks_per_batch"`
	BatchesPerTick      int     `yaml:"batches_per_tick"`
	ColliderDistance    float64 `yaml:"collider_distance"`
	StallTicks          int     `yaml:"stall_ticks"`
}

// Config is the full terrain configuration.
type Config struct {
	Noise     NoiseConfig     `yaml:"noise"`
	Mesh      MeshConfig      `yaml:"mesh"`
	Streaming StreamingConfig `yaml:"streaming"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Noise: NoiseConfig{
			Seed:        0,
			Scale:       50,
			Octaves:     6,
			Persistence: 0.6,
			Lacunarity:  2,
		},
		Mesh: MeshConfig{
			ChunkSize:       16,
			WorldScale:      1,
			LODThresholds:   []float64{50, 100, 200},
			TransitionWidth: 0.5,
			ColliderLOD:     0,
		},
		Streaming: StreamingConfig{
			RenderDistance:      8,
			ViewerMoveThreshold: 25,
			ChunksPerBatch:      4,
			BatchesPerTick:      2,
			ColliderDistance:    5,
			StallTicks:          600,
		},
	}
}

// Load reads a YAML config file. Missing fields keep their defaults.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read %s", path)
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, errors.Wrap(err, path)
	}
	return cfg, nil
}

// Parse decodes YAML bytes, checks them against the schema and validates
// the result.
func Parse(b []byte) (Config, error) {
	if err := validateSchema(b); err != nil {
		return Config{}, err
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "decode")
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Normalize clamps values that have an obvious safe replacement.
func (c *Config) Normalize() {
	if c.Noise.Scale <= 0 {
		c.Noise.Scale = 0.01
	}
	if c.Noise.Octaves <= 0 {
		c.Noise.Octaves = 1
	}
	if c.Noise.Lacunarity < 1 {
		c.Noise.Lacunarity = 1
	}
	if c.Noise.Persistence < 0 {
		c.Noise.Persistence = 0
	}
	if c.Noise.Persistence > 1 {
		c.Noise.Persistence = 1
	}
	if c.Mesh.WorldScale <= 0 {
		c.Mesh.WorldScale = 1
	}
	if c.Mesh.TransitionWidth <= 0 || c.Mesh.TransitionWidth > 1 {
		c.Mesh.TransitionWidth = 0.5
	}
	if c.Streaming.StallTicks <= 0 {
		c.Streaming.StallTicks = 600
	}
}

// Validate rejects configurations the streamer cannot run with.
func (c Config) Validate() error {
	m := c.Mesh
	if m.ChunkSize < 2 || m.ChunkSize%2 != 0 {
		return errors.Errorf("mesh.chunk_size must be an even number >= 2, got %d", m.ChunkSize)
	}
	if len(m.LODThresholds) == 0 {
		return errors.New("mesh.lod_thresholds must not be empty")
	}
	prev := 0.0
	for i, t := range m.LODThresholds {
		if t <= prev {
			return errors.Errorf("mesh.lod_thresholds must be positive and ascending (index %d: %v after %v)", i, t, prev)
		}
		prev = t
	}
	if m.ColliderLOD < 0 {
		return errors.Errorf("mesh.collider_lod must be >= 0, got %d", m.ColliderLOD)
	}

	s := c.Streaming
	if s.RenderDistance < 1 || s.RenderDistance&(s.RenderDistance-1) != 0 {
		return errors.Errorf("streaming.render_distance must be a power of two, got %d", s.RenderDistance)
	}
	if s.ChunksPerBatch < 1 {
		return errors.Errorf("streaming.chunks_per_batch must be >= 1, got %d", s.ChunksPerBatch)
	}
	if s.BatchesPerTick < 1 {
		return errors.Errorf("streaming.batches_per_tick must be >= 1, got %d", s.BatchesPerTick)
	}
	if s.ViewerMoveThreshold < 0 {
		return errors.Errorf("streaming.viewer_move_threshold must be >= 0, got %v", s.ViewerMoveThreshold)
	}
	if s.ColliderDistance < 0 {
		return errors.Errorf("streaming.collider_distance must be >= 0, got %v", s.ColliderDistance)
	}
	return nil
}

// MaxViewDistance is the last LOD threshold.
func (c Config) MaxViewDistance() float64 {
	return c.Mesh.LODThresholds[len(c.Mesh.LODThresholds)-1]
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
			schemaErr = errors.Wrap(err, "schema resource")
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = errors.Wrap(schemaErr, "schema compile")
		}
	})
	return compiledSchema, schemaErr
}

func validateSchema(b []byte) error {
	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return errors.Wrap(err, "decode")
	}
	if doc == nil {
		return nil
	}
	// Round trip through JSON so the validator sees plain JSON values.
	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "schema input")
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return errors.Wrap(err, "schema input")
	}
	s, err := schema()
	if err != nil {
		return err
	}
	if err := s.Validate(v); err != nil {
		return errors.Wrap(err, "schema")
	}
	return nil
}
