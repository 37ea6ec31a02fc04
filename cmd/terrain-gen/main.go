package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"lodterrain/internal/config"
	"lodterrain/internal/profiling"
	"lodterrain/internal/terrain"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

func main() {
	configPath := flag.String("config", "", "terrain config YAML (defaults when empty)")
	ticks := flag.Int("ticks", 600, "ticks to run along the path")
	speed := flag.Float64("speed", 40, "viewer speed in world units per second")
	radius := flag.Float64("radius", 0, "walk a circle of this radius instead of a straight line")
	height := flag.Float64("height", 0, "viewer height")
	tickMS := flag.Int("tick-ms", 16, "simulated tick length in milliseconds")
	objPath := flag.String("obj", "", "write visible chunk meshes to this Wavefront OBJ file")
	prewarm := flag.Bool("prewarm", false, "build the start position before walking and profile only the walk")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("[gen] %v", err)
		}
	}

	counter := &countingRenderer{}
	s := terrain.New(cfg, counter)
	defer s.Shutdown()

	dt := time.Duration(*tickMS) * time.Millisecond
	p := path{speed: float32(*speed), radius: float32(*radius), height: float32(*height)}
	if *prewarm {
		waitIdle(s, dt, p.at(0))
		log.Printf("[gen] prewarmed %d chunks", s.Stats().Chunks)
		profiling.ResetAll()
	}

	start := time.Now()
	var viewer mgl32.Vec3
	for i := 0; i < *ticks; i++ {
		viewer = p.at(float32(i) * float32(dt.Seconds()))
		s.Tick(dt, viewer)
		time.Sleep(time.Millisecond)
	}

	// Let the last position finish building.
	waitIdle(s, dt, viewer)
	if err := s.CheckStalls(); err != nil {
		log.Printf("[gen] %v", err)
	}
	if !s.Idle() {
		log.Printf("[gen] streamer still busy after a minute")
	}

	st := s.Stats()
	fmt.Printf("wall=%v ticks=%d rebuilds=%d leaves=%d\n", time.Since(start).Round(time.Millisecond), st.Ticks, st.Rebuilds, st.Leaves)
	fmt.Printf("chunks=%d visible=%d hidden=%d built=%d failed=%d batches=%d colliders=%d stalls=%d\n",
		st.Chunks, st.Visible, st.Hidden, st.Built, st.Failed, st.Batches, st.Colliders, st.Stalls)
	fmt.Printf("last rebuild added=%d visible per band=%v (thresholds %v)\n", st.Added, st.Bands, cfg.Mesh.LODThresholds)
	fmt.Printf("renderer: objects=%d drawn=%d meshes=%d triangles=%d colliders=%d\n",
		counter.objects, counter.drawn(), counter.meshes, counter.triangles, counter.colliders)
	fmt.Printf("top: %s\n", profiling.TopNTotal(8))

	if *objPath != "" {
		if err := writeOBJ(*objPath, s, float32(cfg.Mesh.WorldScale)); err != nil {
			log.Fatalf("[gen] %v", err)
		}
		log.Printf("[gen] wrote %s", *objPath)
	}
}

// waitIdle ticks at viewer until nothing is queued or generating, for at
// most a minute.
func waitIdle(s *terrain.Streamer, dt time.Duration, viewer mgl32.Vec3) {
	deadline := time.Now().Add(time.Minute)
	for (!s.Idle() || s.Octree() == nil) && time.Now().Before(deadline) {
		s.Tick(dt, viewer)
		time.Sleep(time.Millisecond)
	}
}

// path is the scripted viewer route: a line along +x, or a circle around
// the origin when radius is set.
type path struct {
	speed, radius, height float32
}

func (p path) at(t float32) mgl32.Vec3 {
	d := p.speed * t
	if p.radius <= 0 {
		return mgl32.Vec3{d, p.height, 0}
	}
	a := d / p.radius
	return mgl32.Vec3{p.radius * math32.Cos(a), p.height, p.radius * math32.Sin(a)}
}

func writeOBJ(name string, s *terrain.Streamer, scale float32) error {
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "create obj")
	}
	w := bufio.NewWriter(f)
	base := 1
	for _, c := range s.Chunks() {
		if c.State != terrain.Visible || c.Mesh.IsEmpty() {
			continue
		}
		fmt.Fprintf(w, "o chunk_%d_%d_%d_%d\n", c.Bound.Center[0], c.Bound.Center[1], c.Bound.Center[2], c.Bound.Size)
		for _, v := range c.Mesh.Vertices {
			fmt.Fprintf(w, "v %g %g %g\n", v[0]*scale, v[1]*scale, v[2]*scale)
		}
		for _, n := range c.Mesh.Normals {
			fmt.Fprintf(w, "vn %g %g %g\n", n[0], n[1], n[2])
		}
		idx := c.Mesh.Indices
		for i := 0; i+2 < len(idx); i += 3 {
			a, b, cc := int(idx[i])+base, int(idx[i+1])+base, int(idx[i+2])+base
			fmt.Fprintf(w, "f %d//%d %d//%d %d//%d\n", a, a, b, b, cc, cc)
		}
		base += len(c.Mesh.Vertices)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrap(err, "write obj")
	}
	return errors.Wrap(f.Close(), "close obj")
}
