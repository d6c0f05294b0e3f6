package aggregation

import (
	"bytes"
	"context"
	"errors"
	"log"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"dla/internal/core"
	"dla/pkg/dla"
)

func newWorld(t *testing.T, mutate func(*Config)) *World {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Width = 64
	cfg.Height = 64
	if mutate != nil {
		mutate(&cfg)
	}
	w, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	return w
}

func countLit(cells []uint8) int {
	n := 0
	for _, c := range cells {
		if c != 0 {
			n++
		}
	}
	return n
}

func TestFromMapParsesAndIgnoresBadValues(t *testing.T) {
	c := FromMap(map[string]string{
		"w":                "128",
		"h":                "-4",
		"mode":             "nearest",
		"stickyness":       "0.25",
		"step_size":        "nope",
		"spawn_angle":      "720",
		"spawn_clip_floor": "true",
		"unknown":          "1",
	})
	def := DefaultConfig()
	if c.Width != 128 || c.Height != def.Height {
		t.Fatalf("unexpected raster %dx%d", c.Width, c.Height)
	}
	if c.Mode != "nearest" || c.Engine.Stickyness != 0.25 || !c.Spawner.ClipFloor {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.Engine.StepSize != def.Engine.StepSize || c.Spawner.Angle != def.Spawner.Angle {
		t.Fatal("invalid values must leave defaults untouched")
	}
	if FromMap(nil) != def {
		t.Fatal("nil map should yield defaults")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "run.toml")
	body := `
width = 96
height = 80
seed = 5
mode = "nearest"
max_particles = 300

[engine]
stickyness = 0.5
growth_rate = 25

[spawner]
radius = 0.4
direction = 90
angle = 120
`
	if err := os.WriteFile(good, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConfig(good)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if c.Width != 96 || c.Height != 80 || c.Seed != 5 || c.Mode != "nearest" || c.MaxParticles != 300 {
		t.Fatalf("top-level keys not decoded: %+v", c)
	}
	if c.Engine.Stickyness != 0.5 || c.Engine.GrowthRate != 25 {
		t.Fatalf("engine table not decoded: %+v", c.Engine)
	}
	if c.Engine.StepSize != 1 || c.Engine.ParticleRadius != DefaultConfig().Engine.ParticleRadius {
		t.Fatal("missing keys should keep defaults")
	}
	if c.Spawner.Radius != 0.4 || c.Spawner.Direction != 90 || c.Spawner.Angle != 120 {
		t.Fatalf("spawner table not decoded: %+v", c.Spawner)
	}

	fromMap := FromMap(map[string]string{"config": good, "seed": "9"})
	if fromMap.Width != 96 || fromMap.Seed != 9 {
		t.Fatalf("config key should load the file before overrides, got %+v", fromMap)
	}

	unknown := filepath.Join(dir, "unknown.toml")
	if err := os.WriteFile(unknown, []byte("colour = \"blue\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(unknown); err == nil {
		t.Fatal("unknown keys should be rejected")
	}

	invalid := filepath.Join(dir, "invalid.toml")
	if err := os.WriteFile(invalid, []byte("[spawner]\nangle = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(invalid); !errors.Is(err, dla.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestNearestWorldStopsAtMaxParticles(t *testing.T) {
	w := newWorld(t, func(c *Config) {
		c.Mode = "nearest"
		c.MaxParticles = 25
	})
	if w.Name() != "dla-nearest" {
		t.Fatalf("unexpected name %q", w.Name())
	}
	lit := countLit(w.Cells())
	if lit == 0 {
		t.Fatal("seed should be drawn on construction")
	}
	for i := 0; i < 5; i++ {
		w.Step()
	}
	if got := len(w.Particles()); got != 25 {
		t.Fatalf("expected growth to stop at 25, got %d", got)
	}
	if !w.Done() || w.Err() != nil {
		t.Fatalf("expected done without error, err=%v", w.Err())
	}
	if countLit(w.Cells()) <= lit {
		t.Fatal("new particles should be rasterized")
	}
}

func TestResetDeterministic(t *testing.T) {
	w := newWorld(t, func(c *Config) { c.Engine.GrowthRate = 15 })
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	grow := func() ([]dla.Particle, []uint8) {
		for i := 0; i < 2; i++ {
			if err := w.StepContext(ctx); err != nil {
				t.Fatalf("StepContext: %v", err)
			}
		}
		return slices.Clone(w.Particles()), slices.Clone(w.Cells())
	}

	w.Reset(0)
	particles, cells := grow()
	if len(particles) != 31 {
		t.Fatalf("expected 31 particles, got %d", len(particles))
	}

	w.Reset(0)
	if len(w.Particles()) != 1 || countLit(w.Cells()) == 0 {
		t.Fatal("reset should leave only the drawn seed")
	}
	again, againCells := grow()
	if !slices.Equal(particles, again) || !slices.Equal(cells, againCells) {
		t.Fatal("Reset with config seed not deterministic")
	}

	w.Reset(4242)
	other, _ := grow()
	if slices.Equal(particles, other) {
		t.Fatal("different seeds should produce different clusters")
	}
}

func TestSpawnFollowTracksClusterRadius(t *testing.T) {
	w := newWorld(t, func(c *Config) {
		c.Mode = "nearest"
		c.SpawnMargin = 0.3
	})
	if got := w.Engine().Spawner().Radius; math.Abs(got-(0.01+0.3)) > 1e-12 {
		t.Fatalf("spawner should start at the seed radius plus margin, got %v", got)
	}
	w.Step()
	want := w.Engine().Cluster().Radius() + 0.3
	if got := w.Engine().Spawner().Radius; math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected spawner radius %v, got %v", want, got)
	}
	if !w.SetFloatParameter("spawn_margin", 0.5) {
		t.Fatal("spawn_margin should be settable")
	}
	want = w.Engine().Cluster().Radius() + 0.5
	if got := w.Engine().Spawner().Radius; math.Abs(got-want) > 1e-12 {
		t.Fatalf("margin change should move the spawner to %v, got %v", want, got)
	}
	w.Reset(0)
	if got := w.Engine().Spawner().Radius; math.Abs(got-(0.01+0.5)) > 1e-12 {
		t.Fatalf("reset should pull the spawner back to the seed, got %v", got)
	}
}

func TestBurstSizeDoesNotChangeCluster(t *testing.T) {
	grow := func(rate int) []dla.Particle {
		w := newWorld(t, func(c *Config) {
			c.MaxParticles = 61
			c.Engine.GrowthRate = rate
		})
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for !w.Done() {
			if err := w.StepContext(ctx); err != nil {
				t.Fatalf("growth rate %d: %v", rate, err)
			}
		}
		return slices.Clone(w.Particles())
	}
	single := grow(1)
	burst := grow(20)
	if len(single) != 61 || !slices.Equal(single, burst) {
		t.Fatalf("burst size changed the cluster: %d vs %d members", len(single), len(burst))
	}
}

func TestStepReturnsAtZeroStickyness(t *testing.T) {
	w := newWorld(t, func(c *Config) { c.TickBudgetMS = 20 })
	if !w.SetFloatParameter("stickyness", 0) {
		t.Fatal("stickyness 0 should be accepted")
	}
	done := make(chan struct{})
	go func() {
		w.Step()
		w.Step()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Step did not return within its tick budget")
	}
	if w.Err() != nil || w.Engine().Cluster().Size() != 1 {
		t.Fatalf("expected an idle world, got err=%v size=%d", w.Err(), w.Engine().Cluster().Size())
	}
	if w.Stats().Rejected == 0 {
		t.Fatal("expected rejected contacts while the budget ran")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.StepContext(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected the caller's cancellation, got %v", err)
	}
	if w.Err() != nil {
		t.Fatalf("cancellation should not be kept as a world error, got %v", w.Err())
	}
}

func TestStepLogsPersistentErrorOnce(t *testing.T) {
	var buf bytes.Buffer
	prevOut := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prevOut) })

	w := newWorld(t, func(c *Config) { c.Mode = "nearest" })
	w.Engine().Spawner().Angle = 0
	for i := 0; i < 3; i++ {
		w.Step()
	}
	if !errors.Is(w.Err(), dla.ErrInvalidArgument) {
		t.Fatalf("expected a spawner error, got %v", w.Err())
	}
	if n := strings.Count(buf.String(), "dla: step:"); n != 1 {
		t.Fatalf("expected one log line, got %d:\n%s", n, buf.String())
	}
}

func TestSettersValidate(t *testing.T) {
	w := newWorld(t, nil)
	if !w.SetFloatParameter("stickyness", 3) || w.Engine().Config().Stickyness != 1 {
		t.Fatal("stickyness should clamp to 1")
	}
	if w.SetFloatParameter("spawn_angle", 0) {
		t.Fatal("zero spawn angle must be refused")
	}
	if w.Engine().Spawner().Angle != 360 {
		t.Fatal("refused spawner edit must not leak")
	}
	if !w.SetFloatParameter("spawn_direction", 45) || w.Engine().Spawner().Direction != 45 {
		t.Fatal("spawn direction should be adjustable")
	}
	if w.SetFloatParameter("step_size", 0) || w.SetFloatParameter("step_size", math.NaN()) {
		t.Fatal("invalid step sizes must be refused")
	}
	if !w.SetIntParameter("mode", 1) || w.Engine().Config().Mode != dla.ModeNearest {
		t.Fatal("mode switch failed")
	}
	if w.SetIntParameter("mode", 2) || w.SetIntParameter("nope", 1) {
		t.Fatal("unknown modes and keys must be refused")
	}
	if !w.SetBoolParameter("spawn_clip_floor", true) || !w.Engine().Spawner().ClipFloor {
		t.Fatal("clip floor toggle failed")
	}

	snap := w.Parameters()
	if p, ok := snap.Lookup("spawn_direction"); !ok || p.Value != "45" {
		t.Fatalf("snapshot out of date: %+v", p)
	}
	if p, ok := snap.Lookup("size"); !ok || p.Value != "1" {
		t.Fatalf("expected cluster size 1, got %+v", p)
	}
	for _, ctrl := range w.ParameterControls() {
		if _, ok := snap.Lookup(ctrl.Key); !ok {
			t.Fatalf("control %q missing from snapshot", ctrl.Key)
		}
	}
}

func TestWorldToCellCentersOrigin(t *testing.T) {
	w := newWorld(t, nil)
	x, y := w.WorldToCell(0, 0)
	if x != 32 || y != 32 {
		t.Fatalf("origin should map to raster center, got (%v, %v)", x, y)
	}
	_, top := w.WorldToCell(0, 1.5)
	if top != 0 {
		t.Fatalf("y=view should map to the top row, got %v", top)
	}
}

func TestRegisteredFactories(t *testing.T) {
	for _, name := range []string{"dla", "dla-nearest"} {
		factory, ok := core.Sims()[name]
		if !ok {
			t.Fatalf("%s not registered", name)
		}
		sim := factory(map[string]string{"w": "32", "h": "32"})
		if sim.Name() != name || sim.Size() != (core.Size{W: 32, H: 32}) {
			t.Fatalf("%s factory built %q %+v", name, sim.Name(), sim.Size())
		}
	}
	w, err := New(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(w.Palette()) != paletteSize || w.Palette()[0] == w.Palette()[paletteSize-1] {
		t.Fatal("palette should run from background to a distinct highlight")
	}
}
