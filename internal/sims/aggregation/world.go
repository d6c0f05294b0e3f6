package aggregation

import (
	"context"
	"log"
	"time"

	"dla/internal/core"
	"dla/pkg/dla"
)

// World drives a DLA engine as a core.Sim: each Step grows one burst and the
// display raster is refreshed with the newly stuck particles.
type World struct {
	name string
	cfg  Config

	engine *dla.Engine
	grid   *core.ByteGrid
	drawn  int
	err    error
}

// New returns a brownian world with the provided raster size using defaults.
func New(w, h int) (*World, error) {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	return NewWithConfig(cfg)
}

// NewWithConfig returns a world configured from the provided options.
func NewWithConfig(cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, _ := dla.ParseMode(cfg.Mode)
	cfg.Engine.Mode = mode
	spawner := cfg.Spawner
	engine, err := dla.NewEngine(cfg.Engine, &spawner, cfg.Seed)
	if err != nil {
		return nil, err
	}
	w := &World{
		name:   "dla",
		cfg:    cfg,
		engine: engine,
		grid:   core.NewByteGrid(cfg.Width, cfg.Height),
	}
	if mode == dla.ModeNearest {
		w.name = "dla-nearest"
	}
	engine.OnStick = func(int, dla.Particle) { w.follow() }
	w.follow()
	w.redraw()
	return w, nil
}

// Name returns the simulation identifier.
func (w *World) Name() string { return w.name }

// Size reports the raster dimensions.
func (w *World) Size() core.Size { return core.Size{W: w.grid.W, H: w.grid.H} }

// Cells exposes the display raster. Zero is background; members carry a
// stick-order palette index.
func (w *World) Cells() []uint8 { return w.grid.Cells() }

// Engine exposes the underlying growth engine.
func (w *World) Engine() *dla.Engine { return w.engine }

// Config returns the world configuration with live engine and spawner values.
func (w *World) Config() Config {
	c := w.cfg
	c.Engine = w.engine.Config()
	c.Spawner = *w.engine.Spawner()
	return c
}

// Particles returns the cluster members in stick order.
func (w *World) Particles() []dla.Particle { return w.engine.Cluster().Particles() }

// Stats returns the engine counters.
func (w *World) Stats() dla.Stats { return w.engine.Stats() }

// Err returns the error that stopped the last Step, if any.
func (w *World) Err() error { return w.err }

// Done reports whether the cluster reached MaxParticles.
func (w *World) Done() bool {
	return w.cfg.MaxParticles > 0 && w.engine.Cluster().Size() >= w.cfg.MaxParticles
}

// Reset restarts growth from a single seed. A zero seed reuses the configured
// one.
func (w *World) Reset(seed int64) {
	effective := seed
	if effective == 0 {
		effective = w.cfg.Seed
	}
	w.engine.Reset(effective)
	w.err = nil
	w.follow()
	w.redraw()
}

// Step grows one burst of particles. A failure is logged once, not on every
// tick it persists.
func (w *World) Step() {
	prev := w.err
	err := w.StepContext(context.Background())
	if err != nil && (prev == nil || prev.Error() != err.Error()) {
		log.Printf("dla: step: %v", err)
	}
}

// StepContext grows one burst, stopping between particles when ctx is done or
// the tick budget is spent. Growth draws from one random stream, so cutting a
// burst short only moves the remaining particles to the next call.
func (w *World) StepContext(ctx context.Context) error {
	if w.Done() {
		return nil
	}
	n := w.engine.Config().GrowthRate
	if w.cfg.MaxParticles > 0 {
		if left := w.cfg.MaxParticles - w.engine.Cluster().Size(); left < n {
			n = left
		}
	}
	var err error
	if w.engine.Config().Mode == dla.ModeNearest {
		_, err = w.engine.GrowNearest(n)
	} else {
		growCtx := ctx
		if w.cfg.TickBudgetMS > 0 {
			var cancel context.CancelFunc
			growCtx, cancel = context.WithTimeout(ctx, time.Duration(w.cfg.TickBudgetMS)*time.Millisecond)
			defer cancel()
		}
		_, err = w.engine.GrowBrownian(growCtx, n)
		if err != nil && ctx.Err() == nil && growCtx.Err() != nil {
			err = nil
		}
	}
	// A caller that stops the burst is not a world failure.
	if err == nil || ctx.Err() == nil {
		w.err = err
	}
	w.drawNew()
	return err
}

// WorldToCell maps world coordinates to fractional raster coordinates with y
// pointing down.
func (w *World) WorldToCell(x, y float64) (float64, float64) {
	span := 2 * w.cfg.View
	cx := (x + w.cfg.View) / span * float64(w.grid.W)
	cy := (w.cfg.View - y) / span * float64(w.grid.H)
	return cx, cy
}

// CellScale returns raster cells per world unit along x.
func (w *World) CellScale() float64 {
	return float64(w.grid.W) / (2 * w.cfg.View)
}

// follow moves the spawner to the cluster radius plus the margin. It runs
// after every stuck particle.
func (w *World) follow() {
	if w.cfg.SpawnFollow {
		w.engine.Spawner().Radius = w.engine.Cluster().Radius() + w.cfg.SpawnMargin
	}
}

func (w *World) redraw() {
	w.grid.Clear()
	w.drawn = 0
	w.drawNew()
}

func (w *World) drawNew() {
	ps := w.engine.Cluster().Particles()
	scale := w.CellScale()
	for i := w.drawn; i < len(ps); i++ {
		cx, cy := w.WorldToCell(ps[i].X, ps[i].Y)
		w.grid.FillDisk(cx, cy, ps[i].Radius*scale, w.shade(i))
	}
	w.drawn = len(ps)
}

func (w *World) shade(i int) uint8 {
	span := w.cfg.MaxParticles
	if span <= 0 {
		span = 4096
	}
	return uint8(1 + (i%span)*(paletteSize-1)/span)
}

func init() {
	core.Register("dla", func(cfg map[string]string) core.Sim {
		return mustWorld(FromMap(cfg))
	})
	core.Register("dla-nearest", func(cfg map[string]string) core.Sim {
		c := FromMap(cfg)
		c.Mode = dla.ModeNearest.String()
		return mustWorld(c)
	})
}

func mustWorld(c Config) *World {
	w, err := NewWithConfig(c)
	if err == nil {
		return w
	}
	log.Printf("dla: %v; falling back to defaults", err)
	w, err = NewWithConfig(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return w
}
