package dla

import (
	"context"
	"fmt"

	"dla/pkg/core"
)

// Outcome is the fate of a single walking particle.
type Outcome int

const (
	// OutcomeStuck means the particle found a contact and the bond was honored.
	OutcomeStuck Outcome = iota
	// OutcomeEscaped means the particle left the spawner region.
	OutcomeEscaped
	// OutcomeRejected means a contact was found but the stickyness draw failed.
	OutcomeRejected
	// OutcomeStepLimit means the walk hit MaxWalkSteps.
	OutcomeStepLimit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStuck:
		return "stuck"
	case OutcomeEscaped:
		return "escaped"
	case OutcomeRejected:
		return "rejected"
	case OutcomeStepLimit:
		return "step-limit"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Stats counts what happened to spawned particles since the last reset.
type Stats struct {
	Attempts    int
	Stuck       int
	Outside     int
	Rejected    int
	StepLimited int
	Steps       int64
}

// Engine grows a cluster from spawned particles. It is single threaded; every
// particle is either fully discarded or fully added before control returns.
type Engine struct {
	cfg     Config
	spawner *Spawner
	cluster *Cluster
	rng     *core.RNG
	seed    int64
	stats   Stats

	// OnStick is called for every particle added by a growth call.
	OnStick func(index int, p Particle)
}

// NewEngine validates the configuration and seeds a fresh cluster.
func NewEngine(cfg Config, spawner *Spawner, seed int64) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if spawner == nil {
		return nil, fmt.Errorf("%w: nil spawner", ErrInvalidArgument)
	}
	if err := spawner.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, spawner: spawner}
	e.Reset(seed)
	return e, nil
}

// Reset reseeds the random source and replaces the cluster with a single seed.
func (e *Engine) Reset(seed int64) {
	e.seed = seed
	e.rng = core.NewRNG(seed)
	e.stats = Stats{}
	cluster, err := NewCluster(e.cfg.SeedX, e.cfg.SeedY, e.cfg.SeedRadius)
	if err != nil {
		// cfg passed Validate in NewEngine or SetConfig.
		panic(err)
	}
	e.cluster = cluster
}

// Clear restarts from a single seed using the current random seed.
func (e *Engine) Clear() { e.Reset(e.seed) }

// Seed returns the random seed of the current run.
func (e *Engine) Seed() int64 { return e.seed }

// Config returns the active tunables.
func (e *Engine) Config() Config { return e.cfg }

// SetConfig replaces the tunables. Seed placement applies from the next reset.
func (e *Engine) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg
	return nil
}

// Spawner returns the live spawner; hosts may edit it between growth calls.
func (e *Engine) Spawner() *Spawner { return e.spawner }

// Cluster returns the current cluster.
func (e *Engine) Cluster() *Cluster { return e.cluster }

// Stats returns the counters since the last reset.
func (e *Engine) Stats() Stats { return e.stats }

func (e *Engine) spawn() Particle {
	e.stats.Attempts++
	pos := e.spawner.Spawn(e.rng)
	r := e.cfg.ParticleRadius
	return Particle{X: pos.X, Y: pos.Y, Radius: r, RadiusSquared: r * r, ParentIndex: NoParent}
}

func (e *Engine) added(start int) []Particle {
	return append([]Particle(nil), e.cluster.particles[start:]...)
}

func (e *Engine) emit(i int) {
	e.stats.Stuck++
	if e.OnStick != nil {
		e.OnStick(i, e.cluster.particles[i])
	}
}

// GrowNearest places count particles directly onto their nearest members.
func (e *Engine) GrowNearest(count int) ([]Particle, error) {
	if err := e.spawner.Validate(); err != nil {
		return nil, err
	}
	start := e.cluster.Size()
	for n := 0; n < count; n++ {
		i, err := e.cluster.StickOn(e.spawn())
		if err != nil {
			return e.added(start), err
		}
		e.emit(i)
	}
	return e.added(start), nil
}

// Walk steps p until it sticks, escapes, is rejected or exhausts the step cap.
// The returned index is the contact candidate for stuck and rejected outcomes.
func (e *Engine) Walk(p *Particle) (Outcome, int) {
	tolerance := e.cfg.StickTolerance
	for steps := 0; ; steps++ {
		if e.cfg.MaxWalkSteps > 0 && steps >= e.cfg.MaxWalkSteps {
			e.stats.StepLimited++
			return OutcomeStepLimit, NoParent
		}
		p.Step(e.rng, e.cfg.StepSize, 1)
		e.stats.Steps++
		if !e.spawner.Inside(p) {
			e.stats.Outside++
			return OutcomeEscaped, NoParent
		}
		i, ok := p.CheckStuck(e.cluster, tolerance)
		if !ok {
			continue
		}
		if e.rng.Float64() > e.cfg.Stickyness {
			e.stats.Rejected++
			return OutcomeRejected, i
		}
		return OutcomeStuck, i
	}
}

// GrowBrownian walks fresh particles until target of them have stuck. The
// context is checked before every new particle, never mid-walk.
func (e *Engine) GrowBrownian(ctx context.Context, target int) ([]Particle, error) {
	if err := e.spawner.Validate(); err != nil {
		return nil, err
	}
	start := e.cluster.Size()
	for stuck := 0; stuck < target; {
		if err := ctx.Err(); err != nil {
			return e.added(start), err
		}
		p := e.spawn()
		outcome, i := e.Walk(&p)
		if outcome != OutcomeStuck {
			continue
		}
		if err := p.StickTo(&e.cluster.particles[i], i); err != nil {
			return e.added(start), err
		}
		e.emit(e.cluster.Add(p))
		stuck++
	}
	return e.added(start), nil
}

// Grow runs one burst of GrowthRate completions in the configured mode.
// Splitting a batch into bursts yields the same cluster as running it whole.
func (e *Engine) Grow(ctx context.Context) ([]Particle, error) {
	if e.cfg.Mode == ModeNearest {
		return e.GrowNearest(e.cfg.GrowthRate)
	}
	return e.GrowBrownian(ctx, e.cfg.GrowthRate)
}
