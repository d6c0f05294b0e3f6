package dla

import (
	"fmt"
	"math"

	"dla/pkg/core"

	"gonum.org/v1/gonum/spatial/r2"
)

// NoParent marks a particle that is not attached to anything.
const NoParent = -1

// Particle is a disk. Once stuck it records the index of the cluster member it
// bonded to and the direction from that member to itself.
type Particle struct {
	X, Y          float64
	Radius        float64
	RadiusSquared float64

	ParentIndex     int
	ParentDirection float64
}

// NewParticle returns a free particle at (x, y).
func NewParticle(x, y, radius float64) (Particle, error) {
	if !(radius > 0) {
		return Particle{}, fmt.Errorf("%w: particle radius %v must be positive", ErrInvalidArgument, radius)
	}
	return Particle{
		X:             x,
		Y:             y,
		Radius:        radius,
		RadiusSquared: radius * radius,
		ParentIndex:   NoParent,
	}, nil
}

// Pos returns the particle center.
func (p *Particle) Pos() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// Stuck reports whether the particle has bonded to a parent.
func (p *Particle) Stuck() bool { return p.ParentIndex != NoParent }

// Step performs n random-walk moves of stepSize*Radius in uniformly drawn
// directions.
func (p *Particle) Step(rng *core.RNG, stepSize float64, n int) {
	d := stepSize * p.Radius
	for i := 0; i < n; i++ {
		sin, cos := math.Sincos(rng.Angle())
		p.X += cos * d
		p.Y += sin * d
	}
}

// DistanceSquared returns the squared distance between the two centers.
func (p *Particle) DistanceSquared(q *Particle) float64 {
	return r2.Norm2(r2.Sub(q.Pos(), p.Pos()))
}

// Distance returns the distance between the two centers.
func (p *Particle) Distance(q *Particle) float64 {
	return r2.Norm(r2.Sub(q.Pos(), p.Pos()))
}

// StickTo moves p along the line through both centers until the disks are
// tangent, on the side of q that p was already on, and records q (stored at
// index) as the parent. Coincident centers resolve to direction 0.
func (p *Particle) StickTo(q *Particle, index int) error {
	if p.Stuck() {
		return ErrAlreadyStuck
	}
	if index < 0 {
		return fmt.Errorf("%w: parent index %d", ErrInvalidArgument, index)
	}
	v := r2.Sub(p.Pos(), q.Pos())
	if r2.Norm2(v) == 0 {
		v = r2.Vec{X: 1}
	}
	pos := r2.Add(q.Pos(), r2.Scale(p.Radius+q.Radius, r2.Unit(v)))
	p.X, p.Y = pos.X, pos.Y
	p.ParentIndex = index
	p.ParentDirection = math.Atan2(p.Y-q.Y, p.X-q.X)
	return nil
}

// CheckStuck returns the index of the first cluster member p touches within
// tolerance, scanning from the newest member to the seed.
func (p *Particle) CheckStuck(c *Cluster, tolerance float64) (int, bool) {
	if p.DistanceSquared(c.Seed()) > c.RadiusSquared() {
		return NoParent, false
	}
	for i := len(c.particles) - 1; i >= 0; i-- {
		q := &c.particles[i]
		if p.DistanceSquared(q) < (p.RadiusSquared+q.RadiusSquared)*tolerance {
			return i, true
		}
	}
	return NoParent, false
}
