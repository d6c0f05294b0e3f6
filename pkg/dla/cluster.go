package dla

import (
	"fmt"
	"math"
)

// Cluster is an append-only aggregate rooted at the seed particle at index 0.
// Its radius is the smallest circle centered on the seed that contains every
// member.
type Cluster struct {
	particles     []Particle
	radius        float64
	radiusSquared float64
}

// NewCluster returns a cluster holding a single seed particle.
func NewCluster(x, y, radius float64) (*Cluster, error) {
	seed, err := NewParticle(x, y, radius)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	return &Cluster{
		particles:     []Particle{seed},
		radius:        seed.Radius,
		radiusSquared: seed.RadiusSquared,
	}, nil
}

// Size returns the number of members including the seed.
func (c *Cluster) Size() int { return len(c.particles) }

// Radius returns the bounding radius around the seed center.
func (c *Cluster) Radius() float64 { return c.radius }

// RadiusSquared returns Radius()².
func (c *Cluster) RadiusSquared() float64 { return c.radiusSquared }

// Seed returns the seed particle.
func (c *Cluster) Seed() *Particle { return &c.particles[0] }

// At returns the member at index i.
func (c *Cluster) At(i int) Particle { return c.particles[i] }

// Particles exposes members in stick order. Callers must not modify the slice.
func (c *Cluster) Particles() []Particle { return c.particles }

// Add appends an already positioned particle and grows the bounding radius.
// It returns the new member's index.
func (c *Cluster) Add(p Particle) int {
	c.particles = append(c.particles, p)
	if r := c.particles[0].Distance(&p) + p.Radius; r > c.radius {
		c.radius = r
		c.radiusSquared = r * r
	}
	return len(c.particles) - 1
}

// NearestParticle returns the member closest to p and the squared distance to
// it. Ties go to the earliest member.
func (c *Cluster) NearestParticle(p *Particle) (int, float64) {
	nearest := 0
	best := math.Inf(1)
	for i := range c.particles {
		if d := p.DistanceSquared(&c.particles[i]); d < best {
			best = d
			nearest = i
		}
	}
	return nearest, best
}

// StickOn snaps p onto its nearest member and adds it.
func (c *Cluster) StickOn(p Particle) (int, error) {
	i, _ := c.NearestParticle(&p)
	if err := p.StickTo(&c.particles[i], i); err != nil {
		return NoParent, err
	}
	return c.Add(p), nil
}
