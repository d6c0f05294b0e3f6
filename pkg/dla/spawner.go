package dla

import (
	"fmt"
	"math"

	"dla/pkg/core"

	"gonum.org/v1/gonum/spatial/r2"
)

// Spawner is an arc (or annulus sector) centered on the origin. Direction is a
// compass bearing in degrees (0 = north, clockwise positive) and Angle is the
// total arc width centered on it.
type Spawner struct {
	Radius      float64 `toml:"radius"`
	Direction   float64 `toml:"direction"`
	Angle       float64 `toml:"angle"`
	OffsetInner float64 `toml:"offset_inner"`
	ClipFloor   bool    `toml:"clip_floor"`
}

// NewSpawner returns a validated single-radius spawner.
func NewSpawner(radius, direction, angle float64) (*Spawner, error) {
	s := &Spawner{Radius: radius, Direction: direction, Angle: angle}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate rejects degenerate geometry.
func (s *Spawner) Validate() error {
	switch {
	case !(s.Radius > 0):
		return fmt.Errorf("%w: spawner radius %v must be positive", ErrInvalidArgument, s.Radius)
	case !(s.Angle > 0) || s.Angle > 360:
		return fmt.Errorf("%w: spawner angle %v outside (0, 360]", ErrInvalidArgument, s.Angle)
	case s.OffsetInner < 0:
		return fmt.Errorf("%w: spawner inner offset %v is negative", ErrInvalidArgument, s.OffsetInner)
	}
	return nil
}

func (s *Spawner) startDegrees() float64 {
	return 90 - (s.Direction + s.Angle/2)
}

// Location maps t in [0, 1] onto the arc at the configured radius.
func (s *Spawner) Location(t float64) r2.Vec {
	return s.LocationAt(t, s.Radius)
}

// LocationAt maps t in [0, 1] onto the arc at the given radius.
func (s *Spawner) LocationAt(t, radius float64) r2.Vec {
	deg := s.startDegrees() + t*s.Angle
	sin, cos := math.Sincos(deg * math.Pi / 180)
	return r2.Scale(radius, r2.Vec{X: cos, Y: sin})
}

// Param returns the arc parameter of the direction through (x, y), the inverse
// of Location. Points outside a partial arc map outside [0, 1).
func (s *Spawner) Param(x, y float64) float64 {
	start := s.startDegrees()
	deg := math.Atan2(y, x) * 180 / math.Pi
	deg = math.Mod(deg-start, 360)
	if deg < 0 {
		deg += 360
	}
	return deg / s.Angle
}

// Spawn draws a spawn point. With an inner offset the radius is drawn
// uniformly between Radius-OffsetInner and Radius before the arc parameter,
// which is radius-uniform rather than area-uniform.
func (s *Spawner) Spawn(rng *core.RNG) r2.Vec {
	if s.OffsetInner <= 0 {
		return s.Location(rng.Float64())
	}
	r := rng.Between(math.Max(0, s.Radius-s.OffsetInner), s.Radius)
	return s.LocationAt(rng.Float64(), r)
}

// Inside reports whether p is still within the valid region: inside the
// spawn radius (padded by p's own radius) and, with ClipFloor, on the
// half-plane the spawner faces.
func (s *Spawner) Inside(p *Particle) bool {
	if r2.Norm2(p.Pos()) >= s.Radius*s.Radius+p.RadiusSquared {
		return false
	}
	if !s.ClipFloor {
		return true
	}
	if s.facesUp() {
		return p.Y >= 0
	}
	return p.Y <= 0
}

func (s *Spawner) facesUp() bool {
	return math.Cos(s.Direction*math.Pi/180) >= 0
}
