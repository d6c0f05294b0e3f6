package dla

import "math"

// GyrationRadius returns the root mean square distance of member centers from
// their centroid.
func (c *Cluster) GyrationRadius() float64 {
	n := float64(len(c.particles))
	var cx, cy float64
	for i := range c.particles {
		cx += c.particles[i].X
		cy += c.particles[i].Y
	}
	cx /= n
	cy /= n
	var sum float64
	for i := range c.particles {
		dx := c.particles[i].X - cx
		dy := c.particles[i].Y - cy
		sum += dx*dx + dy*dy
	}
	return math.Sqrt(sum / n)
}

// FractalDimension estimates the mass-radius dimension ln N / ln(Rg/r0) where
// r0 is the seed radius. It returns 0 until the estimate is defined.
func (c *Cluster) FractalDimension() float64 {
	n := len(c.particles)
	if n < 2 {
		return 0
	}
	ratio := c.GyrationRadius() / c.particles[0].Radius
	if ratio <= 1 {
		return 0
	}
	return math.Log(float64(n)) / math.Log(ratio)
}
