//go:build ebiten

package ui

import (
	"image/color"

	"dla/internal/core"
	"dla/pkg/dla"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

type geometryProvider interface {
	Engine() *dla.Engine
	WorldToCell(x, y float64) (float64, float64)
	CellScale() float64
}

// Overlay draws optional guides on top of the raster: the spawner arc, the
// bounding circle and gyration radius of the cluster, and parent links.
type Overlay struct {
	sim   core.Sim
	scale int

	showSpawner  bool
	showBounds   bool
	showGyration bool
	showLinks    bool
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	if scale <= 0 {
		scale = 1
	}
	return &Overlay{sim: sim, scale: scale, showSpawner: true}
}

// Update toggles guides with the digit keys.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showSpawner = !o.showSpawner
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showBounds = !o.showBounds
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit3) {
		o.showGyration = !o.showGyration
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit4) {
		o.showLinks = !o.showLinks
	}
}

// Draw renders the enabled guides.
func (o *Overlay) Draw(screen *ebiten.Image) {
	geo, ok := o.sim.(geometryProvider)
	if !ok {
		return
	}
	engine := geo.Engine()
	cluster := engine.Cluster()
	seed := cluster.Seed()
	if o.showLinks {
		o.drawLinks(screen, geo, cluster)
	}
	if o.showBounds {
		o.drawCircle(screen, geo, seed.X, seed.Y, cluster.Radius(), color.RGBA{R: 240, G: 180, B: 60, A: 200})
	}
	if o.showGyration {
		o.drawCircle(screen, geo, seed.X, seed.Y, cluster.GyrationRadius(), color.RGBA{R: 120, G: 220, B: 120, A: 200})
	}
	if o.showSpawner {
		o.drawSpawner(screen, geo, engine.Spawner())
	}
}

func (o *Overlay) toScreen(geo geometryProvider, x, y float64) (float32, float32) {
	cx, cy := geo.WorldToCell(x, y)
	return float32(cx * float64(o.scale)), float32(cy * float64(o.scale))
}

func (o *Overlay) drawCircle(screen *ebiten.Image, geo geometryProvider, x, y, r float64, col color.RGBA) {
	if r <= 0 {
		return
	}
	cx, cy := o.toScreen(geo, x, y)
	radius := float32(r * geo.CellScale() * float64(o.scale))
	vector.StrokeCircle(screen, cx, cy, radius, 1, col, true)
}

func (o *Overlay) drawSpawner(screen *ebiten.Image, geo geometryProvider, s *dla.Spawner) {
	col := color.RGBA{R: 230, G: 80, B: 80, A: 220}
	o.drawArc(screen, geo, s, s.Radius, col)
	if s.OffsetInner > 0 {
		o.drawArc(screen, geo, s, max(0, s.Radius-s.OffsetInner), color.RGBA{R: 230, G: 80, B: 80, A: 110})
	}
}

func (o *Overlay) drawArc(screen *ebiten.Image, geo geometryProvider, s *dla.Spawner, radius float64, col color.RGBA) {
	const segments = 96
	prev := s.LocationAt(0, radius)
	px, py := o.toScreen(geo, prev.X, prev.Y)
	for i := 1; i <= segments; i++ {
		next := s.LocationAt(float64(i)/segments, radius)
		nx, ny := o.toScreen(geo, next.X, next.Y)
		vector.StrokeLine(screen, px, py, nx, ny, 1, col, true)
		px, py = nx, ny
	}
}

func (o *Overlay) drawLinks(screen *ebiten.Image, geo geometryProvider, cluster *dla.Cluster) {
	col := color.RGBA{R: 90, G: 110, B: 200, A: 160}
	particles := cluster.Particles()
	for i := 1; i < len(particles); i++ {
		p := particles[i]
		if !p.Stuck() {
			continue
		}
		parent := particles[p.ParentIndex]
		x0, y0 := o.toScreen(geo, p.X, p.Y)
		x1, y1 := o.toScreen(geo, parent.X, parent.Y)
		vector.StrokeLine(screen, x0, y0, x1, y1, 1, col, true)
	}
}
